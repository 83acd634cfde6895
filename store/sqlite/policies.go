package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/insurance-crm/crm"
)

const policyColumns = `id, client_id, policy_number, policy_type, company, plan_name,
	premium_amount, premium_frequency, sum_assured, policy_term_years,
	start_date, maturity_date, renewal_date, next_premium_due,
	status, payment_status, nominees_json, assigned_agent, notes, created_at, updated_at`

var policySortColumns = map[string]string{
	"premiumAmount": "CAST(premium_amount AS REAL)",
	"renewalDate":   "renewal_date",
	"createdAt":     "created_at",
}

func (s *Store) CreatePolicy(ctx context.Context, p *crm.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = crm.PolicyID(uuid.NewString())
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policies (`+policyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		policyArgs(p)...)
	if isUniqueConstraintError(err) {
		return crm.ErrDuplicateNumber
	}
	return err
}

func (s *Store) GetPolicy(ctx context.Context, id crm.PolicyID) (*crm.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+policyColumns+" FROM policies WHERE id = ?", id)
	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListPolicies(ctx context.Context, f crm.PolicyFilter) ([]crm.Policy, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conds []string
	var args []any
	if f.PolicyType != "" {
		conds = append(conds, "policy_type = ?")
		args = append(args, f.PolicyType)
	}
	if f.Company != "" {
		conds = append(conds, "company = ?")
		args = append(args, f.Company)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.PaymentStatus != "" {
		conds = append(conds, "payment_status = ?")
		args = append(args, f.PaymentStatus)
	}
	if f.ClientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.AssignedAgent != "" {
		conds = append(conds, "assigned_agent = ?")
		args = append(args, f.AssignedAgent)
	}
	if f.CreatedFrom != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, formatTime(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, formatTime(*f.CreatedTo))
	}
	if f.Search != "" {
		conds = append(conds, "(policy_number LIKE ? OR plan_name LIKE ?)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat)
	}

	where := whereClause(conds)
	total, err := s.countRows("SELECT COUNT(*) FROM policies"+where, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + policyColumns + " FROM policies" + where +
		orderClause(f.Page.SortBy, "-createdAt", policySortColumns)
	limit, limitArgs := limitClause(f.Page)
	return s.queryPolicies(ctx, query+limit, append(args, limitArgs...), total)
}

func (s *Store) ListClientPolicies(ctx context.Context, clientID crm.ClientID) ([]crm.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + policyColumns + " FROM policies WHERE client_id = ? ORDER BY created_at DESC"
	policies, _, err := s.queryPolicies(ctx, query, []any{clientID}, 0)
	return policies, err
}

func (s *Store) CountClientPolicies(ctx context.Context, clientID crm.ClientID, status crm.PolicyStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if status == "" {
		return s.countRows("SELECT COUNT(*) FROM policies WHERE client_id = ?", []any{clientID})
	}
	return s.countRows(
		"SELECT COUNT(*) FROM policies WHERE client_id = ? AND status = ?",
		[]any{clientID, status})
}

func (s *Store) UpdatePolicy(ctx context.Context, p *crm.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE policies SET
			client_id = ?, policy_number = ?, policy_type = ?, company = ?, plan_name = ?,
			premium_amount = ?, premium_frequency = ?, sum_assured = ?, policy_term_years = ?,
			start_date = ?, maturity_date = ?, renewal_date = ?, next_premium_due = ?,
			status = ?, payment_status = ?, nominees_json = ?, assigned_agent = ?,
			notes = ?, updated_at = ?
		WHERE id = ?`,
		p.ClientID, p.PolicyNumber, p.PolicyType, p.Company, p.PlanName,
		p.PremiumAmount.String(), p.PremiumFrequency, p.SumAssured.String(), p.PolicyTermYears,
		formatTime(p.StartDate), formatTime(p.MaturityDate), nullTime(p.RenewalDate),
		nullTime(p.NextPremiumDue), p.Status, p.PaymentStatus, marshalJSON(p.Nominees),
		p.AssignedAgent, p.Notes, formatTime(p.UpdatedAt), p.ID)
	if isUniqueConstraintError(err) {
		return crm.ErrDuplicateNumber
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return crm.ErrPolicyNotFound
	}
	return nil
}

func (s *Store) DeletePolicy(ctx context.Context, id crm.PolicyID) (*crm.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+policyColumns+" FROM policies WHERE id = ?", id)
	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM policies WHERE id = ?", id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListUpcomingRenewals(ctx context.Context, now time.Time, days int) ([]crm.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	to := now.AddDate(0, 0, days)
	query := "SELECT " + policyColumns + ` FROM policies
		WHERE status = ? AND renewal_date IS NOT NULL AND renewal_date >= ? AND renewal_date <= ?
		ORDER BY renewal_date ASC`
	policies, _, err := s.queryPolicies(ctx, query,
		[]any{crm.PolicyActive, formatTime(now), formatTime(to)}, 0)
	return policies, err
}

func (s *Store) ListMaturedPolicies(ctx context.Context) ([]crm.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + policyColumns + ` FROM policies
		WHERE maturity_date <= ? ORDER BY maturity_date DESC`
	policies, _, err := s.queryPolicies(ctx, query, []any{formatTime(time.Now())}, 0)
	return policies, err
}

func (s *Store) PolicyStats(ctx context.Context) (*crm.PolicyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT policy_type, company, status, premium_amount, sum_assured FROM policies")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &crm.PolicyStats{}
	byType := map[string]*crm.PolicyBreakdownRow{}
	byCompany := map[string]*crm.PolicyBreakdownRow{}
	byStatus := map[string]int{}
	for rows.Next() {
		var ptype, company, status, premium, sum string
		if err := rows.Scan(&ptype, &company, &status, &premium, &sum); err != nil {
			return nil, err
		}
		stats.TotalPolicies++
		if status == string(crm.PolicyActive) {
			stats.ActivePolicies++
		}
		amount := parseDecimal(premium)
		stats.TotalPremium = stats.TotalPremium.Add(amount)
		stats.TotalSumAssured = stats.TotalSumAssured.Add(parseDecimal(sum))
		addPolicyRow(byType, ptype, amount)
		addPolicyRow(byCompany, company, amount)
		byStatus[status]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.TypeBreakdown = policyRows(byType)
	stats.CompanyBreakdown = policyRows(byCompany)
	stats.StatusBreakdown = statusCounts(byStatus)
	return stats, nil
}

func (s *Store) queryPolicies(ctx context.Context, query string, args []any, total int) ([]crm.Policy, int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var policies []crm.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, 0, err
		}
		policies = append(policies, *p)
	}
	return policies, total, rows.Err()
}

func policyArgs(p *crm.Policy) []any {
	return []any{
		p.ID, p.ClientID, p.PolicyNumber, p.PolicyType, p.Company, p.PlanName,
		p.PremiumAmount.String(), p.PremiumFrequency, p.SumAssured.String(), p.PolicyTermYears,
		formatTime(p.StartDate), formatTime(p.MaturityDate), nullTime(p.RenewalDate),
		nullTime(p.NextPremiumDue), p.Status, p.PaymentStatus, marshalJSON(p.Nominees),
		p.AssignedAgent, p.Notes, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	}
}

func scanPolicy(row rowScanner) (*crm.Policy, error) {
	var (
		p                          crm.Policy
		premium, sum               string
		startDate, maturityDate    string
		renewal, nextDue, nominees sql.NullString
		createdAt, updatedAt       string
	)
	err := row.Scan(
		&p.ID, &p.ClientID, &p.PolicyNumber, &p.PolicyType, &p.Company, &p.PlanName,
		&premium, &p.PremiumFrequency, &sum, &p.PolicyTermYears,
		&startDate, &maturityDate, &renewal, &nextDue,
		&p.Status, &p.PaymentStatus, &nominees, &p.AssignedAgent, &p.Notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.PremiumAmount = parseDecimal(premium)
	p.SumAssured = parseDecimal(sum)
	p.StartDate = parseTime(startDate)
	p.MaturityDate = parseTime(maturityDate)
	p.RenewalDate = timePtr(renewal)
	p.NextPremiumDue = timePtr(nextDue)
	unmarshalJSON(nominees, &p.Nominees)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func addPolicyRow(m map[string]*crm.PolicyBreakdownRow, key string, premium decimal.Decimal) {
	row, ok := m[key]
	if !ok {
		row = &crm.PolicyBreakdownRow{Key: key}
		m[key] = row
	}
	row.Count++
	row.TotalPremium = row.TotalPremium.Add(premium)
}

func policyRows(m map[string]*crm.PolicyBreakdownRow) []crm.PolicyBreakdownRow {
	out := make([]crm.PolicyBreakdownRow, 0, len(m))
	for _, row := range m {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
