package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/insurance-crm/crm"
)

const claimColumns = `id, client_id, policy_id, claim_number, claim_type, claim_amount,
	approved_amount, claim_date, incident_date, status, priority, assigned_to,
	description, status_history_json, rejection_reason, shortfall_reason,
	settlement_date, payment_mode, notes, created_at, updated_at`

var claimSortColumns = map[string]string{
	"createdAt":   "created_at",
	"claimAmount": "CAST(claim_amount AS REAL)",
	"claimDate":   "claim_date",
}

func (s *Store) CreateClaim(ctx context.Context, c *crm.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = crm.ClaimID(uuid.NewString())
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (`+claimColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		claimArgs(c)...)
	if isUniqueConstraintError(err) {
		return crm.ErrDuplicateNumber
	}
	return err
}

func (s *Store) GetClaim(ctx context.Context, id crm.ClaimID) (*crm.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+claimColumns+" FROM claims WHERE id = ?", id)
	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) ListClaims(ctx context.Context, f crm.ClaimFilter) ([]crm.Claim, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conds []string
	var args []any
	if len(f.Statuses) > 0 {
		ph := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			ph[i] = "?"
			args = append(args, st)
		}
		conds = append(conds, "status IN ("+strings.Join(ph, ", ")+")")
	} else if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.ClaimType != "" {
		conds = append(conds, "claim_type = ?")
		args = append(args, f.ClaimType)
	}
	if f.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, f.Priority)
	}
	if f.ClientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.PolicyID != "" {
		conds = append(conds, "policy_id = ?")
		args = append(args, f.PolicyID)
	}
	if f.AssignedTo != "" {
		conds = append(conds, "assigned_to = ?")
		args = append(args, f.AssignedTo)
	}
	if f.ClaimFrom != nil {
		conds = append(conds, "claim_date >= ?")
		args = append(args, formatTime(*f.ClaimFrom))
	}
	if f.ClaimTo != nil {
		conds = append(conds, "claim_date <= ?")
		args = append(args, formatTime(*f.ClaimTo))
	}
	if f.Search != "" {
		conds = append(conds, "claim_number LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	where := whereClause(conds)
	total, err := s.countRows("SELECT COUNT(*) FROM claims"+where, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + claimColumns + " FROM claims" + where +
		orderClause(f.Page.SortBy, "-claimDate", claimSortColumns)
	limit, limitArgs := limitClause(f.Page)
	rows, err := s.db.QueryContext(ctx, query+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var claims []crm.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		claims = append(claims, *c)
	}
	return claims, total, rows.Err()
}

func (s *Store) UpdateClaim(ctx context.Context, c *crm.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE claims SET
			client_id = ?, policy_id = ?, claim_number = ?, claim_type = ?, claim_amount = ?,
			approved_amount = ?, claim_date = ?, incident_date = ?, status = ?, priority = ?,
			assigned_to = ?, description = ?, status_history_json = ?, rejection_reason = ?,
			shortfall_reason = ?, settlement_date = ?, payment_mode = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		c.ClientID, c.PolicyID, c.ClaimNumber, c.ClaimType, c.ClaimAmount.String(),
		nullDecimal(c.ApprovedAmount), formatTime(c.ClaimDate), formatTime(c.IncidentDate),
		c.Status, c.Priority, c.AssignedTo, c.Description, marshalJSON(c.StatusHistory),
		c.RejectionReason, c.ShortfallReason, nullTime(c.SettlementDate), c.PaymentMode,
		c.Notes, formatTime(c.UpdatedAt), c.ID)
	if isUniqueConstraintError(err) {
		return crm.ErrDuplicateNumber
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return crm.ErrClaimNotFound
	}
	return nil
}

func (s *Store) DeleteClaim(ctx context.Context, id crm.ClaimID) (*crm.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+claimColumns+" FROM claims WHERE id = ?", id)
	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM claims WHERE id = ?", id); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) LastClaimNumber(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Order on the numeric suffix, not the raw string: lexicographic order
	// misranks CLM-1000000 below CLM-999999.
	var number string
	err := s.db.QueryRowContext(ctx,
		`SELECT claim_number FROM claims
		 ORDER BY CAST(substr(claim_number, instr(claim_number, '-') + 1) AS INTEGER) DESC
		 LIMIT 1`,
	).Scan(&number)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return number, err
}

func (s *Store) ClaimStats(ctx context.Context) (*crm.ClaimStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT claim_type, status, claim_amount, approved_amount, claim_date, settlement_date
		FROM claims`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &crm.ClaimStats{}
	byStatus := map[string]*crm.ClaimBreakdownRow{}
	byType := map[string]*crm.ClaimBreakdownRow{}
	settledDays := 0
	settled := 0
	for rows.Next() {
		var ctype, status, amount, claimDate string
		var approved, settlement sql.NullString
		if err := rows.Scan(&ctype, &status, &amount, &approved, &claimDate, &settlement); err != nil {
			return nil, err
		}
		claimAmount := parseDecimal(amount)
		stats.TotalClaims++
		stats.TotalClaimAmount = stats.TotalClaimAmount.Add(claimAmount)
		if approved.Valid {
			stats.TotalApprovedAmount = stats.TotalApprovedAmount.Add(parseDecimal(approved.String))
		}
		switch crm.ClaimStatus(status) {
		case crm.ClaimApproved:
			stats.ApprovedClaims++
		case crm.ClaimRejected:
			stats.RejectedClaims++
		case crm.ClaimPending:
			stats.PendingClaims++
		case crm.ClaimSettled:
			stats.SettledClaims++
		}
		addClaimRow(byStatus, status, claimAmount)
		addClaimRow(byType, ctype, claimAmount)
		if crm.ClaimStatus(status) == crm.ClaimSettled && settlement.Valid {
			settledDays += crm.CeilDays(parseTime(claimDate), parseTime(settlement.String))
			settled++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.StatusBreakdown = claimRows(byStatus)
	stats.TypeBreakdown = claimRows(byType)
	if settled > 0 {
		stats.AverageProcessingDays = float64(settledDays) / float64(settled)
	}
	return stats, nil
}

func claimArgs(c *crm.Claim) []any {
	return []any{
		c.ID, c.ClientID, c.PolicyID, c.ClaimNumber, c.ClaimType, c.ClaimAmount.String(),
		nullDecimal(c.ApprovedAmount), formatTime(c.ClaimDate), formatTime(c.IncidentDate),
		c.Status, c.Priority, c.AssignedTo, c.Description, marshalJSON(c.StatusHistory),
		c.RejectionReason, c.ShortfallReason, nullTime(c.SettlementDate), c.PaymentMode,
		c.Notes, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	}
}

func scanClaim(row rowScanner) (*crm.Claim, error) {
	var (
		c                             crm.Claim
		amount, claimDate, incident   string
		approved, history, settlement sql.NullString
		createdAt, updatedAt          string
	)
	err := row.Scan(
		&c.ID, &c.ClientID, &c.PolicyID, &c.ClaimNumber, &c.ClaimType, &amount,
		&approved, &claimDate, &incident, &c.Status, &c.Priority, &c.AssignedTo,
		&c.Description, &history, &c.RejectionReason, &c.ShortfallReason,
		&settlement, &c.PaymentMode, &c.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ClaimAmount = parseDecimal(amount)
	c.ApprovedAmount = decimalPtr(approved)
	c.ClaimDate = parseTime(claimDate)
	c.IncidentDate = parseTime(incident)
	unmarshalJSON(history, &c.StatusHistory)
	c.SettlementDate = timePtr(settlement)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func addClaimRow(m map[string]*crm.ClaimBreakdownRow, key string, amount decimal.Decimal) {
	row, ok := m[key]
	if !ok {
		row = &crm.ClaimBreakdownRow{Key: key}
		m[key] = row
	}
	row.Count++
	row.TotalAmount = row.TotalAmount.Add(amount)
}

func claimRows(m map[string]*crm.ClaimBreakdownRow) []crm.ClaimBreakdownRow {
	out := make([]crm.ClaimBreakdownRow, 0, len(m))
	for _, row := range m {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
