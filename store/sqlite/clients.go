package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/insurance-crm/crm"
)

const clientColumns = `id, name, email, phone, alternate_phone, date_of_birth, address_json,
	client_type, priority, tags_json, notes, is_new_prospect, assigned_agent, status,
	total_policies, total_premium, total_maturity, created_at, updated_at`

var clientSortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
}

func (s *Store) CreateClient(ctx context.Context, c *crm.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = crm.ClientID(uuid.NewString())
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		clientArgs(c)...)
	return err
}

func (s *Store) GetClient(ctx context.Context, id crm.ClientID) (*crm.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", id)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context, f crm.ClientFilter) ([]crm.Client, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.ClientType != "" {
		conds = append(conds, "client_type = ?")
		args = append(args, f.ClientType)
	}
	if f.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, f.Priority)
	}
	if f.AssignedAgent != "" {
		conds = append(conds, "assigned_agent = ?")
		args = append(args, f.AssignedAgent)
	}
	if f.Search != "" {
		conds = append(conds, "(name LIKE ? OR email LIKE ? OR phone LIKE ?)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat, pat)
	}

	where := whereClause(conds)
	total, err := s.countRows("SELECT COUNT(*) FROM clients"+where, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + clientColumns + " FROM clients" + where +
		orderClause(f.Page.SortBy, "-createdAt", clientSortColumns)
	limit, limitArgs := limitClause(f.Page)
	rows, err := s.db.QueryContext(ctx, query+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []crm.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *c)
	}
	return clients, total, rows.Err()
}

func (s *Store) UpdateClient(ctx context.Context, c *crm.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE clients SET
			name = ?, email = ?, phone = ?, alternate_phone = ?, date_of_birth = ?,
			address_json = ?, client_type = ?, priority = ?, tags_json = ?, notes = ?,
			is_new_prospect = ?, assigned_agent = ?, status = ?,
			total_policies = ?, total_premium = ?, total_maturity = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.AlternatePhone, nullTime(c.DateOfBirth),
		marshalJSON(c.Address), c.ClientType, c.Priority, marshalJSON(c.Tags), c.Notes,
		c.IsNewProspect, c.AssignedAgent, c.Status,
		c.TotalPolicies, c.TotalPremium.String(), c.TotalMaturity.String(),
		formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return crm.ErrClientNotFound
	}
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id crm.ClientID) (*crm.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", id)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) ClientStats(ctx context.Context) (*crm.ClientStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT status, is_new_prospect, total_policies, total_premium FROM clients")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &crm.ClientStats{}
	byStatus := map[string]int{}
	totalPolicies := 0
	for rows.Next() {
		var status, premium string
		var isNewProspect bool
		var policies int
		if err := rows.Scan(&status, &isNewProspect, &policies, &premium); err != nil {
			return nil, err
		}
		stats.TotalClients++
		byStatus[status]++
		if isNewProspect {
			stats.Prospects++
		}
		totalPolicies += policies
		stats.TotalPremium = stats.TotalPremium.Add(parseDecimal(premium))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.ActiveClients = byStatus[string(crm.ClientActive)]
	if stats.TotalClients > 0 {
		stats.AveragePoliciesPerClient = float64(totalPolicies) / float64(stats.TotalClients)
	}
	stats.StatusBreakdown = statusCounts(byStatus)
	return stats, nil
}

func clientArgs(c *crm.Client) []any {
	return []any{
		c.ID, c.Name, c.Email, c.Phone, c.AlternatePhone, nullTime(c.DateOfBirth),
		marshalJSON(c.Address), c.ClientType, c.Priority, marshalJSON(c.Tags), c.Notes,
		c.IsNewProspect, c.AssignedAgent, c.Status,
		c.TotalPolicies, c.TotalPremium.String(), c.TotalMaturity.String(),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*crm.Client, error) {
	var (
		c                          crm.Client
		dob, addressJSON, tagsJSON sql.NullString
		premium, maturity          string
		createdAt, updatedAt       string
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.AlternatePhone, &dob, &addressJSON,
		&c.ClientType, &c.Priority, &tagsJSON, &c.Notes, &c.IsNewProspect,
		&c.AssignedAgent, &c.Status,
		&c.TotalPolicies, &premium, &maturity, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.DateOfBirth = timePtr(dob)
	unmarshalJSON(addressJSON, &c.Address)
	unmarshalJSON(tagsJSON, &c.Tags)
	c.TotalPremium = parseDecimal(premium)
	c.TotalMaturity = parseDecimal(maturity)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}
