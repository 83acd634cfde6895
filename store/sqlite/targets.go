package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/insurance-crm/crm"
)

const targetColumns = `id, agent_id, target_period, start_date, end_date, product_type,
	target_amount, achieved_amount, target_policies, achieved_policies,
	status, achievement_percentage, bonus_json, notes, created_at, updated_at`

var targetSortColumns = map[string]string{
	"startDate": "start_date",
	"endDate":   "end_date",
	"createdAt": "created_at",
}

func (s *Store) CreateTarget(ctx context.Context, t *crm.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = crm.TargetID(uuid.NewString())
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO targets (`+targetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		targetArgs(t)...)
	return err
}

func (s *Store) GetTarget(ctx context.Context, id crm.TargetID) (*crm.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+targetColumns+" FROM targets WHERE id = ?", id)
	t, err := scanTarget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) ListTargets(ctx context.Context, f crm.TargetFilter) ([]crm.Target, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conds []string
	var args []any
	if f.AgentID != "" {
		conds = append(conds, "agent_id = ?")
		args = append(args, f.AgentID)
	}
	if f.TargetPeriod != "" {
		conds = append(conds, "target_period = ?")
		args = append(args, f.TargetPeriod)
	}
	if f.ProductType != "" {
		conds = append(conds, "product_type = ?")
		args = append(args, f.ProductType)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}

	where := whereClause(conds)
	total, err := s.countRows("SELECT COUNT(*) FROM targets"+where, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + targetColumns + " FROM targets" + where +
		orderClause(f.Page.SortBy, "-startDate", targetSortColumns)
	limit, limitArgs := limitClause(f.Page)
	targets, err := s.queryTargets(ctx, query+limit, append(args, limitArgs...))
	if err != nil {
		return nil, 0, err
	}
	return targets, total, nil
}

func (s *Store) ListActiveTargetsForAgent(ctx context.Context, agentID crm.AgentID) ([]crm.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + targetColumns + ` FROM targets
		WHERE agent_id = ? AND status = ? ORDER BY end_date ASC`
	return s.queryTargets(ctx, query, []any{agentID, crm.TargetActive})
}

func (s *Store) UpdateTarget(ctx context.Context, t *crm.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE targets SET
			agent_id = ?, target_period = ?, start_date = ?, end_date = ?, product_type = ?,
			target_amount = ?, achieved_amount = ?, target_policies = ?, achieved_policies = ?,
			status = ?, achievement_percentage = ?, bonus_json = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		t.AgentID, t.TargetPeriod, formatTime(t.StartDate), formatTime(t.EndDate), t.ProductType,
		t.TargetAmount.String(), t.AchievedAmount.String(), t.TargetPolicies, t.AchievedPolicies,
		t.Status, t.AchievementPercentage, marshalJSON(t.Bonus), t.Notes,
		formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return crm.ErrTargetNotFound
	}
	return nil
}

func (s *Store) DeleteTarget(ctx context.Context, id crm.TargetID) (*crm.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+targetColumns+" FROM targets WHERE id = ?", id)
	t, err := scanTarget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM targets WHERE id = ?", id); err != nil {
		return nil, err
	}
	return t, nil
}

// TargetStats aggregates Active targets only; closed targets belong to the
// historical report, not the live dashboard.
func (s *Store) TargetStats(ctx context.Context) (*crm.TargetStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets, err := s.queryTargets(ctx,
		"SELECT "+targetColumns+" FROM targets WHERE status = ?", []any{crm.TargetActive})
	if err != nil {
		return nil, err
	}

	stats := &crm.TargetStats{}
	byPeriod := map[string]*crm.TargetBreakdownRow{}
	byProduct := map[string]*crm.TargetBreakdownRow{}
	var performers []crm.TargetPerformer
	sumPct := 0.0
	for i := range targets {
		t := &targets[i]
		stats.TotalTargets++
		stats.TotalTargetAmount = stats.TotalTargetAmount.Add(t.TargetAmount)
		stats.TotalAchievedAmount = stats.TotalAchievedAmount.Add(t.AchievedAmount)
		sumPct += t.AchievementPercentage
		if t.AchievementPercentage >= 100 {
			stats.AchievedTargets++
		}
		addTargetRow(byPeriod, string(t.TargetPeriod), t)
		addTargetRow(byProduct, string(t.ProductType), t)
		if t.AchievementPercentage > 0 {
			perf := crm.TargetPerformer{
				AgentID:               t.AgentID,
				TargetAmount:          t.TargetAmount,
				AchievedAmount:        t.AchievedAmount,
				AchievementPercentage: t.AchievementPercentage,
			}
			if u, err := s.getUserLocked(ctx, t.AgentID); err == nil && u != nil {
				perf.AgentName = u.Name
				perf.AgentEmail = u.Email
			}
			performers = append(performers, perf)
		}
	}
	if stats.TotalTargets > 0 {
		stats.AverageAchievement = sumPct / float64(stats.TotalTargets)
	}
	sort.Slice(performers, func(i, j int) bool {
		return performers[i].AchievementPercentage > performers[j].AchievementPercentage
	})
	if len(performers) > 5 {
		performers = performers[:5]
	}
	stats.TopPerformers = performers
	stats.PeriodBreakdown = targetRows(byPeriod)
	stats.ProductBreakdown = targetRows(byProduct)
	return stats, nil
}

func (s *Store) AgentPerformance(ctx context.Context, agentID crm.AgentID, period crm.TargetPeriod) (*crm.AgentPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + targetColumns + " FROM targets WHERE agent_id = ?"
	args := []any{agentID}
	if period != "" {
		query += " AND target_period = ?"
		args = append(args, period)
	}
	targets, err := s.queryTargets(ctx, query, args)
	if err != nil {
		return nil, err
	}

	perf := &crm.AgentPerformance{}
	sumPct := 0.0
	for i := range targets {
		t := &targets[i]
		perf.TotalTargets++
		switch t.Status {
		case crm.TargetActive:
			perf.ActiveTargets++
		case crm.TargetCompleted:
			perf.CompletedTargets++
		}
		perf.TotalTargetAmount = perf.TotalTargetAmount.Add(t.TargetAmount)
		perf.TotalAchievedAmount = perf.TotalAchievedAmount.Add(t.AchievedAmount)
		sumPct += t.AchievementPercentage
	}
	if perf.TotalTargets > 0 {
		perf.AverageAchievement = sumPct / float64(perf.TotalTargets)
	}
	return perf, nil
}

func (s *Store) queryTargets(ctx context.Context, query string, args []any) ([]crm.Target, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []crm.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, *t)
	}
	return targets, rows.Err()
}

func targetArgs(t *crm.Target) []any {
	return []any{
		t.ID, t.AgentID, t.TargetPeriod, formatTime(t.StartDate), formatTime(t.EndDate),
		t.ProductType, t.TargetAmount.String(), t.AchievedAmount.String(),
		t.TargetPolicies, t.AchievedPolicies, t.Status, t.AchievementPercentage,
		marshalJSON(t.Bonus), t.Notes, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	}
}

func scanTarget(row rowScanner) (*crm.Target, error) {
	var (
		t                      crm.Target
		startDate, endDate     string
		targetAmt, achievedAmt string
		bonus                  sql.NullString
		createdAt, updatedAt   string
	)
	err := row.Scan(
		&t.ID, &t.AgentID, &t.TargetPeriod, &startDate, &endDate, &t.ProductType,
		&targetAmt, &achievedAmt, &t.TargetPolicies, &t.AchievedPolicies,
		&t.Status, &t.AchievementPercentage, &bonus, &t.Notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.StartDate = parseTime(startDate)
	t.EndDate = parseTime(endDate)
	t.TargetAmount = parseDecimal(targetAmt)
	t.AchievedAmount = parseDecimal(achievedAmt)
	unmarshalJSON(bonus, &t.Bonus)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

func addTargetRow(m map[string]*crm.TargetBreakdownRow, key string, t *crm.Target) {
	row, ok := m[key]
	if !ok {
		row = &crm.TargetBreakdownRow{Key: key}
		m[key] = row
	}
	row.Count++
	row.TargetAmount = row.TargetAmount.Add(t.TargetAmount)
	row.AchievedAmount = row.AchievedAmount.Add(t.AchievedAmount)
}

func targetRows(m map[string]*crm.TargetBreakdownRow) []crm.TargetBreakdownRow {
	out := make([]crm.TargetBreakdownRow, 0, len(m))
	for _, row := range m {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
