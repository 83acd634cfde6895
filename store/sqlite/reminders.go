package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/insurance-crm/crm"
)

const reminderColumns = `id, client_id, policy_id, reminder_type, title, description,
	due_date, priority, status, frequency, assigned_agent,
	completed_at, completed_by, snooze_until, amount, notes, created_at, updated_at`

var reminderSortColumns = map[string]string{
	"createdAt": "created_at",
	"dueDate":   "due_date",
}

func (s *Store) CreateReminder(ctx context.Context, r *crm.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = crm.ReminderID(uuid.NewString())
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reminderArgs(r)...)
	return err
}

func (s *Store) GetReminder(ctx context.Context, id crm.ReminderID) (*crm.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE id = ?", id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ListReminders(ctx context.Context, f crm.ReminderFilter) ([]crm.Reminder, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conds []string
	var args []any
	if f.ReminderType != "" {
		conds = append(conds, "reminder_type = ?")
		args = append(args, f.ReminderType)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, f.Priority)
	}
	if f.ClientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.AssignedAgent != "" {
		conds = append(conds, "assigned_agent = ?")
		args = append(args, f.AssignedAgent)
	}
	if f.DueFrom != nil {
		conds = append(conds, "due_date >= ?")
		args = append(args, formatTime(*f.DueFrom))
	}
	if f.DueTo != nil {
		conds = append(conds, "due_date <= ?")
		args = append(args, formatTime(*f.DueTo))
	}

	where := whereClause(conds)
	total, err := s.countRows("SELECT COUNT(*) FROM reminders"+where, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + reminderColumns + " FROM reminders" + where +
		orderClause(f.Page.SortBy, "dueDate", reminderSortColumns)
	limit, limitArgs := limitClause(f.Page)
	rows, err := s.db.QueryContext(ctx, query+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reminders []crm.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, 0, err
		}
		reminders = append(reminders, *r)
	}
	return reminders, total, rows.Err()
}

func (s *Store) UpdateReminder(ctx context.Context, r *crm.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET
			client_id = ?, policy_id = ?, reminder_type = ?, title = ?, description = ?,
			due_date = ?, priority = ?, status = ?, frequency = ?, assigned_agent = ?,
			completed_at = ?, completed_by = ?, snooze_until = ?, amount = ?, notes = ?,
			updated_at = ?
		WHERE id = ?`,
		r.ClientID, r.PolicyID, r.ReminderType, r.Title, r.Description,
		formatTime(r.DueDate), r.Priority, r.Status, r.Frequency, r.AssignedAgent,
		nullTime(r.CompletedAt), r.CompletedBy, nullTime(r.SnoozeUntil),
		nullDecimal(r.Amount), r.Notes, formatTime(r.UpdatedAt), r.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return crm.ErrReminderNotFound
	}
	return nil
}

func (s *Store) DeleteReminder(ctx context.Context, id crm.ReminderID) (*crm.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE id = ?", id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reminders WHERE id = ?", id); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ReminderStats(ctx context.Context, now time.Time) (*crm.ReminderStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT reminder_type, status, due_date FROM reminders")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dayStart := crm.StartOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats := &crm.ReminderStats{}
	byType := map[string]int{}
	byStatus := map[string]int{}
	for rows.Next() {
		var rtype, status, due string
		if err := rows.Scan(&rtype, &status, &due); err != nil {
			return nil, err
		}
		byStatus[status]++
		if crm.ReminderStatus(status) != crm.ReminderPending {
			continue
		}
		byType[rtype]++
		dueAt := parseTime(due)
		if !dueAt.Before(dayStart) && dueAt.Before(dayEnd) {
			stats.DueToday++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.TypeBreakdown = statusCounts(byType)
	stats.StatusBreakdown = statusCounts(byStatus)
	return stats, nil
}

func reminderArgs(r *crm.Reminder) []any {
	return []any{
		r.ID, r.ClientID, r.PolicyID, r.ReminderType, r.Title, r.Description,
		formatTime(r.DueDate), r.Priority, r.Status, r.Frequency, r.AssignedAgent,
		nullTime(r.CompletedAt), r.CompletedBy, nullTime(r.SnoozeUntil),
		nullDecimal(r.Amount), r.Notes, formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	}
}

func scanReminder(row rowScanner) (*crm.Reminder, error) {
	var (
		r                           crm.Reminder
		dueDate                     string
		completedAt, snooze, amount sql.NullString
		createdAt, updatedAt        string
	)
	err := row.Scan(
		&r.ID, &r.ClientID, &r.PolicyID, &r.ReminderType, &r.Title, &r.Description,
		&dueDate, &r.Priority, &r.Status, &r.Frequency, &r.AssignedAgent,
		&completedAt, &r.CompletedBy, &snooze, &amount, &r.Notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.DueDate = parseTime(dueDate)
	r.CompletedAt = timePtr(completedAt)
	r.SnoozeUntil = timePtr(snooze)
	r.Amount = decimalPtr(amount)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return &r, nil
}
