package service

import (
	"context"
	"time"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/crm/reminders"
)

// Reminders owns reminder CRUD and the complete/snooze transitions.
type Reminders struct {
	store crm.Store
	now   func() time.Time
}

func (s *Reminders) Create(ctx context.Context, r *crm.Reminder) (*crm.Reminder, error) {
	client, err := s.store.GetClient(ctx, r.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, crm.ErrClientNotFound
	}

	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateReminder(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Reminders) Get(ctx context.Context, id crm.ReminderID) (*crm.Reminder, error) {
	r, err := s.store.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, crm.ErrReminderNotFound
	}
	return r, nil
}

func (s *Reminders) List(ctx context.Context, f crm.ReminderFilter) ([]crm.Reminder, int, error) {
	return s.store.ListReminders(ctx, f)
}

func (s *Reminders) Update(ctx context.Context, r *crm.Reminder) (*crm.Reminder, error) {
	existing, err := s.store.GetReminder(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, crm.ErrReminderNotFound
	}

	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateReminder(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Complete marks the reminder done, recording the closing agent.
func (s *Reminders) Complete(ctx context.Context, id crm.ReminderID, agentID crm.AgentID) (*crm.Reminder, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reminders.Complete(r, agentID, s.now())
	if err := s.store.UpdateReminder(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Snooze pushes the reminder out by days (default one).
func (s *Reminders) Snooze(ctx context.Context, id crm.ReminderID, days int) (*crm.Reminder, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reminders.Snooze(r, days, s.now())
	if err := s.store.UpdateReminder(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Reminders) Delete(ctx context.Context, id crm.ReminderID) error {
	deleted, err := s.store.DeleteReminder(ctx, id)
	if err != nil {
		return err
	}
	if deleted == nil {
		return crm.ErrReminderNotFound
	}
	return nil
}

// Upcoming returns pending reminders due within the next `days` days.
func (s *Reminders) Upcoming(ctx context.Context, days int) ([]crm.Reminder, error) {
	if days < 1 {
		days = 7
	}
	f := reminders.UpcomingFilter(s.now(), days)
	f.Page.Limit = -1
	out, _, err := s.store.ListReminders(ctx, f)
	return out, err
}

// Overdue returns pending reminders whose due date has passed.
func (s *Reminders) Overdue(ctx context.Context) ([]crm.Reminder, error) {
	f := reminders.OverdueFilter(s.now())
	f.Page.Limit = -1
	out, _, err := s.store.ListReminders(ctx, f)
	return out, err
}

// Stats returns pending-reminder breakdowns plus today/upcoming/overdue
// counts for the notification badge.
func (s *Reminders) Stats(ctx context.Context) (*crm.ReminderStats, int, int, error) {
	stats, err := s.store.ReminderStats(ctx, s.now())
	if err != nil {
		return nil, 0, 0, err
	}
	upcoming, err := s.Upcoming(ctx, 7)
	if err != nil {
		return nil, 0, 0, err
	}
	overdue, err := s.Overdue(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	return stats, len(upcoming), len(overdue), nil
}
