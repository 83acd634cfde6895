// Package reminders holds the reminder workflow transitions: completion,
// snoozing, and the due-date window filters used by the listing endpoints.
package reminders

import (
	"time"

	"github.com/ledgerline/insurance-crm/crm"
)

// Complete marks the reminder done and records who closed it.
func Complete(r *crm.Reminder, agentID crm.AgentID, now time.Time) {
	r.Status = crm.ReminderCompleted
	r.CompletedAt = &now
	r.CompletedBy = agentID
}

// Snooze pushes the reminder out by the given number of days. Days below
// one snooze for a single day, matching the API default.
func Snooze(r *crm.Reminder, days int, now time.Time) {
	if days < 1 {
		days = 1
	}
	until := now.AddDate(0, 0, days)
	r.Status = crm.ReminderSnoozed
	r.SnoozeUntil = &until
}

// UpcomingFilter selects pending reminders due within [now, now+days].
func UpcomingFilter(now time.Time, days int) crm.ReminderFilter {
	to := now.AddDate(0, 0, days)
	return crm.ReminderFilter{
		Status:  crm.ReminderPending,
		DueFrom: &now,
		DueTo:   &to,
		Page:    crm.PageRequest{SortBy: "dueDate"},
	}
}

// OverdueFilter selects pending reminders whose due date has passed.
func OverdueFilter(now time.Time) crm.ReminderFilter {
	return crm.ReminderFilter{
		Status: crm.ReminderPending,
		DueTo:  &now,
		Page:   crm.PageRequest{SortBy: "dueDate"},
	}
}
