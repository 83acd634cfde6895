package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REMINDER - A dated follow-up task attached to a client
// =============================================================================

// Reminder tracks a follow-up for a client, optionally tied to a policy.
type Reminder struct {
	ID            ReminderID
	ClientID      ClientID
	PolicyID      PolicyID // optional
	ReminderType  ReminderType
	Title         string
	Description   string
	DueDate       time.Time
	Priority      Priority
	Status        ReminderStatus
	Frequency     Frequency
	AssignedAgent AgentID
	CompletedAt   *time.Time
	CompletedBy   AgentID
	SnoozeUntil   *time.Time
	Amount        *decimal.Decimal
	Notes         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDefaults fills zero-valued enum fields with their creation defaults.
func (r *Reminder) ApplyDefaults() {
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.Status == "" {
		r.Status = ReminderPending
	}
	if r.Frequency == "" {
		r.Frequency = FreqOneTime
	}
}

// Validate checks field constraints.
func (r *Reminder) Validate() error {
	if r.ClientID == "" {
		return &ValidationError{Field: "client", Reason: "client reference is required"}
	}
	if r.Title == "" {
		return &ValidationError{Field: "title", Reason: "title is required"}
	}
	if len(r.Title) > 200 {
		return &ValidationError{Field: "title", Reason: "title cannot exceed 200 characters"}
	}
	if len(r.Description) > 1000 {
		return &ValidationError{Field: "description", Reason: "description cannot exceed 1000 characters"}
	}
	if r.DueDate.IsZero() {
		return &ValidationError{Field: "dueDate", Reason: "due date is required"}
	}
	if r.Amount != nil && r.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "amount cannot be negative"}
	}
	switch r.ReminderType {
	case RemindRenewal, RemindPremiumDue, RemindMaturity, RemindBirthday,
		RemindAnniversary, RemindHealthCheckup, RemindFollowUp, RemindCustom:
	default:
		return &ValidationError{Field: "reminderType", Reason: "invalid reminder type"}
	}
	switch r.Status {
	case ReminderPending, ReminderCompleted, ReminderCancelled, ReminderSnoozed:
	default:
		return &ValidationError{Field: "status", Reason: "invalid reminder status"}
	}
	switch r.Frequency {
	case FreqOneTime, FreqDaily, FreqWeekly, FreqMonthly, FreqYearly:
	default:
		return &ValidationError{Field: "frequency", Reason: "invalid frequency"}
	}
	switch r.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return &ValidationError{Field: "priority", Reason: "invalid priority"}
	}
	return nil
}

// DaysUntilDue compares calendar days, so a reminder due later today is 0
// and one due tomorrow is 1 regardless of the time of day.
func (r *Reminder) DaysUntilDue(now time.Time) int {
	return CeilDays(StartOfDay(now), StartOfDay(r.DueDate))
}

// IsOverdue reports whether a pending reminder's due date has passed.
func (r *Reminder) IsOverdue(now time.Time) bool {
	return r.Status == ReminderPending && r.DueDate.Before(now)
}
