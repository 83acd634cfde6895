package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/crm/reminders"
)

// ListReminders returns a filtered page of reminders.
// GET /api/reminders
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := crm.ReminderFilter{
		ReminderType:  crm.ReminderType(q.Get("reminderType")),
		Status:        crm.ReminderStatus(q.Get("status")),
		Priority:      crm.Priority(q.Get("priority")),
		ClientID:      crm.ClientID(q.Get("clientId")),
		AssignedAgent: crm.AgentID(q.Get("assignedAgent")),
		DueFrom:       queryDate(r, "dueFrom"),
		DueTo:         queryDate(r, "dueTo"),
		Page:          pageFromQuery(r),
	}

	// Query shortcuts for the notification views. These overlay the due
	// window and status; the remaining filters still apply.
	if v := q.Get("upcoming"); v != "" {
		uf := reminders.UpcomingFilter(timeNow(), atoiDefault(v, 7))
		f.Status, f.DueFrom, f.DueTo = uf.Status, uf.DueFrom, uf.DueTo
	} else if q.Get("overdue") == "true" {
		of := reminders.OverdueFilter(timeNow())
		f.Status, f.DueFrom, f.DueTo = of.Status, of.DueFrom, of.DueTo
	}

	list, total, err := h.svc.Reminders.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toReminderDTOs(list, timeNow())
	writeList(w, dtos, len(dtos), total, f.Page)
}

// CreateReminder creates a reminder for a client.
// POST /api/reminders
func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req ReminderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rem, err := req.toReminder()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := h.svc.Reminders.Create(r.Context(), rem)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Reminder created successfully", toReminderDTO(created, timeNow()))
}

// GetReminder returns a single reminder.
// GET /api/reminders/{id}
func (h *Handler) GetReminder(w http.ResponseWriter, r *http.Request) {
	id := crm.ReminderID(chi.URLParam(r, "id"))
	rem, err := h.svc.Reminders.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, toReminderDTO(rem, timeNow()))
}

// UpdateReminder updates a reminder.
// PUT /api/reminders/{id}
func (h *Handler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	var req ReminderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rem, err := req.toReminder()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rem.ID = crm.ReminderID(chi.URLParam(r, "id"))

	updated, err := h.svc.Reminders.Update(r.Context(), rem)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Reminder updated successfully", toReminderDTO(updated, timeNow()))
}

// CompleteReminder marks a reminder done, attributed to the current
// profile user.
// PATCH /api/reminders/{id}/complete
func (h *Handler) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	actor, err := h.svc.Profile.Get(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id := crm.ReminderID(chi.URLParam(r, "id"))
	updated, err := h.svc.Reminders.Complete(r.Context(), id, crm.AgentID(actor.ID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Reminder marked as completed", toReminderDTO(updated, timeNow()))
}

// SnoozeReminder pushes a reminder's due date forward by {days}.
// PATCH /api/reminders/{id}/snooze
func (h *Handler) SnoozeReminder(w http.ResponseWriter, r *http.Request) {
	var req SnoozeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := crm.ReminderID(chi.URLParam(r, "id"))
	updated, err := h.svc.Reminders.Snooze(r.Context(), id, req.Days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Reminder snoozed successfully", toReminderDTO(updated, timeNow()))
}

// DeleteReminder removes a reminder.
// DELETE /api/reminders/{id}
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	id := crm.ReminderID(chi.URLParam(r, "id"))
	if err := h.svc.Reminders.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Reminder deleted successfully", nil)
}

// GetUpcomingReminders returns pending reminders due within {days}.
// GET /api/reminders/upcoming/{days}
func (h *Handler) GetUpcomingReminders(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := chi.URLParam(r, "days"); v != "" {
		days = atoiDefault(v, 7)
	}
	list, err := h.svc.Reminders.Upcoming(r.Context(), days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toReminderDTOs(list, timeNow())
	writeList(w, dtos, len(dtos), len(dtos), crm.PageRequest{Limit: -1})
}

// GetOverdueReminders returns pending reminders already past due.
// GET /api/reminders/overdue/list
func (h *Handler) GetOverdueReminders(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Reminders.Overdue(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toReminderDTOs(list, timeNow())
	writeList(w, dtos, len(dtos), len(dtos), crm.PageRequest{Limit: -1})
}

// GetReminderStats returns the reminder overview aggregates plus the
// near-term workload counts.
// GET /api/reminders/stats/overview
func (h *Handler) GetReminderStats(w http.ResponseWriter, r *http.Request) {
	stats, upcoming, overdue, err := h.svc.Reminders.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, struct {
		*crm.ReminderStats
		UpcomingCount int `json:"upcomingCount"`
		OverdueCount  int `json:"overdueCount"`
	}{stats, upcoming, overdue})
}
