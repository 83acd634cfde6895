package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/insurance-crm/crm"
)

// ListPolicies returns a filtered page of policies.
// GET /api/policies
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := crm.PolicyFilter{
		Search:        q.Get("search"),
		PolicyType:    crm.PolicyType(q.Get("policyType")),
		Company:       crm.Company(q.Get("company")),
		Status:        crm.PolicyStatus(q.Get("status")),
		PaymentStatus: crm.PaymentStatus(q.Get("paymentStatus")),
		ClientID:      crm.ClientID(q.Get("clientId")),
		AssignedAgent: crm.AgentID(q.Get("assignedAgent")),
		CreatedFrom:   queryDate(r, "createdFrom"),
		CreatedTo:     queryDate(r, "createdTo"),
		Page:          pageFromQuery(r),
	}

	policies, total, err := h.svc.Policies.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toPolicyDTOs(policies, timeNow())
	writeList(w, dtos, len(dtos), total, f.Page)
}

// CreatePolicy creates a policy, updates the owning client's rollups, and
// credits any matching agent targets.
// POST /api/policies
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req PolicyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := req.toPolicy()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := h.svc.Policies.Create(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Policy created successfully", toPolicyDTO(created, timeNow()))
}

// GetPolicy returns a single policy.
// GET /api/policies/{id}
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id := crm.PolicyID(chi.URLParam(r, "id"))
	p, err := h.svc.Policies.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, toPolicyDTO(p, timeNow()))
}

// UpdatePolicy updates a policy and reconciles the affected clients.
// PUT /api/policies/{id}
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req PolicyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := req.toPolicy()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	p.ID = crm.PolicyID(chi.URLParam(r, "id"))

	updated, err := h.svc.Policies.Update(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Policy updated successfully", toPolicyDTO(updated, timeNow()))
}

// DeletePolicy removes a policy and reconciles the owning client.
// DELETE /api/policies/{id}
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	id := crm.PolicyID(chi.URLParam(r, "id"))
	if err := h.svc.Policies.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Policy deleted successfully", nil)
}

// GetPolicyStats returns the policy overview aggregates.
// GET /api/policies/stats/overview
func (h *Handler) GetPolicyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Policies.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

// GetUpcomingRenewals returns active policies renewing within ?days
// (default 30).
// GET /api/policies/renewal/upcoming
func (h *Handler) GetUpcomingRenewals(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	policies, err := h.svc.Policies.UpcomingRenewals(r.Context(), days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toPolicyDTOs(policies, timeNow())
	writeList(w, dtos, len(dtos), len(dtos), crm.PageRequest{Limit: -1})
}

// GetMaturedPolicies returns policies whose maturity date has passed.
// GET /api/policies/maturity/list
func (h *Handler) GetMaturedPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.svc.Policies.Matured(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toPolicyDTOs(policies, timeNow())
	writeList(w, dtos, len(dtos), len(dtos), crm.PageRequest{Limit: -1})
}
