package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/insurance-crm/crm"
)

// ListClaims returns a filtered page of claims.
// GET /api/claims
func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := crm.ClaimFilter{
		Search:     q.Get("search"),
		Status:     crm.ClaimStatus(q.Get("status")),
		ClaimType:  crm.ClaimType(q.Get("claimType")),
		Priority:   crm.Priority(q.Get("priority")),
		ClientID:   crm.ClientID(q.Get("clientId")),
		PolicyID:   crm.PolicyID(q.Get("policyId")),
		AssignedTo: crm.AgentID(q.Get("assignedTo")),
		ClaimFrom:  queryDate(r, "claimFrom"),
		ClaimTo:    queryDate(r, "claimTo"),
		Page:       pageFromQuery(r),
	}

	claims, total, err := h.svc.Claims.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toClaimDTOs(claims, timeNow())
	writeList(w, dtos, len(dtos), total, f.Page)
}

// CreateClaim registers a claim against a policy. The claim number is
// assigned server-side.
// POST /api/claims
func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := req.toClaim()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := h.svc.Claims.Create(r.Context(), c)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Claim created successfully", toClaimDTO(created, timeNow()))
}

// GetClaim returns a single claim.
// GET /api/claims/{id}
func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	id := crm.ClaimID(chi.URLParam(r, "id"))
	c, err := h.svc.Claims.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, toClaimDTO(c, timeNow()))
}

// UpdateClaim updates a claim's editable fields. Status changes flow
// through the history tracker.
// PUT /api/claims/{id}
func (h *Handler) UpdateClaim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := req.toClaim()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	c.ID = crm.ClaimID(chi.URLParam(r, "id"))

	updated, err := h.svc.Claims.Update(r.Context(), c)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Claim updated successfully", toClaimDTO(updated, timeNow()))
}

// UpdateClaimStatus moves a claim through its lifecycle, recording a
// history entry.
// PATCH /api/claims/{id}/status
func (h *Handler) UpdateClaimStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateClaimStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := crm.ClaimID(chi.URLParam(r, "id"))

	updated, err := h.svc.Claims.UpdateStatus(r.Context(), id,
		crm.ClaimStatus(req.Status), req.Note, crm.AgentID(req.UpdatedBy))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Claim status updated successfully", toClaimDTO(updated, timeNow()))
}

// DeleteClaim removes a claim.
// DELETE /api/claims/{id}
func (h *Handler) DeleteClaim(w http.ResponseWriter, r *http.Request) {
	id := crm.ClaimID(chi.URLParam(r, "id"))
	if err := h.svc.Claims.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Claim deleted successfully", nil)
}

// GetClaimStats returns the claim overview aggregates.
// GET /api/claims/stats/overview
func (h *Handler) GetClaimStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Claims.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

// GetPendingClaims returns claims still in flight, oldest first.
// GET /api/claims/pending/list
func (h *Handler) GetPendingClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.svc.Claims.Pending(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toClaimDTOs(claims, timeNow())
	writeList(w, dtos, len(dtos), len(dtos), crm.PageRequest{Limit: -1})
}
