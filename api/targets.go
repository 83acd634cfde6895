package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/insurance-crm/crm"
)

// ListTargets returns a filtered page of sales targets.
// GET /api/targets
func (h *Handler) ListTargets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := crm.TargetFilter{
		AgentID:      crm.AgentID(q.Get("agentId")),
		TargetPeriod: crm.TargetPeriod(q.Get("targetPeriod")),
		ProductType:  crm.ProductType(q.Get("productType")),
		Status:       crm.TargetStatus(q.Get("status")),
		Page:         pageFromQuery(r),
	}

	targets, total, err := h.svc.Targets.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toTargetDTOs(targets, timeNow())
	writeList(w, dtos, len(dtos), total, f.Page)
}

// CreateTarget creates a sales target for an agent.
// POST /api/targets
func (h *Handler) CreateTarget(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := req.toTarget()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := h.svc.Targets.Create(r.Context(), t)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Target created successfully", toTargetDTO(created, timeNow()))
}

// GetTarget returns a single target.
// GET /api/targets/{id}
func (h *Handler) GetTarget(w http.ResponseWriter, r *http.Request) {
	id := crm.TargetID(chi.URLParam(r, "id"))
	t, err := h.svc.Targets.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, toTargetDTO(t, timeNow()))
}

// UpdateTarget updates a target. Achievement and status are re-derived
// from the submitted amounts.
// PUT /api/targets/{id}
func (h *Handler) UpdateTarget(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := req.toTarget()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	t.ID = crm.TargetID(chi.URLParam(r, "id"))

	updated, err := h.svc.Targets.Update(r.Context(), t)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Target updated successfully", toTargetDTO(updated, timeNow()))
}

// DeleteTarget removes a target.
// DELETE /api/targets/{id}
func (h *Handler) DeleteTarget(w http.ResponseWriter, r *http.Request) {
	id := crm.TargetID(chi.URLParam(r, "id"))
	if err := h.svc.Targets.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Target deleted successfully", nil)
}

// GetTargetStats returns the target overview aggregates.
// GET /api/targets/stats/overview
func (h *Handler) GetTargetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Targets.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

// GetAgentActiveTargets returns an agent's active targets, soonest
// deadline first.
// GET /api/targets/agent/{agentID}/active
func (h *Handler) GetAgentActiveTargets(w http.ResponseWriter, r *http.Request) {
	agentID := crm.AgentID(chi.URLParam(r, "agentID"))
	targets, err := h.svc.Targets.ActiveForAgent(r.Context(), agentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toTargetDTOs(targets, timeNow())
	writeList(w, dtos, len(dtos), len(dtos), crm.PageRequest{Limit: -1})
}

// GetAgentPerformance returns an agent's aggregate target performance,
// optionally limited to one period.
// GET /api/targets/agent/{agentID}/performance
func (h *Handler) GetAgentPerformance(w http.ResponseWriter, r *http.Request) {
	agentID := crm.AgentID(chi.URLParam(r, "agentID"))
	period := crm.TargetPeriod(r.URL.Query().Get("period"))

	perf, err := h.svc.Targets.Performance(r.Context(), agentID, period)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, perf)
}
