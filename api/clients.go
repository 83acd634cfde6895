package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/insurance-crm/crm"
)

// ListClients returns a filtered page of clients.
// GET /api/clients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := crm.ClientFilter{
		Search:        q.Get("search"),
		Status:        crm.ClientStatus(q.Get("status")),
		ClientType:    crm.ClientType(q.Get("clientType")),
		Priority:      crm.Priority(q.Get("priority")),
		AssignedAgent: crm.AgentID(q.Get("assignedAgent")),
		Page:          pageFromQuery(r),
	}

	clients, total, err := h.svc.Clients.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toClientDTOs(clients)
	writeList(w, dtos, len(dtos), total, f.Page)
}

// CreateClient creates a client.
// POST /api/clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := req.toClient()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := h.svc.Clients.Create(r.Context(), c)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Client created successfully", toClientDTO(created))
}

// GetClient returns a single client.
// GET /api/clients/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := crm.ClientID(chi.URLParam(r, "id"))
	c, err := h.svc.Clients.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, toClientDTO(c))
}

// UpdateClient updates a client. Rollup fields in the body are ignored.
// PUT /api/clients/{id}
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := req.toClient()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	c.ID = crm.ClientID(chi.URLParam(r, "id"))

	updated, err := h.svc.Clients.Update(r.Context(), c)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Client updated successfully", toClientDTO(updated))
}

// DeleteClient removes a client without active policies.
// DELETE /api/clients/{id}
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := crm.ClientID(chi.URLParam(r, "id"))
	if err := h.svc.Clients.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Client deleted successfully", nil)
}

// GetClientPolicies returns every policy belonging to a client.
// GET /api/clients/{id}/policies
func (h *Handler) GetClientPolicies(w http.ResponseWriter, r *http.Request) {
	id := crm.ClientID(chi.URLParam(r, "id"))
	policies, err := h.svc.Clients.Policies(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := toPolicyDTOs(policies, timeNow())
	writeList(w, dtos, len(dtos), len(dtos), crm.PageRequest{Limit: -1})
}

// GetClientStats returns the client overview aggregates.
// GET /api/clients/stats/overview
func (h *Handler) GetClientStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Clients.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}
