package api

import (
	"net/http"

	"github.com/ledgerline/insurance-crm/crm"
)

// GetProfile returns the current user's profile, seeding the default
// profile on first access.
// GET /api/users/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Profile.Get(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, toUserDTO(u))
}

// UpdateProfile applies the submitted fields to the current user's
// profile. Empty fields are left unchanged.
// PUT /api/users/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.svc.Profile.Update(r.Context(), crm.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Location: req.Location,
		Bio:      req.Bio,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated successfully", toUserDTO(updated))
}
