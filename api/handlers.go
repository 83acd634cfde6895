/*
handlers.go - Handler context and shared HTTP plumbing

PURPOSE:
  Holds the Handler struct and the request/response helpers every endpoint
  uses: the JSON envelope writers, domain-error-to-status mapping, and
  query-string paging/filter parsing.

REQUEST FLOW:
  1. Parse HTTP request (body, URL params, query)
  2. Delegate to the service layer
  3. Map domain errors onto HTTP statuses
  4. Serialize the envelope

ERROR HANDLING:
  Errors are returned as {success: false, message} with:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Duplicate policy/claim number, delete conflicts
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public;
  the acting user comes from the service layer's actor provider.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - service/: The layer these handlers delegate to
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/service"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	svc *service.Services
}

// NewHandler creates a handler over the given services.
func NewHandler(svc *service.Services) *Handler {
	return &Handler{svc: svc}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeData wraps a single record.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeMessage wraps a record with a human-readable confirmation.
func writeMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// writeList wraps a page of records with the paging footer.
func writeList(w http.ResponseWriter, data any, count, total int, page crm.PageRequest) {
	resp := envelope{Success: true, Data: data, Count: &count, Total: &total}
	if !page.Unlimited() {
		page = page.Normalize()
		pages := (total + page.Limit - 1) / page.Limit
		resp.TotalPages = &pages
		resp.CurrentPage = &page.Page
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// writeDomainError maps a service error onto an HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case crm.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case crm.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case crm.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// =============================================================================
// QUERY HELPERS
// =============================================================================

// pageFromQuery reads page, limit, and sortBy. A '-' prefix on sortBy
// means descending.
func pageFromQuery(r *http.Request) crm.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return crm.PageRequest{Page: page, Limit: limit, SortBy: q.Get("sortBy")}
}

func queryInt(r *http.Request, key string, def int) int {
	return atoiDefault(r.URL.Query().Get(key), def)
}

func atoiDefault(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// timeNow is the handlers' clock, swapped in tests.
var timeNow = time.Now

// queryDate parses an optional date query parameter; invalid values are
// ignored rather than rejected, matching the listing endpoints' lenient
// filtering.
func queryDate(r *http.Request, key string) *time.Time {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	t, err := parseDate(v)
	if err != nil {
		return nil
	}
	return &t
}
