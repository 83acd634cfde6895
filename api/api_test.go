package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/insurance-crm/api"
	"github.com/ledgerline/insurance-crm/service"
	"github.com/ledgerline/insurance-crm/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.New()
	svc := service.New(store, service.NewDefaultActorProvider(store))
	srv := httptest.NewServer(api.NewRouter(api.NewHandler(svc), ""))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func createClient(t *testing.T, srv *httptest.Server, name string) string {
	t.Helper()
	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/clients", map[string]any{
		"name":  name,
		"phone": "+91 90000 00001",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := env["data"].(map[string]any)
	return data["id"].(string)
}

func createPolicy(t *testing.T, srv *httptest.Server, clientID, number string, premium int) string {
	t.Helper()
	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/policies", map[string]any{
		"client":        clientID,
		"policyNumber":  number,
		"policyType":    "Life Insurance",
		"company":       "LIC",
		"planName":      "Jeevan Anand",
		"premiumAmount": fmt.Sprintf("%d", premium),
		"sumAssured":    fmt.Sprintf("%d", premium*20),
		"startDate":     "2026-01-01",
		"maturityDate":  "2046-01-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", env)
	return env["data"].(map[string]any)["id"].(string)
}

// =============================================================================
// ENVELOPE AND ERROR MAPPING
// =============================================================================

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, env["success"])
}

func TestGetClient_NotFoundMapsTo404(t *testing.T) {
	srv := newTestServer(t)
	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/clients/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, env["success"])
	assert.NotEmpty(t, env["message"])
}

func TestCreateClient_ValidationMapsTo400(t *testing.T) {
	srv := newTestServer(t)
	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/clients", map[string]any{
		"name": "Missing Phone",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, env["success"])
}

func TestCreatePolicy_DuplicateNumberMapsTo409(t *testing.T) {
	srv := newTestServer(t)
	id := createClient(t, srv, "Asha Patel")
	createPolicy(t, srv, id, "POL-001", 1000)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/policies", map[string]any{
		"client":        id,
		"policyNumber":  "POL-001",
		"policyType":    "Life Insurance",
		"company":       "LIC",
		"planName":      "dup",
		"premiumAmount": "500",
		"startDate":     "2026-01-01",
		"maturityDate":  "2046-01-01",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestListClients_PagingFooter(t *testing.T) {
	srv := newTestServer(t)
	for i := 0; i < 3; i++ {
		createClient(t, srv, fmt.Sprintf("Client %d", i))
	}

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/clients?page=1&limit=2", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), env["count"])
	assert.Equal(t, float64(3), env["total"])
	assert.Equal(t, float64(2), env["totalPages"])
	assert.Equal(t, float64(1), env["currentPage"])
}

// =============================================================================
// WRITE PIPELINE THROUGH THE API
// =============================================================================

func TestPolicyCreate_RollupsVisibleOnClient(t *testing.T) {
	srv := newTestServer(t)
	id := createClient(t, srv, "Asha Patel")
	createPolicy(t, srv, id, "POL-001", 12000)

	_, env := doJSON(t, http.MethodGet, srv.URL+"/api/clients/"+id, nil)
	data := env["data"].(map[string]any)
	assert.Equal(t, float64(1), data["totalPolicies"])
	assert.Equal(t, "12000", data["totalPremium"])
	assert.Equal(t, "Active", data["status"], "prospect promoted on first policy")
}

func TestClaimLifecycleThroughAPI(t *testing.T) {
	srv := newTestServer(t)
	clientID := createClient(t, srv, "Asha Patel")
	policyID := createPolicy(t, srv, clientID, "POL-001", 1000)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/claims", map[string]any{
		"policy":       policyID,
		"claimType":    "Medical",
		"claimAmount":  "50000",
		"incidentDate": "2026-06-01",
		"description":  "hospitalization",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", env)
	claim := env["data"].(map[string]any)
	claimID := claim["id"].(string)
	assert.Equal(t, "CLM-000001", claim["claimNumber"])
	assert.Equal(t, clientID, claim["client"], "client backfilled from the policy")

	resp, env = doJSON(t, http.MethodPatch, srv.URL+"/api/claims/"+claimID+"/status", map[string]any{
		"status":    "Approved",
		"note":      "all documents verified",
		"updatedBy": "agent-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := env["data"].(map[string]any)
	history := updated["statusHistory"].([]any)
	require.Len(t, history, 2)
	last := history[1].(map[string]any)
	assert.Equal(t, "Approved", last["status"])
	assert.Equal(t, "all documents verified", last["note"])
}

func TestReminderSnoozeAndComplete(t *testing.T) {
	srv := newTestServer(t)
	clientID := createClient(t, srv, "Asha Patel")

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/reminders", map[string]any{
		"client":       clientID,
		"reminderType": "Follow-up",
		"title":        "Quarterly review call",
		"dueDate":      "2026-09-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", env)
	reminderID := env["data"].(map[string]any)["id"].(string)

	resp, env = doJSON(t, http.MethodPatch, srv.URL+"/api/reminders/"+reminderID+"/snooze", map[string]any{"days": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Snoozed", env["data"].(map[string]any)["status"])

	resp, env = doJSON(t, http.MethodPatch, srv.URL+"/api/reminders/"+reminderID+"/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	done := env["data"].(map[string]any)
	assert.Equal(t, "Completed", done["status"])
	assert.NotEmpty(t, done["completedBy"], "attributed to the seeded profile user")
}

func TestProfile_SeededOnFirstAccess(t *testing.T) {
	srv := newTestServer(t)
	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/users/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := env["data"].(map[string]any)
	assert.Equal(t, "admin@insurance-crm.com", data["email"])
	assert.Equal(t, "Administrator", data["role"])
}

func TestDashboardShape(t *testing.T) {
	srv := newTestServer(t)
	clientID := createClient(t, srv, "Asha Patel")
	createPolicy(t, srv, clientID, "POL-001", 12000)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := env["data"].(map[string]any)

	clients := data["clients"].(map[string]any)
	assert.Equal(t, float64(1), clients["totalClients"])
	policies := data["policies"].(map[string]any)
	assert.Equal(t, float64(1), policies["totalPolicies"])
	assert.Contains(t, data, "monthlyActivity")
	assert.Contains(t, data, "upcomingReminders")
}
