package api

import (
	"net/http"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/service"
)

// GetPolicyReport returns policies in a creation-date window with totals.
// GET /api/reports/policies
func (h *Handler) GetPolicyReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := crm.PolicyFilter{
		PolicyType:  crm.PolicyType(q.Get("policyType")),
		Company:     crm.Company(q.Get("company")),
		Status:      crm.PolicyStatus(q.Get("status")),
		CreatedFrom: queryDate(r, "startDate"),
		CreatedTo:   queryDate(r, "endDate"),
	}

	report, err := h.svc.Reports.Policies(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, struct {
		Summary  service.PolicyReportSummary `json:"summary"`
		Policies []PolicyDTO                 `json:"policies"`
	}{report.Summary, toPolicyDTOs(report.Policies, timeNow())})
}

// GetClaimReport returns claims in a claim-date window with totals.
// GET /api/reports/claims
func (h *Handler) GetClaimReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := crm.ClaimFilter{
		Status:    crm.ClaimStatus(q.Get("status")),
		ClaimType: crm.ClaimType(q.Get("claimType")),
		ClaimFrom: queryDate(r, "startDate"),
		ClaimTo:   queryDate(r, "endDate"),
	}

	report, err := h.svc.Reports.Claims(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, struct {
		Summary service.ClaimReportSummary `json:"summary"`
		Claims  []ClaimDTO                 `json:"claims"`
	}{report.Summary, toClaimDTOs(report.Claims, timeNow())})
}

// GetRenewalReport returns active policies renewing within ?days
// (default 30).
// GET /api/reports/renewals
func (h *Handler) GetRenewalReport(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)

	report, err := h.svc.Reports.Renewals(r.Context(), days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, struct {
		Summary  service.RenewalReportSummary `json:"summary"`
		Policies []PolicyDTO                  `json:"policies"`
	}{report.Summary, toPolicyDTOs(report.Policies, timeNow())})
}

// GetTargetReport returns targets starting in a date window with
// achievement totals.
// GET /api/reports/targets
func (h *Handler) GetTargetReport(w http.ResponseWriter, r *http.Request) {
	period := crm.TargetPeriod(r.URL.Query().Get("period"))
	from := queryDate(r, "startDate")
	to := queryDate(r, "endDate")

	report, err := h.svc.Reports.Targets(r.Context(), period, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, struct {
		Summary service.TargetReportSummary `json:"summary"`
		Targets []TargetDTO                 `json:"targets"`
	}{report.Summary, toTargetDTOs(report.Targets, timeNow())})
}

// GetDashboard returns the landing-page aggregate.
// GET /api/reports/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.Reports.Dashboard(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, dashboard)
}
