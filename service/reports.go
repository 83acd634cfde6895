package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/insurance-crm/crm"
)

// Reports builds the JSON report payloads. Each report is an unlimited
// filtered listing plus a summary computed over the same rows, so the
// summary always agrees with the data it accompanies.
type Reports struct {
	store crm.Store
	now   func() time.Time
}

// PolicyReportSummary totals the policies a report selected.
type PolicyReportSummary struct {
	TotalPolicies   int             `json:"totalPolicies"`
	ActivePolicies  int             `json:"activePolicies"`
	TotalPremium    decimal.Decimal `json:"totalPremium"`
	TotalSumAssured decimal.Decimal `json:"totalSumAssured"`
}

type PolicyReport struct {
	Summary  PolicyReportSummary
	Policies []crm.Policy
}

// ClaimReportSummary totals the claims a report selected. Approved amount
// counts Approved and Settled claims, falling back to the claimed amount
// when no approved figure was recorded.
type ClaimReportSummary struct {
	TotalClaims         int             `json:"totalClaims"`
	TotalClaimAmount    decimal.Decimal `json:"totalClaimAmount"`
	TotalApprovedAmount decimal.Decimal `json:"totalApprovedAmount"`
	ApprovedClaims      int             `json:"approvedClaims"`
	RejectedClaims      int             `json:"rejectedClaims"`
	PendingClaims       int             `json:"pendingClaims"`
	SettledClaims       int             `json:"settledClaims"`
}

type ClaimReport struct {
	Summary ClaimReportSummary
	Claims  []crm.Claim
}

type RenewalReportSummary struct {
	TotalRenewals int             `json:"totalRenewals"`
	TotalPremium  decimal.Decimal `json:"totalPremium"`
	DueThisWeek   int             `json:"dueThisWeek"`
}

type RenewalReport struct {
	Summary  RenewalReportSummary
	Policies []crm.Policy
}

type TargetReportSummary struct {
	TotalTargets        int             `json:"totalTargets"`
	AchievedTargets     int             `json:"achievedTargets"`
	TotalTargetAmount   decimal.Decimal `json:"totalTargetAmount"`
	TotalAchievedAmount decimal.Decimal `json:"totalAchievedAmount"`
	AverageAchievement  float64         `json:"averageAchievement"`
}

type TargetReport struct {
	Summary TargetReportSummary
	Targets []crm.Target
}

// MonthlyActivity counts records created since the first of the current
// month.
type MonthlyActivity struct {
	NewClients  int `json:"newClients"`
	NewPolicies int `json:"newPolicies"`
	NewClaims   int `json:"newClaims"`
}

// Dashboard is the landing-page aggregate: headline counts plus the
// per-entity stat blocks.
type Dashboard struct {
	Clients           *crm.ClientStats   `json:"clients"`
	Policies          *crm.PolicyStats   `json:"policies"`
	Claims            *crm.ClaimStats    `json:"claims"`
	Reminders         *crm.ReminderStats `json:"reminders"`
	Targets           *crm.TargetStats   `json:"targets"`
	MonthlyActivity   MonthlyActivity    `json:"monthlyActivity"`
	UpcomingReminders int                `json:"upcomingReminders"`
}

// Policies reports policies created in [from, to], optionally narrowed by
// type, company, and status.
func (s *Reports) Policies(ctx context.Context, f crm.PolicyFilter) (*PolicyReport, error) {
	f.Page = crm.PageRequest{Limit: -1, SortBy: "-createdAt"}
	rows, _, err := s.store.ListPolicies(ctx, f)
	if err != nil {
		return nil, err
	}

	r := &PolicyReport{Policies: rows}
	r.Summary.TotalPolicies = len(rows)
	for i := range rows {
		p := &rows[i]
		r.Summary.TotalPremium = r.Summary.TotalPremium.Add(p.PremiumAmount)
		r.Summary.TotalSumAssured = r.Summary.TotalSumAssured.Add(p.SumAssured)
		if p.Status == crm.PolicyActive {
			r.Summary.ActivePolicies++
		}
	}
	return r, nil
}

// Claims reports claims filed in [from, to], optionally narrowed by status
// and type.
func (s *Reports) Claims(ctx context.Context, f crm.ClaimFilter) (*ClaimReport, error) {
	f.Page = crm.PageRequest{Limit: -1, SortBy: "-claimDate"}
	rows, _, err := s.store.ListClaims(ctx, f)
	if err != nil {
		return nil, err
	}

	r := &ClaimReport{Claims: rows}
	r.Summary.TotalClaims = len(rows)
	for i := range rows {
		c := &rows[i]
		r.Summary.TotalClaimAmount = r.Summary.TotalClaimAmount.Add(c.ClaimAmount)
		switch c.Status {
		case crm.ClaimApproved:
			r.Summary.ApprovedClaims++
		case crm.ClaimRejected:
			r.Summary.RejectedClaims++
		case crm.ClaimPending:
			r.Summary.PendingClaims++
		case crm.ClaimSettled:
			r.Summary.SettledClaims++
		}
		if c.Status == crm.ClaimApproved || c.Status == crm.ClaimSettled {
			amount := c.ClaimAmount
			if c.ApprovedAmount != nil {
				amount = *c.ApprovedAmount
			}
			r.Summary.TotalApprovedAmount = r.Summary.TotalApprovedAmount.Add(amount)
		}
	}
	return r, nil
}

// Renewals reports active policies due for renewal within the next `days`
// days (default 30), flagging how many fall inside the coming week.
func (s *Reports) Renewals(ctx context.Context, days int) (*RenewalReport, error) {
	if days < 1 {
		days = 30
	}
	now := s.now()
	rows, err := s.store.ListUpcomingRenewals(ctx, now, days)
	if err != nil {
		return nil, err
	}

	week := now.AddDate(0, 0, 7)
	r := &RenewalReport{Policies: rows}
	r.Summary.TotalRenewals = len(rows)
	for i := range rows {
		p := &rows[i]
		r.Summary.TotalPremium = r.Summary.TotalPremium.Add(p.PremiumAmount)
		if p.RenewalDate != nil && !p.RenewalDate.After(week) {
			r.Summary.DueThisWeek++
		}
	}
	return r, nil
}

// Targets reports targets, optionally narrowed by period, and when from/to
// are given only those whose window starts inside [from, to].
func (s *Reports) Targets(ctx context.Context, period crm.TargetPeriod, from, to *time.Time) (*TargetReport, error) {
	f := crm.TargetFilter{
		TargetPeriod: period,
		Page:         crm.PageRequest{Limit: -1, SortBy: "-startDate"},
	}
	rows, _, err := s.store.ListTargets(ctx, f)
	if err != nil {
		return nil, err
	}

	r := &TargetReport{}
	for i := range rows {
		t := rows[i]
		if from != nil && t.StartDate.Before(*from) {
			continue
		}
		if to != nil && t.StartDate.After(*to) {
			continue
		}
		r.Targets = append(r.Targets, t)
		r.Summary.TotalTargetAmount = r.Summary.TotalTargetAmount.Add(t.TargetAmount)
		r.Summary.TotalAchievedAmount = r.Summary.TotalAchievedAmount.Add(t.AchievedAmount)
		r.Summary.AverageAchievement += t.AchievementPercentage
		if t.AchievementPercentage >= 100 {
			r.Summary.AchievedTargets++
		}
	}
	r.Summary.TotalTargets = len(r.Targets)
	if r.Summary.TotalTargets > 0 {
		r.Summary.AverageAchievement /= float64(r.Summary.TotalTargets)
	} else {
		r.Summary.AverageAchievement = 0
	}
	return r, nil
}

// Dashboard composes the per-entity stat blocks with this month's intake
// and the pending reminders due in the coming week.
func (s *Reports) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()

	d := &Dashboard{}
	var err error
	if d.Clients, err = s.store.ClientStats(ctx); err != nil {
		return nil, err
	}
	if d.Policies, err = s.store.PolicyStats(ctx); err != nil {
		return nil, err
	}
	if d.Claims, err = s.store.ClaimStats(ctx); err != nil {
		return nil, err
	}
	if d.Reminders, err = s.store.ReminderStats(ctx, now); err != nil {
		return nil, err
	}
	if d.Targets, err = s.store.TargetStats(ctx); err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if d.MonthlyActivity, err = s.monthlyActivity(ctx, monthStart); err != nil {
		return nil, err
	}

	weekAhead := now.AddDate(0, 0, 7)
	_, upcoming, err := s.store.ListReminders(ctx, crm.ReminderFilter{
		Status:  crm.ReminderPending,
		DueFrom: &now,
		DueTo:   &weekAhead,
		Page:    crm.PageRequest{Limit: -1},
	})
	if err != nil {
		return nil, err
	}
	d.UpcomingReminders = upcoming
	return d, nil
}

func (s *Reports) monthlyActivity(ctx context.Context, since time.Time) (MonthlyActivity, error) {
	var m MonthlyActivity

	clients, _, err := s.store.ListClients(ctx, crm.ClientFilter{Page: crm.PageRequest{Limit: -1}})
	if err != nil {
		return m, err
	}
	for i := range clients {
		if !clients[i].CreatedAt.Before(since) {
			m.NewClients++
		}
	}

	_, policies, err := s.store.ListPolicies(ctx, crm.PolicyFilter{
		CreatedFrom: &since,
		Page:        crm.PageRequest{Limit: -1},
	})
	if err != nil {
		return m, err
	}
	m.NewPolicies = policies

	claims, _, err := s.store.ListClaims(ctx, crm.ClaimFilter{Page: crm.PageRequest{Limit: -1}})
	if err != nil {
		return m, err
	}
	for i := range claims {
		if !claims[i].CreatedAt.Before(since) {
			m.NewClaims++
		}
	}
	return m, nil
}
