package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestStore returns a store with a deterministic clock that advances one
// minute per call, so created-at ordering is stable across records.
func newTestStore() *memory.Store {
	s := memory.New()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	s.SetClock(func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	})
	return s
}

func seedClient(t *testing.T, s *memory.Store, name string, status crm.ClientStatus) *crm.Client {
	t.Helper()
	c := &crm.Client{
		Name:       name,
		Phone:      "+91 90000 00001",
		ClientType: crm.ClientIndividual,
		Priority:   crm.PriorityMedium,
		Status:     status,
	}
	require.NoError(t, s.CreateClient(context.Background(), c))
	return c
}

func seedPolicy(t *testing.T, s *memory.Store, clientID crm.ClientID, number string, premium int64) *crm.Policy {
	t.Helper()
	p := &crm.Policy{
		ClientID:      clientID,
		PolicyNumber:  number,
		PolicyType:    crm.PolicyLife,
		Company:       crm.CompanyLIC,
		PlanName:      "Plan " + number,
		PremiumAmount: decimal.NewFromInt(premium),
		SumAssured:    decimal.NewFromInt(premium * 10),
		Status:        crm.PolicyActive,
		PaymentStatus: crm.PaymentPending,
	}
	require.NoError(t, s.CreatePolicy(context.Background(), p))
	return p
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestClients_CRUDRoundTrip(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	c := seedClient(t, s, "Asha Patel", crm.ClientProspect)
	require.NotEmpty(t, c.ID)
	require.False(t, c.CreatedAt.IsZero())

	got, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Asha Patel", got.Name)

	got.Name = "Asha Mehta"
	require.NoError(t, s.UpdateClient(ctx, got))

	again, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Mehta", again.Name)
	assert.True(t, again.UpdatedAt.After(again.CreatedAt))

	deleted, err := s.DeleteClient(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	missing, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, missing, "missing records read back as nil, nil")
}

func TestClients_UpdateMissingReturnsSentinel(t *testing.T) {
	s := newTestStore()
	err := s.UpdateClient(context.Background(), &crm.Client{ID: "ghost", Name: "x", Phone: "y"})
	assert.True(t, errors.Is(err, crm.ErrClientNotFound))
}

func TestClients_FilterAndSearch(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	seedClient(t, s, "Asha Patel", crm.ClientActive)
	seedClient(t, s, "Vikram Rao", crm.ClientActive)
	seedClient(t, s, "Meera Iyer", crm.ClientProspect)

	active, total, err := s.ListClients(ctx, crm.ClientFilter{Status: crm.ClientActive})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, active, 2)

	// Search is case-insensitive over name, email, and phone.
	found, _, err := s.ListClients(ctx, crm.ClientFilter{Search: "vikram"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Vikram Rao", found[0].Name)
}

func TestClients_PaginationAndSort(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	for _, name := range []string{"Charlie", "Alice", "Bob"} {
		seedClient(t, s, name, crm.ClientActive)
	}

	// Default sort is newest first.
	newest, total, err := s.ListClients(ctx, crm.ClientFilter{Page: crm.PageRequest{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, newest, 2)
	assert.Equal(t, "Bob", newest[0].Name)

	second, _, err := s.ListClients(ctx, crm.ClientFilter{Page: crm.PageRequest{Page: 2, Limit: 2}})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Charlie", second[0].Name)

	// Explicit ascending name sort.
	byName, _, err := s.ListClients(ctx, crm.ClientFilter{Page: crm.PageRequest{Limit: -1, SortBy: "name"}})
	require.NoError(t, err)
	require.Len(t, byName, 3)
	assert.Equal(t, "Alice", byName[0].Name)
	assert.Equal(t, "Charlie", byName[2].Name)
}

func TestClientStats(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	a := seedClient(t, s, "Asha", crm.ClientActive)
	a.TotalPolicies = 2
	a.TotalPremium = decimal.NewFromInt(20000)
	require.NoError(t, s.UpdateClient(ctx, a))

	p := seedClient(t, s, "Meera", crm.ClientProspect)
	p.IsNewProspect = true
	require.NoError(t, s.UpdateClient(ctx, p))

	stats, err := s.ClientStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalClients)
	assert.Equal(t, 1, stats.ActiveClients)
	assert.Equal(t, 1, stats.Prospects)
	assert.True(t, stats.TotalPremium.Equal(decimal.NewFromInt(20000)))
	assert.Equal(t, 1.0, stats.AveragePoliciesPerClient)
}

// =============================================================================
// POLICY TESTS
// =============================================================================

func TestPolicies_DuplicateNumberRejected(t *testing.T) {
	s := newTestStore()
	c := seedClient(t, s, "Asha", crm.ClientActive)
	seedPolicy(t, s, c.ID, "POL-001", 1000)

	err := s.CreatePolicy(context.Background(), &crm.Policy{
		ClientID: c.ID, PolicyNumber: "POL-001", PolicyType: crm.PolicyLife,
		Company: crm.CompanyLIC, PlanName: "dup",
	})
	assert.True(t, errors.Is(err, crm.ErrDuplicateNumber))
}

func TestPolicies_ListClientPolicies(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	a := seedClient(t, s, "Asha", crm.ClientActive)
	b := seedClient(t, s, "Vikram", crm.ClientActive)
	seedPolicy(t, s, a.ID, "POL-001", 1000)
	seedPolicy(t, s, a.ID, "POL-002", 2000)
	seedPolicy(t, s, b.ID, "POL-003", 3000)

	mine, err := s.ListClientPolicies(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "POL-002", mine[0].PolicyNumber, "newest first")

	active, err := s.CountClientPolicies(ctx, a.ID, crm.PolicyActive)
	require.NoError(t, err)
	assert.Equal(t, 2, active)
}

func TestPolicies_UpcomingRenewalsWindow(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	c := seedClient(t, s, "Asha", crm.ClientActive)

	now := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	soon := now.AddDate(0, 0, 10)
	far := now.AddDate(0, 0, 60)
	past := now.AddDate(0, 0, -1)

	in := seedPolicy(t, s, c.ID, "POL-SOON", 1000)
	in.RenewalDate = &soon
	require.NoError(t, s.UpdatePolicy(ctx, in))

	out := seedPolicy(t, s, c.ID, "POL-FAR", 1000)
	out.RenewalDate = &far
	require.NoError(t, s.UpdatePolicy(ctx, out))

	gone := seedPolicy(t, s, c.ID, "POL-PAST", 1000)
	gone.RenewalDate = &past
	require.NoError(t, s.UpdatePolicy(ctx, gone))

	lapsed := seedPolicy(t, s, c.ID, "POL-LAPSED", 1000)
	lapsed.RenewalDate = &soon
	lapsed.Status = crm.PolicyLapsed
	require.NoError(t, s.UpdatePolicy(ctx, lapsed))

	due, err := s.ListUpcomingRenewals(ctx, now, 30)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "POL-SOON", due[0].PolicyNumber)
}

func TestPolicyStats_Breakdowns(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	c := seedClient(t, s, "Asha", crm.ClientActive)
	seedPolicy(t, s, c.ID, "POL-001", 1000)
	seedPolicy(t, s, c.ID, "POL-002", 3000)

	stats, err := s.PolicyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPolicies)
	assert.Equal(t, 2, stats.ActivePolicies)
	assert.True(t, stats.TotalPremium.Equal(decimal.NewFromInt(4000)))
	require.Len(t, stats.TypeBreakdown, 1)
	assert.Equal(t, string(crm.PolicyLife), stats.TypeBreakdown[0].Key)
	assert.Equal(t, 2, stats.TypeBreakdown[0].Count)
}

// =============================================================================
// CLAIM TESTS
// =============================================================================

func TestClaims_LastClaimNumber(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	c := seedClient(t, s, "Asha", crm.ClientActive)
	p := seedPolicy(t, s, c.ID, "POL-001", 1000)

	last, err := s.LastClaimNumber(ctx)
	require.NoError(t, err)
	assert.Empty(t, last)

	for _, n := range []string{"CLM-000001", "CLM-000003", "CLM-000002"} {
		require.NoError(t, s.CreateClaim(ctx, &crm.Claim{
			ClientID: c.ID, PolicyID: p.ID, ClaimNumber: n,
			ClaimType: crm.ClaimMedical, Status: crm.ClaimPending, Priority: crm.PriorityMedium,
			ClaimDate: time.Now(), IncidentDate: time.Now(), Description: "x",
		}))
	}

	last, err = s.LastClaimNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CLM-000003", last)
}

func TestClaims_LastClaimNumberRanksNumerically(t *testing.T) {
	// CLM-1000000 sorts below CLM-999999 as a string; the highest number
	// must still win once the sequence outgrows six digits.
	s := newTestStore()
	ctx := context.Background()
	c := seedClient(t, s, "Asha", crm.ClientActive)
	p := seedPolicy(t, s, c.ID, "POL-001", 1000)

	for _, n := range []string{"CLM-999999", "CLM-1000000"} {
		require.NoError(t, s.CreateClaim(ctx, &crm.Claim{
			ClientID: c.ID, PolicyID: p.ID, ClaimNumber: n,
			ClaimType: crm.ClaimMedical, Status: crm.ClaimPending, Priority: crm.PriorityMedium,
			ClaimDate: time.Now(), IncidentDate: time.Now(), Description: "x",
		}))
	}

	last, err := s.LastClaimNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CLM-1000000", last)
}

func TestClaims_StatusesFilterOverridesStatus(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	c := seedClient(t, s, "Asha", crm.ClientActive)
	p := seedPolicy(t, s, c.ID, "POL-001", 1000)

	statuses := []crm.ClaimStatus{crm.ClaimPending, crm.ClaimUnderReview, crm.ClaimSettled}
	for i, st := range statuses {
		require.NoError(t, s.CreateClaim(ctx, &crm.Claim{
			ClientID: c.ID, PolicyID: p.ID,
			ClaimNumber: "CLM-00000" + string(rune('1'+i)),
			ClaimType:   crm.ClaimMedical, Status: st, Priority: crm.PriorityMedium,
			ClaimDate: time.Now(), IncidentDate: time.Now(), Description: "x",
		}))
	}

	open, total, err := s.ListClaims(ctx, crm.ClaimFilter{
		Status:   crm.ClaimSettled, // ignored when Statuses is set
		Statuses: []crm.ClaimStatus{crm.ClaimPending, crm.ClaimUnderReview},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, open, 2)
}

// =============================================================================
// REMINDER TESTS
// =============================================================================

func TestReminders_DueWindowFilter(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	c := seedClient(t, s, "Asha", crm.ClientActive)

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	mk := func(title string, due time.Time, status crm.ReminderStatus) {
		require.NoError(t, s.CreateReminder(ctx, &crm.Reminder{
			ClientID: c.ID, ReminderType: crm.RemindFollowUp, Title: title,
			DueDate: due, Priority: crm.PriorityMedium, Status: status, Frequency: crm.FreqOneTime,
		}))
	}
	mk("due tomorrow", now.AddDate(0, 0, 1), crm.ReminderPending)
	mk("due next month", now.AddDate(0, 1, 0), crm.ReminderPending)
	mk("already done", now.AddDate(0, 0, 1), crm.ReminderCompleted)

	to := now.AddDate(0, 0, 7)
	week, total, err := s.ListReminders(ctx, crm.ReminderFilter{
		Status:  crm.ReminderPending,
		DueFrom: &now,
		DueTo:   &to,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, week, 1)
	assert.Equal(t, "due tomorrow", week[0].Title)
}

func TestReminderStats_DueTodayCountsPendingOnly(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	c := seedClient(t, s, "Asha", crm.ClientActive)

	now := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)
	mk := func(due time.Time, status crm.ReminderStatus) {
		require.NoError(t, s.CreateReminder(ctx, &crm.Reminder{
			ClientID: c.ID, ReminderType: crm.RemindRenewal, Title: "t",
			DueDate: due, Priority: crm.PriorityMedium, Status: status, Frequency: crm.FreqOneTime,
		}))
	}
	mk(now.Add(2*time.Hour), crm.ReminderPending)   // today, pending
	mk(now.Add(-3*time.Hour), crm.ReminderCompleted) // today, done
	mk(now.AddDate(0, 0, 3), crm.ReminderPending)    // later

	stats, err := s.ReminderStats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DueToday)

	counted := 0
	for _, row := range stats.StatusBreakdown {
		counted += row.Count
	}
	assert.Equal(t, 3, counted)
}

// =============================================================================
// TARGET TESTS
// =============================================================================

func TestTargets_ActiveForAgentOrderedByDeadline(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	mk := func(id string, agent crm.AgentID, end time.Time, status crm.TargetStatus) {
		require.NoError(t, s.CreateTarget(ctx, &crm.Target{
			ID: crm.TargetID(id), AgentID: agent, TargetPeriod: crm.PeriodMonthly,
			StartDate: end.AddDate(0, -1, 0), EndDate: end,
			ProductType: crm.ProductAll, TargetAmount: decimal.NewFromInt(1000), Status: status,
		}))
	}
	end := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	mk("late", "agent-1", end.AddDate(0, 1, 0), crm.TargetActive)
	mk("soon", "agent-1", end, crm.TargetActive)
	mk("done", "agent-1", end, crm.TargetCompleted)
	mk("other", "agent-2", end, crm.TargetActive)

	open, err := s.ListActiveTargetsForAgent(ctx, "agent-1")
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, crm.TargetID("soon"), open[0].ID)
	assert.Equal(t, crm.TargetID("late"), open[1].ID)
}

func TestAgentPerformance_PeriodFilter(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	mk := func(period crm.TargetPeriod, amount, achieved int64) {
		require.NoError(t, s.CreateTarget(ctx, &crm.Target{
			AgentID: "agent-1", TargetPeriod: period,
			StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:        time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			ProductType:    crm.ProductAll,
			TargetAmount:   decimal.NewFromInt(amount),
			AchievedAmount: decimal.NewFromInt(achieved),
			Status:         crm.TargetActive,
		}))
	}
	mk(crm.PeriodMonthly, 1000, 500)
	mk(crm.PeriodYearly, 10000, 2000)

	all, err := s.AgentPerformance(ctx, "agent-1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalTargets)
	assert.True(t, all.TotalTargetAmount.Equal(decimal.NewFromInt(11000)))

	monthly, err := s.AgentPerformance(ctx, "agent-1", crm.PeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, 1, monthly.TotalTargets)
	assert.True(t, monthly.TotalAchievedAmount.Equal(decimal.NewFromInt(500)))
}
