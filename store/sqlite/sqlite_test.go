package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedClient(t *testing.T, s *sqlite.Store) *crm.Client {
	t.Helper()
	c := &crm.Client{
		Name:       "Asha Patel",
		Email:      "asha@example.com",
		Phone:      "+91 90000 00001",
		ClientType: crm.ClientIndividual,
		Priority:   crm.PriorityHigh,
		Status:     crm.ClientActive,
		Address:    crm.Address{City: "Mumbai", State: "Maharashtra", Country: "India"},
		Tags:       []string{"hni", "referral"},
	}
	require.NoError(t, s.CreateClient(context.Background(), c))
	return c
}

func seedPolicy(t *testing.T, s *sqlite.Store, clientID crm.ClientID, number string, premium int64) *crm.Policy {
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
		Nominees:      []crm.Nominee{{Name: "Ravi Patel", Relationship: "Spouse", SharePercent: 100}},
	}
	require.NoError(t, s.CreatePolicy(context.Background(), p))
	return p
}

// =============================================================================
// ROUND-TRIP TESTS - JSON columns and time encoding survive storage
// =============================================================================

func TestClient_RoundTripPreservesStructuredFields(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)

	got, err := s.GetClient(context.Background(), c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Mumbai", got.Address.City)
	assert.Equal(t, []string{"hni", "referral"}, got.Tags)
	assert.Equal(t, crm.PriorityHigh, got.Priority)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestPolicy_RoundTripPreservesNomineesAndDecimals(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	p := seedPolicy(t, s, c.ID, "POL-001", 12345)

	got, err := s.GetPolicy(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, got.PremiumAmount.Equal(decimal.NewFromInt(12345)))
	require.Len(t, got.Nominees, 1)
	assert.Equal(t, "Ravi Patel", got.Nominees[0].Name)
	assert.Equal(t, 100.0, got.Nominees[0].SharePercent)
}

func TestClaim_RoundTripPreservesHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedClient(t, s)
	p := seedPolicy(t, s, c.ID, "POL-001", 1000)

	settled := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	approved := decimal.NewFromInt(45000)
	cl := &crm.Claim{
		ClientID:       c.ID,
		PolicyID:       p.ID,
		ClaimNumber:    "CLM-000001",
		ClaimType:      crm.ClaimMedical,
		ClaimAmount:    decimal.NewFromInt(50000),
		ApprovedAmount: &approved,
		ClaimDate:      time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		IncidentDate:   time.Date(2026, 5, 28, 0, 0, 0, 0, time.UTC),
		Status:         crm.ClaimSettled,
		Priority:       crm.PriorityUrgent,
		Description:    "hospitalization",
		SettlementDate: &settled,
		StatusHistory: []crm.StatusChange{
			{Status: crm.ClaimPending, Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
			{Status: crm.ClaimSettled, Date: settled, Note: "paid out", UpdatedBy: "agent-1"},
		},
	}
	require.NoError(t, s.CreateClaim(ctx, cl))

	got, err := s.GetClaim(ctx, cl.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, "paid out", got.StatusHistory[1].Note)
	require.NotNil(t, got.SettlementDate)
	assert.True(t, got.SettlementDate.Equal(settled))
	require.NotNil(t, got.ApprovedAmount)
	assert.True(t, got.ApprovedAmount.Equal(approved))
}

func TestClaims_LastClaimNumberRanksNumerically(t *testing.T) {
	// CLM-1000000 sorts below CLM-999999 as a string; the highest number
	// must still win once the sequence outgrows six digits.
	s := newTestStore(t)
	ctx := context.Background()
	c := seedClient(t, s)
	p := seedPolicy(t, s, c.ID, "POL-001", 1000)

	for _, n := range []string{"CLM-999999", "CLM-1000000"} {
		require.NoError(t, s.CreateClaim(ctx, &crm.Claim{
			ClientID:     c.ID,
			PolicyID:     p.ID,
			ClaimNumber:  n,
			ClaimType:    crm.ClaimMedical,
			ClaimAmount:  decimal.NewFromInt(1000),
			ClaimDate:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			IncidentDate: time.Date(2026, 5, 28, 0, 0, 0, 0, time.UTC),
			Status:       crm.ClaimPending,
			Priority:     crm.PriorityMedium,
			Description:  "sequence boundary",
		}))
	}

	last, err := s.LastClaimNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CLM-1000000", last)
}

func TestTarget_RoundTripPreservesBonus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tg := &crm.Target{
		AgentID:      "agent-1",
		TargetPeriod: crm.PeriodQuarterly,
		StartDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		ProductType:  crm.ProductLife,
		TargetAmount: decimal.NewFromInt(500000),
		Status:       crm.TargetActive,
		Bonus:        &crm.Bonus{Threshold: 80, Amount: decimal.NewFromInt(10000), Status: crm.BonusNotApplicable},
	}
	require.NoError(t, s.CreateTarget(ctx, tg))

	got, err := s.GetTarget(ctx, tg.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Bonus)
	assert.Equal(t, 80.0, got.Bonus.Threshold)
	assert.True(t, got.Bonus.Amount.Equal(decimal.NewFromInt(10000)))
}

// =============================================================================
// UNIQUENESS AND SENTINELS
// =============================================================================

func TestPolicy_DuplicateNumberRejected(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	seedPolicy(t, s, c.ID, "POL-001", 1000)

	err := s.CreatePolicy(context.Background(), &crm.Policy{
		ClientID: c.ID, PolicyNumber: "POL-001", PolicyType: crm.PolicyLife,
		Company: crm.CompanyLIC, PlanName: "dup",
		Status: crm.PolicyActive, PaymentStatus: crm.PaymentPending,
	})
	assert.True(t, errors.Is(err, crm.ErrDuplicateNumber), "got %v", err)
}

func TestGet_MissingRecordsReadBackAsNil(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.GetClient(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, c)

	p, err := s.GetPolicy(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestUpdate_MissingRecordsReturnSentinels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.UpdateClient(ctx, &crm.Client{ID: "ghost", Name: "x", Phone: "y"})
	assert.True(t, errors.Is(err, crm.ErrClientNotFound))

	err = s.UpdateTarget(ctx, &crm.Target{ID: "ghost", AgentID: "a",
		StartDate: time.Now(), EndDate: time.Now(), TargetPeriod: crm.PeriodMonthly,
		ProductType: crm.ProductAll, Status: crm.TargetActive})
	assert.True(t, errors.Is(err, crm.ErrTargetNotFound))
}

// =============================================================================
// LISTING, SORTING, PAGINATION
// =============================================================================

func TestPolicies_NumericSortOnPremium(t *testing.T) {
	// Premiums are stored as TEXT; ordering must still be numeric, so 900
	// sorts below 10000.
	s := newTestStore(t)
	ctx := context.Background()
	c := seedClient(t, s)
	seedPolicy(t, s, c.ID, "POL-A", 10000)
	seedPolicy(t, s, c.ID, "POL-B", 900)
	seedPolicy(t, s, c.ID, "POL-C", 5000)

	asc, _, err := s.ListPolicies(ctx, crm.PolicyFilter{Page: crm.PageRequest{Limit: -1, SortBy: "premiumAmount"}})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "POL-B", asc[0].PolicyNumber)
	assert.Equal(t, "POL-A", asc[2].PolicyNumber)
}

func TestClients_SearchAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Asha Patel", "Vikram Rao", "Meera Iyer"} {
		require.NoError(t, s.CreateClient(ctx, &crm.Client{
			Name: name, Phone: "+91 90000 00001",
			ClientType: crm.ClientIndividual, Priority: crm.PriorityMedium, Status: crm.ClientActive,
		}))
	}

	found, total, err := s.ListClients(ctx, crm.ClientFilter{Search: "meera"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "Meera Iyer", found[0].Name)

	page, total, err := s.ListClients(ctx, crm.ClientFilter{Page: crm.PageRequest{Page: 2, Limit: 2, SortBy: "name"}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "Vikram Rao", page[0].Name)
}

func TestRenewals_WindowAndStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedClient(t, s)

	now := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	soon := now.AddDate(0, 0, 10)
	far := now.AddDate(0, 0, 60)

	in := seedPolicy(t, s, c.ID, "POL-SOON", 1000)
	in.RenewalDate = &soon
	require.NoError(t, s.UpdatePolicy(ctx, in))

	out := seedPolicy(t, s, c.ID, "POL-FAR", 1000)
	out.RenewalDate = &far
	require.NoError(t, s.UpdatePolicy(ctx, out))

	lapsed := seedPolicy(t, s, c.ID, "POL-LAPSED", 1000)
	lapsed.RenewalDate = &soon
	lapsed.Status = crm.PolicyLapsed
	require.NoError(t, s.UpdatePolicy(ctx, lapsed))

	due, err := s.ListUpcomingRenewals(ctx, now, 30)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "POL-SOON", due[0].PolicyNumber)
}

// =============================================================================
// STATS
// =============================================================================

func TestClaimStats_ApprovedAmountAndProcessing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedClient(t, s)
	p := seedPolicy(t, s, c.ID, "POL-001", 1000)

	claimDate := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	settled := claimDate.AddDate(0, 0, 4)
	approved := decimal.NewFromInt(40000)

	require.NoError(t, s.CreateClaim(ctx, &crm.Claim{
		ClientID: c.ID, PolicyID: p.ID, ClaimNumber: "CLM-000001",
		ClaimType: crm.ClaimMedical, ClaimAmount: decimal.NewFromInt(50000),
		ApprovedAmount: &approved, ClaimDate: claimDate, IncidentDate: claimDate,
		Status: crm.ClaimSettled, Priority: crm.PriorityMedium, Description: "x",
		SettlementDate: &settled,
	}))
	require.NoError(t, s.CreateClaim(ctx, &crm.Claim{
		ClientID: c.ID, PolicyID: p.ID, ClaimNumber: "CLM-000002",
		ClaimType: crm.ClaimMedical, ClaimAmount: decimal.NewFromInt(20000),
		ClaimDate: claimDate, IncidentDate: claimDate,
		Status: crm.ClaimPending, Priority: crm.PriorityMedium, Description: "y",
	}))

	stats, err := s.ClaimStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalClaims)
	assert.Equal(t, 1, stats.SettledClaims)
	assert.Equal(t, 1, stats.PendingClaims)
	assert.True(t, stats.TotalClaimAmount.Equal(decimal.NewFromInt(70000)))
	assert.True(t, stats.TotalApprovedAmount.Equal(approved))
	assert.Equal(t, 4.0, stats.AverageProcessingDays)
}

func TestTargetStats_ActiveOnlyWithPerformers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &crm.User{
		ID: "agent-1", Name: "Ravi", Email: "ravi@example.com",
		Role: crm.RoleAgent, Status: crm.UserActive,
	}))

	mk := func(status crm.TargetStatus, amount, achieved int64) {
		require.NoError(t, s.CreateTarget(ctx, &crm.Target{
			AgentID: "agent-1", TargetPeriod: crm.PeriodMonthly,
			StartDate:             time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			EndDate:               time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
			ProductType:           crm.ProductAll,
			TargetAmount:          decimal.NewFromInt(amount),
			AchievedAmount:        decimal.NewFromInt(achieved),
			AchievementPercentage: float64(achieved) / float64(amount) * 100,
			Status:                status,
		}))
	}
	mk(crm.TargetActive, 1000, 400)
	mk(crm.TargetExpired, 1000, 100) // closed, excluded from the overview

	stats, err := s.TargetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTargets)
	assert.True(t, stats.TotalTargetAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, stats.TotalAchievedAmount.Equal(decimal.NewFromInt(400)))
	require.Len(t, stats.TopPerformers, 1)
	assert.Equal(t, "Ravi", stats.TopPerformers[0].AgentName)
}

func TestUsers_EmailLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &crm.User{Name: "Admin", Email: "admin@example.com", Role: crm.RoleAdministrator, Status: crm.UserActive}
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	none, err := s.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, none)
}
