package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/service"
	"github.com/ledgerline/insurance-crm/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServices(t *testing.T) (*service.Services, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := service.New(store, service.NewDefaultActorProvider(store))
	return svc, store
}

func createClient(t *testing.T, svc *service.Services, name string) *crm.Client {
	t.Helper()
	c, err := svc.Clients.Create(context.Background(), &crm.Client{
		Name:  name,
		Phone: "+91 90000 00001",
	})
	require.NoError(t, err)
	return c
}

func lifePolicy(clientID crm.ClientID, number string, premium int64) *crm.Policy {
	return &crm.Policy{
		ClientID:      clientID,
		PolicyNumber:  number,
		PolicyType:    crm.PolicyLife,
		Company:       crm.CompanyLIC,
		PlanName:      "Jeevan Anand",
		PremiumAmount: decimal.NewFromInt(premium),
		SumAssured:    decimal.NewFromInt(premium * 20),
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MaturityDate:  time.Date(2046, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// POLICY WRITE PIPELINE
// =============================================================================

func TestPolicyCreate_RecomputesClientRollups(t *testing.T) {
	// GIVEN: A prospect with no policies
	// WHEN: Two policies are created
	// THEN: The stored client carries the aggregated rollups and is
	//       promoted from prospect to active

	svc, store := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Asha Patel")
	require.True(t, c.IsNewProspect)

	_, err := svc.Policies.Create(ctx, lifePolicy(c.ID, "POL-001", 12000))
	require.NoError(t, err)
	_, err = svc.Policies.Create(ctx, lifePolicy(c.ID, "POL-002", 8000))
	require.NoError(t, err)

	got, err := store.GetClient(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, 2, got.TotalPolicies)
	assert.True(t, got.TotalPremium.Equal(decimal.NewFromInt(20000)))
	assert.True(t, got.TotalMaturity.Equal(decimal.NewFromInt(400000)))
	assert.False(t, got.IsNewProspect)
	assert.Equal(t, crm.ClientActive, got.Status)
}

func TestPolicyCreate_CreditsMatchingTarget(t *testing.T) {
	// GIVEN: An agent with an open Monthly target covering today
	// WHEN: The agent sells a policy
	// THEN: The target's achieved amount and policy count grow

	svc, store := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Asha Patel")

	require.NoError(t, store.CreateUser(ctx, &crm.User{
		Name: "Ravi", Email: "ravi@example.com", Role: crm.RoleAgent, Status: crm.UserActive,
		ID: "agent-1",
	}))

	now := time.Now()
	tg, err := svc.Targets.Create(ctx, &crm.Target{
		AgentID:      "agent-1",
		TargetPeriod: crm.PeriodMonthly,
		StartDate:    now.AddDate(0, 0, -5),
		EndDate:      now.AddDate(0, 0, 25),
		TargetAmount: decimal.NewFromInt(100000),
	})
	require.NoError(t, err)

	p := lifePolicy(c.ID, "POL-001", 25000)
	p.AssignedAgent = "agent-1"
	_, err = svc.Policies.Create(ctx, p)
	require.NoError(t, err)

	got, err := store.GetTarget(ctx, tg.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.AchievedAmount.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, 1, got.AchievedPolicies)
	assert.Equal(t, float64(25), got.AchievementPercentage)
}

func TestPolicyCreate_DuplicateNumberConflicts(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Asha Patel")

	_, err := svc.Policies.Create(ctx, lifePolicy(c.ID, "POL-001", 1000))
	require.NoError(t, err)

	_, err = svc.Policies.Create(ctx, lifePolicy(c.ID, "POL-001", 2000))
	assert.True(t, crm.IsConflict(err), "expected conflict, got %v", err)
}

func TestPolicyCreate_UnknownClientRejected(t *testing.T) {
	svc, _ := newTestServices(t)
	_, err := svc.Policies.Create(context.Background(), lifePolicy("ghost", "POL-001", 1000))
	assert.True(t, crm.IsNotFound(err), "expected not found, got %v", err)
}

func TestPolicyDelete_RecomputesClientRollups(t *testing.T) {
	svc, store := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Asha Patel")

	p, err := svc.Policies.Create(ctx, lifePolicy(c.ID, "POL-001", 12000))
	require.NoError(t, err)

	require.NoError(t, svc.Policies.Delete(ctx, p.ID))

	got, err := store.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalPolicies)
	assert.True(t, got.TotalPremium.IsZero())
	// Promotion is one-way: the client does not revert to prospect.
	assert.Equal(t, crm.ClientActive, got.Status)
}

// =============================================================================
// CLIENT GUARDS
// =============================================================================

func TestClientDelete_BlockedByActivePolicies(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Asha Patel")

	p, err := svc.Policies.Create(ctx, lifePolicy(c.ID, "POL-001", 1000))
	require.NoError(t, err)

	err = svc.Clients.Delete(ctx, c.ID)
	assert.True(t, crm.IsConflict(err), "expected conflict, got %v", err)

	// Lapsed policies do not block deletion.
	p.Status = crm.PolicyLapsed
	_, err = svc.Policies.Update(ctx, p)
	require.NoError(t, err)

	assert.NoError(t, svc.Clients.Delete(ctx, c.ID))
}

func TestClientUpdate_CannotDemotePolicyHolder(t *testing.T) {
	// GIVEN: A client holding a policy
	// WHEN: An update submits Prospect status
	// THEN: The save re-runs promotion and the client stays Active

	svc, _ := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Asha Patel")
	_, err := svc.Policies.Create(ctx, lifePolicy(c.ID, "POL-001", 1000))
	require.NoError(t, err)

	patch := *c
	patch.Status = crm.ClientProspect
	patch.IsNewProspect = true

	updated, err := svc.Clients.Update(ctx, &patch)
	require.NoError(t, err)
	assert.Equal(t, crm.ClientActive, updated.Status)
	assert.False(t, updated.IsNewProspect)
	assert.Equal(t, 1, updated.TotalPolicies)
}

func TestClientUpdate_PreservesProspectFlag(t *testing.T) {
	// GIVEN: A zero-policy prospect
	// WHEN: An unrelated edit echoes the current status back
	// THEN: The prospect flag survives; the payload cannot clear it

	svc, _ := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Meera Iyer")
	require.True(t, c.IsNewProspect)

	patch := *c
	patch.Notes = "prefers evening calls"
	patch.IsNewProspect = false

	updated, err := svc.Clients.Update(ctx, &patch)
	require.NoError(t, err)
	assert.True(t, updated.IsNewProspect)
	assert.Equal(t, crm.ClientProspect, updated.Status)

	stats, err := svc.Clients.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Prospects)
}

// =============================================================================
// CLAIM LIFECYCLE
// =============================================================================

func TestClaimCreate_NumbersSequentially(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Asha Patel")
	p, err := svc.Policies.Create(ctx, lifePolicy(c.ID, "POL-001", 1000))
	require.NoError(t, err)

	newClaim := func() *crm.Claim {
		return &crm.Claim{
			PolicyID:     p.ID,
			ClaimType:    crm.ClaimMedical,
			ClaimAmount:  decimal.NewFromInt(50000),
			IncidentDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Description:  "hospitalization",
		}
	}

	first, err := svc.Claims.Create(ctx, newClaim())
	require.NoError(t, err)
	second, err := svc.Claims.Create(ctx, newClaim())
	require.NoError(t, err)

	assert.Equal(t, "CLM-000001", first.ClaimNumber)
	assert.Equal(t, "CLM-000002", second.ClaimNumber)
	assert.Equal(t, c.ID, first.ClientID, "client backfilled from the policy")
	require.Len(t, first.StatusHistory, 1)
	assert.Equal(t, crm.ClaimPending, first.StatusHistory[0].Status)
}

func TestClaimUpdateStatus_TracksHistoryAndSettlement(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Asha Patel")
	p, err := svc.Policies.Create(ctx, lifePolicy(c.ID, "POL-001", 1000))
	require.NoError(t, err)

	cl, err := svc.Claims.Create(ctx, &crm.Claim{
		PolicyID:     p.ID,
		ClaimType:    crm.ClaimMedical,
		ClaimAmount:  decimal.NewFromInt(50000),
		IncidentDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Description:  "hospitalization",
	})
	require.NoError(t, err)

	cl, err = svc.Claims.UpdateStatus(ctx, cl.ID, crm.ClaimApproved, "all documents verified", "agent-1")
	require.NoError(t, err)
	require.Len(t, cl.StatusHistory, 2)
	assert.Equal(t, "all documents verified", cl.StatusHistory[1].Note)
	assert.Nil(t, cl.SettlementDate)

	cl, err = svc.Claims.UpdateStatus(ctx, cl.ID, crm.ClaimSettled, "", "agent-1")
	require.NoError(t, err)
	require.NotNil(t, cl.SettlementDate)
	stamped := *cl.SettlementDate

	// Re-submitting the same status changes nothing.
	cl, err = svc.Claims.UpdateStatus(ctx, cl.ID, crm.ClaimSettled, "again", "agent-2")
	require.NoError(t, err)
	assert.Len(t, cl.StatusHistory, 3)
	assert.True(t, cl.SettlementDate.Equal(stamped))
}

func TestClaimUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Asha Patel")
	p, err := svc.Policies.Create(ctx, lifePolicy(c.ID, "POL-001", 1000))
	require.NoError(t, err)
	cl, err := svc.Claims.Create(ctx, &crm.Claim{
		PolicyID:     p.ID,
		ClaimType:    crm.ClaimMedical,
		ClaimAmount:  decimal.NewFromInt(100),
		IncidentDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Description:  "x",
	})
	require.NoError(t, err)

	_, err = svc.Claims.UpdateStatus(ctx, cl.ID, "Vanished", "", "")
	assert.True(t, crm.IsValidation(err), "expected validation error, got %v", err)
}

// =============================================================================
// REMINDER WORKFLOW
// =============================================================================

func TestReminderCompleteAndSnooze(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	c := createClient(t, svc, "Asha Patel")

	r, err := svc.Reminders.Create(ctx, &crm.Reminder{
		ClientID:     c.ID,
		ReminderType: crm.RemindFollowUp,
		Title:        "Quarterly review call",
		DueDate:      time.Now().AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	snoozed, err := svc.Reminders.Snooze(ctx, r.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, crm.ReminderSnoozed, snoozed.Status)
	require.NotNil(t, snoozed.SnoozeUntil)

	done, err := svc.Reminders.Complete(ctx, r.ID, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, crm.ReminderCompleted, done.Status)
	assert.Equal(t, crm.AgentID("agent-1"), done.CompletedBy)
}

func TestReminderCreate_UnknownClientRejected(t *testing.T) {
	svc, _ := newTestServices(t)
	_, err := svc.Reminders.Create(context.Background(), &crm.Reminder{
		ClientID:     "ghost",
		ReminderType: crm.RemindFollowUp,
		Title:        "call",
		DueDate:      time.Now(),
	})
	assert.True(t, crm.IsNotFound(err), "expected not found, got %v", err)
}

// =============================================================================
// PROFILE
// =============================================================================

func TestProfile_SeedsDefaultAdminOnce(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	first, err := svc.Profile.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, crm.RoleAdministrator, first.Role)
	assert.NotEmpty(t, first.ID)

	second, err := svc.Profile.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestProfile_UpdateAppliesNonEmptyFields(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	orig, err := svc.Profile.Get(ctx)
	require.NoError(t, err)

	updated, err := svc.Profile.Update(ctx, crm.User{Name: "Priya Sharma", Location: "Pune, India"})
	require.NoError(t, err)
	assert.Equal(t, "Priya Sharma", updated.Name)
	assert.Equal(t, "Pune, India", updated.Location)
	assert.Equal(t, orig.Email, updated.Email, "empty fields left unchanged")
}
