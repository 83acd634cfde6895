package claims_test

import (
	"testing"
	"time"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/crm/claims"
)

func at(day int) time.Time {
	return time.Date(2026, 5, day, 10, 0, 0, 0, time.UTC)
}

// =============================================================================
// CREATION TRACKING
// =============================================================================

func TestTrackCreation_WritesExactlyOneEntry(t *testing.T) {
	// GIVEN: A freshly created pending claim
	// WHEN: Creation is tracked
	// THEN: History holds exactly one entry carrying the initial status

	c := &crm.Claim{Status: crm.ClaimPending}
	claims.TrackCreation(c, at(1))

	if len(c.StatusHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(c.StatusHistory))
	}
	if c.StatusHistory[0].Status != crm.ClaimPending {
		t.Errorf("expected Pending entry, got %s", c.StatusHistory[0].Status)
	}
	if c.SettlementDate != nil {
		t.Error("pending claim must not be stamped settled")
	}
}

func TestTrackCreation_SettledOnArrivalStamps(t *testing.T) {
	// Back-entered historical claims can arrive already settled.
	c := &crm.Claim{Status: crm.ClaimSettled}
	claims.TrackCreation(c, at(1))

	if c.SettlementDate == nil || !c.SettlementDate.Equal(at(1)) {
		t.Errorf("expected settlement stamped at creation, got %v", c.SettlementDate)
	}
}

// =============================================================================
// TRANSITION TRACKING
// =============================================================================

func TestTrack_AppendsOnStatusChange(t *testing.T) {
	// GIVEN: A pending claim
	// WHEN: It moves to Under Review with a note
	// THEN: One entry is appended with the note and actor

	c := &crm.Claim{Status: crm.ClaimPending}
	claims.TrackCreation(c, at(1))

	c.Status = crm.ClaimUnderReview
	changed := claims.Track(c, crm.ClaimPending, "documents received", "agent-1", at(3))

	if !changed {
		t.Fatal("expected Track to report a change")
	}
	if len(c.StatusHistory) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(c.StatusHistory))
	}
	last := c.StatusHistory[1]
	if last.Status != crm.ClaimUnderReview || last.Note != "documents received" || last.UpdatedBy != "agent-1" {
		t.Errorf("unexpected entry: %+v", last)
	}
}

func TestTrack_NoOpWhenStatusUnchanged(t *testing.T) {
	// A save that leaves the status alone appends nothing.
	c := &crm.Claim{Status: crm.ClaimPending}
	claims.TrackCreation(c, at(1))

	changed := claims.Track(c, crm.ClaimPending, "just a note", "agent-1", at(2))

	if changed {
		t.Error("expected no change reported")
	}
	if len(c.StatusHistory) != 1 {
		t.Errorf("expected history untouched, got %d entries", len(c.StatusHistory))
	}
}

func TestTrack_SettlementStampedOnceOnTransition(t *testing.T) {
	// GIVEN: An approved claim
	// WHEN: It settles, then is saved again while still Settled
	// THEN: SettlementDate is stamped on the transition and never re-stamped

	c := &crm.Claim{Status: crm.ClaimApproved}
	claims.TrackCreation(c, at(1))

	c.Status = crm.ClaimSettled
	claims.Track(c, crm.ClaimApproved, "", "agent-1", at(5))

	if c.SettlementDate == nil || !c.SettlementDate.Equal(at(5)) {
		t.Fatalf("expected settlement at day 5, got %v", c.SettlementDate)
	}

	// Later save keeps Settled; the stamp must not move.
	claims.Track(c, crm.ClaimSettled, "", "agent-2", at(9))
	if !c.SettlementDate.Equal(at(5)) {
		t.Errorf("settlement re-stamped to %v", c.SettlementDate)
	}
	if len(c.StatusHistory) != 2 {
		t.Errorf("expected 2 entries, got %d", len(c.StatusHistory))
	}
}

func TestProcessingDays(t *testing.T) {
	// Open claims count to now; settled claims count to the settlement date.
	c := &crm.Claim{Status: crm.ClaimPending, ClaimDate: at(1)}

	if got := c.ProcessingDays(at(4)); got != 3 {
		t.Errorf("open claim: expected 3 days, got %d", got)
	}

	settled := at(6)
	c.SettlementDate = &settled
	if got := c.ProcessingDays(at(20)); got != 5 {
		t.Errorf("settled claim: expected 5 days, got %d", got)
	}
}
