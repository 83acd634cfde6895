/*
Package claims maintains the claim status audit trail.

PURPOSE:
  Every change to a claim's status - including the initial status at
  creation - appends one immutable entry to StatusHistory. The transition
  into Settled additionally stamps SettlementDate, exactly once.

TRIGGERING:
  Like the rollup reconciler, this runs as an explicit step in the service
  write path, not as a storage hook. The dedicated status-update operation
  carries an optional note and actor for the audit entry; a general update
  whose payload happens to change the status appends a bare entry.

INVARIANTS:
  - History is append-only: entries are never edited or removed
  - A save that leaves the status unchanged appends nothing
  - SettlementDate is stamped only on the transition into Settled; later
    saves that keep the status at Settled do not re-stamp it

SEE ALSO:
  - service/claims.go: Call sites
  - crm/claim.go: ProcessingDays, computed on read
*/
package claims

import (
	"time"

	"github.com/ledgerline/insurance-crm/crm"
)

// Track records a status transition on the claim: it appends a history
// entry and stamps the settlement date when the claim moves into Settled.
// The caller sets c.Status beforehand; Track compares against previous.
// Returns false (and appends nothing) when the status did not change.
func Track(c *crm.Claim, previous crm.ClaimStatus, note string, updatedBy crm.AgentID, now time.Time) bool {
	if c.Status == previous {
		return false
	}

	c.StatusHistory = append(c.StatusHistory, crm.StatusChange{
		Status:    c.Status,
		Date:      now,
		Note:      note,
		UpdatedBy: updatedBy,
	})

	if c.Status == crm.ClaimSettled && previous != crm.ClaimSettled {
		d := now
		c.SettlementDate = &d
	}
	return true
}

// TrackCreation appends the initial history entry for a freshly created
// claim. Creation counts as a transition from "absent", so exactly one
// entry is written even when the caller did not ask for one.
func TrackCreation(c *crm.Claim, now time.Time) {
	c.StatusHistory = append(c.StatusHistory, crm.StatusChange{
		Status: c.Status,
		Date:   now,
	})
	if c.Status == crm.ClaimSettled {
		d := now
		c.SettlementDate = &d
	}
}
