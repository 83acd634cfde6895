package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLAIM - A payout request against a policy
// =============================================================================

// Claim belongs to exactly one client and one policy. StatusHistory is an
// append-only audit trail maintained by the claims lifecycle tracker; the
// entries themselves are never edited or removed.
type Claim struct {
	ID              ClaimID
	ClientID        ClientID
	PolicyID        PolicyID
	ClaimNumber     string
	ClaimType       ClaimType
	ClaimAmount     decimal.Decimal
	ApprovedAmount  *decimal.Decimal
	ClaimDate       time.Time
	IncidentDate    time.Time
	Status          ClaimStatus
	Priority        Priority
	AssignedTo      AgentID
	Description     string
	StatusHistory   []StatusChange
	RejectionReason string
	ShortfallReason string
	SettlementDate  *time.Time
	PaymentMode     PaymentMode
	Notes           string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDefaults fills zero-valued fields with their creation defaults.
func (c *Claim) ApplyDefaults(now time.Time) {
	if c.Status == "" {
		c.Status = ClaimPending
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	if c.ClaimDate.IsZero() {
		c.ClaimDate = now
	}
}

// Validate checks field constraints.
func (c *Claim) Validate() error {
	if c.ClientID == "" {
		return &ValidationError{Field: "client", Reason: "client reference is required"}
	}
	if c.PolicyID == "" {
		return &ValidationError{Field: "policy", Reason: "policy reference is required"}
	}
	if c.ClaimNumber == "" {
		return &ValidationError{Field: "claimNumber", Reason: "claim number is required"}
	}
	if c.Description == "" {
		return &ValidationError{Field: "description", Reason: "claim description is required"}
	}
	if len(c.Description) > 2000 {
		return &ValidationError{Field: "description", Reason: "description cannot exceed 2000 characters"}
	}
	if c.ClaimAmount.IsNegative() {
		return &ValidationError{Field: "claimAmount", Reason: "claim amount cannot be negative"}
	}
	if c.ApprovedAmount != nil && c.ApprovedAmount.IsNegative() {
		return &ValidationError{Field: "approvedAmount", Reason: "approved amount cannot be negative"}
	}
	if c.IncidentDate.IsZero() {
		return &ValidationError{Field: "incidentDate", Reason: "incident date is required"}
	}
	switch c.ClaimType {
	case ClaimDeath, ClaimMaturity, ClaimAccident, ClaimMedical, ClaimSurrender, ClaimPartialWithdrawal, ClaimOther:
	default:
		return &ValidationError{Field: "claimType", Reason: "invalid claim type"}
	}
	if !ValidClaimStatus(c.Status) {
		return &ValidationError{Field: "status", Reason: "invalid claim status"}
	}
	switch c.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
	default:
		return &ValidationError{Field: "priority", Reason: "invalid priority"}
	}
	if len(c.RejectionReason) > 500 {
		return &ValidationError{Field: "rejectionReason", Reason: "rejection reason cannot exceed 500 characters"}
	}
	if len(c.ShortfallReason) > 500 {
		return &ValidationError{Field: "shortfallReason", Reason: "shortfall reason cannot exceed 500 characters"}
	}
	return nil
}

// ValidClaimStatus reports whether s is a known claim status.
func ValidClaimStatus(s ClaimStatus) bool {
	switch s {
	case ClaimPending, ClaimUnderReview, ClaimApproved, ClaimRejected, ClaimSettled, ClaimShortfall:
		return true
	}
	return false
}

// ProcessingDays is the whole days from the claim date to settlement, or to
// now while the claim is still open. Computed on read, never persisted.
func (c *Claim) ProcessingDays(now time.Time) int {
	end := now
	if c.SettlementDate != nil {
		end = *c.SettlementDate
	}
	return CeilDays(c.ClaimDate, end)
}
