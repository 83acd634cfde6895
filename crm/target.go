package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TARGET - A sales goal for an agent over a time window
// =============================================================================

// Target measures an agent's sales over [StartDate, EndDate]. AchievedAmount
// and AchievedPolicies grow monotonically through the allocator; the
// achievement percentage is persisted, while Shortfall, DaysRemaining, and
// IsAchieved are derived on read.
type Target struct {
	ID               TargetID
	AgentID          AgentID
	TargetPeriod     TargetPeriod
	StartDate        time.Time
	EndDate          time.Time
	ProductType      ProductType
	TargetAmount     decimal.Decimal
	AchievedAmount   decimal.Decimal
	TargetPolicies   int
	AchievedPolicies int
	Status           TargetStatus
	// AchievementPercentage is clamped to [0, 100] and re-derived on every
	// save; see targets.ApplyDerived.
	AchievementPercentage float64
	Bonus                 *Bonus
	Notes                 string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDefaults fills zero-valued enum fields with their creation defaults.
func (t *Target) ApplyDefaults() {
	if t.ProductType == "" {
		t.ProductType = ProductAll
	}
	if t.Status == "" {
		t.Status = TargetActive
	}
	if t.Bonus != nil && t.Bonus.Status == "" {
		t.Bonus.Status = BonusNotApplicable
	}
}

// Validate checks field constraints.
func (t *Target) Validate() error {
	if t.AgentID == "" {
		return &ValidationError{Field: "agent", Reason: "agent reference is required"}
	}
	if t.StartDate.IsZero() {
		return &ValidationError{Field: "startDate", Reason: "start date is required"}
	}
	if t.EndDate.IsZero() {
		return &ValidationError{Field: "endDate", Reason: "end date is required"}
	}
	if t.EndDate.Before(t.StartDate) {
		return &ValidationError{Field: "endDate", Reason: "end date cannot be before start date"}
	}
	if t.TargetAmount.IsNegative() {
		return &ValidationError{Field: "targetAmount", Reason: "target amount cannot be negative"}
	}
	if t.AchievedAmount.IsNegative() {
		return &ValidationError{Field: "achievedAmount", Reason: "achieved amount cannot be negative"}
	}
	if t.TargetPolicies < 0 {
		return &ValidationError{Field: "targetPolicies", Reason: "target policies cannot be negative"}
	}
	if t.AchievedPolicies < 0 {
		return &ValidationError{Field: "achievedPolicies", Reason: "achieved policies cannot be negative"}
	}
	if len(t.Notes) > 500 {
		return &ValidationError{Field: "notes", Reason: "notes cannot exceed 500 characters"}
	}
	switch t.TargetPeriod {
	case PeriodMonthly, PeriodQuarterly, PeriodHalfYearly, PeriodYearly:
	default:
		return &ValidationError{Field: "targetPeriod", Reason: "invalid target period"}
	}
	switch t.ProductType {
	case ProductLife, ProductGeneral, ProductMutualFund, ProductHealth, ProductMotor, ProductAll:
	default:
		return &ValidationError{Field: "productType", Reason: "invalid product type"}
	}
	switch t.Status {
	case TargetActive, TargetCompleted, TargetExpired, TargetCancelled:
	default:
		return &ValidationError{Field: "status", Reason: "invalid target status"}
	}
	return nil
}

// Shortfall is the remaining amount to the target, floored at zero.
func (t *Target) Shortfall() decimal.Decimal {
	s := t.TargetAmount.Sub(t.AchievedAmount)
	if s.IsNegative() {
		return decimal.Zero
	}
	return s
}

// DaysRemaining is the whole days until the end date; 0 once the target is
// no longer active or the window has closed.
func (t *Target) DaysRemaining(now time.Time) int {
	if t.Status != TargetActive {
		return 0
	}
	d := CeilDays(now, t.EndDate)
	if d < 0 {
		return 0
	}
	return d
}

// IsAchieved reports whether the achieved amount has reached the target.
func (t *Target) IsAchieved() bool {
	return t.AchievedAmount.GreaterThanOrEqual(t.TargetAmount)
}
