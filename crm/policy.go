package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// POLICY - An insurance or investment product sold to a client
// =============================================================================

// Policy belongs to exactly one client and optionally one agent. Creating or
// deleting a policy triggers the client rollup recompute; creating one with
// an assigned agent additionally credits matching sales targets.
type Policy struct {
	ID               PolicyID
	ClientID         ClientID
	PolicyNumber     string
	PolicyType       PolicyType
	Company          Company
	PlanName         string
	PremiumAmount    decimal.Decimal
	PremiumFrequency PremiumFrequency
	SumAssured       decimal.Decimal
	PolicyTermYears  int
	StartDate        time.Time
	MaturityDate     time.Time
	RenewalDate      *time.Time
	NextPremiumDue   *time.Time
	Status           PolicyStatus
	PaymentStatus    PaymentStatus
	Nominees         []Nominee
	AssignedAgent    AgentID
	Notes            string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDefaults fills zero-valued enum fields with their creation defaults.
func (p *Policy) ApplyDefaults() {
	if p.PremiumFrequency == "" {
		p.PremiumFrequency = FrequencyYearly
	}
	if p.Status == "" {
		p.Status = PolicyActive
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = PaymentPending
	}
}

// Validate checks field constraints.
func (p *Policy) Validate() error {
	if p.ClientID == "" {
		return &ValidationError{Field: "client", Reason: "client reference is required"}
	}
	if p.PolicyNumber == "" {
		return &ValidationError{Field: "policyNumber", Reason: "policy number is required"}
	}
	if p.PlanName == "" {
		return &ValidationError{Field: "planName", Reason: "plan name is required"}
	}
	if p.PremiumAmount.IsNegative() {
		return &ValidationError{Field: "premiumAmount", Reason: "premium cannot be negative"}
	}
	if p.SumAssured.IsNegative() {
		return &ValidationError{Field: "sumAssured", Reason: "sum assured cannot be negative"}
	}
	switch p.PolicyType {
	case PolicyLife, PolicyGeneral, PolicyMutualFund, PolicyHealth, PolicyMotor, PolicyTravel:
	default:
		return &ValidationError{Field: "policyType", Reason: "invalid policy type"}
	}
	switch p.Company {
	case CompanyLIC, CompanyBajaj, CompanyHDFC, CompanyICICI, CompanyTATAAIA, CompanySBILife, CompanyMaxLife, CompanyOther:
	default:
		return &ValidationError{Field: "company", Reason: "invalid company"}
	}
	switch p.Status {
	case PolicyActive, PolicyLapsed, PolicyMatured, PolicySurrendered, PolicyPending:
	default:
		return &ValidationError{Field: "status", Reason: "invalid policy status"}
	}
	switch p.PaymentStatus {
	case PaymentPaid, PaymentPending, PaymentOverdue:
	default:
		return &ValidationError{Field: "paymentStatus", Reason: "invalid payment status"}
	}
	switch p.PremiumFrequency {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyHalfYearly, FrequencyYearly, FrequencyOneTime:
	default:
		return &ValidationError{Field: "premiumFrequency", Reason: "invalid premium frequency"}
	}
	for _, n := range p.Nominees {
		if n.SharePercent < 0 || n.SharePercent > 100 {
			return &ValidationError{Field: "nominees", Reason: "nominee share must be between 0 and 100"}
		}
	}
	return nil
}

// DaysUntilRenewal returns the whole days until the renewal date, or false
// when no renewal date is set. Negative when the renewal date has passed.
func (p *Policy) DaysUntilRenewal(now time.Time) (int, bool) {
	if p.RenewalDate == nil {
		return 0, false
	}
	return CeilDays(now, *p.RenewalDate), true
}
