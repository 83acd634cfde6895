/*
Package crm provides the core domain model for the insurance/mutual-fund CRM.

PURPOSE:
  This package contains the entity types, enumerations, and derived-field
  calculations shared by every other package. Clients own policies, policies
  back claims, reminders track follow-ups, and targets measure agent sales
  performance.

KEY CONCEPTS IN THIS FILE (types.go):
  - Typed identifiers (ClientID, PolicyID, ...) that prevent mixing IDs
  - Enumerated statuses and categories with validity checks
  - Shared value types: Address, Nominee, Bonus, StatusChange

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for every money field - never float64
  2. Type Safety: Strong typing for IDs and enums
  3. Derived fields: Rollups and percentages are computed, never hand-edited
  4. Auditability: Claim status changes are an append-only history

SEE ALSO:
  - client.go ... target.go: Entity definitions and validation
  - store.go: Persistence interfaces
  - errors.go: Error taxonomy
*/
package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ClientID string
type PolicyID string
type ClaimID string
type ReminderID string
type TargetID string
type AgentID string

// =============================================================================
// ENUMERATIONS
// =============================================================================

type ClientType string

const (
	ClientIndividual ClientType = "Individual"
	ClientCorporate  ClientType = "Corporate"
)

type ClientStatus string

const (
	ClientActive   ClientStatus = "Active"
	ClientInactive ClientStatus = "Inactive"
	ClientProspect ClientStatus = "Prospect"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent" // claims only
)

type PolicyType string

const (
	PolicyLife       PolicyType = "Life Insurance"
	PolicyGeneral    PolicyType = "General Insurance"
	PolicyMutualFund PolicyType = "Mutual Fund"
	PolicyHealth     PolicyType = "Health"
	PolicyMotor      PolicyType = "Motor"
	PolicyTravel     PolicyType = "Travel"
)

type Company string

const (
	CompanyLIC     Company = "LIC"
	CompanyBajaj   Company = "Bajaj"
	CompanyHDFC    Company = "HDFC"
	CompanyICICI   Company = "ICICI"
	CompanyTATAAIA Company = "TATA AIA"
	CompanySBILife Company = "SBI Life"
	CompanyMaxLife Company = "Max Life"
	CompanyOther   Company = "Other"
)

type PremiumFrequency string

const (
	FrequencyMonthly    PremiumFrequency = "Monthly"
	FrequencyQuarterly  PremiumFrequency = "Quarterly"
	FrequencyHalfYearly PremiumFrequency = "Half-Yearly"
	FrequencyYearly     PremiumFrequency = "Yearly"
	FrequencyOneTime    PremiumFrequency = "One-Time"
)

type PolicyStatus string

const (
	PolicyActive      PolicyStatus = "Active"
	PolicyLapsed      PolicyStatus = "Lapsed"
	PolicyMatured     PolicyStatus = "Matured"
	PolicySurrendered PolicyStatus = "Surrendered"
	PolicyPending     PolicyStatus = "Pending"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
	PaymentOverdue PaymentStatus = "Overdue"
)

type ClaimType string

const (
	ClaimDeath             ClaimType = "Death"
	ClaimMaturity          ClaimType = "Maturity"
	ClaimAccident          ClaimType = "Accident"
	ClaimMedical           ClaimType = "Medical"
	ClaimSurrender         ClaimType = "Surrender"
	ClaimPartialWithdrawal ClaimType = "Partial Withdrawal"
	ClaimOther             ClaimType = "Other"
)

type ClaimStatus string

const (
	ClaimPending     ClaimStatus = "Pending"
	ClaimUnderReview ClaimStatus = "Under Review"
	ClaimApproved    ClaimStatus = "Approved"
	ClaimRejected    ClaimStatus = "Rejected"
	ClaimSettled     ClaimStatus = "Settled"
	ClaimShortfall   ClaimStatus = "Shortfall"
)

type PaymentMode string

const (
	PayBankTransfer PaymentMode = "Bank Transfer"
	PayCheque       PaymentMode = "Cheque"
	PayCash         PaymentMode = "Cash"
	PayOnline       PaymentMode = "Online"
)

type ReminderType string

const (
	RemindRenewal       ReminderType = "Renewal"
	RemindPremiumDue    ReminderType = "Premium Due"
	RemindMaturity      ReminderType = "Maturity"
	RemindBirthday      ReminderType = "Birthday"
	RemindAnniversary   ReminderType = "Anniversary"
	RemindHealthCheckup ReminderType = "Health Checkup"
	RemindFollowUp      ReminderType = "Follow-up"
	RemindCustom        ReminderType = "Custom"
)

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "Pending"
	ReminderCompleted ReminderStatus = "Completed"
	ReminderCancelled ReminderStatus = "Cancelled"
	ReminderSnoozed   ReminderStatus = "Snoozed"
)

type Frequency string

const (
	FreqOneTime Frequency = "One-Time"
	FreqDaily   Frequency = "Daily"
	FreqWeekly  Frequency = "Weekly"
	FreqMonthly Frequency = "Monthly"
	FreqYearly  Frequency = "Yearly"
)

type TargetPeriod string

const (
	PeriodMonthly    TargetPeriod = "Monthly"
	PeriodQuarterly  TargetPeriod = "Quarterly"
	PeriodHalfYearly TargetPeriod = "Half-Yearly"
	PeriodYearly     TargetPeriod = "Yearly"
)

// ProductType is the target-side product category. Policies carry the finer
// PolicyType; ProductOf maps between the two for allocation matching.
type ProductType string

const (
	ProductLife       ProductType = "Life"
	ProductGeneral    ProductType = "General"
	ProductMutualFund ProductType = "Mutual Fund"
	ProductHealth     ProductType = "Health"
	ProductMotor      ProductType = "Motor"
	ProductAll        ProductType = "All"
)

type TargetStatus string

const (
	TargetActive    TargetStatus = "Active"
	TargetCompleted TargetStatus = "Completed"
	TargetExpired   TargetStatus = "Expired"
	TargetCancelled TargetStatus = "Cancelled"
)

type BonusStatus string

const (
	BonusNotApplicable BonusStatus = "Not Applicable"
	BonusPending       BonusStatus = "Pending"
	BonusPaid          BonusStatus = "Paid"
)

type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleAgent         Role = "Agent"
	RoleManager       Role = "Manager"
)

type UserStatus string

const (
	UserActive   UserStatus = "Active"
	UserInactive UserStatus = "Inactive"
)

// ProductOf maps a policy's product category onto the target-side enum.
// Travel policies have no dedicated target product and only match "All".
func ProductOf(pt PolicyType) (ProductType, bool) {
	switch pt {
	case PolicyLife:
		return ProductLife, true
	case PolicyGeneral:
		return ProductGeneral, true
	case PolicyMutualFund:
		return ProductMutualFund, true
	case PolicyHealth:
		return ProductHealth, true
	case PolicyMotor:
		return ProductMotor, true
	default:
		return "", false
	}
}

// =============================================================================
// SHARED VALUE TYPES
// =============================================================================

// Address is a postal address embedded in Client.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Country string `json:"country,omitempty"`
}

// Nominee is a policy beneficiary with a percentage share.
type Nominee struct {
	Name         string     `json:"name"`
	Relationship string     `json:"relationship,omitempty"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	SharePercent float64    `json:"share,omitempty"`
}

// StatusChange is one entry in a claim's append-only status history.
type StatusChange struct {
	Status    ClaimStatus `json:"status"`
	Date      time.Time   `json:"date"`
	Note      string      `json:"note,omitempty"`
	UpdatedBy AgentID     `json:"updatedBy,omitempty"`
}

// Bonus is an optional incentive attached to a sales target.
type Bonus struct {
	Threshold float64         `json:"threshold,omitempty"` // achievement % that unlocks the bonus
	Amount    decimal.Decimal `json:"amount"`
	Status    BonusStatus     `json:"status"`
}

// =============================================================================
// TIME HELPERS
// =============================================================================

const dayDuration = 24 * time.Hour

// CeilDays returns the number of whole days between from and to, rounding
// any partial day up. Matches the report semantics for processing time and
// due-date countdowns.
func CeilDays(from, to time.Time) int {
	diff := to.Sub(from)
	days := int(diff / dayDuration)
	if diff%dayDuration > 0 {
		days++
	}
	return days
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
