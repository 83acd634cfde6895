/*
store.go - Persistence interfaces for CRM entities

PURPOSE:
  Defines the interface between the domain logic and the database. Every
  component (rollup reconciler, target allocator, claim tracker, services,
  HTTP handlers) is expressed purely in terms of these interfaces, so the
  persistence technology stays swappable.

KEY INTERFACES:
  ClientStore .. UserStore: Per-entity CRUD, filtered listing, aggregates
  Store:                    All of the above combined

LISTING CONTRACT:
  List* returns one page of records plus the total match count. Filters are
  ANDed; zero-valued filter fields are ignored. SortBy uses the API field
  name with a leading '-' for descending (e.g. "-createdAt").

NOT-FOUND CONTRACT:
  Get* and Delete* return (nil, nil) when the record does not exist; callers
  translate that into the sentinel errors from errors.go. Update* returns
  the sentinel directly since there is no record to hand back.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/memory: In-memory for tests and dev

SEE ALSO:
  - crm/rollup, crm/targets, crm/claims: Consumers via narrow interfaces
  - service/: Write-path orchestration
*/
package crm

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAGING & FILTERS
// =============================================================================

// PageRequest selects one page of a listing. Zero values fall back to the
// first page of ten records, matching the API defaults. A negative Limit
// disables paging entirely (used by the report endpoints, which summarize
// the full match set).
type PageRequest struct {
	Page   int
	Limit  int
	SortBy string // field name, '-' prefix for descending
}

// Unlimited reports whether paging is disabled.
func (p PageRequest) Unlimited() bool { return p.Limit < 0 }

// Normalize returns the request with defaults applied.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = 10
	}
	return p
}

// Offset is the number of records to skip for this page.
func (p PageRequest) Offset() int { return (p.Page - 1) * p.Limit }

type ClientFilter struct {
	Search        string // matches name, email, or phone
	Status        ClientStatus
	ClientType    ClientType
	Priority      Priority
	AssignedAgent AgentID
	Page          PageRequest
}

type PolicyFilter struct {
	Search        string // matches policy number or plan name
	PolicyType    PolicyType
	Company       Company
	Status        PolicyStatus
	PaymentStatus PaymentStatus
	ClientID      ClientID
	AssignedAgent AgentID
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Page          PageRequest
}

type ClaimFilter struct {
	Search     string // matches claim number
	Status     ClaimStatus
	Statuses   []ClaimStatus // non-empty overrides Status
	ClaimType  ClaimType
	Priority   Priority
	ClientID   ClientID
	PolicyID   PolicyID
	AssignedTo AgentID
	ClaimFrom  *time.Time
	ClaimTo    *time.Time
	Page       PageRequest
}

type ReminderFilter struct {
	ReminderType  ReminderType
	Status        ReminderStatus
	Priority      Priority
	ClientID      ClientID
	AssignedAgent AgentID
	DueFrom       *time.Time
	DueTo         *time.Time
	Page          PageRequest
}

type TargetFilter struct {
	AgentID      AgentID
	TargetPeriod TargetPeriod
	ProductType  ProductType
	Status       TargetStatus
	Page         PageRequest
}

// =============================================================================
// AGGREGATE ROWS - Report and dashboard summaries
// =============================================================================

type StatusCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type ClientStats struct {
	TotalClients             int             `json:"totalClients"`
	ActiveClients            int             `json:"activeClients"`
	Prospects                int             `json:"prospects"`
	TotalPremium             decimal.Decimal `json:"totalPremium"`
	AveragePoliciesPerClient float64         `json:"averagePoliciesPerClient"`
	StatusBreakdown          []StatusCount   `json:"statusBreakdown"`
}

type PolicyBreakdownRow struct {
	Key          string          `json:"key"`
	Count        int             `json:"count"`
	TotalPremium decimal.Decimal `json:"totalPremium"`
}

type PolicyStats struct {
	TotalPolicies    int                  `json:"totalPolicies"`
	ActivePolicies   int                  `json:"activePolicies"`
	TotalPremium     decimal.Decimal      `json:"totalPremium"`
	TotalSumAssured  decimal.Decimal      `json:"totalSumAssured"`
	TypeBreakdown    []PolicyBreakdownRow `json:"typeBreakdown"`
	CompanyBreakdown []PolicyBreakdownRow `json:"companyBreakdown"`
	StatusBreakdown  []StatusCount        `json:"statusBreakdown"`
}

type ClaimBreakdownRow struct {
	Key         string          `json:"key"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type ClaimStats struct {
	TotalClaims           int                 `json:"totalClaims"`
	TotalClaimAmount      decimal.Decimal     `json:"totalClaimAmount"`
	TotalApprovedAmount   decimal.Decimal     `json:"totalApprovedAmount"`
	ApprovedClaims        int                 `json:"approvedClaims"`
	RejectedClaims        int                 `json:"rejectedClaims"`
	PendingClaims         int                 `json:"pendingClaims"`
	SettledClaims         int                 `json:"settledClaims"`
	StatusBreakdown       []ClaimBreakdownRow `json:"statusBreakdown"`
	TypeBreakdown         []ClaimBreakdownRow `json:"typeBreakdown"`
	AverageProcessingDays float64             `json:"averageProcessingDays"`
}

type ReminderStats struct {
	DueToday        int           `json:"dueToday"`
	TypeBreakdown   []StatusCount `json:"typeBreakdown"` // pending reminders by type
	StatusBreakdown []StatusCount `json:"statusBreakdown"`
}

type TargetBreakdownRow struct {
	Key            string          `json:"key"`
	Count          int             `json:"count"`
	TargetAmount   decimal.Decimal `json:"targetAmount"`
	AchievedAmount decimal.Decimal `json:"achievedAmount"`
}

type TargetPerformer struct {
	AgentID               AgentID         `json:"agentId"`
	AgentName             string          `json:"agentName"`
	AgentEmail            string          `json:"agentEmail"`
	TargetAmount          decimal.Decimal `json:"targetAmount"`
	AchievedAmount        decimal.Decimal `json:"achievedAmount"`
	AchievementPercentage float64         `json:"achievementPercentage"`
}

type TargetStats struct {
	TotalTargets        int                  `json:"totalTargets"`
	TotalTargetAmount   decimal.Decimal      `json:"totalTargetAmount"`
	TotalAchievedAmount decimal.Decimal      `json:"totalAchievedAmount"`
	AverageAchievement  float64              `json:"averageAchievement"`
	AchievedTargets     int                  `json:"achievedTargets"`
	PeriodBreakdown     []TargetBreakdownRow `json:"periodBreakdown"`
	ProductBreakdown    []TargetBreakdownRow `json:"productBreakdown"`
	TopPerformers       []TargetPerformer    `json:"topPerformers"`
}

type AgentPerformance struct {
	TotalTargets        int             `json:"totalTargets"`
	ActiveTargets       int             `json:"activeTargets"`
	CompletedTargets    int             `json:"completedTargets"`
	TotalTargetAmount   decimal.Decimal `json:"totalTargetAmount"`
	TotalAchievedAmount decimal.Decimal `json:"totalAchievedAmount"`
	AverageAchievement  float64         `json:"averageAchievement"`
}

// =============================================================================
// PER-ENTITY STORES
// =============================================================================

// ClientStore persists clients. Create fills ID and timestamps.
type ClientStore interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id ClientID) (*Client, error)
	ListClients(ctx context.Context, f ClientFilter) ([]Client, int, error)
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, id ClientID) (*Client, error)
	ClientStats(ctx context.Context) (*ClientStats, error)
}

// PolicyStore persists policies. CreatePolicy returns ErrDuplicateNumber
// when the policy number is already taken.
type PolicyStore interface {
	CreatePolicy(ctx context.Context, p *Policy) error
	GetPolicy(ctx context.Context, id PolicyID) (*Policy, error)
	ListPolicies(ctx context.Context, f PolicyFilter) ([]Policy, int, error)
	// ListClientPolicies returns every policy for a client, newest first.
	// This is the rollup reconciler's read path.
	ListClientPolicies(ctx context.Context, clientID ClientID) ([]Policy, error)
	CountClientPolicies(ctx context.Context, clientID ClientID, status PolicyStatus) (int, error)
	UpdatePolicy(ctx context.Context, p *Policy) error
	DeletePolicy(ctx context.Context, id PolicyID) (*Policy, error)
	// ListUpcomingRenewals returns active policies whose renewal date falls
	// within [now, now+days].
	ListUpcomingRenewals(ctx context.Context, now time.Time, days int) ([]Policy, error)
	ListMaturedPolicies(ctx context.Context) ([]Policy, error)
	PolicyStats(ctx context.Context) (*PolicyStats, error)
}

// ClaimStore persists claims, including their status history.
type ClaimStore interface {
	CreateClaim(ctx context.Context, c *Claim) error
	GetClaim(ctx context.Context, id ClaimID) (*Claim, error)
	ListClaims(ctx context.Context, f ClaimFilter) ([]Claim, int, error)
	UpdateClaim(ctx context.Context, c *Claim) error
	DeleteClaim(ctx context.Context, id ClaimID) (*Claim, error)
	// LastClaimNumber returns the lexicographically greatest claim number,
	// or "" when no claims exist. Used for CLM-NNNNNN generation.
	LastClaimNumber(ctx context.Context) (string, error)
	ClaimStats(ctx context.Context) (*ClaimStats, error)
}

// ReminderStore persists reminders.
type ReminderStore interface {
	CreateReminder(ctx context.Context, r *Reminder) error
	GetReminder(ctx context.Context, id ReminderID) (*Reminder, error)
	ListReminders(ctx context.Context, f ReminderFilter) ([]Reminder, int, error)
	UpdateReminder(ctx context.Context, r *Reminder) error
	DeleteReminder(ctx context.Context, id ReminderID) (*Reminder, error)
	ReminderStats(ctx context.Context, now time.Time) (*ReminderStats, error)
}

// TargetStore persists sales targets.
type TargetStore interface {
	CreateTarget(ctx context.Context, t *Target) error
	GetTarget(ctx context.Context, id TargetID) (*Target, error)
	ListTargets(ctx context.Context, f TargetFilter) ([]Target, int, error)
	// ListActiveTargetsForAgent returns the agent's Active targets ordered
	// by end date. This is the allocator's read path.
	ListActiveTargetsForAgent(ctx context.Context, agentID AgentID) ([]Target, error)
	UpdateTarget(ctx context.Context, t *Target) error
	DeleteTarget(ctx context.Context, id TargetID) (*Target, error)
	TargetStats(ctx context.Context) (*TargetStats, error)
	AgentPerformance(ctx context.Context, agentID AgentID, period TargetPeriod) (*AgentPerformance, error)
}

// UserStore persists staff profiles.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id AgentID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
}

// Store combines every per-entity store. The sqlite and memory
// implementations satisfy the whole thing.
type Store interface {
	ClientStore
	PolicyStore
	ClaimStore
	ReminderStore
	TargetStore
	UserStore
}
