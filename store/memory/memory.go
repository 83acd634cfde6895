/*
Package memory provides an in-memory implementation of crm.Store.

PURPOSE:
  Backs unit tests and quick local runs without touching disk. Mirrors the
  sqlite store's observable behavior: generated UUIDs, (nil, nil) for
  missing records, filter/sort/page semantics, and ErrDuplicateNumber on
  policy/claim number collisions.

CONCURRENCY:
  A single RWMutex guards all maps. Records are copied on the way in and
  out so callers never alias store-internal state.

SEE ALSO:
  - crm/store.go: Interface contracts
  - store/sqlite: Production implementation
*/
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/insurance-crm/crm"
)

// Store keeps every entity in maps keyed by ID.
type Store struct {
	mu        sync.RWMutex
	clients   map[crm.ClientID]*crm.Client
	policies  map[crm.PolicyID]*crm.Policy
	claims    map[crm.ClaimID]*crm.Claim
	reminders map[crm.ReminderID]*crm.Reminder
	targets   map[crm.TargetID]*crm.Target
	users     map[crm.AgentID]*crm.User

	// now is swappable so tests can pin record timestamps.
	now func() time.Time
}

var _ crm.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		clients:   make(map[crm.ClientID]*crm.Client),
		policies:  make(map[crm.PolicyID]*crm.Policy),
		claims:    make(map[crm.ClaimID]*crm.Claim),
		reminders: make(map[crm.ReminderID]*crm.Reminder),
		targets:   make(map[crm.TargetID]*crm.Target),
		users:     make(map[crm.AgentID]*crm.User),
		now:       time.Now,
	}
}

// SetClock overrides the timestamp source. Test hook.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func newID() string { return uuid.NewString() }

// =============================================================================
// CLIENTS
// =============================================================================

func (s *Store) CreateClient(_ context.Context, c *crm.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = crm.ClientID(newID())
	}
	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := cloneClient(c)
	s.clients[c.ID] = &cp
	return nil
}

func (s *Store) GetClient(_ context.Context, id crm.ClientID) (*crm.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, nil
	}
	cp := cloneClient(c)
	return &cp, nil
}

func (s *Store) ListClients(_ context.Context, f crm.ClientFilter) ([]crm.Client, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []crm.Client
	for _, c := range s.clients {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.ClientType != "" && c.ClientType != f.ClientType {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		if f.AssignedAgent != "" && c.AssignedAgent != f.AssignedAgent {
			continue
		}
		if f.Search != "" && !containsFold(f.Search, c.Name, c.Email, c.Phone) {
			continue
		}
		matched = append(matched, cloneClient(c))
	}

	sortSlice(matched, f.Page.SortBy, "-createdAt", func(a, b crm.Client, field string) int {
		switch field {
		case "name":
			return strings.Compare(a.Name, b.Name)
		default: // createdAt
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	})

	total := len(matched)
	return pageOf(matched, f.Page), total, nil
}

func (s *Store) UpdateClient(_ context.Context, c *crm.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.clients[c.ID]
	if !ok {
		return crm.ErrClientNotFound
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = s.now()
	cp := cloneClient(c)
	s.clients[c.ID] = &cp
	return nil
}

func (s *Store) DeleteClient(_ context.Context, id crm.ClientID) (*crm.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, nil
	}
	delete(s.clients, id)
	cp := cloneClient(c)
	return &cp, nil
}

func (s *Store) ClientStats(_ context.Context) (*crm.ClientStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &crm.ClientStats{TotalPremium: decimal.Zero}
	byStatus := map[string]int{}
	totalPolicies := 0
	for _, c := range s.clients {
		stats.TotalClients++
		if c.Status == crm.ClientActive {
			stats.ActiveClients++
		}
		if c.IsNewProspect {
			stats.Prospects++
		}
		stats.TotalPremium = stats.TotalPremium.Add(c.TotalPremium)
		totalPolicies += c.TotalPolicies
		byStatus[string(c.Status)]++
	}
	if stats.TotalClients > 0 {
		stats.AveragePoliciesPerClient = float64(totalPolicies) / float64(stats.TotalClients)
	}
	stats.StatusBreakdown = statusCounts(byStatus)
	return stats, nil
}

// =============================================================================
// POLICIES
// =============================================================================

func (s *Store) CreatePolicy(_ context.Context, p *crm.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.policies {
		if existing.PolicyNumber == p.PolicyNumber {
			return crm.ErrDuplicateNumber
		}
	}
	if p.ID == "" {
		p.ID = crm.PolicyID(newID())
	}
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	cp := clonePolicy(p)
	s.policies[p.ID] = &cp
	return nil
}

func (s *Store) GetPolicy(_ context.Context, id crm.PolicyID) (*crm.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[id]
	if !ok {
		return nil, nil
	}
	cp := clonePolicy(p)
	return &cp, nil
}

func (s *Store) ListPolicies(_ context.Context, f crm.PolicyFilter) ([]crm.Policy, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []crm.Policy
	for _, p := range s.policies {
		if f.PolicyType != "" && p.PolicyType != f.PolicyType {
			continue
		}
		if f.Company != "" && p.Company != f.Company {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && p.PaymentStatus != f.PaymentStatus {
			continue
		}
		if f.ClientID != "" && p.ClientID != f.ClientID {
			continue
		}
		if f.AssignedAgent != "" && p.AssignedAgent != f.AssignedAgent {
			continue
		}
		if f.CreatedFrom != nil && p.CreatedAt.Before(*f.CreatedFrom) {
			continue
		}
		if f.CreatedTo != nil && p.CreatedAt.After(*f.CreatedTo) {
			continue
		}
		if f.Search != "" && !containsFold(f.Search, p.PolicyNumber, p.PlanName) {
			continue
		}
		matched = append(matched, clonePolicy(p))
	}

	sortSlice(matched, f.Page.SortBy, "-createdAt", func(a, b crm.Policy, field string) int {
		switch field {
		case "premiumAmount":
			return a.PremiumAmount.Cmp(b.PremiumAmount)
		case "renewalDate":
			return compareTimePtr(a.RenewalDate, b.RenewalDate)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	})

	total := len(matched)
	return pageOf(matched, f.Page), total, nil
}

func (s *Store) ListClientPolicies(_ context.Context, clientID crm.ClientID) ([]crm.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []crm.Policy
	for _, p := range s.policies {
		if p.ClientID == clientID {
			out = append(out, clonePolicy(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CountClientPolicies(_ context.Context, clientID crm.ClientID, status crm.PolicyStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.policies {
		if p.ClientID == clientID && (status == "" || p.Status == status) {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdatePolicy(_ context.Context, p *crm.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.policies[p.ID]
	if !ok {
		return crm.ErrPolicyNotFound
	}
	for _, existing := range s.policies {
		if existing.ID != p.ID && existing.PolicyNumber == p.PolicyNumber {
			return crm.ErrDuplicateNumber
		}
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = s.now()
	cp := clonePolicy(p)
	s.policies[p.ID] = &cp
	return nil
}

func (s *Store) DeletePolicy(_ context.Context, id crm.PolicyID) (*crm.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.policies[id]
	if !ok {
		return nil, nil
	}
	delete(s.policies, id)
	cp := clonePolicy(p)
	return &cp, nil
}

func (s *Store) ListUpcomingRenewals(_ context.Context, now time.Time, days int) ([]crm.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	to := now.AddDate(0, 0, days)
	var out []crm.Policy
	for _, p := range s.policies {
		if p.Status != crm.PolicyActive || p.RenewalDate == nil {
			continue
		}
		if p.RenewalDate.Before(now) || p.RenewalDate.After(to) {
			continue
		}
		out = append(out, clonePolicy(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RenewalDate.Before(*out[j].RenewalDate) })
	return out, nil
}

func (s *Store) ListMaturedPolicies(_ context.Context) ([]crm.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []crm.Policy
	for _, p := range s.policies {
		if p.Status == crm.PolicyMatured {
			out = append(out, clonePolicy(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaturityDate.After(out[j].MaturityDate) })
	return out, nil
}

func (s *Store) PolicyStats(_ context.Context) (*crm.PolicyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &crm.PolicyStats{TotalPremium: decimal.Zero, TotalSumAssured: decimal.Zero}
	byType := map[string]*crm.PolicyBreakdownRow{}
	byCompany := map[string]*crm.PolicyBreakdownRow{}
	byStatus := map[string]int{}
	for _, p := range s.policies {
		stats.TotalPolicies++
		if p.Status == crm.PolicyActive {
			stats.ActivePolicies++
		}
		stats.TotalPremium = stats.TotalPremium.Add(p.PremiumAmount)
		stats.TotalSumAssured = stats.TotalSumAssured.Add(p.SumAssured)
		addBreakdown(byType, string(p.PolicyType), p.PremiumAmount)
		addBreakdown(byCompany, string(p.Company), p.PremiumAmount)
		byStatus[string(p.Status)]++
	}
	stats.TypeBreakdown = breakdownRows(byType)
	stats.CompanyBreakdown = breakdownRows(byCompany)
	stats.StatusBreakdown = statusCounts(byStatus)
	return stats, nil
}

// =============================================================================
// CLAIMS
// =============================================================================

func (s *Store) CreateClaim(_ context.Context, c *crm.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.claims {
		if existing.ClaimNumber == c.ClaimNumber {
			return crm.ErrDuplicateNumber
		}
	}
	if c.ID == "" {
		c.ID = crm.ClaimID(newID())
	}
	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := cloneClaim(c)
	s.claims[c.ID] = &cp
	return nil
}

func (s *Store) GetClaim(_ context.Context, id crm.ClaimID) (*crm.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, nil
	}
	cp := cloneClaim(c)
	return &cp, nil
}

func (s *Store) ListClaims(_ context.Context, f crm.ClaimFilter) ([]crm.Claim, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []crm.Claim
	for _, c := range s.claims {
		if len(f.Statuses) > 0 {
			if !containsStatus(f.Statuses, c.Status) {
				continue
			}
		} else if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.ClaimType != "" && c.ClaimType != f.ClaimType {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		if f.ClientID != "" && c.ClientID != f.ClientID {
			continue
		}
		if f.PolicyID != "" && c.PolicyID != f.PolicyID {
			continue
		}
		if f.AssignedTo != "" && c.AssignedTo != f.AssignedTo {
			continue
		}
		if f.ClaimFrom != nil && c.ClaimDate.Before(*f.ClaimFrom) {
			continue
		}
		if f.ClaimTo != nil && c.ClaimDate.After(*f.ClaimTo) {
			continue
		}
		if f.Search != "" && !containsFold(f.Search, c.ClaimNumber) {
			continue
		}
		matched = append(matched, cloneClaim(c))
	}

	sortSlice(matched, f.Page.SortBy, "-claimDate", func(a, b crm.Claim, field string) int {
		switch field {
		case "createdAt":
			return a.CreatedAt.Compare(b.CreatedAt)
		case "claimAmount":
			return a.ClaimAmount.Cmp(b.ClaimAmount)
		default:
			return a.ClaimDate.Compare(b.ClaimDate)
		}
	})

	total := len(matched)
	return pageOf(matched, f.Page), total, nil
}

func (s *Store) UpdateClaim(_ context.Context, c *crm.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.claims[c.ID]
	if !ok {
		return crm.ErrClaimNotFound
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = s.now()
	cp := cloneClaim(c)
	s.claims[c.ID] = &cp
	return nil
}

func (s *Store) DeleteClaim(_ context.Context, id crm.ClaimID) (*crm.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, nil
	}
	delete(s.claims, id)
	cp := cloneClaim(c)
	return &cp, nil
}

func (s *Store) LastClaimNumber(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Rank on the numeric suffix, not the raw string: lexicographic order
	// misranks CLM-1000000 below CLM-999999.
	last, best := "", -1
	for _, c := range s.claims {
		if n := claimNumberSuffix(c.ClaimNumber); n > best {
			best, last = n, c.ClaimNumber
		}
	}
	return last, nil
}

// claimNumberSuffix parses the numeric part of a CLM-NNNNNN number,
// returning 0 for numbers in any other format.
func claimNumberSuffix(number string) int {
	parts := strings.SplitN(number, "-", 2)
	if len(parts) != 2 {
		return 0
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return n
}

func (s *Store) ClaimStats(_ context.Context) (*crm.ClaimStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &crm.ClaimStats{
		TotalClaimAmount:    decimal.Zero,
		TotalApprovedAmount: decimal.Zero,
	}
	byStatus := map[string]*crm.ClaimBreakdownRow{}
	byType := map[string]*crm.ClaimBreakdownRow{}
	settledDays := 0
	settled := 0
	for _, c := range s.claims {
		stats.TotalClaims++
		stats.TotalClaimAmount = stats.TotalClaimAmount.Add(c.ClaimAmount)
		if c.ApprovedAmount != nil {
			stats.TotalApprovedAmount = stats.TotalApprovedAmount.Add(*c.ApprovedAmount)
		}
		switch c.Status {
		case crm.ClaimApproved:
			stats.ApprovedClaims++
		case crm.ClaimRejected:
			stats.RejectedClaims++
		case crm.ClaimPending:
			stats.PendingClaims++
		case crm.ClaimSettled:
			stats.SettledClaims++
		}
		addClaimBreakdown(byStatus, string(c.Status), c.ClaimAmount)
		addClaimBreakdown(byType, string(c.ClaimType), c.ClaimAmount)
		if c.Status == crm.ClaimSettled && c.SettlementDate != nil {
			settledDays += c.ProcessingDays(s.now())
			settled++
		}
	}
	stats.StatusBreakdown = claimBreakdownRows(byStatus)
	stats.TypeBreakdown = claimBreakdownRows(byType)
	if settled > 0 {
		stats.AverageProcessingDays = float64(settledDays) / float64(settled)
	}
	return stats, nil
}

// =============================================================================
// REMINDERS
// =============================================================================

func (s *Store) CreateReminder(_ context.Context, r *crm.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = crm.ReminderID(newID())
	}
	now := s.now()
	r.CreatedAt = now
	r.UpdatedAt = now
	cp := cloneReminder(r)
	s.reminders[r.ID] = &cp
	return nil
}

func (s *Store) GetReminder(_ context.Context, id crm.ReminderID) (*crm.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reminders[id]
	if !ok {
		return nil, nil
	}
	cp := cloneReminder(r)
	return &cp, nil
}

func (s *Store) ListReminders(_ context.Context, f crm.ReminderFilter) ([]crm.Reminder, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []crm.Reminder
	for _, r := range s.reminders {
		if f.ReminderType != "" && r.ReminderType != f.ReminderType {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Priority != "" && r.Priority != f.Priority {
			continue
		}
		if f.ClientID != "" && r.ClientID != f.ClientID {
			continue
		}
		if f.AssignedAgent != "" && r.AssignedAgent != f.AssignedAgent {
			continue
		}
		if f.DueFrom != nil && r.DueDate.Before(*f.DueFrom) {
			continue
		}
		if f.DueTo != nil && r.DueDate.After(*f.DueTo) {
			continue
		}
		matched = append(matched, cloneReminder(r))
	}

	sortSlice(matched, f.Page.SortBy, "dueDate", func(a, b crm.Reminder, field string) int {
		switch field {
		case "createdAt":
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			return a.DueDate.Compare(b.DueDate)
		}
	})

	total := len(matched)
	return pageOf(matched, f.Page), total, nil
}

func (s *Store) UpdateReminder(_ context.Context, r *crm.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.reminders[r.ID]
	if !ok {
		return crm.ErrReminderNotFound
	}
	r.CreatedAt = old.CreatedAt
	r.UpdatedAt = s.now()
	cp := cloneReminder(r)
	s.reminders[r.ID] = &cp
	return nil
}

func (s *Store) DeleteReminder(_ context.Context, id crm.ReminderID) (*crm.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return nil, nil
	}
	delete(s.reminders, id)
	cp := cloneReminder(r)
	return &cp, nil
}

func (s *Store) ReminderStats(_ context.Context, now time.Time) (*crm.ReminderStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &crm.ReminderStats{}
	byType := map[string]int{}
	byStatus := map[string]int{}
	dayStart := crm.StartOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)
	for _, r := range s.reminders {
		byStatus[string(r.Status)]++
		if r.Status != crm.ReminderPending {
			continue
		}
		byType[string(r.ReminderType)]++
		if !r.DueDate.Before(dayStart) && r.DueDate.Before(dayEnd) {
			stats.DueToday++
		}
	}
	stats.TypeBreakdown = statusCounts(byType)
	stats.StatusBreakdown = statusCounts(byStatus)
	return stats, nil
}

// =============================================================================
// TARGETS
// =============================================================================

func (s *Store) CreateTarget(_ context.Context, t *crm.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = crm.TargetID(newID())
	}
	now := s.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := cloneTarget(t)
	s.targets[t.ID] = &cp
	return nil
}

func (s *Store) GetTarget(_ context.Context, id crm.TargetID) (*crm.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.targets[id]
	if !ok {
		return nil, nil
	}
	cp := cloneTarget(t)
	return &cp, nil
}

func (s *Store) ListTargets(_ context.Context, f crm.TargetFilter) ([]crm.Target, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []crm.Target
	for _, t := range s.targets {
		if f.AgentID != "" && t.AgentID != f.AgentID {
			continue
		}
		if f.TargetPeriod != "" && t.TargetPeriod != f.TargetPeriod {
			continue
		}
		if f.ProductType != "" && t.ProductType != f.ProductType {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		matched = append(matched, cloneTarget(t))
	}

	sortSlice(matched, f.Page.SortBy, "-startDate", func(a, b crm.Target, field string) int {
		switch field {
		case "endDate":
			return a.EndDate.Compare(b.EndDate)
		case "createdAt":
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			return a.StartDate.Compare(b.StartDate)
		}
	})

	total := len(matched)
	return pageOf(matched, f.Page), total, nil
}

func (s *Store) ListActiveTargetsForAgent(_ context.Context, agentID crm.AgentID) ([]crm.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []crm.Target
	for _, t := range s.targets {
		if t.AgentID == agentID && t.Status == crm.TargetActive {
			out = append(out, cloneTarget(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (s *Store) UpdateTarget(_ context.Context, t *crm.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.targets[t.ID]
	if !ok {
		return crm.ErrTargetNotFound
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = s.now()
	cp := cloneTarget(t)
	s.targets[t.ID] = &cp
	return nil
}

func (s *Store) DeleteTarget(_ context.Context, id crm.TargetID) (*crm.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.targets[id]
	if !ok {
		return nil, nil
	}
	delete(s.targets, id)
	cp := cloneTarget(t)
	return &cp, nil
}

func (s *Store) TargetStats(_ context.Context) (*crm.TargetStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &crm.TargetStats{
		TotalTargetAmount:   decimal.Zero,
		TotalAchievedAmount: decimal.Zero,
	}
	byPeriod := map[string]*crm.TargetBreakdownRow{}
	byProduct := map[string]*crm.TargetBreakdownRow{}
	var performers []crm.TargetPerformer
	sumPct := 0.0
	for _, t := range s.targets {
		if t.Status != crm.TargetActive {
			continue
		}
		stats.TotalTargets++
		stats.TotalTargetAmount = stats.TotalTargetAmount.Add(t.TargetAmount)
		stats.TotalAchievedAmount = stats.TotalAchievedAmount.Add(t.AchievedAmount)
		sumPct += t.AchievementPercentage
		if t.AchievementPercentage >= 100 {
			stats.AchievedTargets++
		}
		addTargetBreakdown(byPeriod, string(t.TargetPeriod), t)
		addTargetBreakdown(byProduct, string(t.ProductType), t)
		if t.AchievementPercentage > 0 {
			perf := crm.TargetPerformer{
				AgentID:               t.AgentID,
				TargetAmount:          t.TargetAmount,
				AchievedAmount:        t.AchievedAmount,
				AchievementPercentage: t.AchievementPercentage,
			}
			if u, ok := s.users[t.AgentID]; ok {
				perf.AgentName = u.Name
				perf.AgentEmail = u.Email
			}
			performers = append(performers, perf)
		}
	}
	if stats.TotalTargets > 0 {
		stats.AverageAchievement = sumPct / float64(stats.TotalTargets)
	}
	sort.Slice(performers, func(i, j int) bool {
		return performers[i].AchievementPercentage > performers[j].AchievementPercentage
	})
	if len(performers) > 5 {
		performers = performers[:5]
	}
	stats.TopPerformers = performers
	stats.PeriodBreakdown = targetBreakdownRows(byPeriod)
	stats.ProductBreakdown = targetBreakdownRows(byProduct)
	return stats, nil
}

func (s *Store) AgentPerformance(_ context.Context, agentID crm.AgentID, period crm.TargetPeriod) (*crm.AgentPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perf := &crm.AgentPerformance{
		TotalTargetAmount:   decimal.Zero,
		TotalAchievedAmount: decimal.Zero,
	}
	sumPct := 0.0
	for _, t := range s.targets {
		if t.AgentID != agentID || (period != "" && t.TargetPeriod != period) {
			continue
		}
		perf.TotalTargets++
		switch t.Status {
		case crm.TargetActive:
			perf.ActiveTargets++
		case crm.TargetCompleted:
			perf.CompletedTargets++
		}
		perf.TotalTargetAmount = perf.TotalTargetAmount.Add(t.TargetAmount)
		perf.TotalAchievedAmount = perf.TotalAchievedAmount.Add(t.AchievedAmount)
		sumPct += t.AchievementPercentage
	}
	if perf.TotalTargets > 0 {
		perf.AverageAchievement = sumPct / float64(perf.TotalTargets)
	}
	return perf, nil
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) CreateUser(_ context.Context, u *crm.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = crm.AgentID(newID())
	}
	now := s.now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUser(_ context.Context, id crm.AgentID) (*crm.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*crm.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateUser(_ context.Context, u *crm.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[u.ID]
	if !ok {
		return crm.ErrUserNotFound
	}
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = s.now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func cloneClient(c *crm.Client) crm.Client {
	cp := *c
	cp.Tags = append([]string(nil), c.Tags...)
	return cp
}

func clonePolicy(p *crm.Policy) crm.Policy {
	cp := *p
	cp.Nominees = append([]crm.Nominee(nil), p.Nominees...)
	return cp
}

func cloneClaim(c *crm.Claim) crm.Claim {
	cp := *c
	cp.StatusHistory = append([]crm.StatusChange(nil), c.StatusHistory...)
	return cp
}

func cloneReminder(r *crm.Reminder) crm.Reminder {
	cp := *r
	return cp
}

func cloneTarget(t *crm.Target) crm.Target {
	cp := *t
	if t.Bonus != nil {
		b := *t.Bonus
		cp.Bonus = &b
	}
	return cp
}

// containsFold reports whether any candidate contains the needle,
// case-insensitively. Mirrors the sqlite store's LIKE matching.
func containsFold(needle string, candidates ...string) bool {
	n := strings.ToLower(needle)
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), n) {
			return true
		}
	}
	return false
}

func containsStatus(ss []crm.ClaimStatus, s crm.ClaimStatus) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}

// sortSlice orders matched records by the requested field, falling back to
// the listing's default. A '-' prefix flips to descending.
func sortSlice[T any](items []T, sortBy, def string, cmp func(a, b T, field string) int) {
	if sortBy == "" {
		sortBy = def
	}
	desc := strings.HasPrefix(sortBy, "-")
	field := strings.TrimPrefix(sortBy, "-")
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j], field)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func pageOf[T any](items []T, p crm.PageRequest) []T {
	if p.Unlimited() {
		return items
	}
	p = p.Normalize()
	start := p.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func statusCounts(m map[string]int) []crm.StatusCount {
	out := make([]crm.StatusCount, 0, len(m))
	for k, v := range m {
		out = append(out, crm.StatusCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func addBreakdown(m map[string]*crm.PolicyBreakdownRow, key string, premium decimal.Decimal) {
	row, ok := m[key]
	if !ok {
		row = &crm.PolicyBreakdownRow{Key: key, TotalPremium: decimal.Zero}
		m[key] = row
	}
	row.Count++
	row.TotalPremium = row.TotalPremium.Add(premium)
}

func breakdownRows(m map[string]*crm.PolicyBreakdownRow) []crm.PolicyBreakdownRow {
	out := make([]crm.PolicyBreakdownRow, 0, len(m))
	for _, row := range m {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalPremium.GreaterThan(out[j].TotalPremium) })
	return out
}

func addClaimBreakdown(m map[string]*crm.ClaimBreakdownRow, key string, amount decimal.Decimal) {
	row, ok := m[key]
	if !ok {
		row = &crm.ClaimBreakdownRow{Key: key, TotalAmount: decimal.Zero}
		m[key] = row
	}
	row.Count++
	row.TotalAmount = row.TotalAmount.Add(amount)
}

func claimBreakdownRows(m map[string]*crm.ClaimBreakdownRow) []crm.ClaimBreakdownRow {
	out := make([]crm.ClaimBreakdownRow, 0, len(m))
	for _, row := range m {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func addTargetBreakdown(m map[string]*crm.TargetBreakdownRow, key string, t *crm.Target) {
	row, ok := m[key]
	if !ok {
		row = &crm.TargetBreakdownRow{Key: key, TargetAmount: decimal.Zero, AchievedAmount: decimal.Zero}
		m[key] = row
	}
	row.Count++
	row.TargetAmount = row.TargetAmount.Add(t.TargetAmount)
	row.AchievedAmount = row.AchievedAmount.Add(t.AchievedAmount)
}

func targetBreakdownRows(m map[string]*crm.TargetBreakdownRow) []crm.TargetBreakdownRow {
	out := make([]crm.TargetBreakdownRow, 0, len(m))
	for _, row := range m {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
