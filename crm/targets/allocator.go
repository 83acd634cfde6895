/*
Package targets credits newly written policies toward agent sales targets.

PURPOSE:
  When a policy is created for an agent, every one of that agent's Active
  targets whose window covers the policy's creation time and whose product
  category matches gets the policy's premium added to AchievedAmount and
  its policy count incremented. A policy can credit zero, one, or many
  targets at once (e.g. a Monthly "All" target and a Quarterly "Life"
  target both open).

MATCHING RULE:
  target.Agent == policy.AssignedAgent
  AND target.Status == Active
  AND target.StartDate <= policy.CreatedAt <= target.EndDate  (inclusive)
  AND (target.ProductType == All OR it equals the policy's mapped product)

DERIVED STATE:
  Every save re-derives the clamped achievement percentage, checks the
  bonus threshold, and runs the auto-transitions: Completed once achieved,
  then Expired once the end date has passed. Achievement is evaluated
  first, so a target that is both over-achieved and past its end date lands
  on Completed, not Expired.

CONSISTENCY:
  Allocation is best-effort and non-transactional. If persisting one target
  fails after others in the batch succeeded, the partial allocation stands;
  the failure is reported for logging but never unwinds the policy write.

SEE ALSO:
  - crm/rollup: The other post-commit step on policy writes
  - service/policies.go, service/targets.go: Call sites
*/
package targets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/insurance-crm/crm"
)

var hundred = decimal.NewFromInt(100)

// Store is the slice of the CRM store the allocator needs.
type Store interface {
	ListActiveTargetsForAgent(ctx context.Context, agentID crm.AgentID) ([]crm.Target, error)
	UpdateTarget(ctx context.Context, t *crm.Target) error
}

// Allocator distributes policy premiums across matching open targets.
type Allocator struct {
	store Store
}

func New(store Store) *Allocator {
	return &Allocator{store: store}
}

// AllocatePolicy credits the policy toward every matching target. Policies
// without an assigned agent are skipped entirely. Persist failures on
// individual targets are collected and returned as a single
// ReconciliationError; targets persisted before the failure keep their
// credit.
func (a *Allocator) AllocatePolicy(ctx context.Context, p *crm.Policy) error {
	if p.AssignedAgent == "" {
		return nil
	}

	open, err := a.store.ListActiveTargetsForAgent(ctx, p.AssignedAgent)
	if err != nil {
		return &crm.ReconciliationError{Op: "targets.allocate", Err: fmt.Errorf("list targets: %w", err)}
	}

	now := time.Now()
	var failed []error
	for i := range open {
		t := &open[i]
		if !Matches(t, p) {
			continue
		}
		t.AchievedAmount = t.AchievedAmount.Add(p.PremiumAmount)
		t.AchievedPolicies++
		ApplyDerived(t, now)
		if err := a.store.UpdateTarget(ctx, t); err != nil {
			failed = append(failed, fmt.Errorf("target %s: %w", t.ID, err))
		}
	}

	if len(failed) > 0 {
		return &crm.ReconciliationError{Op: "targets.allocate", Err: errors.Join(failed...)}
	}
	return nil
}

// Matches reports whether a target should be credited for a policy. The
// window check uses the policy's CreatedAt as the policy event time, with
// both endpoints inclusive.
func Matches(t *crm.Target, p *crm.Policy) bool {
	if t.AgentID != p.AssignedAgent || t.Status != crm.TargetActive {
		return false
	}
	at := p.CreatedAt
	if at.Before(t.StartDate) || at.After(t.EndDate) {
		return false
	}
	return productMatches(t.ProductType, p.PolicyType)
}

func productMatches(tp crm.ProductType, pt crm.PolicyType) bool {
	if tp == crm.ProductAll {
		return true
	}
	mapped, ok := crm.ProductOf(pt)
	return ok && mapped == tp
}

// ApplyDerived re-derives the persisted achievement percentage, bonus
// status, and the Completed/Expired auto-transitions. Call before every
// target save. Completion is checked before expiry: achievement wins when
// both hold at evaluation time.
func ApplyDerived(t *crm.Target, now time.Time) {
	if t.TargetAmount.IsPositive() {
		pct, _ := t.AchievedAmount.Div(t.TargetAmount).Mul(hundred).Float64()
		if pct > 100 {
			pct = 100
		}
		t.AchievementPercentage = pct
	} else {
		t.AchievementPercentage = 0
	}

	if t.Bonus != nil && t.Bonus.Threshold > 0 &&
		t.AchievementPercentage >= t.Bonus.Threshold &&
		t.Bonus.Status == crm.BonusNotApplicable {
		t.Bonus.Status = crm.BonusPending
	}

	if t.Status == crm.TargetActive && t.IsAchieved() {
		t.Status = crm.TargetCompleted
	}
	if t.Status == crm.TargetActive && t.EndDate.Before(now) {
		t.Status = crm.TargetExpired
	}
}
