/*
Package rollup keeps each client's policy statistics in sync.

PURPOSE:
  A client record carries three rollup fields - TotalPolicies, TotalPremium,
  TotalMaturity - that must always equal an aggregation over the client's
  current policy set. This package recomputes them whenever a policy is
  created, updated, or deleted.

TRIGGERING:
  The service layer calls Recompute as an explicit post-commit step after
  every policy write. There is no storage-layer hook magic: the dependency
  between "write policy" and "recompute client" is visible in the call site
  and testable in isolation.

IDEMPOTENCY:
  Recompute is a pure read-aggregate-write: running it twice with no
  intervening policy writes produces identical rollup values.

CONSISTENCY:
  Recompute is best-effort. A client that disappears between the policy
  write and the recompute is not an error, and two concurrent policy writes
  for the same client race on the final values (last reconciliation wins).
  The primary policy write is never rolled back on recompute failure.

SEE ALSO:
  - crm/targets: The other post-commit step on policy creation
  - service/policies.go: Call sites
*/
package rollup

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/insurance-crm/crm"
)

// Store is the slice of the CRM store the reconciler needs.
type Store interface {
	GetClient(ctx context.Context, id crm.ClientID) (*crm.Client, error)
	UpdateClient(ctx context.Context, c *crm.Client) error
	ListClientPolicies(ctx context.Context, clientID crm.ClientID) ([]crm.Policy, error)
}

// Reconciler recomputes client rollups from the policy set.
type Reconciler struct {
	store Store
}

func New(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Recompute rebuilds the rollup fields for one client and persists them.
// Missing clients are skipped silently: the policy write that triggered the
// recompute has already committed and must not be failed retroactively.
func (r *Reconciler) Recompute(ctx context.Context, clientID crm.ClientID) error {
	policies, err := r.store.ListClientPolicies(ctx, clientID)
	if err != nil {
		return &crm.ReconciliationError{Op: "rollup.recompute", Err: fmt.Errorf("list policies: %w", err)}
	}

	client, err := r.store.GetClient(ctx, clientID)
	if err != nil {
		return &crm.ReconciliationError{Op: "rollup.recompute", Err: fmt.Errorf("get client: %w", err)}
	}
	if client == nil {
		return nil
	}

	client.TotalPolicies = len(policies)
	client.TotalPremium = decimal.Zero
	client.TotalMaturity = decimal.Zero
	for _, p := range policies {
		client.TotalPremium = client.TotalPremium.Add(p.PremiumAmount)
		client.TotalMaturity = client.TotalMaturity.Add(p.SumAssured)
	}

	ApplyProspectPromotion(client)

	if err := r.store.UpdateClient(ctx, client); err != nil {
		return &crm.ReconciliationError{Op: "rollup.recompute", Err: fmt.Errorf("update client: %w", err)}
	}
	return nil
}

// ApplyProspectPromotion promotes a prospect to an active client once it
// holds at least one policy. Evaluated at client-save time, so a direct
// client update after the rollup lands also sees the promoted state.
func ApplyProspectPromotion(c *crm.Client) {
	if c.TotalPolicies > 0 {
		c.IsNewProspect = false
		c.Status = crm.ClientActive
	}
}
