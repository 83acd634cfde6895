package service

import (
	"context"
	"time"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/crm/rollup"
	"github.com/ledgerline/insurance-crm/crm/targets"
)

// Policies owns policy CRUD and runs the two post-commit steps: the client
// rollup recompute on every write, and target allocation on create when an
// agent is assigned.
type Policies struct {
	store      crm.Store
	reconciler *rollup.Reconciler
	allocator  *targets.Allocator
}

// Create validates and persists a policy, then recomputes the client's
// rollups and credits matching sales targets. The post-commit steps are
// best-effort: their failures are logged, and the created policy is still
// returned as success.
func (s *Policies) Create(ctx context.Context, p *crm.Policy) (*crm.Policy, error) {
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	client, err := s.store.GetClient(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, crm.ErrClientNotFound
	}

	if err := s.store.CreatePolicy(ctx, p); err != nil {
		return nil, err
	}

	// Post-commit pipeline. Order matters for readability only: the two
	// steps touch disjoint records.
	logReconciliation(s.reconciler.Recompute(ctx, p.ClientID))
	if p.AssignedAgent != "" {
		logReconciliation(s.allocator.AllocatePolicy(ctx, p))
	}
	return p, nil
}

func (s *Policies) Get(ctx context.Context, id crm.PolicyID) (*crm.Policy, error) {
	p, err := s.store.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, crm.ErrPolicyNotFound
	}
	return p, nil
}

func (s *Policies) List(ctx context.Context, f crm.PolicyFilter) ([]crm.Policy, int, error) {
	return s.store.ListPolicies(ctx, f)
}

// Update persists changed policy fields and recomputes the client rollups.
// Targets are not re-credited on update; only creation allocates.
func (s *Policies) Update(ctx context.Context, p *crm.Policy) (*crm.Policy, error) {
	existing, err := s.store.GetPolicy(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, crm.ErrPolicyNotFound
	}

	p.CreatedAt = existing.CreatedAt
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePolicy(ctx, p); err != nil {
		return nil, err
	}

	logReconciliation(s.reconciler.Recompute(ctx, p.ClientID))
	return p, nil
}

// Delete removes the policy and recomputes the client's rollups using the
// client reference captured from the deleted record.
func (s *Policies) Delete(ctx context.Context, id crm.PolicyID) error {
	deleted, err := s.store.DeletePolicy(ctx, id)
	if err != nil {
		return err
	}
	if deleted == nil {
		return crm.ErrPolicyNotFound
	}
	logReconciliation(s.reconciler.Recompute(ctx, deleted.ClientID))
	return nil
}

func (s *Policies) UpcomingRenewals(ctx context.Context, days int) ([]crm.Policy, error) {
	if days < 1 {
		days = 30
	}
	return s.store.ListUpcomingRenewals(ctx, time.Now(), days)
}

func (s *Policies) Matured(ctx context.Context) ([]crm.Policy, error) {
	return s.store.ListMaturedPolicies(ctx)
}

func (s *Policies) Stats(ctx context.Context) (*crm.PolicyStats, error) {
	return s.store.PolicyStats(ctx)
}
