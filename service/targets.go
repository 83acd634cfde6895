package service

import (
	"context"
	"time"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/crm/targets"
)

// Targets owns sales-target CRUD. Every save passes through
// targets.ApplyDerived so the persisted percentage, bonus status, and
// Completed/Expired transitions stay consistent with the amounts.
type Targets struct {
	store crm.Store
	now   func() time.Time
}

func (s *Targets) Create(ctx context.Context, t *crm.Target) (*crm.Target, error) {
	agent, err := s.store.GetUser(ctx, t.AgentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, crm.ErrUserNotFound
	}

	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	targets.ApplyDerived(t, s.now())
	if err := s.store.CreateTarget(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Targets) Get(ctx context.Context, id crm.TargetID) (*crm.Target, error) {
	t, err := s.store.GetTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, crm.ErrTargetNotFound
	}
	return t, nil
}

func (s *Targets) List(ctx context.Context, f crm.TargetFilter) ([]crm.Target, int, error) {
	return s.store.ListTargets(ctx, f)
}

func (s *Targets) Update(ctx context.Context, t *crm.Target) (*crm.Target, error) {
	existing, err := s.store.GetTarget(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, crm.ErrTargetNotFound
	}

	t.CreatedAt = existing.CreatedAt
	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	targets.ApplyDerived(t, s.now())
	if err := s.store.UpdateTarget(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Targets) Delete(ctx context.Context, id crm.TargetID) error {
	deleted, err := s.store.DeleteTarget(ctx, id)
	if err != nil {
		return err
	}
	if deleted == nil {
		return crm.ErrTargetNotFound
	}
	return nil
}

// ActiveForAgent returns the agent's open targets, the set a new policy
// would be credited against.
func (s *Targets) ActiveForAgent(ctx context.Context, agentID crm.AgentID) ([]crm.Target, error) {
	return s.store.ListActiveTargetsForAgent(ctx, agentID)
}

// Stats aggregates active targets: counts, totals, and top performers.
func (s *Targets) Stats(ctx context.Context) (*crm.TargetStats, error) {
	return s.store.TargetStats(ctx)
}

// Performance summarizes one agent's targets, optionally restricted to a
// single period.
func (s *Targets) Performance(ctx context.Context, agentID crm.AgentID, period crm.TargetPeriod) (*crm.AgentPerformance, error) {
	agent, err := s.store.GetUser(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, crm.ErrUserNotFound
	}
	return s.store.AgentPerformance(ctx, agentID, period)
}
