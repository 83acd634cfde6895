package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/crm/rollup"
)

// Clients owns client CRUD. The rollup fields on a client are never
// accepted from callers: creates zero them, updates carry the stored
// values forward.
type Clients struct {
	store crm.Store
}

func (s *Clients) Create(ctx context.Context, c *crm.Client) (*crm.Client, error) {
	c.ApplyDefaults()
	c.TotalPolicies = 0
	c.TotalPremium = decimal.Zero
	c.TotalMaturity = decimal.Zero
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Clients) Get(ctx context.Context, id crm.ClientID) (*crm.Client, error) {
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, crm.ErrClientNotFound
	}
	return c, nil
}

func (s *Clients) List(ctx context.Context, f crm.ClientFilter) ([]crm.Client, int, error) {
	return s.store.ListClients(ctx, f)
}

// Update replaces the client's editable fields. Rollups are copied from the
// stored record and the prospect-promotion rule re-runs at save time, so a
// caller cannot demote a policy-holding client back to prospect.
func (s *Clients) Update(ctx context.Context, c *crm.Client) (*crm.Client, error) {
	existing, err := s.store.GetClient(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, crm.ErrClientNotFound
	}

	c.TotalPolicies = existing.TotalPolicies
	c.TotalPremium = existing.TotalPremium
	c.TotalMaturity = existing.TotalMaturity
	c.ApplyDefaults()
	// The request payload does not carry the prospect flag, so a plain
	// edit must not flip it either way; only promotion below may.
	c.IsNewProspect = existing.IsNewProspect
	rollup.ApplyProspectPromotion(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a client unless it still holds active policies.
func (s *Clients) Delete(ctx context.Context, id crm.ClientID) error {
	active, err := s.store.CountClientPolicies(ctx, id, crm.PolicyActive)
	if err != nil {
		return err
	}
	if active > 0 {
		return crm.ErrClientHasActivePolicies
	}
	deleted, err := s.store.DeleteClient(ctx, id)
	if err != nil {
		return err
	}
	if deleted == nil {
		return crm.ErrClientNotFound
	}
	return nil
}

func (s *Clients) Policies(ctx context.Context, id crm.ClientID) ([]crm.Policy, error) {
	return s.store.ListClientPolicies(ctx, id)
}

func (s *Clients) Stats(ctx context.Context) (*crm.ClientStats, error) {
	return s.store.ClientStats(ctx)
}
