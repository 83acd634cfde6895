package service

import (
	"context"

	"github.com/ledgerline/insurance-crm/crm"
)

// CurrentActorProvider resolves the acting user for a request. There is no
// authentication layer; the default provider returns a seeded admin
// profile, and an auth middleware can supply a real implementation without
// touching the services.
type CurrentActorProvider interface {
	CurrentActor(ctx context.Context) (*crm.User, error)
}

const defaultActorEmail = "admin@insurance-crm.com"

// DefaultActorProvider gets-or-creates the seeded admin profile on first
// use.
type DefaultActorProvider struct {
	store crm.UserStore
}

func NewDefaultActorProvider(store crm.UserStore) *DefaultActorProvider {
	return &DefaultActorProvider{store: store}
}

func (p *DefaultActorProvider) CurrentActor(ctx context.Context) (*crm.User, error) {
	u, err := p.store.GetUserByEmail(ctx, defaultActorEmail)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	u = &crm.User{
		Name:     "Admin User",
		Email:    defaultActorEmail,
		Phone:    "+91 98765 43210",
		Role:     crm.RoleAdministrator,
		Location: "Mumbai, India",
		Bio:      "Senior Insurance Agent with 10+ years of experience in Life and Health insurance sectors.",
	}
	u.ApplyDefaults()
	if err := p.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Profile serves the current user's profile.
type Profile struct {
	store  crm.Store
	actors CurrentActorProvider
}

func (s *Profile) Get(ctx context.Context) (*crm.User, error) {
	return s.actors.CurrentActor(ctx)
}

// Update applies the editable profile fields. Empty fields keep their
// stored values, matching the partial-update behavior of the endpoint.
func (s *Profile) Update(ctx context.Context, patch crm.User) (*crm.User, error) {
	u, err := s.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, crm.ErrUserNotFound
	}

	if patch.Name != "" {
		u.Name = patch.Name
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.Phone != "" {
		u.Phone = patch.Phone
	}
	if patch.Location != "" {
		u.Location = patch.Location
	}
	if patch.Bio != "" {
		u.Bio = patch.Bio
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
