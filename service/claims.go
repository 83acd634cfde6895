package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/crm/claims"
)

// Claims owns claim CRUD plus the dedicated status-update operation. Every
// status change - including the initial one at creation - goes through the
// lifecycle tracker so the history entry is persisted atomically with the
// claim itself.
type Claims struct {
	store crm.Store
	now   func() time.Time
}

// Create validates and persists a claim with its initial history entry.
// The client reference is backfilled from the policy when absent, and a
// CLM-NNNNNN claim number is generated when the caller did not supply one.
func (s *Claims) Create(ctx context.Context, c *crm.Claim) (*crm.Claim, error) {
	policy, err := s.store.GetPolicy(ctx, c.PolicyID)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, crm.ErrPolicyNotFound
	}
	if c.ClientID == "" {
		c.ClientID = policy.ClientID
	}

	if c.ClaimNumber == "" {
		n, err := s.nextClaimNumber(ctx)
		if err != nil {
			return nil, err
		}
		c.ClaimNumber = n
	}

	now := s.now()
	c.ApplyDefaults(now)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.StatusHistory = nil // history starts here; never accepted from callers
	claims.TrackCreation(c, now)

	if err := s.store.CreateClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Claims) Get(ctx context.Context, id crm.ClaimID) (*crm.Claim, error) {
	c, err := s.store.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, crm.ErrClaimNotFound
	}
	return c, nil
}

func (s *Claims) List(ctx context.Context, f crm.ClaimFilter) ([]crm.Claim, int, error) {
	return s.store.ListClaims(ctx, f)
}

// Update replaces the claim's editable fields. The stored history and
// settlement date are carried forward; if the payload changes the status, a
// bare history entry is appended, same as the original create-time rule.
func (s *Claims) Update(ctx context.Context, c *crm.Claim) (*crm.Claim, error) {
	existing, err := s.store.GetClaim(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, crm.ErrClaimNotFound
	}

	c.StatusHistory = existing.StatusHistory
	c.SettlementDate = existing.SettlementDate
	if c.ClaimNumber == "" {
		c.ClaimNumber = existing.ClaimNumber
	}
	now := s.now()
	c.ApplyDefaults(now)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	claims.Track(c, existing.Status, "", "", now)

	if err := s.store.UpdateClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateStatus is the dedicated status-change operation: it requires a
// target status and records the optional note and actor on the audit entry.
func (s *Claims) UpdateStatus(ctx context.Context, id crm.ClaimID, status crm.ClaimStatus, note string, updatedBy crm.AgentID) (*crm.Claim, error) {
	if !crm.ValidClaimStatus(status) {
		return nil, &crm.ValidationError{Field: "status", Reason: "invalid claim status"}
	}

	c, err := s.store.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, crm.ErrClaimNotFound
	}

	previous := c.Status
	c.Status = status
	claims.Track(c, previous, note, updatedBy, s.now())

	if err := s.store.UpdateClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Claims) Delete(ctx context.Context, id crm.ClaimID) error {
	deleted, err := s.store.DeleteClaim(ctx, id)
	if err != nil {
		return err
	}
	if deleted == nil {
		return crm.ErrClaimNotFound
	}
	return nil
}

// Pending returns open claims (Pending or Under Review), most recent first.
func (s *Claims) Pending(ctx context.Context) ([]crm.Claim, error) {
	claims, _, err := s.store.ListClaims(ctx, crm.ClaimFilter{
		Statuses: []crm.ClaimStatus{crm.ClaimPending, crm.ClaimUnderReview},
		Page:     crm.PageRequest{Limit: -1, SortBy: "-claimDate"},
	})
	return claims, err
}

func (s *Claims) Stats(ctx context.Context) (*crm.ClaimStats, error) {
	return s.store.ClaimStats(ctx)
}

// nextClaimNumber continues the CLM-NNNNNN sequence from the highest
// existing number.
func (s *Claims) nextClaimNumber(ctx context.Context) (string, error) {
	last, err := s.store.LastClaimNumber(ctx)
	if err != nil {
		return "", err
	}
	n := 0
	if parts := strings.SplitN(last, "-", 2); len(parts) == 2 {
		if parsed, err := strconv.Atoi(parts[1]); err == nil {
			n = parsed
		}
	}
	return fmt.Sprintf("CLM-%06d", n+1), nil
}
