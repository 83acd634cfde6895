package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLIENT - A policyholder or prospect
// =============================================================================

// Client is a policyholder. The Total* rollups are derived from the client's
// policy set by the rollup reconciler and are never accepted from callers.
type Client struct {
	ID             ClientID
	Name           string
	Email          string
	Phone          string
	AlternatePhone string
	DateOfBirth    *time.Time
	Address        Address
	ClientType     ClientType
	Priority       Priority
	Tags           []string
	Notes          string
	IsNewProspect  bool
	AssignedAgent  AgentID
	Status         ClientStatus

	// Rollups maintained by rollup.Reconciler.
	TotalPolicies int
	TotalPremium  decimal.Decimal
	TotalMaturity decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDefaults fills zero-valued enum fields with their creation defaults.
func (c *Client) ApplyDefaults() {
	if c.ClientType == "" {
		c.ClientType = ClientIndividual
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	if c.Status == "" {
		c.Status = ClientProspect
		c.IsNewProspect = true
	}
	if c.Address.Country == "" {
		c.Address.Country = "India"
	}
}

// Validate checks field constraints. Rollup fields are not validated here
// because they are never caller-supplied.
func (c *Client) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Reason: "client name is required"}
	}
	if len(c.Name) > 100 {
		return &ValidationError{Field: "name", Reason: "name cannot exceed 100 characters"}
	}
	if c.Phone == "" {
		return &ValidationError{Field: "phone", Reason: "phone number is required"}
	}
	if len(c.Notes) > 1000 {
		return &ValidationError{Field: "notes", Reason: "notes cannot exceed 1000 characters"}
	}
	switch c.ClientType {
	case ClientIndividual, ClientCorporate:
	default:
		return &ValidationError{Field: "clientType", Reason: "invalid client type"}
	}
	switch c.Status {
	case ClientActive, ClientInactive, ClientProspect:
	default:
		return &ValidationError{Field: "status", Reason: "invalid client status"}
	}
	switch c.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return &ValidationError{Field: "priority", Reason: "invalid priority"}
	}
	return nil
}
