package crm

import "time"

// =============================================================================
// USER - An agent or back-office profile
// =============================================================================

// User is an agency staff profile. There is no authentication layer yet;
// the service package resolves the acting user through a
// CurrentActorProvider so real auth can slot in later.
type User struct {
	ID       AgentID
	Name     string
	Email    string
	Phone    string
	Role     Role
	Location string
	Bio      string
	Status   UserStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDefaults fills zero-valued enum fields with their creation defaults.
func (u *User) ApplyDefaults() {
	if u.Role == "" {
		u.Role = RoleAgent
	}
	if u.Status == "" {
		u.Status = UserActive
	}
}

// Validate checks field constraints.
func (u *User) Validate() error {
	if u.Name == "" {
		return &ValidationError{Field: "name", Reason: "user name is required"}
	}
	if len(u.Name) > 100 {
		return &ValidationError{Field: "name", Reason: "name cannot exceed 100 characters"}
	}
	if u.Email == "" {
		return &ValidationError{Field: "email", Reason: "email is required"}
	}
	if len(u.Bio) > 500 {
		return &ValidationError{Field: "bio", Reason: "bio cannot exceed 500 characters"}
	}
	switch u.Role {
	case RoleAdministrator, RoleAgent, RoleManager:
	default:
		return &ValidationError{Field: "role", Reason: "invalid role"}
	}
	switch u.Status {
	case UserActive, UserInactive:
	default:
		return &ValidationError{Field: "status", Reason: "invalid user status"}
	}
	return nil
}
