/*
errors.go - Centralized error types for the CRM domain

PURPOSE:
  All error types in one place for consistency and discoverability.
  Handlers map these onto HTTP status codes; services wrap them with
  request context.

ERROR CATEGORIES:
  1. NotFound  - referenced record does not exist (write aborted, 404)
  2. Validation - field constraint violated (write aborted, 400)
  3. Conflict  - unique policy/claim number already taken (409)
  4. Reconciliation - derived-state recompute failed after the primary
     write committed (logged and swallowed, never surfaced)

USAGE:
    if crm.IsNotFound(err) { ... 404 ... }
    var verr *crm.ValidationError
    if errors.As(err, &verr) { ... 400 with verr.Field ... }

SEE ALSO:
  - store.go: Interfaces whose implementations return these errors
  - service/: Propagation policy (best-effort reconciliation)
*/
package crm

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrClientNotFound   = errors.New("client not found")
	ErrPolicyNotFound   = errors.New("policy not found")
	ErrClaimNotFound    = errors.New("claim not found")
	ErrReminderNotFound = errors.New("reminder not found")
	ErrTargetNotFound   = errors.New("target not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrDuplicateNumber is returned when a policy or claim number collides
	// with an existing record. Numbers are unique across the book.
	ErrDuplicateNumber = errors.New("duplicate number")

	// ErrClientHasActivePolicies is returned when deleting a client that
	// still holds active policies.
	ErrClientHasActivePolicies = errors.New("client has active policies")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a single field constraint violation. The write is
// aborted before any side effect runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ReconciliationError wraps a failure in a post-commit recompute (client
// rollups, target allocation). The primary write has already committed, so
// callers log it and report success; rollups stay stale until the next
// successful recompute.
type ReconciliationError struct {
	Op  string // e.g. "rollup.recompute", "targets.allocate"
	Err error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrPolicyNotFound) ||
		errors.Is(err, ErrClaimNotFound) ||
		errors.Is(err, ErrReminderNotFound) ||
		errors.Is(err, ErrTargetNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidation returns true for caller-input errors.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsConflict returns true for uniqueness and precondition conflicts.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateNumber) ||
		errors.Is(err, ErrClientHasActivePolicies)
}
