/*
Package service composes the write paths of the CRM.

PURPOSE:
  Each service owns one entity's operations: validation, the primary write,
  and the explicit post-commit steps (client rollup recompute, target
  allocation, claim history tracking). The HTTP layer stays a thin
  translation of requests onto these services.

PROPAGATION POLICY:
  Primary-entity errors (not found, validation, duplicate numbers) abort
  the write and surface to the caller. Post-commit reconciliation failures
  are logged and swallowed: the primary write has committed and still
  reports success, leaving derived state stale until the next successful
  recompute.

ACTOR RESOLUTION:
  There is no authentication layer. Operations that need an acting user
  resolve it through CurrentActorProvider; the default implementation
  gets-or-creates a seeded admin profile, and real auth replaces the
  provider without touching business logic.

SEE ALSO:
  - crm/rollup, crm/targets, crm/claims: The post-commit components
  - api/: HTTP translation layer
*/
package service

import (
	"log"
	"time"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/crm/rollup"
	"github.com/ledgerline/insurance-crm/crm/targets"
)

// Services bundles every entity service over one store.
type Services struct {
	Clients   *Clients
	Policies  *Policies
	Claims    *Claims
	Reminders *Reminders
	Targets   *Targets
	Reports   *Reports
	Profile   *Profile
}

// New wires the services, the rollup reconciler, and the target allocator
// over the given store.
func New(store crm.Store, actors CurrentActorProvider) *Services {
	rec := rollup.New(store)
	alloc := targets.New(store)
	return &Services{
		Clients:   &Clients{store: store},
		Policies:  &Policies{store: store, reconciler: rec, allocator: alloc},
		Claims:    &Claims{store: store, now: time.Now},
		Reminders: &Reminders{store: store, now: time.Now},
		Targets:   &Targets{store: store, now: time.Now},
		Reports:   &Reports{store: store, now: time.Now},
		Profile:   &Profile{store: store, actors: actors},
	}
}

// logReconciliation reports a best-effort post-commit failure without
// propagating it.
func logReconciliation(err error) {
	if err != nil {
		log.Printf("reconciliation: %v", err)
	}
}
