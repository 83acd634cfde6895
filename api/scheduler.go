/*
scheduler.go - Background target status sweeper

PURPOSE:
  Periodically re-derives the status of active sales targets so that
  targets whose window has closed flip to Completed or Expired without
  waiting for the next policy sale to touch them.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Re-derives achievement, bonus, and status for every Active target
  - Persists only targets whose derived fields actually changed
  - Completion wins over expiry when both hold at sweep time

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether the sweeper is active (default: true)

USAGE:
  sweeper := NewTargetSweeper(store)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - crm/targets/allocator.go: ApplyDerived, the shared derivation
  - service/targets.go: The same derivation on the write path
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ledgerline/insurance-crm/crm"
	"github.com/ledgerline/insurance-crm/crm/targets"
)

// TargetSweeper flips stale active targets to their terminal status.
type TargetSweeper struct {
	Store         crm.Store
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewTargetSweeper creates a new sweeper.
func NewTargetSweeper(store crm.Store) *TargetSweeper {
	return &TargetSweeper{
		Store:         store,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (ts *TargetSweeper) Start() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}

	ts.ticker = time.NewTicker(ts.CheckInterval)
	ts.wg.Add(1)

	go ts.run()

	log.Printf("[Sweeper] Started with check interval: %v", ts.CheckInterval)
}

// Stop stops the sweeper.
func (ts *TargetSweeper) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.ticker != nil {
		ts.ticker.Stop()
		close(ts.stop)
		ts.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (ts *TargetSweeper) run() {
	defer ts.wg.Done()

	// Run immediately on start
	ts.sweep()

	for {
		select {
		case <-ts.ticker.C:
			ts.sweep()
		case <-ts.stop:
			return
		}
	}
}

func (ts *TargetSweeper) sweep() {
	ctx := context.Background()
	now := time.Now()

	active, _, err := ts.Store.ListTargets(ctx, crm.TargetFilter{
		Status: crm.TargetActive,
		Page:   crm.PageRequest{Limit: -1},
	})
	if err != nil {
		log.Printf("[Sweeper] Error listing active targets: %v", err)
		return
	}

	updated := 0
	for i := range active {
		t := active[i]
		targets.ApplyDerived(&t, now)
		if t.Status == crm.TargetActive {
			continue
		}
		if err := ts.Store.UpdateTarget(ctx, &t); err != nil {
			log.Printf("[Sweeper] Error closing target %s: %v", t.ID, err)
			continue
		}
		updated++
	}

	if updated > 0 {
		log.Printf("[Sweeper] Closed %d target(s)", updated)
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (ts *TargetSweeper) RunNow() {
	ts.sweep()
}
