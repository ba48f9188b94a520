// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about schedule recalculation, resource bookings and snapshot
// store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the engine packages stay
// free of observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetScheduleHooks(&myScheduleHooks{})
//	    observability.SetLedgerHooks(&myLedgerHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Schedule().OnRecalculate(projectID, taskCount, elapsed, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Schedule Hooks
// =============================================================================

// ScheduleHooks receives events from the schedule orchestrator.
type ScheduleHooks interface {
	// OnRecalculate records a critical path recalculation.
	OnRecalculate(project string, taskCount int, duration time.Duration, err error)

	// OnRollback records a mutating operation that was undone.
	OnRollback(project, op string, err error)
}

// =============================================================================
// Ledger Hooks
// =============================================================================

// LedgerHooks receives events from resource ledger operations.
type LedgerHooks interface {
	// OnAssign records a booking. forced is true when the capacity check was skipped.
	OnAssign(resource, task string, quantity int, forced bool)

	// OnRelease records a released booking.
	OnRelease(resource, task string, quantity int)

	// OnCapacityRejected records a booking refused for lack of capacity.
	OnCapacityRejected(resource, task string, quantity int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from snapshot store operations.
type StoreHooks interface {
	// OnStoreHit records a snapshot found in the store.
	OnStoreHit(ctx context.Context, backend string)

	// OnStoreMiss records a snapshot lookup that found nothing.
	OnStoreMiss(ctx context.Context, backend string)

	// OnStoreSet records a snapshot write.
	OnStoreSet(ctx context.Context, backend string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopScheduleHooks is a no-op implementation of ScheduleHooks.
type NoopScheduleHooks struct{}

func (NoopScheduleHooks) OnRecalculate(string, int, time.Duration, error) {}
func (NoopScheduleHooks) OnRollback(string, string, error)                {}

// NoopLedgerHooks is a no-op implementation of LedgerHooks.
type NoopLedgerHooks struct{}

func (NoopLedgerHooks) OnAssign(string, string, int, bool)     {}
func (NoopLedgerHooks) OnRelease(string, string, int)          {}
func (NoopLedgerHooks) OnCapacityRejected(string, string, int)     {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string)      {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string)     {}
func (NoopStoreHooks) OnStoreSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	scheduleHooks ScheduleHooks = NoopScheduleHooks{}
	ledgerHooks   LedgerHooks   = NoopLedgerHooks{}
	storeHooks    StoreHooks    = NoopStoreHooks{}
	hooksMu       sync.RWMutex
)

// SetScheduleHooks registers custom schedule hooks.
// This should be called once at application startup before any schedule operations.
func SetScheduleHooks(h ScheduleHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scheduleHooks = h
	}
}

// SetLedgerHooks registers custom ledger hooks.
func SetLedgerHooks(h LedgerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		ledgerHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Schedule returns the registered schedule hooks.
func Schedule() ScheduleHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scheduleHooks
}

// Ledger returns the registered ledger hooks.
func Ledger() LedgerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return ledgerHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	scheduleHooks = NoopScheduleHooks{}
	ledgerHooks = NoopLedgerHooks{}
	storeHooks = NoopStoreHooks{}
}
