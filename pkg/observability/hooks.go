// Package observability provides hooks for metrics and diagnostics.
//
// This package enables optional instrumentation without adding hard
// dependencies on a specific backend to the storage and partitioning
// libraries. Consumers register hooks at startup; libraries emit events
// through whatever is registered, falling back to no-ops.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for partitioning and storage events
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The Prometheus implementation lives in the prom subpackage.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := prom.New(prometheus.NewRegistry())
//	    observability.SetPartitionHooks(m)
//	    observability.SetStoreHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Partition().OnPartitionStart(ctx, nodeCount)
//	// ... partition ...
//	observability.Partition().OnPartitionComplete(ctx, cells, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Partition Hooks
// =============================================================================

// PartitionHooks receives events from the inertial flow partitioner.
//
// Implementations must be safe for concurrent use: sibling subtrees may be
// split on different goroutines.
type PartitionHooks interface {
	// OnPartitionStart fires once before the first split.
	OnPartitionStart(ctx context.Context, nodeCount int)

	// OnSplit fires after a node set has been divided along its best cut.
	OnSplit(ctx context.Context, nodeCount, cutSize int, duration time.Duration)

	// OnLeaf fires for every emitted cell; reason is a short machine label
	// (e.g. "within_bounds", "budget_exhausted").
	OnLeaf(ctx context.Context, nodeCount int, reason string)

	// OnPartitionComplete fires once when the tree is built or the build failed.
	OnPartitionComplete(ctx context.Context, cellCount int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from extended edge stores.
type StoreHooks interface {
	// OnGrow records a capacity increase of the named store.
	OnGrow(store string, capacityBytes int)

	// OnFlush records a persist of the named store.
	OnFlush(ctx context.Context, store string, bytes int, duration time.Duration, err error)

	// OnLoad records a reload of the named store.
	OnLoad(ctx context.Context, store string, bytes int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPartitionHooks is a no-op implementation of PartitionHooks.
type NoopPartitionHooks struct{}

func (NoopPartitionHooks) OnPartitionStart(context.Context, int) {}
func (NoopPartitionHooks) OnSplit(context.Context, int, int, time.Duration) {}
func (NoopPartitionHooks) OnLeaf(context.Context, int, string) {}
func (NoopPartitionHooks) OnPartitionComplete(context.Context, int, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnGrow(string, int) {}
func (NoopStoreHooks) OnFlush(context.Context, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnLoad(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	partitionHooks PartitionHooks = NoopPartitionHooks{}
	storeHooks     StoreHooks     = NoopStoreHooks{}
	hooksMu        sync.RWMutex
)

// SetPartitionHooks registers custom partition hooks.
// This should be called once at application startup before any partitioning.
func SetPartitionHooks(h PartitionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		partitionHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store is used.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Partition returns the registered partition hooks.
func Partition() PartitionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return partitionHooks
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
	partitionHooks = NoopPartitionHooks{}
	storeHooks = NoopStoreHooks{}
}
