// Package sqlite provides the public API for the notereel note store.
// It exposes constructors for stores and persistence slots while keeping
// implementation details internal.
package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/notereel/internal/sqlite"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

// Store is the persistent note store.
type Store = sqlite.Store

// Slot is a persistence slot for database snapshots.
type Slot = sqlite.Slot

// Option configures a Store.
type Option = sqlite.Option

// Re-exported store options.
var (
	WithLogger  = sqlite.WithLogger
	WithMetrics = sqlite.WithMetrics
)

// OpenSlot builds the slot selected by cfg.SlotBackend.
//
// Example:
//
//	cfg := types.DefaultConfig(".notereel")
//	slot, err := sqlite.OpenSlot(ctx, cfg)
//	store := sqlite.NewStore(cfg, slot)
//	err = store.Initialize(ctx)
//	defer store.Close(ctx)
func OpenSlot(ctx context.Context, cfg types.Config) (Slot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.SlotBackend {
	case types.SlotFile:
		return sqlite.NewFileSlot(cfg.DataDir, cfg.QuotaBytes), nil
	case types.SlotMemory:
		return sqlite.NewMemorySlot(cfg.QuotaBytes), nil
	case types.SlotRedis:
		return sqlite.DialRedisSlot(ctx, cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, cfg.SlotBackend)
	}
}

// NewStore creates a store over slot. The store is not initialized.
func NewStore(cfg types.Config, slot Slot, opts ...Option) *Store {
	return sqlite.NewStore(cfg, slot, opts...)
}
