// Package persist saves and restores cart snapshots in a key/value storage.
// Persistence is best-effort: every failure is logged and absorbed here.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/obs"
)

// DefaultKey is the storage key holding the cart snapshot.
const DefaultKey = "cartState"

const defaultTimeout = 2 * time.Second

type CartSnapshot struct {
	Storage domain.Storage
	Key     string
	// Timeout bounds each Save; Save has no caller context.
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewCartSnapshot(storage domain.Storage, key string, timeout time.Duration) *CartSnapshot {
	if key == "" {
		key = DefaultKey
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CartSnapshot{Storage: storage, Key: key, Timeout: timeout}
}

func (a *CartSnapshot) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return obs.Logger()
}

// Load returns the stored cart, or ok=false when nothing usable is stored.
func (a *CartSnapshot) Load(ctx context.Context) (domain.CartState, bool) {
	if a.Storage == nil {
		return domain.CartState{}, false
	}
	raw, ok, err := a.Storage.GetItem(ctx, a.Key)
	if err != nil {
		a.logger().Warn("cart_load_failed", "error", &domain.PersistenceError{Op: "load", Key: a.Key, Err: err})
		return domain.CartState{}, false
	}
	if !ok || raw == "" {
		return domain.CartState{}, false
	}
	var state domain.CartState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		a.logger().Warn("cart_load_failed", "error", &domain.PersistenceError{Op: "decode", Key: a.Key, Err: err})
		return domain.CartState{}, false
	}
	if state.Items == nil {
		state.Items = make(map[int64]domain.CartEntry)
	}
	return state, true
}

// Save writes the cart snapshot. Failures are logged, never returned.
func (a *CartSnapshot) Save(state domain.CartState) {
	if a.Storage == nil {
		return
	}
	if state.Items == nil {
		state.Items = make(map[int64]domain.CartEntry)
	}
	raw, err := json.Marshal(state)
	if err != nil {
		a.logger().Error("cart_save_failed", "error", &domain.PersistenceError{Op: "encode", Key: a.Key, Err: err})
		return
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := a.Storage.SetItem(ctx, a.Key, string(raw)); err != nil {
		level := slog.LevelError
		if errors.Is(err, context.DeadlineExceeded) {
			level = slog.LevelWarn
		}
		a.logger().Log(ctx, level, "cart_save_failed", "error", &domain.PersistenceError{Op: "save", Key: a.Key, Err: err})
		return
	}
	a.logger().Debug("cart_saved", "key", a.Key, "entries", len(state.Items))
}

var _ domain.CartPersister = (*CartSnapshot)(nil)
