package txmonitor

import (
	"context"
	"time"
)

// ChainCooldownStorage tracks which chains are backing off after an explorer
// rate-limit rejection. The cooldown survives process restarts when backed by
// an external store.
type ChainCooldownStorage interface {
	// StartCooldown marks the chain as rate limited for the given duration.
	StartCooldown(ctx context.Context, chain string, ttl time.Duration) error

	// InCooldown reports whether the chain is currently backing off.
	InCooldown(ctx context.Context, chain string) (bool, error)
}

// nopCooldownStorage never reports a cooldown. Used when no store is wired.
type nopCooldownStorage struct{}

func (nopCooldownStorage) StartCooldown(ctx context.Context, chain string, ttl time.Duration) error {
	return nil
}

func (nopCooldownStorage) InCooldown(ctx context.Context, chain string) (bool, error) {
	return false, nil
}
