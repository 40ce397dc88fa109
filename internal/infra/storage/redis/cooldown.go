package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
)

// cooldownPrefix defines the base key prefix used for chain rate-limit
// cooldown flags.
const cooldownPrefix = "explorer"

// cooldownKey returns the Redis key holding the cooldown flag for the
// specified chain.
//
// Format: "explorer:cooldown:{chain}"
func cooldownKey(chain string) string {
	return fmt.Sprintf("%s:cooldown:%s", cooldownPrefix, chain)
}

// StartCooldown implements the txmonitor.ChainCooldownStorage interface.
//
// It flags the chain as rate limited for the given duration. SET NX keeps an
// already running cooldown's expiry, so repeated rate-limit hits within the
// window do not push the retry point further out. The flag expires on its
// own; there is no explicit clear.
func (c *client) StartCooldown(ctx context.Context, chain string, ttl time.Duration) error {
	return c.conn.SetNX(ctx, cooldownKey(chain), time.Now().UTC().Format(time.RFC3339), ttl).Err()
}

// InCooldown implements the txmonitor.ChainCooldownStorage interface.
//
// It reports whether the chain currently has an active cooldown flag. The
// flag is shared across replicas, so one process hitting the explorer's rate
// limit backs off all of them.
func (c *client) InCooldown(ctx context.Context, chain string) (bool, error) {
	count, err := c.conn.Exists(ctx, cooldownKey(chain)).Result()
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Compile-time assertion to ensure *client satisfies the txmonitor.ChainCooldownStorage interface
var _ txmonitor.ChainCooldownStorage = new(client)
