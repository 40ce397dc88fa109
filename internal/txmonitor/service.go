package txmonitor

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/resilience/retry"
)

// Service is the background monitoring loop. Start blocks until the first
// cycle has been scheduled and the recovery pass for undelivered
// notifications has completed; the polling loop itself runs in a supervised
// goroutine until Close or context cancellation.
type Service interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

// service drives the poll cycles: it lists all wallets, fans out per-wallet
// polls bounded by maxConcurrent, and spaces cycles pollInterval apart
// measured start to start.
type service struct {
	walletStorage WalletStorage
	ledger        TransactionLedger
	notifier      TransactionNotifier
	explorers     map[string]Explorer
	cooldowns     ChainCooldownStorage

	pollInterval  time.Duration
	maxConcurrent int
	fetchLimit    int
	cooldownTTL   time.Duration
	limiters      map[string]*rate.Limiter
	restartPolicy retry.Retry

	cancel context.CancelFunc
	done   chan struct{}
}

// Ensure compile-time compliance with the Service interface.
var _ Service = (*service)(nil)

type config struct {
	pollInterval   time.Duration
	maxConcurrent  int
	fetchLimit     int
	cooldowns      ChainCooldownStorage
	cooldownTTL    time.Duration
	chainRateLimit rate.Limit
	restartPolicy  retry.Retry
}

// Option configures the monitoring service.
type Option func(*config)

// WithPollInterval sets the spacing between cycle starts. A cycle that runs
// longer than the interval is followed immediately by the next one; cycles
// never overlap. Default: 60 seconds.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// WithMaxConcurrentPolls bounds how many wallets are polled in parallel
// within a cycle. Default: 8.
func WithMaxConcurrentPolls(n int) Option {
	return func(c *config) {
		c.maxConcurrent = n
	}
}

// WithFetchLimit caps the number of transactions requested from the explorer
// per wallet poll. Default: 20.
func WithFetchLimit(n int) Option {
	return func(c *config) {
		c.fetchLimit = n
	}
}

// WithChainCooldown installs a cooldown store consulted before polling and
// armed for ttl whenever an explorer reports rate limiting. Without this
// option rate-limited chains are simply retried next cycle.
func WithChainCooldown(s ChainCooldownStorage, ttl time.Duration) Option {
	return func(c *config) {
		c.cooldowns = s
		c.cooldownTTL = ttl
	}
}

// WithChainRateLimit throttles explorer calls to at most n requests per
// second per chain. Fractional rates are honored, so 0.5 means one request
// every two seconds. Zero disables client-side throttling. Default: 4.
func WithChainRateLimit(n float64) Option {
	return func(c *config) {
		c.chainRateLimit = rate.Limit(n)
	}
}

// WithRestartPolicy overrides the supervision policy applied when the poll
// loop exits with an error or panics. The default restarts indefinitely with
// exponential backoff capped at one minute.
func WithRestartPolicy(r retry.Retry) Option {
	return func(c *config) {
		c.restartPolicy = r
	}
}

// New creates a monitoring service polling the given explorers. The
// explorers map keys are chain identifiers matching Wallet.Chain; wallets on
// chains without an explorer are skipped with a warning.
func New(
	ws WalletStorage,
	ledger TransactionLedger,
	notifier TransactionNotifier,
	explorers map[string]Explorer,
	opts ...Option,
) *service {
	cfg := config{
		pollInterval:   60 * time.Second,
		maxConcurrent:  8,
		fetchLimit:     20,
		cooldowns:      nopCooldownStorage{},
		cooldownTTL:    60 * time.Second,
		chainRateLimit: 4,
		restartPolicy: retry.New(
			retry.WithAttempts(0),
			retry.WithDelay(5*time.Second),
			retry.WithMaxDelay(time.Minute),
		),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	limiters := make(map[string]*rate.Limiter, len(explorers))
	if cfg.chainRateLimit > 0 {
		for chain := range explorers {
			limiters[chain] = rate.NewLimiter(cfg.chainRateLimit, 1)
		}
	}

	return &service{
		walletStorage: ws,
		ledger:        ledger,
		notifier:      notifier,
		explorers:     explorers,
		cooldowns:     cfg.cooldowns,
		pollInterval:  cfg.pollInterval,
		maxConcurrent: cfg.maxConcurrent,
		fetchLimit:    cfg.fetchLimit,
		cooldownTTL:   cfg.cooldownTTL,
		limiters:      limiters,
		restartPolicy: cfg.restartPolicy,
		done:          make(chan struct{}),
	}
}
