// Package config loads and validates the application configuration from
// environment variables. All settings are environment-provided; validation
// failures at startup are fatal by design, so a misconfigured deployment
// never starts polling.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Chain identifiers accepted in the CHAINS environment variable.
const (
	ChainEthereum = "ethereum"
	ChainBitcoin  = "bitcoin"
	ChainBSC      = "bsc"
)

// ErrUnknownChain is returned when CHAINS names a chain this build does not support.
var ErrUnknownChain = errors.New("unknown chain")

// ErrMissingChainCredentials is returned when a monitored chain has no API
// credentials configured.
var ErrMissingChainCredentials = errors.New("missing chain credentials")

type (
	// Telegram holds the bot credentials used for notification delivery.
	Telegram struct {
		BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	}

	// Explorers holds per-chain explorer API credentials.
	//
	// The BlockCypher token is optional: the vendor serves unauthenticated
	// requests at a reduced rate limit, matching how the original deployment
	// ran. Etherscan-compatible APIs reject keyless requests, so their keys
	// are required whenever the corresponding chain is enabled.
	Explorers struct {
		EtherscanAPIKey  string `envconfig:"ETHERSCAN_API_KEY"`
		BscscanAPIKey    string `envconfig:"BSCSCAN_API_KEY"`
		BlockcypherToken string `envconfig:"BLOCKCYPHER_API_KEY"`
	}

	// Monitor controls the polling loop.
	Monitor struct {
		PollInterval      time.Duration `envconfig:"MONITOR_POLL_INTERVAL" default:"60s"`
		MaxConcurrent     int           `envconfig:"MONITOR_MAX_CONCURRENT_POLLS" default:"8"`
		FetchLimit        int           `envconfig:"MONITOR_FETCH_LIMIT" default:"20"`
		RestartBackoff    time.Duration `envconfig:"MONITOR_RESTART_BACKOFF" default:"5s"`
		ChainRateLimit    float64       `envconfig:"MONITOR_CHAIN_RATE_LIMIT" default:"4"`
		RateLimitCooldown time.Duration `envconfig:"MONITOR_RATE_LIMIT_COOLDOWN" default:"60s"`
	}

	// Postgres holds the relational storage connection settings.
	Postgres struct {
		DSN string `envconfig:"DATABASE_URL" required:"true"`
	}

	// Redis holds the shared cooldown storage connection settings.
	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		Username string `envconfig:"REDIS_USERNAME"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	// Billing holds subscription tier limits and payment gateway settings.
	Billing struct {
		FreeWalletLimit    int    `envconfig:"FREE_WALLET_LIMIT" default:"3"`
		PremiumWalletLimit int    `envconfig:"PREMIUM_WALLET_LIMIT" default:"20"`
		MonthlyPrice       string `envconfig:"MONTHLY_SUBSCRIPTION_PRICE" default:"3.0"`
		YearlyPrice        string `envconfig:"YEARLY_SUBSCRIPTION_PRICE" default:"30.0"`
		PaymentAPIBaseURL  string `envconfig:"CRYPTO_PAYMENT_API_URL" default:"https://pay.crypt.bot/api"`
		PaymentAPIKey      string `envconfig:"CRYPTO_PAYMENT_API_KEY"`
	}

	// Telemetry controls the optional OTLP export pipeline.
	Telemetry struct {
		Enabled bool `envconfig:"OTEL_ENABLED" default:"false"`
	}

	// Config is the root application configuration.
	Config struct {
		LogLevel string   `envconfig:"LOG_LEVEL" default:"info"`
		Chains   []string `envconfig:"CHAINS" default:"ethereum,bitcoin,bsc"`

		Telegram  Telegram
		Explorers Explorers
		Monitor   Monitor
		Postgres  Postgres
		Redis     Redis
		Billing   Billing
		Telemetry Telemetry
	}
)

// supportedChains lists every chain this build can monitor.
var supportedChains = []string{ChainEthereum, ChainBitcoin, ChainBSC}

// Load reads the configuration from the environment and validates it.
//
// It fails when required variables are absent, when CHAINS names an
// unsupported chain, or when a monitored chain lacks its required explorer
// credentials.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	return cfg, cfg.validate()
}

// validate enforces the cross-field invariants that envconfig tags cannot
// express: the chain list must be known, and every enabled chain must have
// its required credentials.
func (c Config) validate() error {
	if len(c.Chains) == 0 {
		return fmt.Errorf("%w: CHAINS must enable at least one chain", ErrUnknownChain)
	}

	for _, chain := range c.Chains {
		if !slices.Contains(supportedChains, chain) {
			return fmt.Errorf("%w: %q (supported: %v)", ErrUnknownChain, chain, supportedChains)
		}
	}

	if slices.Contains(c.Chains, ChainEthereum) && c.Explorers.EtherscanAPIKey == "" {
		return fmt.Errorf("%w: ETHERSCAN_API_KEY is required to monitor %s", ErrMissingChainCredentials, ChainEthereum)
	}

	if slices.Contains(c.Chains, ChainBSC) && c.Explorers.BscscanAPIKey == "" {
		return fmt.Errorf("%w: BSCSCAN_API_KEY is required to monitor %s", ErrMissingChainCredentials, ChainBSC)
	}

	return nil
}
