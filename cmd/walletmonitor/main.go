package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mymmrac/telego"
	"github.com/shopspring/decimal"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/billing"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/config"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/handlers/cli"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/infra/explorer/blockcypher"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/infra/explorer/etherscan"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/infra/gateway/cryptopay"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/infra/notifier/telegram"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/infra/storage/postgres"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/infra/storage/redis"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/logger"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/resilience/retry"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/telemetry"
	transporthttp "github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/transport/http"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/walletregistry"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		_ = logger.Init("error")
		logger.Fatal(ctx, "error loading config", "error", err)
	}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, "walletmonitor")
		if err != nil {
			_ = logger.Init("error")
			logger.Fatal(ctx, "error starting telemetry", "error", err)
		}
		defer func() {
			_ = shutdown(context.WithoutCancel(ctx))
		}()
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal(ctx, "error connecting to postgres", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Fatal(ctx, "error running migrations", "error", err)
	}

	redisClient, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal(ctx, "error connecting to redis", "error", err)
	}
	defer func() {
		_ = redisClient.Close()
	}()

	bot, err := telego.NewBot(cfg.Telegram.BotToken)
	if err != nil {
		logger.Fatal(ctx, "error creating telegram bot", "error", err)
	}

	httpClient := transporthttp.NewClient()

	explorers := make(map[string]txmonitor.Explorer, len(cfg.Chains))
	chains := make(map[string]walletregistry.ChainSupport, len(cfg.Chains))
	for _, chain := range cfg.Chains {
		switch chain {
		case config.ChainEthereum:
			c := etherscan.NewClient(etherscan.EthereumBaseURL, cfg.Explorers.EtherscanAPIKey, httpClient)
			explorers[chain], chains[chain] = c, c
		case config.ChainBSC:
			c := etherscan.NewClient(etherscan.BSCBaseURL, cfg.Explorers.BscscanAPIKey, httpClient)
			explorers[chain], chains[chain] = c, c
		case config.ChainBitcoin:
			c := blockcypher.NewClient(blockcypher.BitcoinBaseURL, cfg.Explorers.BlockcypherToken, httpClient)
			explorers[chain], chains[chain] = c, c
		}
	}

	monthlyPrice, err := decimal.NewFromString(cfg.Billing.MonthlyPrice)
	if err != nil {
		logger.Fatal(ctx, "error parsing monthly subscription price", "error", err)
	}

	yearlyPrice, err := decimal.NewFromString(cfg.Billing.YearlyPrice)
	if err != nil {
		logger.Fatal(ctx, "error parsing yearly subscription price", "error", err)
	}

	walletRepo := postgres.NewWalletRepo(pool)
	ledgerRepo := postgres.NewLedgerRepo(pool)
	paymentRepo := postgres.NewPaymentRepo(pool)
	subscriptionRepo := postgres.NewSubscriptionRepo(pool)

	gateway := cryptopay.NewClient(cfg.Billing.PaymentAPIBaseURL, cfg.Billing.PaymentAPIKey, httpClient)

	billingService := billing.New(paymentRepo, subscriptionRepo, gateway,
		billing.WithPremiumMonthlyPrice(monthlyPrice),
		billing.WithPremiumYearlyPrice(yearlyPrice),
		billing.WithWalletLimits(cfg.Billing.FreeWalletLimit, cfg.Billing.PremiumWalletLimit),
	)

	registryService := walletregistry.New(walletRepo, chains,
		walletregistry.WithWalletLimitPolicy(billingService),
	)

	monitorService := txmonitor.New(walletRepo, ledgerRepo, telegram.NewNotifier(bot), explorers,
		txmonitor.WithPollInterval(cfg.Monitor.PollInterval),
		txmonitor.WithMaxConcurrentPolls(cfg.Monitor.MaxConcurrent),
		txmonitor.WithFetchLimit(cfg.Monitor.FetchLimit),
		txmonitor.WithChainCooldown(redisClient, cfg.Monitor.RateLimitCooldown),
		txmonitor.WithChainRateLimit(cfg.Monitor.ChainRateLimit),
		txmonitor.WithRestartPolicy(retry.New(
			retry.WithAttempts(0),
			retry.WithDelay(cfg.Monitor.RestartBackoff),
			retry.WithMaxDelay(time.Minute),
		)),
	)

	if err := cli.Run(ctx, registryService, monitorService, billingService); err != nil {
		logger.Error(ctx, "command failed", "error", err)
		os.Exit(1)
	}
}
