package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is the subscription and payment surface exposed to inbound command
// handlers. It also backs the wallet registry's tier limit policy.
type Service interface {
	// StartPayment creates a pending payment for the given number of months
	// of premium.
	StartPayment(ctx context.Context, ownerID int64, tier Tier, months int) (Payment, error)

	// ConfirmPayment checks the gateway, completes the payment and extends
	// the owner's plan. Safe to retry; a payment is applied at most once.
	ConfirmPayment(ctx context.Context, ownerID int64, paymentID uuid.UUID) (Plan, error)

	// CancelPayment abandons a pending payment.
	CancelPayment(ctx context.Context, ownerID int64, paymentID uuid.UUID) error

	// CurrentPlan returns the owner's effective plan, free when nothing is
	// stored or the premium period has lapsed.
	CurrentPlan(ctx context.Context, ownerID int64) (Plan, error)

	// WalletLimit returns the wallet registration cap for the owner's tier.
	WalletLimit(ctx context.Context, ownerID int64) (int, error)
}

// service is the concrete implementation of the Service interface.
type service struct {
	paymentStorage      PaymentStorage
	subscriptionStorage SubscriptionStorage
	gateway             PaymentGateway

	premiumMonthlyPrice decimal.Decimal
	premiumYearlyPrice  decimal.Decimal
	freeWalletLimit     int
	premiumWalletLimit  int

	now func() time.Time
}

// Ensure compile-time compliance with the Service interface.
var _ Service = (*service)(nil)

type config struct {
	premiumMonthlyPrice decimal.Decimal
	premiumYearlyPrice  decimal.Decimal
	freeWalletLimit     int
	premiumWalletLimit  int
	now                 func() time.Time
}

// Option configures the billing service.
type Option func(*config)

// WithPremiumMonthlyPrice sets the price of one month of premium. Default: 3.
func WithPremiumMonthlyPrice(p decimal.Decimal) Option {
	return func(c *config) {
		c.premiumMonthlyPrice = p
	}
}

// WithPremiumYearlyPrice sets the discounted price of a full year of
// premium, applied per 12 purchased months. Default: 30.
func WithPremiumYearlyPrice(p decimal.Decimal) Option {
	return func(c *config) {
		c.premiumYearlyPrice = p
	}
}

// WithWalletLimits sets the per-tier wallet registration caps.
// Defaults: 3 free, 20 premium.
func WithWalletLimits(free, premium int) Option {
	return func(c *config) {
		c.freeWalletLimit = free
		c.premiumWalletLimit = premium
	}
}

// withClock overrides the time source. Test use only.
func withClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// New creates a billing service backed by the given stores and payment
// gateway.
func New(ps PaymentStorage, ss SubscriptionStorage, gw PaymentGateway, opts ...Option) *service {
	cfg := config{
		premiumMonthlyPrice: decimal.NewFromInt(3),
		premiumYearlyPrice:  decimal.NewFromInt(30),
		freeWalletLimit:     3,
		premiumWalletLimit:  20,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		paymentStorage:      ps,
		subscriptionStorage: ss,
		gateway:             gw,
		premiumMonthlyPrice: cfg.premiumMonthlyPrice,
		premiumYearlyPrice:  cfg.premiumYearlyPrice,
		freeWalletLimit:     cfg.freeWalletLimit,
		premiumWalletLimit:  cfg.premiumWalletLimit,
		now:                 cfg.now,
	}
}
