package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StartPayment creates a pending payment for months of premium. Only the
// premium tier can be purchased; the free tier never requires payment.
//
// Full years are charged at the discounted yearly price, remaining months
// at the monthly price.
//
// Returns the created payment, or ErrUnknownTier / a validation error.
func (s *service) StartPayment(ctx context.Context, ownerID int64, tier Tier, months int) (Payment, error) {
	if tier != TierPremium {
		return Payment{}, ErrUnknownTier
	}

	req := newPaymentRequest{
		OwnerID: ownerID,
		Months:  months,
	}
	if err := validator.Validate(req); err != nil {
		return Payment{}, err
	}

	payment := Payment{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Tier:    tier,
		Months:  months,
		Amount:  s.premiumPrice(months),
		Status:  PaymentPending,
	}

	return s.paymentStorage.CreatePayment(ctx, payment)
}

// premiumPrice prices a premium purchase: the yearly price per full year,
// the monthly price per remaining month.
func (s *service) premiumPrice(months int) decimal.Decimal {
	years := months / monthsPerYear
	rest := months % monthsPerYear

	return s.premiumYearlyPrice.Mul(decimal.NewFromInt(int64(years))).
		Add(s.premiumMonthlyPrice.Mul(decimal.NewFromInt(int64(rest))))
}

// ConfirmPayment verifies the payment with the gateway, atomically completes
// it and extends the owner's plan by the purchased months.
//
// The extension base is the later of now and the current premium expiry, so
// stacking purchases never loses remaining time. The pending-to-completed
// transition is a single conditional update in storage; a payment that was
// already completed (for example by a concurrent confirmation) returns
// ErrPaymentNotPending and the plan is not extended twice.
func (s *service) ConfirmPayment(ctx context.Context, ownerID int64, paymentID uuid.UUID) (Plan, error) {
	payment, err := s.paymentStorage.GetPayment(ctx, paymentID)
	if err != nil {
		return Plan{}, err
	}

	if payment.OwnerID != ownerID {
		return Plan{}, ErrPaymentNotFound
	}

	if payment.Status != PaymentPending {
		return Plan{}, ErrPaymentNotPending
	}

	received, err := s.gateway.PaymentReceived(ctx, paymentID)
	if err != nil {
		return Plan{}, fmt.Errorf("checking payment with gateway: %w", err)
	}
	if !received {
		return Plan{}, ErrPaymentNotConfirmed
	}

	if err := s.paymentStorage.CompletePayment(ctx, paymentID); err != nil {
		return Plan{}, err
	}

	return s.extendPlan(ctx, ownerID, payment.Months)
}

// CancelPayment abandons one of the owner's pending payments.
//
// Returns ErrPaymentNotFound for foreign payments and ErrPaymentNotPending
// when the payment has already transitioned.
func (s *service) CancelPayment(ctx context.Context, ownerID int64, paymentID uuid.UUID) error {
	payment, err := s.paymentStorage.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	if payment.OwnerID != ownerID {
		return ErrPaymentNotFound
	}

	return s.paymentStorage.CancelPayment(ctx, paymentID)
}

// CurrentPlan returns the owner's effective plan. Owners without a stored
// plan, and owners whose premium period has lapsed, are on the free tier.
func (s *service) CurrentPlan(ctx context.Context, ownerID int64) (Plan, error) {
	plan, err := s.subscriptionStorage.GetPlan(ctx, ownerID)
	if errors.Is(err, ErrPlanNotFound) {
		return Plan{OwnerID: ownerID, Tier: TierFree}, nil
	}
	if err != nil {
		return Plan{}, err
	}

	if plan.EffectiveTier(s.now()) == TierFree {
		return Plan{OwnerID: ownerID, Tier: TierFree}, nil
	}

	return plan, nil
}

// WalletLimit implements the wallet registry's limit policy from the owner's
// effective tier.
func (s *service) WalletLimit(ctx context.Context, ownerID int64) (int, error) {
	plan, err := s.CurrentPlan(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	if plan.Tier == TierPremium {
		return s.premiumWalletLimit, nil
	}

	return s.freeWalletLimit, nil
}

// extendPlan upserts the owner's premium plan, extending from the later of
// now and the current expiry.
func (s *service) extendPlan(ctx context.Context, ownerID int64, months int) (Plan, error) {
	now := s.now()
	base := now

	current, err := s.subscriptionStorage.GetPlan(ctx, ownerID)
	if err != nil && !errors.Is(err, ErrPlanNotFound) {
		return Plan{}, err
	}
	if err == nil && current.Tier == TierPremium && current.ExpiresAt.After(base) {
		base = current.ExpiresAt
	}

	plan := Plan{
		OwnerID:   ownerID,
		Tier:      TierPremium,
		ExpiresAt: base.AddDate(0, months, 0),
	}

	if err := s.subscriptionStorage.UpsertPlan(ctx, plan); err != nil {
		return Plan{}, err
	}

	return plan, nil
}
