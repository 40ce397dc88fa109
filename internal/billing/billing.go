package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownTier is returned when a payment is started for a tier that
	// cannot be purchased.
	ErrUnknownTier = errors.New("unknown subscription tier")

	// ErrPaymentNotFound is returned when a payment id does not exist or does
	// not belong to the requesting owner.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentNotPending is returned when completing or cancelling a
	// payment that has already left the pending state. Transitions are
	// one-way; a completed or cancelled payment never changes again.
	ErrPaymentNotPending = errors.New("payment is not pending")

	// ErrPaymentNotConfirmed is returned when the payment gateway has not
	// observed the payment yet. The payment stays pending and the owner may
	// retry confirmation later.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed by gateway")

	// ErrPlanNotFound is returned by subscription storage when the owner has
	// no stored plan. The service maps it to the free tier.
	ErrPlanNotFound = errors.New("subscription plan not found")
)

// Tier identifies a subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// monthsPerYear is the purchase size charged at the yearly price.
const monthsPerYear = 12

// Payment is a purchase of subscription time. It is created pending and
// transitions exactly once, to completed or cancelled.
type Payment struct {
	ID        uuid.UUID
	OwnerID   int64
	Tier      Tier
	Months    int
	Amount    decimal.Decimal
	Status    PaymentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Plan is an owner's subscription. A premium plan past its expiry behaves as
// free; expired rows are kept so a renewal extends from the later of now and
// the stored expiry.
type Plan struct {
	OwnerID   int64
	Tier      Tier
	ExpiresAt time.Time
}

// EffectiveTier returns the tier the plan grants at the given instant,
// downgrading expired premium plans to free.
func (p Plan) EffectiveTier(now time.Time) Tier {
	if p.Tier == TierPremium && p.ExpiresAt.After(now) {
		return TierPremium
	}

	return TierFree
}

// newPaymentRequest carries validated input for payment creation.
type newPaymentRequest struct {
	OwnerID int64 `validate:"required"`
	Months  int   `validate:"required,gte=1,lte=12"`
}

// PaymentStorage is the persistence contract for payments.
//
// CompletePayment and CancelPayment must perform their status transition
// atomically against the pending state (single conditional update), returning
// ErrPaymentNotPending when the payment has already transitioned. Callers
// never pre-check status, so concurrent confirmations cannot double-apply.
type PaymentStorage interface {
	// CreatePayment persists a new pending payment.
	CreatePayment(ctx context.Context, payment Payment) (Payment, error)

	// GetPayment returns the payment with the given id, or ErrPaymentNotFound.
	GetPayment(ctx context.Context, paymentID uuid.UUID) (Payment, error)

	// CompletePayment transitions the payment from pending to completed.
	CompletePayment(ctx context.Context, paymentID uuid.UUID) error

	// CancelPayment transitions the payment from pending to cancelled.
	CancelPayment(ctx context.Context, paymentID uuid.UUID) error
}

// SubscriptionStorage is the persistence contract for subscription plans.
type SubscriptionStorage interface {
	// GetPlan returns the owner's stored plan, or ErrPlanNotFound.
	GetPlan(ctx context.Context, ownerID int64) (Plan, error)

	// UpsertPlan stores the plan, replacing any previous one for the owner.
	UpsertPlan(ctx context.Context, plan Plan) error
}

// PaymentGateway checks whether an external crypto payment has been received.
type PaymentGateway interface {
	// PaymentReceived reports whether the gateway has observed the payment.
	PaymentReceived(ctx context.Context, paymentID uuid.UUID) (bool, error)
}
