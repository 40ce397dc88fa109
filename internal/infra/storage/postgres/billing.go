package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/billing"
)

// paymentRepo implements the billing payment store over the payments table.
type paymentRepo struct {
	pool Pool
}

// Ensure paymentRepo implements the payment storage port at compile time.
var _ billing.PaymentStorage = (*paymentRepo)(nil)

// NewPaymentRepo creates the payments repository.
func NewPaymentRepo(pool Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

// CreatePayment inserts a new pending payment.
func (r *paymentRepo) CreatePayment(ctx context.Context, payment billing.Payment) (billing.Payment, error) {
	query := `INSERT INTO payments (id, owner_id, tier, months, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		payment.ID, payment.OwnerID, string(payment.Tier),
		payment.Months, payment.Amount, string(payment.Status),
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return billing.Payment{}, fmt.Errorf("insert payment: %w", err)
	}

	return payment, nil
}

// GetPayment returns the payment with the given id.
func (r *paymentRepo) GetPayment(ctx context.Context, paymentID uuid.UUID) (billing.Payment, error) {
	query := `SELECT id, owner_id, tier, months, amount, status, created_at, updated_at
		FROM payments WHERE id = $1`

	var (
		payment billing.Payment
		tier    string
		status  string
	)

	err := r.pool.QueryRow(ctx, query, paymentID).Scan(
		&payment.ID, &payment.OwnerID, &tier, &payment.Months,
		&payment.Amount, &status, &payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return billing.Payment{}, billing.ErrPaymentNotFound
		}

		return billing.Payment{}, fmt.Errorf("get payment: %w", err)
	}

	payment.Tier = billing.Tier(tier)
	payment.Status = billing.PaymentStatus(status)

	return payment, nil
}

// CompletePayment transitions the payment from pending to completed.
func (r *paymentRepo) CompletePayment(ctx context.Context, paymentID uuid.UUID) error {
	return r.transition(ctx, paymentID, billing.PaymentCompleted)
}

// CancelPayment transitions the payment from pending to cancelled.
func (r *paymentRepo) CancelPayment(ctx context.Context, paymentID uuid.UUID) error {
	return r.transition(ctx, paymentID, billing.PaymentCancelled)
}

// transition applies a status change guarded by the pending state in a
// single conditional update. Zero affected rows means the payment was not
// pending anymore (or never existed); concurrent transitions cannot both
// succeed.
func (r *paymentRepo) transition(ctx context.Context, paymentID uuid.UUID, status billing.PaymentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET status = $1, updated_at = now()
			WHERE id = $2 AND status = $3`,
		string(status), paymentID, string(billing.PaymentPending),
	)
	if err != nil {
		return fmt.Errorf("transition payment to %s: %w", status, err)
	}

	if tag.RowsAffected() == 0 {
		return billing.ErrPaymentNotPending
	}

	return nil
}

// subscriptionRepo implements the subscription plan store.
type subscriptionRepo struct {
	pool Pool
}

// Ensure subscriptionRepo implements the subscription storage port at
// compile time.
var _ billing.SubscriptionStorage = (*subscriptionRepo)(nil)

// NewSubscriptionRepo creates the subscriptions repository.
func NewSubscriptionRepo(pool Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

// GetPlan returns the owner's stored plan.
func (r *subscriptionRepo) GetPlan(ctx context.Context, ownerID int64) (billing.Plan, error) {
	var (
		plan billing.Plan
		tier string
	)

	err := r.pool.QueryRow(ctx,
		`SELECT owner_id, tier, expires_at FROM subscriptions WHERE owner_id = $1`,
		ownerID,
	).Scan(&plan.OwnerID, &tier, &plan.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return billing.Plan{}, billing.ErrPlanNotFound
		}

		return billing.Plan{}, fmt.Errorf("get plan: %w", err)
	}

	plan.Tier = billing.Tier(tier)

	return plan, nil
}

// UpsertPlan stores the plan, replacing any previous one for the owner.
func (r *subscriptionRepo) UpsertPlan(ctx context.Context, plan billing.Plan) error {
	query := `INSERT INTO subscriptions (owner_id, tier, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE SET tier = EXCLUDED.tier, expires_at = EXCLUDED.expires_at`

	_, err := r.pool.Exec(ctx, query, plan.OwnerID, string(plan.Tier), plan.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}

	return nil
}
