package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// paymentStorageMock is a testify double for the PaymentStorage port.
type paymentStorageMock struct {
	mock.Mock
}

func newPaymentStorageMock(t *testing.T) *paymentStorageMock {
	m := &paymentStorageMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *paymentStorageMock) CreatePayment(ctx context.Context, payment Payment) (Payment, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(Payment), args.Error(1)
}

func (m *paymentStorageMock) GetPayment(ctx context.Context, paymentID uuid.UUID) (Payment, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(Payment), args.Error(1)
}

func (m *paymentStorageMock) CompletePayment(ctx context.Context, paymentID uuid.UUID) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

func (m *paymentStorageMock) CancelPayment(ctx context.Context, paymentID uuid.UUID) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

// subscriptionStorageMock is a testify double for the SubscriptionStorage port.
type subscriptionStorageMock struct {
	mock.Mock
}

func newSubscriptionStorageMock(t *testing.T) *subscriptionStorageMock {
	m := &subscriptionStorageMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *subscriptionStorageMock) GetPlan(ctx context.Context, ownerID int64) (Plan, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(Plan), args.Error(1)
}

func (m *subscriptionStorageMock) UpsertPlan(ctx context.Context, plan Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

// paymentGatewayMock is a testify double for the PaymentGateway port.
type paymentGatewayMock struct {
	mock.Mock
}

func newPaymentGatewayMock(t *testing.T) *paymentGatewayMock {
	m := &paymentGatewayMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *paymentGatewayMock) PaymentReceived(ctx context.Context, paymentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, paymentID)
	return args.Bool(0), args.Error(1)
}
