package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anuraga/backend/internal/domain/ordering"
	"github.com/anuraga/backend/internal/domain/payment"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/anuraga/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type paymentFixture struct {
	service     *Service
	paymentRepo *MockPaymentRepository
	orderRepo   *MockOrderRepository
	gateway     *MockGateway
	idempotency *MockIdempotencyStore
}

func newPaymentFixture() *paymentFixture {
	return newPaymentFixtureWithConfig(shared.DefaultIdempotencyConfig())
}

func newPaymentFixtureWithConfig(cfg shared.IdempotencyConfig) *paymentFixture {
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	gateway := new(MockGateway)
	idempotency := new(MockIdempotencyStore)
	scope := NewNoOpTransactionScope(orderRepo, paymentRepo)

	return &paymentFixture{
		service:     NewService(scope, paymentRepo, orderRepo, gateway, idempotency, cfg, zap.NewNop()),
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		gateway:     gateway,
		idempotency: idempotency,
	}
}

func createTestOrder(t *testing.T, userID uuid.UUID) *ordering.Order {
	t.Helper()
	address, err := valueobject.NewShippingAddress("Asha Rao", "9876543210", "12 MG Road", "Bengaluru", "Karnataka", "560001")
	require.NoError(t, err)
	line, err := ordering.NewOrderLine(uuid.Nil, uuid.New(), uuid.New(), "Filter Coffee", "250g", decimal.NewFromInt(240), 2)
	require.NoError(t, err)
	order, err := ordering.NewOrder(userID, []ordering.OrderLine{*line}, address, ordering.PaymentMethodOnline)
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func createTestRecord(t *testing.T, orderID uuid.UUID) *payment.Record {
	t.Helper()
	record, err := payment.NewRecord(orderID, "order_gw123", decimal.NewFromInt(480), "INR", "{}")
	require.NoError(t, err)
	return record
}

func TestPaymentService_CreateIntent_Success(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	order := createTestOrder(t, userID)

	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req payment.CreateGatewayOrderRequest) bool {
		return req.Receipt == order.ID.String() &&
			req.Amount.Amount().Equal(order.TotalAmount) &&
			req.Amount.Currency() == valueobject.INR
	})).Return(&payment.GatewayOrder{
		GatewayOrderID: "order_gw123",
		AmountMinor:    48000,
		Currency:       "INR",
		RawPayload:     `{"id":"order_gw123"}`,
	}, nil)
	f.paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*payment.Record")).Return(nil)

	resp, err := f.service.CreateIntent(context.Background(), userID, CreateIntentRequest{OrderID: order.ID})

	require.NoError(t, err)
	assert.Equal(t, order.ID, resp.OrderID)
	assert.Equal(t, "order_gw123", resp.GatewayOrderID)
	assert.Equal(t, int64(48000), resp.AmountMinor)
	assert.Equal(t, "INR", resp.Currency)
	f.paymentRepo.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
}

func TestPaymentService_CreateIntent_Forbidden(t *testing.T) {
	f := newPaymentFixture()
	order := createTestOrder(t, uuid.New())

	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	_, err := f.service.CreateIntent(context.Background(), uuid.New(), CreateIntentRequest{OrderID: order.ID})

	assert.ErrorIs(t, err, shared.ErrForbidden)
	f.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestPaymentService_CreateIntent_AlreadyPaid(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	order := createTestOrder(t, userID)
	require.NoError(t, order.MarkPaid("pay_prev"))

	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	_, err := f.service.CreateIntent(context.Background(), userID, CreateIntentRequest{OrderID: order.ID})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestPaymentService_CreateIntent_CancelledOrder(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	order := createTestOrder(t, userID)
	require.NoError(t, order.Cancel("changed my mind"))

	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	_, err := f.service.CreateIntent(context.Background(), userID, CreateIntentRequest{OrderID: order.ID})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	f.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestPaymentService_CreateIntent_GatewayUnavailable(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	order := createTestOrder(t, userID)

	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.gateway.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := f.service.CreateIntent(context.Background(), userID, CreateIntentRequest{OrderID: order.ID})

	assert.ErrorIs(t, err, shared.ErrGatewayUnavailable)
	f.paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_Success(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	order := createTestOrder(t, userID)
	record := createTestRecord(t, order.ID)

	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(record, nil)
	f.idempotency.On("IsProcessed", mock.Anything, "payment:verify:order_gw123:pay_xyz").Return(false, nil)
	f.gateway.On("VerifySignature", "order_gw123", "pay_xyz", "sig_valid").Return(true)
	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.orderRepo.On("MarkPaid", mock.Anything, order).Return(nil)
	f.paymentRepo.On("MarkPaid", mock.Anything, record).Return(nil)
	f.idempotency.On("MarkProcessed", mock.Anything, "payment:verify:order_gw123:pay_xyz", mock.Anything).Return(true, nil)

	resp, err := f.service.Verify(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_gw123",
		GatewayPaymentID: "pay_xyz",
		Signature:        "sig_valid",
	})

	require.NoError(t, err)
	assert.False(t, resp.AlreadyProcessed)
	assert.Equal(t, payment.StatusPaid.String(), resp.Status)
	assert.True(t, order.IsPaid())
	assert.Equal(t, payment.StatusPaid, record.Status)
	assert.Equal(t, "pay_xyz", record.GatewayPaymentID)
	f.orderRepo.AssertExpectations(t)
	f.paymentRepo.AssertExpectations(t)
	f.idempotency.AssertExpectations(t)
}

func TestPaymentService_Verify_InvalidSignature(t *testing.T) {
	f := newPaymentFixture()
	order := createTestOrder(t, uuid.New())
	record := createTestRecord(t, order.ID)

	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(record, nil)
	f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	f.gateway.On("VerifySignature", "order_gw123", "pay_xyz", "sig_forged").Return(false)
	f.paymentRepo.On("SaveFailure", mock.Anything, record).Return(nil)

	_, err := f.service.Verify(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_gw123",
		GatewayPaymentID: "pay_xyz",
		Signature:        "sig_forged",
	})

	assert.ErrorIs(t, err, shared.ErrInvalidSignature)
	assert.Equal(t, payment.StatusFailed, record.Status)
	assert.Equal(t, "signature verification failed", record.FailureReason)
	f.orderRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
	f.paymentRepo.AssertExpectations(t)
}

func TestPaymentService_Verify_RedeliveryFromDatabaseState(t *testing.T) {
	f := newPaymentFixture()
	order := createTestOrder(t, uuid.New())
	record := createTestRecord(t, order.ID)
	require.NoError(t, record.MarkPaid("pay_xyz"))

	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(record, nil)
	f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)

	resp, err := f.service.Verify(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_gw123",
		GatewayPaymentID: "pay_xyz",
		Signature:        "sig_valid",
	})

	require.NoError(t, err)
	assert.True(t, resp.AlreadyProcessed)
	assert.Equal(t, payment.StatusPaid.String(), resp.Status)
	f.gateway.AssertNotCalled(t, "VerifySignature", mock.Anything, mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_RedeliveryFastPath(t *testing.T) {
	f := newPaymentFixture()
	order := createTestOrder(t, uuid.New())
	record := createTestRecord(t, order.ID)

	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(record, nil)
	f.idempotency.On("IsProcessed", mock.Anything, "payment:verify:order_gw123:pay_xyz").Return(true, nil)

	resp, err := f.service.Verify(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_gw123",
		GatewayPaymentID: "pay_xyz",
		Signature:        "sig_valid",
	})

	require.NoError(t, err)
	assert.True(t, resp.AlreadyProcessed)
	f.gateway.AssertNotCalled(t, "VerifySignature", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_IdempotencyLookupFailureFallsThrough(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	order := createTestOrder(t, userID)
	record := createTestRecord(t, order.ID)

	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(record, nil)
	f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	f.gateway.On("VerifySignature", "order_gw123", "pay_xyz", "sig_valid").Return(true)
	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.orderRepo.On("MarkPaid", mock.Anything, order).Return(nil)
	f.paymentRepo.On("MarkPaid", mock.Anything, record).Return(nil)
	f.idempotency.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	resp, err := f.service.Verify(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_gw123",
		GatewayPaymentID: "pay_xyz",
		Signature:        "sig_valid",
	})

	require.NoError(t, err)
	assert.False(t, resp.AlreadyProcessed)
	assert.True(t, order.IsPaid())
}

func TestPaymentService_Verify_ConcurrentLoserSeesSuccess(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	order := createTestOrder(t, userID)
	record := createTestRecord(t, order.ID)

	paidRecord := createTestRecord(t, order.ID)
	require.NoError(t, paidRecord.MarkPaid("pay_xyz"))

	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(record, nil).Once()
	f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	f.gateway.On("VerifySignature", "order_gw123", "pay_xyz", "sig_valid").Return(true)
	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	// the conditional update guard lost the race to a concurrent delivery
	f.orderRepo.On("MarkPaid", mock.Anything, order).Return(shared.ErrInvalidState)
	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(paidRecord, nil).Once()

	resp, err := f.service.Verify(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_gw123",
		GatewayPaymentID: "pay_xyz",
		Signature:        "sig_valid",
	})

	require.NoError(t, err)
	assert.True(t, resp.AlreadyProcessed)
	assert.Equal(t, payment.StatusPaid.String(), resp.Status)
	f.paymentRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_AbortedTransitionLeavesFailedRecord(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	order := createTestOrder(t, userID)
	record := createTestRecord(t, order.ID)

	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(record, nil)
	f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	f.gateway.On("VerifySignature", "order_gw123", "pay_xyz", "sig_valid").Return(true)
	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.orderRepo.On("MarkPaid", mock.Anything, order).Return(errors.New("connection reset by peer"))
	f.paymentRepo.On("SaveFailure", mock.Anything, mock.MatchedBy(func(r *payment.Record) bool {
		return r.Status == payment.StatusFailed && r.FailureReason == "connection reset by peer"
	})).Return(nil)

	_, err := f.service.Verify(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_gw123",
		GatewayPaymentID: "pay_xyz",
		Signature:        "sig_valid",
	})

	require.Error(t, err)
	f.paymentRepo.AssertExpectations(t)
	f.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_FailureAfterRecordPaidInMemoryStillWritesEvidence(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	order := createTestOrder(t, userID)
	record := createTestRecord(t, order.ID)

	// record.MarkPaid succeeds inside the unit before the persistence step
	// fails; the failure write must start from the persisted CREATED state,
	// not the in-memory PAID one.
	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(record, nil)
	f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	f.gateway.On("VerifySignature", "order_gw123", "pay_xyz", "sig_valid").Return(true)
	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.orderRepo.On("MarkPaid", mock.Anything, order).Return(nil)
	f.paymentRepo.On("MarkPaid", mock.Anything, record).Return(errors.New("deadlock detected"))
	f.paymentRepo.On("SaveFailure", mock.Anything, mock.MatchedBy(func(r *payment.Record) bool {
		return r.Status == payment.StatusFailed && r.FailureReason == "deadlock detected"
	})).Return(nil)

	_, err := f.service.Verify(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_gw123",
		GatewayPaymentID: "pay_xyz",
		Signature:        "sig_valid",
	})

	require.Error(t, err)
	f.paymentRepo.AssertExpectations(t)
}

func TestPaymentService_Verify_UsesConfiguredTTL(t *testing.T) {
	f := newPaymentFixtureWithConfig(shared.IdempotencyConfig{TTL: time.Hour, Enabled: true})
	userID := uuid.New()
	order := createTestOrder(t, userID)
	record := createTestRecord(t, order.ID)

	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(record, nil)
	f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	f.gateway.On("VerifySignature", "order_gw123", "pay_xyz", "sig_valid").Return(true)
	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.orderRepo.On("MarkPaid", mock.Anything, order).Return(nil)
	f.paymentRepo.On("MarkPaid", mock.Anything, record).Return(nil)
	f.idempotency.On("MarkProcessed", mock.Anything, "payment:verify:order_gw123:pay_xyz", time.Hour).Return(true, nil)

	_, err := f.service.Verify(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_gw123",
		GatewayPaymentID: "pay_xyz",
		Signature:        "sig_valid",
	})

	require.NoError(t, err)
	f.idempotency.AssertExpectations(t)
}

func TestPaymentService_Verify_DisabledIdempotencySkipsStore(t *testing.T) {
	f := newPaymentFixtureWithConfig(shared.IdempotencyConfig{TTL: time.Hour, Enabled: false})
	userID := uuid.New()
	order := createTestOrder(t, userID)
	record := createTestRecord(t, order.ID)

	f.paymentRepo.On("FindByGatewayOrderID", mock.Anything, "order_gw123").Return(record, nil)
	f.gateway.On("VerifySignature", "order_gw123", "pay_xyz", "sig_valid").Return(true)
	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.orderRepo.On("MarkPaid", mock.Anything, order).Return(nil)
	f.paymentRepo.On("MarkPaid", mock.Anything, record).Return(nil)

	_, err := f.service.Verify(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_gw123",
		GatewayPaymentID: "pay_xyz",
		Signature:        "sig_valid",
	})

	require.NoError(t, err)
	f.idempotency.AssertNotCalled(t, "IsProcessed", mock.Anything, mock.Anything)
	f.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_ListByOrder_Forbidden(t *testing.T) {
	f := newPaymentFixture()
	order := createTestOrder(t, uuid.New())

	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	_, err := f.service.ListByOrder(context.Background(), uuid.New(), false, order.ID)

	assert.ErrorIs(t, err, shared.ErrForbidden)
	f.paymentRepo.AssertNotCalled(t, "FindByOrder", mock.Anything, mock.Anything)
}

func TestPaymentService_ListByOrder_AdminBypassesOwnership(t *testing.T) {
	f := newPaymentFixture()
	order := createTestOrder(t, uuid.New())
	record := createTestRecord(t, order.ID)

	f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.paymentRepo.On("FindByOrder", mock.Anything, order.ID).Return([]payment.Record{*record}, nil)

	resps, err := f.service.ListByOrder(context.Background(), uuid.New(), true, order.ID)

	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, record.GatewayOrderID, resps[0].GatewayOrderID)
}

func TestPaymentService_ListPaid(t *testing.T) {
	f := newPaymentFixture()
	order := createTestOrder(t, uuid.New())
	record := createTestRecord(t, order.ID)
	require.NoError(t, record.MarkPaid("pay_xyz"))

	f.paymentRepo.On("FindPaid", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Page == 2 && filter.PageSize == 10
	})).Return([]payment.Record{*record}, int64(11), nil)

	resps, total, err := f.service.ListPaid(context.Background(), ListFilter{Page: 2, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, resps, 1)
}
