package payment

import (
	"testing"

	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_Success(t *testing.T) {
	orderID := uuid.New()

	record, err := NewRecord(orderID, "order_gw123", decimal.NewFromInt(499), "INR", `{"id":"order_gw123"}`)

	require.NoError(t, err)
	assert.Equal(t, orderID, record.OrderID)
	assert.Equal(t, "order_gw123", record.GatewayOrderID)
	assert.Equal(t, StatusCreated, record.Status)
	assert.Equal(t, "INR", record.Currency)
	assert.Empty(t, record.GatewayPaymentID)
}

func TestNewRecord_Defaults(t *testing.T) {
	record, err := NewRecord(uuid.New(), "order_gw123", decimal.NewFromInt(100), "", "")

	require.NoError(t, err)
	assert.Equal(t, "INR", record.Currency)
	assert.Equal(t, "{}", record.RawPayload)
}

func TestNewRecord_Validation(t *testing.T) {
	_, err := NewRecord(uuid.Nil, "order_gw123", decimal.NewFromInt(100), "INR", "")
	assert.Error(t, err)

	_, err = NewRecord(uuid.New(), "", decimal.NewFromInt(100), "INR", "")
	assert.Error(t, err)

	_, err = NewRecord(uuid.New(), "order_gw123", decimal.Zero, "INR", "")
	assert.Error(t, err)

	_, err = NewRecord(uuid.New(), "order_gw123", decimal.NewFromInt(-10), "INR", "")
	assert.Error(t, err)
}

func TestRecord_MarkPaid(t *testing.T) {
	record, err := NewRecord(uuid.New(), "order_gw123", decimal.NewFromInt(499), "INR", "")
	require.NoError(t, err)
	versionBefore := record.Version

	require.NoError(t, record.MarkPaid("pay_xyz789"))

	assert.Equal(t, StatusPaid, record.Status)
	assert.Equal(t, "pay_xyz789", record.GatewayPaymentID)
	assert.Equal(t, versionBefore+1, record.Version)
}

func TestRecord_MarkPaid_Twice(t *testing.T) {
	record, err := NewRecord(uuid.New(), "order_gw123", decimal.NewFromInt(499), "INR", "")
	require.NoError(t, err)
	require.NoError(t, record.MarkPaid("pay_xyz789"))

	err = record.MarkPaid("pay_other")

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Equal(t, "pay_xyz789", record.GatewayPaymentID)
}

func TestRecord_MarkPaid_AfterFailure(t *testing.T) {
	record, err := NewRecord(uuid.New(), "order_gw123", decimal.NewFromInt(499), "INR", "")
	require.NoError(t, err)
	require.NoError(t, record.MarkFailed("pay_bad", "signature mismatch"))

	err = record.MarkPaid("pay_xyz789")
	assert.Error(t, err)
	assert.Equal(t, StatusFailed, record.Status)
}

func TestRecord_MarkPaid_RequiresPaymentID(t *testing.T) {
	record, err := NewRecord(uuid.New(), "order_gw123", decimal.NewFromInt(499), "INR", "")
	require.NoError(t, err)

	assert.Error(t, record.MarkPaid(""))
	assert.Equal(t, StatusCreated, record.Status)
}

func TestRecord_MarkFailed(t *testing.T) {
	record, err := NewRecord(uuid.New(), "order_gw123", decimal.NewFromInt(499), "INR", "")
	require.NoError(t, err)

	require.NoError(t, record.MarkFailed("pay_bad", "signature mismatch"))

	assert.Equal(t, StatusFailed, record.Status)
	assert.Equal(t, "pay_bad", record.GatewayPaymentID)
	assert.Equal(t, "signature mismatch", record.FailureReason)
}

func TestRecord_MarkFailed_PaidRecord(t *testing.T) {
	record, err := NewRecord(uuid.New(), "order_gw123", decimal.NewFromInt(499), "INR", "")
	require.NoError(t, err)
	require.NoError(t, record.MarkPaid("pay_xyz789"))

	err = record.MarkFailed("pay_xyz789", "late failure callback")
	assert.Error(t, err)
	assert.Equal(t, StatusPaid, record.Status)
}
