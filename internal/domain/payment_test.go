package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearbill/payments/internal/domain"
)

func newPayment(t *testing.T) *domain.Payment {
	t.Helper()
	methodID := "method-1"
	p, err := domain.NewPayment("pay-1", "acct-1", 1234, "USD", domain.GatewayCard, domain.TypeCard, &methodID, time.Now())
	require.NoError(t, err)
	return p
}

func TestNewPayment_StartsAuthorizing(t *testing.T) {
	p := newPayment(t)
	assert.Equal(t, domain.StatusAuthorizing, p.Status)
	assert.False(t, p.IsTerminal())
	assert.False(t, p.IsRefund())
}

func TestNewPayment_Validation(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		account  string
		amount   int64
		currency string
		gateway  domain.GatewayID
		wantCode string
	}{
		{"missing id", "", "acct-1", 100, "USD", domain.GatewayCard, domain.ErrCodeMissingRequiredField},
		{"missing account", "pay-1", "", 100, "USD", domain.GatewayCard, domain.ErrCodeMissingRequiredField},
		{"zero amount", "pay-1", "acct-1", 0, "USD", domain.GatewayCard, domain.ErrCodeInvalidAmount},
		{"negative amount", "pay-1", "acct-1", -5, "USD", domain.GatewayCard, domain.ErrCodeInvalidAmount},
		{"missing currency", "pay-1", "acct-1", 100, "", domain.GatewayCard, domain.ErrCodeMissingRequiredField},
		{"unknown gateway", "pay-1", "acct-1", 100, "USD", "stripe", domain.ErrCodeUnknownGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewPayment(tt.id, tt.account, tt.amount, tt.currency, tt.gateway, domain.TypeCard, nil, time.Now())
			require.Error(t, err)
			assert.True(t, domain.IsErrorCode(err, tt.wantCode))
		})
	}
}

func TestPayment_HappyPathTransitions(t *testing.T) {
	p := newPayment(t)

	require.NoError(t, p.Authorize())
	assert.Equal(t, domain.StatusAuthorized, p.Status)

	require.NoError(t, p.BeginCapture())
	assert.Equal(t, domain.StatusAuthCapturing, p.Status)

	require.NoError(t, p.Capture())
	assert.Equal(t, domain.StatusCaptured, p.Status)
	assert.True(t, p.IsTerminal())
}

func TestPayment_IllegalTransitions(t *testing.T) {
	p := newPayment(t)

	// Cannot capture straight out of AUTHORIZING.
	err := p.Capture()
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))

	require.NoError(t, p.Authorize())
	require.NoError(t, p.BeginCapture())
	require.NoError(t, p.Capture())

	// Terminal states accept nothing.
	assert.Error(t, p.Authorize())
	assert.Error(t, p.Cancel())
	assert.Error(t, p.Decline("no"))
}

func TestPayment_DeclineKeepsMessage(t *testing.T) {
	p := newPayment(t)
	require.NoError(t, p.Decline("insufficient funds"))
	assert.Equal(t, domain.StatusDeclined, p.Status)
	assert.Equal(t, "insufficient funds", p.Notes)
	assert.True(t, p.IsTerminal())
}

func TestPayment_RefundLineage(t *testing.T) {
	original := newPayment(t)
	refund, err := domain.NewRefundPayment("pay-2", original, 500, original.Gateway, original.Type)
	require.NoError(t, err)

	assert.True(t, refund.IsRefund())
	require.NotNil(t, refund.OriginalPaymentID)
	assert.Equal(t, original.ID, *refund.OriginalPaymentID)
	assert.Equal(t, original.Currency, refund.Currency)

	// A refund settles via CREDITED straight from AUTHORIZING.
	require.NoError(t, refund.Credit())
	assert.Equal(t, domain.StatusCredited, refund.Status)
}

func TestPayment_SuspendedPaths(t *testing.T) {
	p, err := domain.NewSuspendedPayment("pay-3", "acct-1", 1234, "USD", domain.GatewayCard, domain.TypeCard, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, p.Status)

	require.NoError(t, p.Authorize())
	assert.Equal(t, domain.StatusAuthorized, p.Status)

	q, err := domain.NewSuspendedPayment("pay-4", "acct-1", 1234, "USD", domain.GatewayCard, domain.TypeCard, nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, q.Terminate("ops", time.Now()))
	assert.Equal(t, domain.StatusTerminated, q.Status)
	require.NotNil(t, q.TerminatedBy)
	assert.Equal(t, "ops", *q.TerminatedBy)
	assert.NotNil(t, q.TerminatedAt)
}

func TestPayment_TerminateOnlyFromSuspended(t *testing.T) {
	p := newPayment(t)
	require.NoError(t, p.Authorize())

	err := p.Terminate("ops", time.Now())
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
	assert.Nil(t, p.TerminatedAt)
}

func TestPayment_Settled(t *testing.T) {
	p := newPayment(t)
	now := time.Now()

	p.ProcessedAt = now.Add(-time.Minute)
	assert.True(t, p.Settled(now))

	p.ProcessedAt = now.Add(time.Minute)
	assert.False(t, p.Settled(now))
}
