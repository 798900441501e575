package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearbill/payments/internal/domain"
)

func authorizedPayment(t *testing.T, gateway domain.GatewayID, processedAt time.Time) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment("pay-1", "acct-1", 1234, "USD", gateway, domain.TypeCard, nil, processedAt)
	require.NoError(t, err)
	require.NoError(t, p.Authorize())
	return p
}

func TestCanCapture_WithinWindow(t *testing.T) {
	var sm domain.StateMachine
	now := time.Now()

	p := authorizedPayment(t, domain.GatewayCard, now.Add(-6*24*time.Hour))
	assert.NoError(t, sm.CanCapture(p, now))
}

func TestCanCapture_AtWindowBoundary(t *testing.T) {
	var sm domain.StateMachine
	now := time.Now()

	// Exactly seven days is still capturable; a second past is not.
	p := authorizedPayment(t, domain.GatewayCard, now.Add(-domain.CaptureWindow))
	assert.NoError(t, sm.CanCapture(p, now))

	p = authorizedPayment(t, domain.GatewayCard, now.Add(-domain.CaptureWindow-time.Second))
	err := sm.CanCapture(p, now)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodePaymentExpired))
}

func TestCanCapture_EightDaysExpired(t *testing.T) {
	var sm domain.StateMachine
	now := time.Now()

	p := authorizedPayment(t, domain.GatewayCard, now.Add(-8*24*time.Hour))
	err := sm.CanCapture(p, now)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodePaymentExpired))
}

func TestCanCapture_RequiresAuthorized(t *testing.T) {
	var sm domain.StateMachine
	now := time.Now()

	p, err := domain.NewPayment("pay-1", "acct-1", 1234, "USD", domain.GatewayCard, domain.TypeCard, nil, now)
	require.NoError(t, err)

	smErr := sm.CanCapture(p, now)
	require.Error(t, smErr)
	assert.True(t, domain.IsErrorCode(smErr, domain.ErrCodeInvalidTransition))
}

func TestCanCancel_CapabilityGate(t *testing.T) {
	var sm domain.StateMachine
	now := time.Now()
	future := now.Add(24 * time.Hour)

	// cardworks supports cancel.
	p := authorizedPayment(t, domain.GatewayCard, future)
	assert.NoError(t, sm.CanCancel(p, now))

	// achdirect does not.
	p = authorizedPayment(t, domain.GatewayACH, future)
	err := sm.CanCancel(p, now)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCancelUnsupported))

	// neither does the manual check gateway.
	p = authorizedPayment(t, domain.GatewayCheck, future)
	err = sm.CanCancel(p, now)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCancelUnsupported))
}

func TestCanCancel_SettledPayment(t *testing.T) {
	var sm domain.StateMachine
	now := time.Now()

	p := authorizedPayment(t, domain.GatewayCard, now.Add(-time.Hour))
	err := sm.CanCancel(p, now)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeAlreadyProcessed))
}

func TestCanCancel_StatusGate(t *testing.T) {
	var sm domain.StateMachine
	now := time.Now()
	future := now.Add(24 * time.Hour)

	p := authorizedPayment(t, domain.GatewayCard, future)
	require.NoError(t, p.BeginCapture())
	assert.NoError(t, sm.CanCancel(p, now))

	require.NoError(t, p.Capture())
	err := sm.CanCancel(p, now)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
}

func TestCanTerminate(t *testing.T) {
	var sm domain.StateMachine

	suspended, err := domain.NewSuspendedPayment("pay-1", "acct-1", 1234, "USD", domain.GatewayCard, domain.TypeCard, nil, time.Now())
	require.NoError(t, err)
	assert.NoError(t, sm.CanTerminate(suspended))

	require.NoError(t, suspended.Terminate("ops", time.Now()))
	err = sm.CanTerminate(suspended)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeAlreadyTerminated))

	captured := authorizedPayment(t, domain.GatewayCard, time.Now())
	require.NoError(t, captured.BeginCapture())
	require.NoError(t, captured.Capture())
	err = sm.CanTerminate(captured)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeSuspendedOnly))
}

func capturedPayment(t *testing.T, gateway domain.GatewayID) *domain.Payment {
	t.Helper()
	p := authorizedPayment(t, gateway, time.Now())
	require.NoError(t, p.BeginCapture())
	require.NoError(t, p.Capture())
	return p
}

func TestCanRefund(t *testing.T) {
	var sm domain.StateMachine
	original := capturedPayment(t, domain.GatewayCard)

	assert.NoError(t, sm.CanRefund(original, 1234, 0))
	assert.NoError(t, sm.CanRefund(original, 1, 0))

	err := sm.CanRefund(original, 1235, 0)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeRefundExceedsOriginal))

	err = sm.CanRefund(original, 0, 0)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))
}

func TestCanRefund_CountsPriorRefunds(t *testing.T) {
	var sm domain.StateMachine
	original := capturedPayment(t, domain.GatewayCard)

	// 500 already refunded leaves 734 refundable.
	assert.NoError(t, sm.CanRefund(original, 734, 500))

	err := sm.CanRefund(original, 735, 500)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeRefundExceedsOriginal))

	err = sm.CanRefund(original, 1, 1234)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeRefundExceedsOriginal))
}

func TestCanRefund_RequiresCaptured(t *testing.T) {
	var sm domain.StateMachine

	authorized := authorizedPayment(t, domain.GatewayCard, time.Now())
	err := sm.CanRefund(authorized, 100, 0)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeRefundNotCaptured))

	declined := authorizedPayment(t, domain.GatewayCard, time.Now())
	require.NoError(t, declined.Decline("insufficient funds"))
	err = sm.CanRefund(declined, 100, 0)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeRefundNotCaptured))
}

func TestGatewayCapabilityTable(t *testing.T) {
	tests := []struct {
		gateway domain.GatewayID
		cancel  bool
		credit  bool
		real    bool
	}{
		{domain.GatewayCard, true, true, true},
		{domain.GatewayACH, false, true, true},
		{domain.GatewayCheck, false, false, false},
		{domain.GatewayTokenProxy, true, true, true},
	}

	for _, tt := range tests {
		caps, ok := domain.CapabilitiesFor(tt.gateway)
		require.True(t, ok, "gateway %s", tt.gateway)
		assert.Equal(t, tt.cancel, caps.SupportsCancel, "gateway %s cancel", tt.gateway)
		assert.Equal(t, tt.credit, caps.SupportsCredit, "gateway %s credit", tt.gateway)
		assert.Equal(t, tt.real, caps.IsReal, "gateway %s real", tt.gateway)
	}

	_, ok := domain.CapabilitiesFor("stripe")
	assert.False(t, ok)
	assert.False(t, domain.KnownGateway("stripe"))
}
