package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/application/handlers"
	"github.com/clearbill/payments/internal/domain"
)

func newCancelHandler(env *testEnv) *handlers.CancelPaymentHandler {
	return handlers.NewCancelPaymentHandler(env.repos, env.uow, env.gateways, staticCredentials{}, env.logger)
}

// futureProcessing is a settlement date still ahead, so the payment is
// cancellable.
func futureProcessing() time.Time {
	return time.Now().Add(24 * time.Hour)
}

func TestCancel_Approved(t *testing.T) {
	env := newTestEnv()
	payment := env.seedPayment(domain.StatusAuthorized, domain.GatewayCard, futureProcessing())
	env.seedAuthEntry(payment.ID)
	handler := newCancelHandler(env)

	cancelled, err := handler.Handle(context.Background(), handlers.CancelCommand{PaymentID: payment.ID})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, domain.StatusCancelled, env.payments.stored(payment.ID).Status)
	require.Len(t, env.ledger.byType(payment.ID, domain.TransactionCancel), 1)
	assert.Equal(t, 1, env.gateway.CancelCalls)
}

func TestCancel_GatewayWithoutCancelSupport(t *testing.T) {
	env := newTestEnv()
	payment := env.seedPayment(domain.StatusAuthorized, domain.GatewayACH, futureProcessing())
	env.seedAuthEntry(payment.ID)
	handler := newCancelHandler(env)

	_, err := handler.Handle(context.Background(), handlers.CancelCommand{PaymentID: payment.ID})

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCancelUnsupported))
	assert.Zero(t, env.gateway.CancelCalls)
	assert.Equal(t, domain.StatusAuthorized, env.payments.stored(payment.ID).Status)
}

func TestCancel_SettledPaymentRefused(t *testing.T) {
	env := newTestEnv()
	payment := env.seedPayment(domain.StatusAuthorized, domain.GatewayCard, time.Now().Add(-time.Hour))
	env.seedAuthEntry(payment.ID)
	handler := newCancelHandler(env)

	_, err := handler.Handle(context.Background(), handlers.CancelCommand{PaymentID: payment.ID})

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeAlreadyProcessed))
	assert.Zero(t, env.gateway.CancelCalls)
}

func TestCancel_MissingOriginalTransactionLeavesStatusUnchanged(t *testing.T) {
	env := newTestEnv()
	payment := env.seedPayment(domain.StatusAuthorized, domain.GatewayCard, futureProcessing())
	handler := newCancelHandler(env)

	_, err := handler.Handle(context.Background(), handlers.CancelCommand{PaymentID: payment.ID})

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMissingOriginalTx))
	assert.Zero(t, env.gateway.CancelCalls)
	assert.Equal(t, domain.StatusAuthorized, env.payments.stored(payment.ID).Status)
}

func TestCancel_GatewayRefusalFailsWithoutStatusChange(t *testing.T) {
	env := newTestEnv()
	payment := env.seedPayment(domain.StatusAuthorized, domain.GatewayCard, futureProcessing())
	env.seedAuthEntry(payment.ID)
	env.gateway.CancelFn = func(ctx context.Context, req application.CancelRequest, creds application.Credentials) (*application.GatewayResult, error) {
		return &application.GatewayResult{Success: false, Message: "already batched"}, nil
	}
	handler := newCancelHandler(env)

	_, err := handler.Handle(context.Background(), handlers.CancelCommand{PaymentID: payment.ID})

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeCancellationFailed, svcErr.Code)
	assert.Equal(t, domain.StatusAuthorized, env.payments.stored(payment.ID).Status)
	assert.Empty(t, env.ledger.byType(payment.ID, domain.TransactionCancel))
}

func TestCancel_UnresolvableMethodRefusedBeforeGateway(t *testing.T) {
	env := newTestEnv()
	payment := env.seedPayment(domain.StatusAuthorized, domain.GatewayCard, futureProcessing())
	payment.PaymentMethodID = nil
	env.seedAuthEntry(payment.ID)
	handler := newCancelHandler(env)

	_, err := handler.Handle(context.Background(), handlers.CancelCommand{PaymentID: payment.ID})

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMethodNotFound))
	assert.Zero(t, env.gateway.CancelCalls)
}
