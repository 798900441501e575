package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
	"github.com/google/uuid"
)

// CancelPaymentHandler reverses an unsettled authorization at the
// gateway and records the reversal in the ledger.
type CancelPaymentHandler struct {
	repos       *application.Repositories
	uow         application.UnitOfWork
	gateways    application.GatewayRegistry
	credentials application.CredentialsProvider
	logger      *slog.Logger
	sm          domain.StateMachine
}

func NewCancelPaymentHandler(
	repos *application.Repositories,
	uow application.UnitOfWork,
	gateways application.GatewayRegistry,
	credentials application.CredentialsProvider,
	logger *slog.Logger,
) *CancelPaymentHandler {
	return &CancelPaymentHandler{
		repos:       repos,
		uow:         uow,
		gateways:    gateways,
		credentials: credentials,
		logger:      logger,
	}
}

// Handle cancels a payment. The gateway call references the original
// authorize/capture ledger entry; a missing entry or an unresolvable
// payment method refuses the operation before the gateway is touched,
// and a gateway failure leaves the payment status unchanged.
func (h *CancelPaymentHandler) Handle(ctx context.Context, cmd CancelCommand) (*domain.Payment, error) {
	existing, err := h.repos.Payments.FindByID(ctx, cmd.PaymentID)
	if err != nil {
		if errors.Is(err, application.ErrPaymentNotFound) {
			return nil, application.NewNotFoundError("payment", cmd.PaymentID)
		}
		return nil, err
	}

	if smErr := h.sm.CanCancel(existing, time.Now()); smErr != nil {
		return nil, application.NewUnprocessableError(smErr.Error(), smErr)
	}

	if existing.PaymentMethodID == nil {
		return nil, application.NewUnprocessableError("original payment method not found",
			domain.NewMethodNotFoundError(existing.ID))
	}
	if _, err := h.repos.Methods.FindByID(ctx, *existing.PaymentMethodID); err != nil {
		if errors.Is(err, application.ErrPaymentMethodNotFound) {
			return nil, application.NewUnprocessableError("original payment method not found",
				domain.NewMethodNotFoundError(existing.ID))
		}
		return nil, err
	}

	adapter, ok := h.gateways.Adapter(existing.Gateway)
	if !ok {
		return nil, application.NewUnsupportedValueError("gateway", string(existing.Gateway))
	}
	creds, err := h.credentials.Get(ctx, existing.Gateway)
	if err != nil {
		return nil, err
	}

	var payment *domain.Payment
	err = h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		payment, err = r.Payments.FindByIDForUpdate(ctx, cmd.PaymentID)
		if err != nil {
			return err
		}
		if smErr := h.sm.CanCancel(payment, time.Now()); smErr != nil {
			return application.NewUnprocessableError(smErr.Error(), smErr)
		}

		original, err := r.Ledger.FindLastByPayment(ctx, payment.ID, domain.TransactionAuthorize, domain.TransactionCapture)
		if err != nil {
			if errors.Is(err, application.ErrTransactionNotFound) {
				return application.NewUnprocessableError("missing original transaction",
					domain.NewMissingOriginalTransactionError(payment.ID))
			}
			return err
		}

		result, err := adapter.Cancel(ctx, application.CancelRequest{
			PaymentID:            payment.ID,
			GatewayTransactionID: original.GatewayTransactionID,
		}, creds)
		if err != nil {
			return err
		}
		if !result.Success {
			return application.NewCancellationFailedError(result.Message)
		}

		if err := payment.Cancel(); err != nil {
			return err
		}
		if err := r.Payments.Update(ctx, payment); err != nil {
			return err
		}
		entry := domain.NewTransaction(uuid.New().String(), payment.ID, domain.TransactionCancel, result.GatewayTransactionID, result.ResponseCode)
		return r.Ledger.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("payment cancelled", "payment_id", payment.ID)
	return payment, nil
}
