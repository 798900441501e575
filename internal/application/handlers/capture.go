package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
	"github.com/google/uuid"
)

// CapturePaymentHandler finalizes a previously authorized reservation
// into an actual charge.
type CapturePaymentHandler struct {
	repos       *application.Repositories
	uow         application.UnitOfWork
	gateways    application.GatewayRegistry
	credentials application.CredentialsProvider
	logger      *slog.Logger
	sm          domain.StateMachine
}

func NewCapturePaymentHandler(
	repos *application.Repositories,
	uow application.UnitOfWork,
	gateways application.GatewayRegistry,
	credentials application.CredentialsProvider,
	logger *slog.Logger,
) *CapturePaymentHandler {
	return &CapturePaymentHandler{
		repos:       repos,
		uow:         uow,
		gateways:    gateways,
		credentials: credentials,
		logger:      logger,
	}
}

// Handle captures an AUTHORIZED payment. Past the 7-day capture window
// the handler attempts a gateway cancel instead, persists CANCELLED on
// success or DECLINED on failure, and raises payment_expired either way;
// capture never proceeds past that branch.
func (h *CapturePaymentHandler) Handle(ctx context.Context, cmd CaptureCommand) (*domain.Payment, error) {
	existing, err := h.repos.Payments.FindByID(ctx, cmd.PaymentID)
	if err != nil {
		if errors.Is(err, application.ErrPaymentNotFound) {
			return nil, application.NewNotFoundError("payment", cmd.PaymentID)
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

	var (
		payment    *domain.Payment
		expired    bool
		declineMsg string
	)
	err = h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		payment, err = r.Payments.FindByIDForUpdate(ctx, cmd.PaymentID)
		if err != nil {
			return err
		}

		now := time.Now()
		if smErr := h.sm.CanCapture(payment, now); smErr != nil {
			if !domain.IsErrorCode(smErr, domain.ErrCodePaymentExpired) {
				return application.NewUnprocessableError(smErr.Error(), smErr)
			}
			expired = true
			return h.cancelExpired(ctx, r, adapter, creds, payment)
		}

		authEntry, err := r.Ledger.FindLastByPayment(ctx, payment.ID, domain.TransactionAuthorize)
		if err != nil {
			if errors.Is(err, application.ErrTransactionNotFound) {
				return application.NewInconsistentDataError(
					fmt.Sprintf("payment %s is AUTHORIZED but has no authorize ledger entry", payment.ID))
			}
			return err
		}

		if err := payment.BeginCapture(); err != nil {
			return err
		}

		result, err := adapter.Capture(ctx, application.CaptureRequest{
			PaymentID:            payment.ID,
			Amount:               payment.Amount,
			GatewayTransactionID: authEntry.GatewayTransactionID,
		}, creds)
		if err != nil {
			return translateGatewayErr(err)
		}

		if result.Success {
			if err := payment.Capture(); err != nil {
				return err
			}
		} else {
			declineMsg = result.Message
			if err := payment.Decline(result.Message); err != nil {
				return err
			}
		}

		if err := r.Payments.Update(ctx, payment); err != nil {
			return err
		}
		entry := domain.NewTransaction(uuid.New().String(), payment.ID, domain.TransactionCapture, result.GatewayTransactionID, result.ResponseCode)
		return r.Ledger.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	if expired {
		h.logger.Warn("capture refused for expired authorization",
			"payment_id", payment.ID, "status", payment.Status)
		return payment, application.NewUnprocessableError("payment expired", domain.NewPaymentExpiredError(payment.ID))
	}
	if declineMsg != "" {
		h.logger.Info("capture declined", "payment_id", payment.ID, "message", declineMsg)
		return payment, application.NewUnprocessableError(declineMsg, nil)
	}

	h.logger.Info("payment captured", "payment_id", payment.ID)
	return payment, nil
}

// cancelExpired runs the auto-cancel path for an authorization past the
// capture window: CANCELLED when the gateway reversal goes through,
// DECLINED when it does not. Both outcomes commit; the payment_expired
// error is raised after the unit of work so the status change survives.
func (h *CapturePaymentHandler) cancelExpired(ctx context.Context, r *application.Repositories, adapter application.GatewayAdapter, creds application.Credentials, payment *domain.Payment) error {
	authEntry, err := r.Ledger.FindLastByPayment(ctx, payment.ID, domain.TransactionAuthorize)
	if err != nil {
		if errors.Is(err, application.ErrTransactionNotFound) {
			return application.NewInconsistentDataError(
				fmt.Sprintf("payment %s is AUTHORIZED but has no authorize ledger entry", payment.ID))
		}
		return err
	}

	result, err := adapter.Cancel(ctx, application.CancelRequest{
		PaymentID:            payment.ID,
		GatewayTransactionID: authEntry.GatewayTransactionID,
	}, creds)
	if err != nil {
		return err
	}

	if result.Success {
		if err := payment.Cancel(); err != nil {
			return err
		}
	} else {
		if err := payment.Decline(result.Message); err != nil {
			return err
		}
	}

	// The cancel attempt goes on the ledger whether or not the gateway
	// accepted it; a refused reversal is still a gateway call.
	entry := domain.NewTransaction(uuid.New().String(), payment.ID, domain.TransactionCancel, result.GatewayTransactionID, result.ResponseCode)
	if err := r.Ledger.Create(ctx, entry); err != nil {
		return err
	}

	return r.Payments.Update(ctx, payment)
}
