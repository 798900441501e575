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

// AuthorizeAndCaptureHandler performs authorize and capture as a single
// gateway call (processor sale semantics) producing one CAPTURE ledger
// entry.
type AuthorizeAndCaptureHandler struct {
	repos       *application.Repositories
	uow         application.UnitOfWork
	gateways    application.GatewayRegistry
	credentials application.CredentialsProvider
	events      application.EventPublisher
	logger      *slog.Logger
}

func NewAuthorizeAndCaptureHandler(
	repos *application.Repositories,
	uow application.UnitOfWork,
	gateways application.GatewayRegistry,
	credentials application.CredentialsProvider,
	events application.EventPublisher,
	logger *slog.Logger,
) *AuthorizeAndCaptureHandler {
	return &AuthorizeAndCaptureHandler{
		repos:       repos,
		uow:         uow,
		gateways:    gateways,
		credentials: credentials,
		events:      events,
		logger:      logger,
	}
}

func (h *AuthorizeAndCaptureHandler) Handle(ctx context.Context, cmd AuthorizeAndCaptureCommand) (*domain.Payment, error) {
	account, err := findAccount(ctx, h.repos, cmd.AccountID)
	if err != nil {
		return nil, err
	}

	method, err := resolveMethod(ctx, h.repos, account.ID, cmd.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	adapter, ok := h.gateways.Adapter(method.Gateway)
	if !ok {
		return nil, application.NewUnsupportedValueError("gateway", string(method.Gateway))
	}

	creds, err := h.credentials.Get(ctx, method.Gateway)
	if err != nil {
		return nil, err
	}

	var (
		payment *domain.Payment
		result  *application.GatewayResult
	)
	err = h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		methodID := method.ID
		payment, err = domain.NewPayment(uuid.New().String(), account.ID, cmd.Amount, cmd.Currency, method.Gateway, method.Type, &methodID, time.Now())
		if err != nil {
			return application.NewValidationError(err)
		}
		payment.Notes = cmd.Notes

		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}

		result, err = adapter.Authorize(ctx, authorizationRequest(payment, method, true), creds)
		if err != nil {
			return translateGatewayErr(err)
		}

		return settleSale(ctx, r, payment, result)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("authorize-and-capture attempted",
		"payment_id", payment.ID,
		"account_id", payment.AccountID,
		"status", payment.Status)
	h.events.Publish(ctx, domain.NewPaymentAttemptedEvent(payment, result.Message))

	return payment, nil
}

// AuthorizeAndCaptureSuspendedHandler runs the combined sale against a
// pre-existing SUSPENDED payment instead of creating a new one.
type AuthorizeAndCaptureSuspendedHandler struct {
	repos       *application.Repositories
	uow         application.UnitOfWork
	gateways    application.GatewayRegistry
	credentials application.CredentialsProvider
	events      application.EventPublisher
	logger      *slog.Logger
}

func NewAuthorizeAndCaptureSuspendedHandler(
	repos *application.Repositories,
	uow application.UnitOfWork,
	gateways application.GatewayRegistry,
	credentials application.CredentialsProvider,
	events application.EventPublisher,
	logger *slog.Logger,
) *AuthorizeAndCaptureSuspendedHandler {
	return &AuthorizeAndCaptureSuspendedHandler{
		repos:       repos,
		uow:         uow,
		gateways:    gateways,
		credentials: credentials,
		events:      events,
		logger:      logger,
	}
}

func (h *AuthorizeAndCaptureSuspendedHandler) Handle(ctx context.Context, cmd ProcessSuspendedCommand) (*domain.Payment, error) {
	existing, err := h.repos.Payments.FindByID(ctx, cmd.PaymentID)
	if err != nil {
		if errors.Is(err, application.ErrPaymentNotFound) {
			return nil, application.NewNotFoundError("payment", cmd.PaymentID)
		}
		return nil, err
	}
	if existing.Status != domain.StatusSuspended {
		return nil, application.NewUnprocessableError("only suspended payments can be processed",
			domain.NewSuspendedOnlyError(existing.ID, existing.Status))
	}
	if existing.PaymentMethodID == nil {
		return nil, application.NewValidationError(domain.NewMethodNotFoundError(existing.ID))
	}

	// The method may have changed hands or been deleted while the
	// payment sat suspended; re-validate before touching the gateway.
	method, err := resolveMethod(ctx, h.repos, existing.AccountID, existing.PaymentMethodID)
	if err != nil {
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
		payment *domain.Payment
		result  *application.GatewayResult
	)
	err = h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		payment, err = r.Payments.FindByIDForUpdate(ctx, cmd.PaymentID)
		if err != nil {
			return err
		}
		if payment.Status != domain.StatusSuspended {
			return application.NewUnprocessableError("only suspended payments can be processed",
				domain.NewSuspendedOnlyError(payment.ID, payment.Status))
		}

		result, err = adapter.Authorize(ctx, authorizationRequest(payment, method, true), creds)
		if err != nil {
			return translateGatewayErr(err)
		}

		return settleSale(ctx, r, payment, result)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("suspended payment processed",
		"payment_id", payment.ID, "status", payment.Status)
	h.events.Publish(ctx, domain.NewPaymentAttemptedEvent(payment, result.Message))
	h.events.Publish(ctx, domain.NewSuspendedPaymentProcessedEvent(payment))

	return payment, nil
}

// settleSale applies a combined authorize+capture result and appends the
// single CAPTURE ledger entry the one gateway call produced.
func settleSale(ctx context.Context, r *application.Repositories, payment *domain.Payment, result *application.GatewayResult) error {
	if result.Success {
		if err := payment.Authorize(); err != nil {
			return err
		}
		if err := payment.BeginCapture(); err != nil {
			return err
		}
		if err := payment.Capture(); err != nil {
			return err
		}
	} else {
		if err := payment.Decline(result.Message); err != nil {
			return err
		}
	}

	if err := r.Payments.Update(ctx, payment); err != nil {
		return err
	}
	entry := domain.NewTransaction(uuid.New().String(), payment.ID, domain.TransactionCapture, result.GatewayTransactionID, result.ResponseCode)
	return r.Ledger.Create(ctx, entry)
}
