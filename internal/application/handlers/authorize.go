package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
	"github.com/google/uuid"
)

// AuthorizeHandler reserves funds against a payment method without
// finalizing settlement.
type AuthorizeHandler struct {
	repos       *application.Repositories
	uow         application.UnitOfWork
	gateways    application.GatewayRegistry
	credentials application.CredentialsProvider
	events      application.EventPublisher
	logger      *slog.Logger
}

func NewAuthorizeHandler(
	repos *application.Repositories,
	uow application.UnitOfWork,
	gateways application.GatewayRegistry,
	credentials application.CredentialsProvider,
	events application.EventPublisher,
	logger *slog.Logger,
) *AuthorizeHandler {
	return &AuthorizeHandler{
		repos:       repos,
		uow:         uow,
		gateways:    gateways,
		credentials: credentials,
		events:      events,
		logger:      logger,
	}
}

// Handle authorizes a new payment. A gateway business decline is not an
// error: the payment persists as DECLINED with the gateway's message and
// the attempted event is still published. An infrastructure failure
// aborts the unit of work and no payment row survives.
func (h *AuthorizeHandler) Handle(ctx context.Context, cmd AuthorizeCommand) (*domain.Payment, error) {
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

		result, err = adapter.Authorize(ctx, authorizationRequest(payment, method, false), creds)
		if err != nil {
			return translateGatewayErr(err)
		}

		if result.Success {
			if err := payment.Authorize(); err != nil {
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
		entry := domain.NewTransaction(uuid.New().String(), payment.ID, domain.TransactionAuthorize, result.GatewayTransactionID, result.ResponseCode)
		return r.Ledger.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("payment authorization attempted",
		"payment_id", payment.ID,
		"account_id", payment.AccountID,
		"gateway", payment.Gateway,
		"status", payment.Status)
	h.events.Publish(ctx, domain.NewPaymentAttemptedEvent(payment, result.Message))

	return payment, nil
}
