package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
)

// TerminatePaymentHandler permanently stops a suspended payment. No
// gateway call: this is a local decision to stop future retries.
type TerminatePaymentHandler struct {
	repos  *application.Repositories
	uow    application.UnitOfWork
	events application.EventPublisher
	logger *slog.Logger
	sm     domain.StateMachine
}

func NewTerminatePaymentHandler(
	repos *application.Repositories,
	uow application.UnitOfWork,
	events application.EventPublisher,
	logger *slog.Logger,
) *TerminatePaymentHandler {
	return &TerminatePaymentHandler{
		repos:  repos,
		uow:    uow,
		events: events,
		logger: logger,
	}
}

// Handle terminates a SUSPENDED payment. Terminating anything else is an
// error, not a no-op: already_terminated for a second attempt,
// suspended_payments_only otherwise.
func (h *TerminatePaymentHandler) Handle(ctx context.Context, cmd TerminateCommand) (*domain.Payment, error) {
	if cmd.TerminatedBy == "" {
		return nil, application.NewValidationError(domain.NewMissingRequiredFieldError("terminated_by"))
	}

	var payment *domain.Payment
	err := h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		var err error
		payment, err = r.Payments.FindByIDForUpdate(ctx, cmd.PaymentID)
		if err != nil {
			if errors.Is(err, application.ErrPaymentNotFound) {
				return application.NewNotFoundError("payment", cmd.PaymentID)
			}
			return err
		}

		if smErr := h.sm.CanTerminate(payment); smErr != nil {
			return application.NewUnprocessableError(smErr.Error(), smErr)
		}

		if err := payment.Terminate(cmd.TerminatedBy, time.Now()); err != nil {
			return err
		}
		return r.Payments.Update(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("payment terminated",
		"payment_id", payment.ID, "terminated_by", cmd.TerminatedBy)
	h.events.Publish(ctx, domain.NewPaymentTerminatedEvent(payment))

	return payment, nil
}
