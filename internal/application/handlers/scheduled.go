package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
	"github.com/google/uuid"
)

// CreateScheduledPaymentHandler registers a future payment intent tied
// to a business trigger.
type CreateScheduledPaymentHandler struct {
	repos         *application.Repositories
	uow           application.UnitOfWork
	subscriptions application.SubscriptionService
	events        application.EventPublisher
	logger        *slog.Logger
}

func NewCreateScheduledPaymentHandler(
	repos *application.Repositories,
	uow application.UnitOfWork,
	subscriptions application.SubscriptionService,
	events application.EventPublisher,
	logger *slog.Logger,
) *CreateScheduledPaymentHandler {
	return &CreateScheduledPaymentHandler{
		repos:         repos,
		uow:           uow,
		subscriptions: subscriptions,
		events:        events,
		logger:        logger,
	}
}

// Handle validates trigger metadata, refuses duplicates, and persists a
// PENDING scheduled payment. Duplicate means another non-cancelled
// scheduled payment with the same account, trigger and metadata.
func (h *CreateScheduledPaymentHandler) Handle(ctx context.Context, cmd CreateScheduledPaymentCommand) (*domain.ScheduledPayment, error) {
	account, err := findAccount(ctx, h.repos, cmd.AccountID)
	if err != nil {
		return nil, err
	}

	method, err := resolveMethod(ctx, h.repos, account.ID, &cmd.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	if cmd.Trigger == domain.TriggerInitialServiceCompleted {
		subscriptionID := cmd.Metadata[domain.MetadataKeySubscriptionID]
		if subscriptionID == "" {
			return nil, application.NewValidationError(
				domain.NewMissingTriggerMetadataError(cmd.Trigger, domain.MetadataKeySubscriptionID))
		}
		exists, err := h.subscriptions.SubscriptionExists(ctx, subscriptionID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, application.NewValidationError(
				fmt.Errorf("subscription %s not found", subscriptionID))
		}
	}

	var scheduled *domain.ScheduledPayment
	err = h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		duplicate, err := r.Scheduled.FindDuplicate(ctx, account.ID, cmd.Trigger, cmd.Metadata)
		if err != nil {
			return err
		}
		if duplicate != nil {
			return application.NewScheduledDuplicateError(
				domain.NewScheduledDuplicateError(account.ID, cmd.Trigger))
		}

		scheduled, err = domain.NewScheduledPayment(uuid.New().String(), account.ID, cmd.Amount, method.ID, cmd.Trigger, cmd.Metadata)
		if err != nil {
			return application.NewValidationError(err)
		}
		return r.Scheduled.Create(ctx, scheduled)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("payment scheduled",
		"scheduled_payment_id", scheduled.ID,
		"account_id", scheduled.AccountID,
		"trigger", scheduled.Trigger)
	h.events.Publish(ctx, domain.NewPaymentScheduledEvent(scheduled))

	return scheduled, nil
}

// CancelScheduledPaymentHandler withdraws a pending scheduled payment.
type CancelScheduledPaymentHandler struct {
	repos  *application.Repositories
	uow    application.UnitOfWork
	logger *slog.Logger
}

func NewCancelScheduledPaymentHandler(
	repos *application.Repositories,
	uow application.UnitOfWork,
	logger *slog.Logger,
) *CancelScheduledPaymentHandler {
	return &CancelScheduledPaymentHandler{repos: repos, uow: uow, logger: logger}
}

// Handle cancels a PENDING scheduled payment; submitted or
// already-cancelled ones raise invalid_status_for_cancellation.
func (h *CancelScheduledPaymentHandler) Handle(ctx context.Context, cmd CancelScheduledPaymentCommand) (*domain.ScheduledPayment, error) {
	var scheduled *domain.ScheduledPayment
	err := h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		var err error
		scheduled, err = r.Scheduled.FindByID(ctx, cmd.ScheduledPaymentID)
		if err != nil {
			if errors.Is(err, application.ErrScheduledPaymentNotFound) {
				return application.NewNotFoundError("scheduled payment", cmd.ScheduledPaymentID)
			}
			return err
		}

		if err := scheduled.Cancel(); err != nil {
			return application.NewUnprocessableError(err.Error(), err)
		}
		return r.Scheduled.Update(ctx, scheduled)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("scheduled payment cancelled", "scheduled_payment_id", scheduled.ID)
	return scheduled, nil
}
