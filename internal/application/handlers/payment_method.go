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

// PaymentMethodHandler manages stored payment methods: create, update
// and soft-delete. Raw card and bank data never reach this service; the
// token arrives already vaulted and only display fields are kept.
type PaymentMethodHandler struct {
	repos  *application.Repositories
	uow    application.UnitOfWork
	logger *slog.Logger
}

func NewPaymentMethodHandler(
	repos *application.Repositories,
	uow application.UnitOfWork,
	logger *slog.Logger,
) *PaymentMethodHandler {
	return &PaymentMethodHandler{repos: repos, uow: uow, logger: logger}
}

// Create stores a new payment method. Promoting it to primary demotes
// the current primary inside the same transaction, keeping at most one
// primary per account at all times.
func (h *PaymentMethodHandler) Create(ctx context.Context, cmd CreatePaymentMethodCommand) (*domain.PaymentMethod, error) {
	account, err := findAccount(ctx, h.repos, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if cmd.Token == "" {
		return nil, application.NewValidationError(domain.NewMissingRequiredFieldError("token"))
	}

	method, err := domain.NewPaymentMethod(uuid.New().String(), account.ID, cmd.Type, cmd.Gateway)
	if err != nil {
		return nil, application.NewValidationError(err)
	}
	method.Token = cmd.Token
	method.HolderName = cmd.HolderName
	method.LastFour = cmd.LastFour
	method.ExpirationMonth = cmd.ExpirationMonth
	method.ExpirationYear = cmd.ExpirationYear
	method.RoutingLastFour = cmd.RoutingLastFour
	method.AccountLastFour = cmd.AccountLastFour

	err = h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		if cmd.MakePrimary {
			if err := r.Methods.ClearPrimary(ctx, account.ID); err != nil {
				return err
			}
			method.IsPrimary = true
		} else if _, err := r.Methods.FindPrimaryByAccount(ctx, account.ID); err != nil {
			if !errors.Is(err, application.ErrPaymentMethodNotFound) {
				return err
			}
			// First usable method becomes primary so autopay has
			// something to draw against.
			method.IsPrimary = true
		}
		return r.Methods.Create(ctx, method)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("payment method created",
		"payment_method_id", method.ID,
		"account_id", method.AccountID,
		"type", method.Type,
		"primary", method.IsPrimary)
	return method, nil
}

// Update changes the mutable fields of a stored method: card expiration
// and primary designation. Token and instrument identity are immutable;
// replacing an instrument means creating a new method.
func (h *PaymentMethodHandler) Update(ctx context.Context, cmd UpdatePaymentMethodCommand) (*domain.PaymentMethod, error) {
	var method *domain.PaymentMethod
	err := h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		var err error
		method, err = r.Methods.FindByID(ctx, cmd.MethodID)
		if err != nil {
			if errors.Is(err, application.ErrPaymentMethodNotFound) {
				return application.NewNotFoundError("payment method", cmd.MethodID)
			}
			return err
		}
		if !method.Usable() {
			return application.NewValidationError(domain.NewMethodUnusableError(method.ID))
		}

		if cmd.ExpirationMonth != 0 {
			method.ExpirationMonth = cmd.ExpirationMonth
		}
		if cmd.ExpirationYear != 0 {
			method.ExpirationYear = cmd.ExpirationYear
		}
		if cmd.MakePrimary && !method.IsPrimary {
			if err := r.Methods.ClearPrimary(ctx, method.AccountID); err != nil {
				return err
			}
			method.IsPrimary = true
		}
		method.UpdatedAt = time.Now()
		return r.Methods.Update(ctx, method)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("payment method updated", "payment_method_id", method.ID)
	return method, nil
}

// Delete soft-deletes a method. The primary method cannot be deleted;
// callers must promote another method first.
func (h *PaymentMethodHandler) Delete(ctx context.Context, cmd DeletePaymentMethodCommand) error {
	err := h.uow.WithinTx(ctx, func(ctx context.Context, r *application.Repositories) error {
		method, err := r.Methods.FindByID(ctx, cmd.MethodID)
		if err != nil {
			if errors.Is(err, application.ErrPaymentMethodNotFound) {
				return application.NewNotFoundError("payment method", cmd.MethodID)
			}
			return err
		}
		if err := method.SoftDelete(time.Now()); err != nil {
			return application.NewUnprocessableError(err.Error(), err)
		}
		return r.Methods.Update(ctx, method)
	})
	if err != nil {
		return err
	}

	h.logger.Info("payment method deleted", "payment_method_id", cmd.MethodID)
	return nil
}
