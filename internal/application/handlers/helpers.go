package handlers

import (
	"context"
	"errors"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
)

// resolveMethod finds the payment method an operation should use: the
// explicitly supplied one, or the account's primary. It never silently
// picks an arbitrary method.
func resolveMethod(ctx context.Context, repos *application.Repositories, accountID string, methodID *string) (*domain.PaymentMethod, error) {
	if methodID != nil {
		method, err := repos.Methods.FindByID(ctx, *methodID)
		if err != nil {
			if errors.Is(err, application.ErrPaymentMethodNotFound) {
				return nil, application.NewValidationError(err)
			}
			return nil, err
		}
		if method.AccountID != accountID {
			return nil, application.NewValidationError(errors.New("payment method belongs to a different account"))
		}
		if !method.Usable() {
			return nil, application.NewValidationError(domain.NewMethodUnusableError(method.ID))
		}
		return method, nil
	}

	method, err := repos.Methods.FindPrimaryByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, application.ErrPaymentMethodNotFound) {
			return nil, application.NewValidationError(errors.New("no payment method supplied and account has no primary method"))
		}
		return nil, err
	}
	return method, nil
}

// authorizationRequest maps a payment and its method onto the processor
// request shape. capture requests sale semantics.
func authorizationRequest(p *domain.Payment, m *domain.PaymentMethod, capture bool) application.AuthorizationRequest {
	return application.AuthorizationRequest{
		PaymentID:       p.ID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Capture:         capture,
		Token:           m.Token,
		HolderName:      m.HolderName,
		LastFour:        m.LastFour,
		ExpirationMonth: m.ExpirationMonth,
		ExpirationYear:  m.ExpirationYear,
		AccountLastFour: m.AccountLastFour,
		RoutingLastFour: m.RoutingLastFour,
	}
}

// translateGatewayErr converts validation-shaped processor rejections
// into the processing-validation service error; everything else bubbles
// unchanged as an infrastructure failure.
func translateGatewayErr(err error) error {
	if gwErr, ok := application.IsGatewayError(err); ok && gwErr.IsValidationShaped() {
		return application.NewProcessingValidationError(err)
	}
	return err
}

// findAccount loads the account an operation targets, mapping absence
// onto the unprocessable-content error.
func findAccount(ctx context.Context, repos *application.Repositories, accountID string) (*domain.Account, error) {
	account, err := repos.Accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			return nil, application.NewUnprocessableError("account not found", err)
		}
		return nil, err
	}
	return account, nil
}
