package application

import (
	"context"
	"errors"

	"github.com/clearbill/payments/internal/domain"
)

// ErrorCategory represents the nature of an error for logging and
// queue-redelivery decisions. Handlers never retry; the category tells
// the external retry machinery what is worth redelivering.
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

// CategorizeError determines the error category.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeMissingRequiredField, domain.ErrCodeUnknownGateway:
			return CategoryClientError
		default:
			return CategoryBusinessRule
		}
	}

	if errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrPaymentMethodNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrScheduledPaymentNotFound) {
		return CategoryClientError
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeNotFound, ErrCodeValidation, ErrCodeUnsupportedValue:
			return CategoryClientError
		case ErrCodeUnprocessable, ErrCodeProcessingValidation,
			ErrCodeCancellationFailed, ErrCodeScheduledDuplicate:
			return CategoryBusinessRule
		case ErrCodeInconsistentData, ErrCodeInternal:
			return CategoryInfrastructure
		}
	}

	if gwErr, ok := IsGatewayError(err); ok {
		if gwErr.StatusCode >= 500 {
			return CategoryTransient
		}
		if gwErr.IsValidationShaped() {
			return CategoryClientError
		}
		return CategoryPermanent
	}

	// Unknown errors default to transient: safe for redelivery.
	return CategoryTransient
}

// IsRetryable returns true if the error category suggests redelivery.
func IsRetryable(err error) bool {
	category := CategorizeError(err)
	return category == CategoryTransient || category == CategoryInfrastructure
}
