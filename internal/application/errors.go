package application

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel not-found errors returned by repositories. Handlers translate
// them into the 404-equivalent ServiceError where appropriate.
var (
	ErrPaymentNotFound          = errors.New("payment not found")
	ErrPaymentMethodNotFound    = errors.New("payment method not found")
	ErrAccountNotFound          = errors.New("account not found")
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrScheduledPaymentNotFound = errors.New("scheduled payment not found")
)

// ServiceError is an orchestration-level error carrying the transport
// status an excluded API layer would map it to.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeValidation           = "VALIDATION_FAILURE"
	ErrCodeUnsupportedValue     = "UNSUPPORTED_VALUE"
	ErrCodeUnprocessable        = "UNPROCESSABLE_CONTENT"
	ErrCodeProcessingValidation = "PAYMENT_PROCESSING_VALIDATION"
	ErrCodeCancellationFailed   = "PAYMENT_CANCELLATION_FAILED"
	ErrCodeScheduledDuplicate   = "SCHEDULED_PAYMENT_DUPLICATE"
	ErrCodeInconsistentData     = "INCONSISTENT_DATA"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// NewNotFoundError is the 404-equivalent for a missing aggregate.
func NewNotFoundError(resource, id string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s %s not found", resource, id),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewValidationError enumerates the violated input rule.
func NewValidationError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeValidation,
		Message:    "invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewUnsupportedValueError(field, value string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeUnsupportedValue,
		Message:    fmt.Sprintf("unsupported %s: %s", field, value),
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewUnprocessableError is the 422-equivalent for requests that are
// well-formed but cannot be carried out.
func NewUnprocessableError(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeUnprocessable,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        err,
	}
}

// NewProcessingValidationError wraps a validation-shaped gateway error
// (e.g. missing cardholder name) the handler can translate.
func NewProcessingValidationError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeProcessingValidation,
		Message:    "gateway rejected the request as invalid",
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        err,
	}
}

func NewCancellationFailedError(message string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeCancellationFailed,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func NewScheduledDuplicateError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeScheduledDuplicate,
		Message:    "an equivalent scheduled payment already exists",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

// NewInconsistentDataError signals a violated internal invariant, such
// as a capture with no prior authorize ledger entry. Fatal: this is a
// data-integrity bug, not user error.
func NewInconsistentDataError(message string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInconsistentData,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "an internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsServiceError unwraps err into a ServiceError if there is one.
func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
