package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Domain validation error codes. The snake_case codes are the stable
// identifiers surfaced to callers.
const (
	ErrCodeInvalidTransition      = "invalid_transition"
	ErrCodeInvalidAmount          = "invalid_amount"
	ErrCodeMissingRequiredField   = "missing_required_field"
	ErrCodeUnknownGateway         = "unknown_gateway"
	ErrCodePaymentExpired         = "payment_expired"
	ErrCodeCancelUnsupported      = "cancellation_cannot_be_processed_for_gateway"
	ErrCodeAlreadyProcessed       = "already_fully_processed_in_gateway"
	ErrCodeAlreadyTerminated      = "already_terminated"
	ErrCodeSuspendedOnly          = "suspended_payments_only"
	ErrCodeRefundExceedsOriginal  = "exceeds_the_original_payment_amount"
	ErrCodeRefundNotCaptured      = "nothing_captured_to_refund"
	ErrCodeMissingOriginalTx      = "missing_original_transaction"
	ErrCodeMethodNotFound         = "original_payment_method_not_found"
	ErrCodeMethodUnusable         = "payment_method_unusable"
	ErrCodePrimaryMethodDelete    = "primary_method_cannot_be_deleted"
	ErrCodeInvalidScheduledCancel = "invalid_status_for_cancellation"
	ErrCodeScheduledDuplicate     = "duplicate_scheduled_payment"
	ErrCodeMissingTriggerMetadata = "missing_trigger_metadata"
)

func NewInvalidTransitionError(from, to PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewInvalidAmountError(amount int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %d", amount),
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewUnknownGatewayError(id GatewayID) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnknownGateway,
		Message: fmt.Sprintf("gateway %q is not in the capability table", id),
	}
}

func NewPaymentExpiredError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentExpired,
		Message: fmt.Sprintf("payment %s is past the capture window", id),
	}
}

func NewCancelUnsupportedError(gateway GatewayID) *DomainError {
	return &DomainError{
		Code:    ErrCodeCancelUnsupported,
		Message: fmt.Sprintf("gateway %s does not support synchronous reversal", gateway),
	}
}

func NewAlreadyProcessedError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeAlreadyProcessed,
		Message: fmt.Sprintf("payment %s has already been submitted for settlement", id),
	}
}

func NewAlreadyTerminatedError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeAlreadyTerminated,
		Message: fmt.Sprintf("payment %s is already terminated", id),
	}
}

func NewSuspendedOnlyError(id string, status PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeSuspendedOnly,
		Message: fmt.Sprintf("payment %s is %s; only suspended payments may be terminated", id, status),
	}
}

func NewRefundExceedsOriginalError(requested, refundable int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeRefundExceedsOriginal,
		Message: fmt.Sprintf("refund of %d exceeds the remaining refundable amount %d", requested, refundable),
	}
}

func NewRefundNotCapturedError(id string, status PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeRefundNotCaptured,
		Message: fmt.Sprintf("payment %s is %s; only captured payments can be refunded", id, status),
	}
}

func NewMissingOriginalTransactionError(paymentID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingOriginalTx,
		Message: fmt.Sprintf("payment %s has no original gateway transaction on record", paymentID),
	}
}

func NewMethodNotFoundError(paymentID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("payment method for payment %s could not be resolved", paymentID),
	}
}

func NewMethodUnusableError(methodID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMethodUnusable,
		Message: fmt.Sprintf("payment method %s is deleted and cannot be used", methodID),
	}
}

func NewPrimaryMethodDeleteError(methodID string) *DomainError {
	return &DomainError{
		Code:    ErrCodePrimaryMethodDelete,
		Message: fmt.Sprintf("payment method %s is the account's primary method and cannot be deleted", methodID),
	}
}

func NewInvalidScheduledCancelError(status ScheduledStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidScheduledCancel,
		Message: fmt.Sprintf("scheduled payment is %s; only pending scheduled payments can be cancelled", status),
	}
}

func NewScheduledDuplicateError(accountID string, trigger ScheduledTrigger) *DomainError {
	return &DomainError{
		Code:    ErrCodeScheduledDuplicate,
		Message: fmt.Sprintf("a scheduled payment for account %s and trigger %s already exists", accountID, trigger),
	}
}

func NewMissingTriggerMetadataError(trigger ScheduledTrigger, key string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingTriggerMetadata,
		Message: fmt.Sprintf("trigger %s requires metadata key %q", trigger, key),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
