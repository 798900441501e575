package application

import (
	"errors"
	"fmt"

	"github.com/clearbill/payments/internal/domain"
)

// GatewayError is an infrastructure failure raised by a gateway adapter:
// the processor rejected the request shape, the credentials were bad, or
// the call itself failed. Business declines never take this form.
type GatewayError struct {
	Gateway    domain.GatewayID
	Code       string
	Message    string
	StatusCode int
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s error [%s]: %s (status: %d)", e.Gateway, e.Code, e.Message, e.StatusCode)
}

// IsRetryable reports whether the failure is worth retrying at the
// adapter level.
func (e *GatewayError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// IsValidationShaped reports whether the processor rejected the request
// as malformed (e.g. missing cardholder name), which handlers translate
// into a processing-validation error rather than letting it bubble raw.
func (e *GatewayError) IsValidationShaped() bool {
	return e.StatusCode == 400 || e.StatusCode == 422
}

// IsGatewayError unwraps err into a GatewayError if there is one.
func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
