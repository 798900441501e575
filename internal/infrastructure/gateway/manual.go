package gateway

import (
	"context"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
	"github.com/google/uuid"
)

// ManualGateway is the pseudo-processor behind check and cash payments.
// There is no external system to call: every operation is recorded as
// approved with a locally generated transaction id.
type ManualGateway struct{}

func NewManualGateway() *ManualGateway {
	return &ManualGateway{}
}

func (g *ManualGateway) Authorize(ctx context.Context, req application.AuthorizationRequest, creds application.Credentials) (*application.GatewayResult, error) {
	return g.record(), nil
}

func (g *ManualGateway) Capture(ctx context.Context, req application.CaptureRequest, creds application.Credentials) (*application.GatewayResult, error) {
	return g.record(), nil
}

// Cancel is never reachable in practice: the capability table marks the
// check gateway as not supporting cancellation, so the state machine
// refuses the operation first.
func (g *ManualGateway) Cancel(ctx context.Context, req application.CancelRequest, creds application.Credentials) (*application.GatewayResult, error) {
	return nil, &application.GatewayError{
		Gateway:    domain.GatewayCheck,
		Code:       "unsupported_operation",
		Message:    "manual gateway cannot reverse a payment",
		StatusCode: 422,
	}
}

func (g *ManualGateway) Credit(ctx context.Context, req application.CreditRequest, creds application.Credentials) (*application.GatewayResult, error) {
	return g.record(), nil
}

func (g *ManualGateway) record() *application.GatewayResult {
	return &application.GatewayResult{
		Success:              true,
		GatewayTransactionID: "manual-" + uuid.New().String(),
		ResponseCode:         "00",
	}
}
