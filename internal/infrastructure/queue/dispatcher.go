// Package queue consumes the command topic and dispatches each message
// into the operation handlers. Handlers never retry; a failed message
// is either acknowledged as unprocessable or left for redelivery based
// on the error category.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/application/handlers"
)

// Operation names carried in the command envelope.
const (
	OpAuthorize           = "payment.authorize"
	OpCapture             = "payment.capture"
	OpAuthorizeAndCapture = "payment.authorize_capture"
	OpProcessSuspended    = "payment.process_suspended"
	OpCancel              = "payment.cancel"
	OpRefund              = "payment.refund"
	OpTerminate           = "payment.terminate"
	OpScheduleCreate      = "payment.schedule"
	OpScheduleCancel      = "payment.schedule.cancel"
	OpMethodCreate        = "payment_method.create"
	OpMethodUpdate        = "payment_method.update"
	OpMethodDelete        = "payment_method.delete"
)

// CommandEnvelope is the wire shape of one queued command.
type CommandEnvelope struct {
	Operation string          `json:"operation"`
	Payload   json.RawMessage `json:"payload"`
}

// Dispatcher routes command envelopes to the handler set.
type Dispatcher struct {
	set    *handlers.Set
	logger *slog.Logger
}

func NewDispatcher(set *handlers.Set, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{set: set, logger: logger}
}

// Dispatch decodes one raw message and runs the matching handler. A
// malformed envelope or unknown operation is a validation error, never
// worth redelivering.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) error {
	var envelope CommandEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return application.NewValidationError(fmt.Errorf("malformed command envelope: %w", err))
	}

	switch envelope.Operation {
	case OpAuthorize:
		var cmd handlers.AuthorizeCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.Authorize.Handle(ctx, cmd)
		return err
	case OpCapture:
		var cmd handlers.CaptureCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.Capture.Handle(ctx, cmd)
		return err
	case OpAuthorizeAndCapture:
		var cmd handlers.AuthorizeAndCaptureCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.AuthorizeAndCapture.Handle(ctx, cmd)
		return err
	case OpProcessSuspended:
		var cmd handlers.ProcessSuspendedCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.ProcessSuspended.Handle(ctx, cmd)
		return err
	case OpCancel:
		var cmd handlers.CancelCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.Cancel.Handle(ctx, cmd)
		return err
	case OpRefund:
		var cmd handlers.RefundCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.Refund.Handle(ctx, cmd)
		return err
	case OpTerminate:
		var cmd handlers.TerminateCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.Terminate.Handle(ctx, cmd)
		return err
	case OpScheduleCreate:
		var cmd handlers.CreateScheduledPaymentCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.CreateScheduled.Handle(ctx, cmd)
		return err
	case OpScheduleCancel:
		var cmd handlers.CancelScheduledPaymentCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.CancelScheduled.Handle(ctx, cmd)
		return err
	case OpMethodCreate:
		var cmd handlers.CreatePaymentMethodCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.PaymentMethods.Create(ctx, cmd)
		return err
	case OpMethodUpdate:
		var cmd handlers.UpdatePaymentMethodCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		_, err := d.set.PaymentMethods.Update(ctx, cmd)
		return err
	case OpMethodDelete:
		var cmd handlers.DeletePaymentMethodCommand
		if err := decode(envelope.Payload, &cmd); err != nil {
			return err
		}
		return d.set.PaymentMethods.Delete(ctx, cmd)
	default:
		return application.NewUnsupportedValueError("operation", envelope.Operation)
	}
}

func decode(payload json.RawMessage, cmd any) error {
	if err := json.Unmarshal(payload, cmd); err != nil {
		return application.NewValidationError(fmt.Errorf("malformed command payload: %w", err))
	}
	return nil
}
