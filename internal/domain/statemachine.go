package domain

import "time"

// CaptureWindow is how long after processing an authorization stays
// capturable. Past the window the payment must be cancelled (or declined
// if the cancel fails) before capture is refused.
const CaptureWindow = 7 * 24 * time.Hour

// StateMachine validates whether a requested transition is legal given
// the payment's current status, its gateway's capabilities, and elapsed
// time since processing. It is pure logic: no I/O, no clock of its own.
type StateMachine struct{}

// CanCapture checks that capture is legal right now. It returns a
// payment_expired error when the capture window has elapsed; the caller
// is then responsible for the cancel-or-decline path.
func (StateMachine) CanCapture(p *Payment, now time.Time) error {
	if p.Status != StatusAuthorized {
		return NewInvalidTransitionError(p.Status, StatusAuthCapturing)
	}
	if now.Sub(p.ProcessedAt) > CaptureWindow {
		return NewPaymentExpiredError(p.ID)
	}
	return nil
}

// CanCancel checks that a synchronous reversal is legal: the gateway
// must support it, the payment must not have settled, and the payment
// must still be in an authorization-pending state.
func (StateMachine) CanCancel(p *Payment, now time.Time) error {
	caps, ok := CapabilitiesFor(p.Gateway)
	if !ok || !caps.SupportsCancel {
		return NewCancelUnsupportedError(p.Gateway)
	}
	if p.Settled(now) {
		return NewAlreadyProcessedError(p.ID)
	}
	if p.Status != StatusAuthorized && p.Status != StatusAuthCapturing {
		return NewInvalidTransitionError(p.Status, StatusCancelled)
	}
	return nil
}

// CanTerminate checks that the payment is suspended. Terminated payments
// report already_terminated, everything else suspended_payments_only.
func (StateMachine) CanTerminate(p *Payment) error {
	switch p.Status {
	case StatusSuspended:
		return nil
	case StatusTerminated:
		return NewAlreadyTerminatedError(p.ID)
	default:
		return NewSuspendedOnlyError(p.ID, p.Status)
	}
}

// CanRefund checks a refund request against the original payment:
// only captured payments carry funds to refund, and the requested
// amount plus everything already refunded must stay within the
// captured amount. It must run before any gateway call so an oversized
// refund never reaches the processor.
func (StateMachine) CanRefund(original *Payment, amount, refundedSoFar int64) error {
	if amount <= 0 {
		return NewInvalidAmountError(amount)
	}
	if original.Status != StatusCaptured {
		return NewRefundNotCapturedError(original.ID, original.Status)
	}
	if amount+refundedSoFar > original.Amount {
		return NewRefundExceedsOriginalError(amount, original.Amount-refundedSoFar)
	}
	return nil
}
