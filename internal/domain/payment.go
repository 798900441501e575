// Package domain encodes the payment aggregates and their lifecycle rules.
package domain

import (
	"slices"
	"time"
)

// PaymentStatus represents the current state of a payment in its lifecycle
type PaymentStatus string

const (
	StatusAuthorizing   PaymentStatus = "AUTHORIZING"
	StatusAuthorized    PaymentStatus = "AUTHORIZED"
	StatusAuthCapturing PaymentStatus = "AUTH_CAPTURING"
	StatusCaptured      PaymentStatus = "CAPTURED"
	StatusDeclined      PaymentStatus = "DECLINED"
	StatusCancelled     PaymentStatus = "CANCELLED"
	StatusCredited      PaymentStatus = "CREDITED"
	StatusSuspended     PaymentStatus = "SUSPENDED"
	StatusTerminated    PaymentStatus = "TERMINATED"
)

// PaymentType distinguishes the instrument a payment is drawn against.
type PaymentType string

const (
	TypeCard  PaymentType = "CC"
	TypeACH   PaymentType = "ACH"
	TypeCheck PaymentType = "CHECK"
)

// Payment is a single charge or refund against an account. Amount is in
// minor currency units and immutable after creation. OriginalPaymentID is
// set if and only if the payment is a refund of another payment.
type Payment struct {
	ID                string
	AccountID         string
	Amount            int64
	Currency          string
	Status            PaymentStatus
	Gateway           GatewayID
	Type              PaymentType
	PaymentMethodID   *string
	OriginalPaymentID *string
	ProcessedAt       time.Time
	TerminatedAt      *time.Time
	TerminatedBy      *string
	Notes             string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPayment creates an in-flight payment in AUTHORIZING. The row is
// persisted before the gateway is called so failed attempts stay auditable.
func NewPayment(id, accountID string, amount int64, currency string, gateway GatewayID, paymentType PaymentType, methodID *string, processedAt time.Time) (*Payment, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("payment ID")
	}
	if accountID == "" {
		return nil, NewMissingRequiredFieldError("account ID")
	}
	if amount <= 0 {
		return nil, NewInvalidAmountError(amount)
	}
	if currency == "" {
		return nil, NewMissingRequiredFieldError("currency")
	}
	if !KnownGateway(gateway) {
		return nil, NewUnknownGatewayError(gateway)
	}

	now := time.Now()
	return &Payment{
		ID:              id,
		AccountID:       accountID,
		Amount:          amount,
		Currency:        currency,
		Status:          StatusAuthorizing,
		Gateway:         gateway,
		Type:            paymentType,
		PaymentMethodID: methodID,
		ProcessedAt:     processedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// NewRefundPayment creates a refund lineage payment for the original.
// The refund amount check happens in the state machine before this runs.
func NewRefundPayment(id string, original *Payment, amount int64, gateway GatewayID, paymentType PaymentType) (*Payment, error) {
	refund, err := NewPayment(id, original.AccountID, amount, original.Currency, gateway, paymentType, original.PaymentMethodID, time.Now())
	if err != nil {
		return nil, err
	}
	originalID := original.ID
	refund.OriginalPaymentID = &originalID
	return refund, nil
}

// NewSuspendedPayment creates a payment parked for manual resolution.
func NewSuspendedPayment(id, accountID string, amount int64, currency string, gateway GatewayID, paymentType PaymentType, methodID *string, processedAt time.Time) (*Payment, error) {
	p, err := NewPayment(id, accountID, amount, currency, gateway, paymentType, methodID, processedAt)
	if err != nil {
		return nil, err
	}
	p.Status = StatusSuspended
	return p, nil
}

func (p *Payment) IsRefund() bool {
	return p.OriginalPaymentID != nil
}

// Authorize records a successful funds reservation.
func (p *Payment) Authorize() error {
	return p.transition(StatusAuthorized)
}

// BeginCapture marks the capture gateway call as in flight.
func (p *Payment) BeginCapture() error {
	return p.transition(StatusAuthCapturing)
}

// Capture finalizes a previously authorized reservation.
func (p *Payment) Capture() error {
	return p.transition(StatusCaptured)
}

// Decline records a gateway business decline with the gateway's message.
func (p *Payment) Decline(message string) error {
	if err := p.transition(StatusDeclined); err != nil {
		return err
	}
	p.Notes = message
	return nil
}

// Cancel reverses an unsettled authorization.
func (p *Payment) Cancel() error {
	return p.transition(StatusCancelled)
}

// Credit marks a refund payment as settled back to the method.
func (p *Payment) Credit() error {
	return p.transition(StatusCredited)
}

// Terminate permanently stops a suspended payment. Only legal from
// SUSPENDED; re-terminating is an error, not a no-op.
func (p *Payment) Terminate(actor string, now time.Time) error {
	if err := p.transition(StatusTerminated); err != nil {
		return err
	}
	p.TerminatedAt = &now
	p.TerminatedBy = &actor
	return nil
}

func (p *Payment) transition(target PaymentStatus) error {
	if err := p.canTransitionTo(target); err != nil {
		return err
	}
	p.Status = target
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Payment) canTransitionTo(target PaymentStatus) error {
	switch p.Status {
	case StatusAuthorizing:
		return p.allow(target, StatusAuthorized, StatusCredited, StatusDeclined)
	case StatusAuthorized:
		return p.allow(target, StatusAuthCapturing, StatusCancelled, StatusDeclined)
	case StatusAuthCapturing:
		return p.allow(target, StatusCaptured, StatusCancelled, StatusDeclined)
	case StatusSuspended:
		return p.allow(target, StatusAuthorized, StatusAuthCapturing, StatusDeclined, StatusTerminated)
	}
	return NewInvalidTransitionError(p.Status, target)
}

func (p *Payment) allow(target PaymentStatus, allowed ...PaymentStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidTransitionError(p.Status, target)
}

// IsTerminal reports whether the payment can never transition again.
func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case StatusCaptured, StatusDeclined, StatusCancelled, StatusCredited, StatusTerminated:
		return true
	default:
		return false
	}
}

// Settled reports whether the payment has been submitted to the gateway
// for settlement already, which forecloses synchronous reversal.
func (p *Payment) Settled(now time.Time) bool {
	return !p.ProcessedAt.After(now)
}
