// Package handlers contains one handler per business operation. Each
// handler composes the state machine, a gateway adapter and the
// transaction ledger inside a single unit of work.
package handlers

import "github.com/clearbill/payments/internal/domain"

// Commands arrive from the command queue with primitive fields already
// shape-validated. Amounts are minor currency units; ids are opaque
// strings. There is no idempotency key: a double-submitted command
// creates two payments for one logical request today.

type AuthorizeCommand struct {
	AccountID       string  `json:"account_id"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	PaymentMethodID *string `json:"payment_method_id,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

type CaptureCommand struct {
	PaymentID string `json:"payment_id"`
}

type AuthorizeAndCaptureCommand struct {
	AccountID       string  `json:"account_id"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	PaymentMethodID *string `json:"payment_method_id,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// ProcessSuspendedCommand drives the authorize-and-capture variant that
// operates on a pre-existing suspended payment.
type ProcessSuspendedCommand struct {
	PaymentID string `json:"payment_id"`
}

type CancelCommand struct {
	PaymentID string `json:"payment_id"`
}

type RefundCommand struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	// Manual records a check or cash refund without any gateway call.
	Manual bool   `json:"manual,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

type TerminateCommand struct {
	PaymentID    string `json:"payment_id"`
	TerminatedBy string `json:"terminated_by"`
}

type CreateScheduledPaymentCommand struct {
	AccountID       string                  `json:"account_id"`
	Amount          int64                   `json:"amount"`
	PaymentMethodID string                  `json:"payment_method_id"`
	Trigger         domain.ScheduledTrigger `json:"trigger"`
	Metadata        map[string]string       `json:"metadata,omitempty"`
}

type CancelScheduledPaymentCommand struct {
	ScheduledPaymentID string `json:"scheduled_payment_id"`
}

type CreatePaymentMethodCommand struct {
	AccountID       string             `json:"account_id"`
	Type            domain.PaymentType `json:"type"`
	Gateway         domain.GatewayID   `json:"gateway"`
	Token           string             `json:"token"`
	HolderName      string             `json:"holder_name,omitempty"`
	LastFour        string             `json:"last_four,omitempty"`
	ExpirationMonth int                `json:"expiration_month,omitempty"`
	ExpirationYear  int                `json:"expiration_year,omitempty"`
	RoutingLastFour string             `json:"routing_last_four,omitempty"`
	AccountLastFour string             `json:"account_last_four,omitempty"`
	MakePrimary     bool               `json:"make_primary,omitempty"`
}

type UpdatePaymentMethodCommand struct {
	MethodID        string `json:"method_id"`
	ExpirationMonth int    `json:"expiration_month,omitempty"`
	ExpirationYear  int    `json:"expiration_year,omitempty"`
	MakePrimary     bool   `json:"make_primary,omitempty"`
}

type DeletePaymentMethodCommand struct {
	MethodID string `json:"method_id"`
}
