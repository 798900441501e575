package domain

import "time"

// EventType tags the fire-and-forget notifications published after an
// operation concludes.
type EventType string

const (
	EventPaymentAttempted          EventType = "payment.attempted"
	EventPaymentTerminated         EventType = "payment.terminated"
	EventRefundPaymentFailed       EventType = "payment.refund_failed"
	EventPaymentScheduled          EventType = "payment.scheduled"
	EventSuspendedPaymentProcessed EventType = "payment.suspended_processed"
)

// Event is an immutable notification for downstream automation. It is
// published after the enclosing unit of work commits and must never
// block or fail the operation that produced it.
type Event struct {
	Type       EventType
	OccurredAt time.Time
	Payload    any
}

// PaymentAttemptedPayload is emitted whenever a payment row exists after
// a gateway-facing attempt, including on business decline.
type PaymentAttemptedPayload struct {
	PaymentID string        `json:"payment_id"`
	AccountID string        `json:"account_id"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`
	Status    PaymentStatus `json:"status"`
	Gateway   GatewayID     `json:"gateway"`
	Message   string        `json:"message,omitempty"`
}

type PaymentTerminatedPayload struct {
	PaymentID    string    `json:"payment_id"`
	AccountID    string    `json:"account_id"`
	TerminatedBy string    `json:"terminated_by"`
	TerminatedAt time.Time `json:"terminated_at"`
}

type RefundPaymentFailedPayload struct {
	PaymentID         string `json:"payment_id"`
	OriginalPaymentID string `json:"original_payment_id"`
	AccountID         string `json:"account_id"`
	Amount            int64  `json:"amount"`
	Message           string `json:"message,omitempty"`
}

type PaymentScheduledPayload struct {
	ScheduledPaymentID string           `json:"scheduled_payment_id"`
	AccountID          string           `json:"account_id"`
	Amount             int64            `json:"amount"`
	Trigger            ScheduledTrigger `json:"trigger"`
}

type SuspendedPaymentProcessedPayload struct {
	PaymentID string        `json:"payment_id"`
	AccountID string        `json:"account_id"`
	Status    PaymentStatus `json:"status"`
}

func NewPaymentAttemptedEvent(p *Payment, message string) Event {
	return Event{
		Type:       EventPaymentAttempted,
		OccurredAt: time.Now(),
		Payload: PaymentAttemptedPayload{
			PaymentID: p.ID,
			AccountID: p.AccountID,
			Amount:    p.Amount,
			Currency:  p.Currency,
			Status:    p.Status,
			Gateway:   p.Gateway,
			Message:   message,
		},
	}
}

func NewPaymentTerminatedEvent(p *Payment) Event {
	payload := PaymentTerminatedPayload{
		PaymentID: p.ID,
		AccountID: p.AccountID,
	}
	if p.TerminatedBy != nil {
		payload.TerminatedBy = *p.TerminatedBy
	}
	if p.TerminatedAt != nil {
		payload.TerminatedAt = *p.TerminatedAt
	}
	return Event{Type: EventPaymentTerminated, OccurredAt: time.Now(), Payload: payload}
}

func NewRefundPaymentFailedEvent(refund *Payment, message string) Event {
	payload := RefundPaymentFailedPayload{
		PaymentID: refund.ID,
		AccountID: refund.AccountID,
		Amount:    refund.Amount,
		Message:   message,
	}
	if refund.OriginalPaymentID != nil {
		payload.OriginalPaymentID = *refund.OriginalPaymentID
	}
	return Event{Type: EventRefundPaymentFailed, OccurredAt: time.Now(), Payload: payload}
}

func NewPaymentScheduledEvent(s *ScheduledPayment) Event {
	return Event{
		Type:       EventPaymentScheduled,
		OccurredAt: time.Now(),
		Payload: PaymentScheduledPayload{
			ScheduledPaymentID: s.ID,
			AccountID:          s.AccountID,
			Amount:             s.Amount,
			Trigger:            s.Trigger,
		},
	}
}

func NewSuspendedPaymentProcessedEvent(p *Payment) Event {
	return Event{
		Type:       EventSuspendedPaymentProcessed,
		OccurredAt: time.Now(),
		Payload: SuspendedPaymentProcessedPayload{
			PaymentID: p.ID,
			AccountID: p.AccountID,
			Status:    p.Status,
		},
	}
}
