package domain

import "time"

// ScheduledTrigger is the business event that will fire a scheduled
// payment.
type ScheduledTrigger string

const (
	TriggerInitialServiceCompleted ScheduledTrigger = "INITIAL_SERVICE_COMPLETED"
	TriggerContractRenewal         ScheduledTrigger = "CONTRACT_RENEWAL"
)

// MetadataKeySubscriptionID ties an InitialServiceCompleted trigger to
// the subscription whose first service visit fires it.
const MetadataKeySubscriptionID = "subscription_id"

// RequiredMetadata lists the metadata keys a trigger cannot be created
// without.
func (t ScheduledTrigger) RequiredMetadata() []string {
	switch t {
	case TriggerInitialServiceCompleted:
		return []string{MetadataKeySubscriptionID}
	case TriggerContractRenewal:
		return []string{"contract_id"}
	default:
		return nil
	}
}

// ScheduledStatus is the lifecycle of a scheduled payment.
type ScheduledStatus string

const (
	ScheduledPending   ScheduledStatus = "PENDING"
	ScheduledSubmitted ScheduledStatus = "SUBMITTED"
	ScheduledCancelled ScheduledStatus = "CANCELLED"
)

// ScheduledPayment is a future payment intent tied to a business
// trigger. No two non-cancelled scheduled payments may share the same
// (account, trigger, metadata).
type ScheduledPayment struct {
	ID              string
	AccountID       string
	Amount          int64
	PaymentMethodID string
	Trigger         ScheduledTrigger
	Metadata        map[string]string
	Status          ScheduledStatus
	PaymentID       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewScheduledPayment(id, accountID string, amount int64, methodID string, trigger ScheduledTrigger, metadata map[string]string) (*ScheduledPayment, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("scheduled payment ID")
	}
	if accountID == "" {
		return nil, NewMissingRequiredFieldError("account ID")
	}
	if amount <= 0 {
		return nil, NewInvalidAmountError(amount)
	}
	if methodID == "" {
		return nil, NewMissingRequiredFieldError("payment method ID")
	}
	for _, key := range trigger.RequiredMetadata() {
		if metadata[key] == "" {
			return nil, NewMissingTriggerMetadataError(trigger, key)
		}
	}

	now := time.Now()
	return &ScheduledPayment{
		ID:              id,
		AccountID:       accountID,
		Amount:          amount,
		PaymentMethodID: methodID,
		Trigger:         trigger,
		Metadata:        metadata,
		Status:          ScheduledPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Cancel is legal only while pending; submitted or already-cancelled
// scheduled payments report invalid_status_for_cancellation.
func (s *ScheduledPayment) Cancel() error {
	if s.Status != ScheduledPending {
		return NewInvalidScheduledCancelError(s.Status)
	}
	s.Status = ScheduledCancelled
	s.UpdatedAt = time.Now()
	return nil
}

// MarkSubmitted links the scheduled intent to the payment it produced.
func (s *ScheduledPayment) MarkSubmitted(paymentID string) error {
	if s.Status != ScheduledPending {
		return NewInvalidScheduledCancelError(s.Status)
	}
	s.Status = ScheduledSubmitted
	s.PaymentID = &paymentID
	s.UpdatedAt = time.Now()
	return nil
}
