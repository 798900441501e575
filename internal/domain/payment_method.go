package domain

import "time"

// PaymentMethod is a stored card or bank account an account pays with.
// At most one method per account is primary. A soft-deleted method can
// never be primary or used for new operations.
type PaymentMethod struct {
	ID        string
	AccountID string
	Type      PaymentType
	Gateway   GatewayID

	// Card fields
	Token           string
	HolderName      string
	LastFour        string
	ExpirationMonth int
	ExpirationYear  int

	// ACH fields
	RoutingLastFour string
	AccountLastFour string

	IsPrimary bool
	DeletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPaymentMethod(id, accountID string, methodType PaymentType, gateway GatewayID) (*PaymentMethod, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("payment method ID")
	}
	if accountID == "" {
		return nil, NewMissingRequiredFieldError("account ID")
	}
	if methodType != TypeCard && methodType != TypeACH {
		return nil, NewMissingRequiredFieldError("payment method type")
	}
	if !KnownGateway(gateway) {
		return nil, NewUnknownGatewayError(gateway)
	}

	now := time.Now()
	return &PaymentMethod{
		ID:        id,
		AccountID: accountID,
		Type:      methodType,
		Gateway:   gateway,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Usable reports whether the method may back a new operation.
func (m *PaymentMethod) Usable() bool {
	return m.DeletedAt == nil
}

// SoftDelete retires the method. Deleting the primary method is refused
// so the account is never left paying with nothing by accident.
func (m *PaymentMethod) SoftDelete(now time.Time) error {
	if m.IsPrimary {
		return NewPrimaryMethodDeleteError(m.ID)
	}
	m.DeletedAt = &now
	m.UpdatedAt = now
	return nil
}
