package postgres

import "time"

// Database row shapes. Kept separate from the domain types so schema
// details never leak into the aggregates.

type paymentModel struct {
	ID                string
	AccountID         string
	Amount            int64
	Currency          string
	Status            string
	Gateway           string
	Type              string
	PaymentMethodID   *string
	OriginalPaymentID *string
	ProcessedAt       time.Time
	TerminatedAt      *time.Time
	TerminatedBy      *string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type paymentMethodModel struct {
	ID              string
	AccountID       string
	Type            string
	Gateway         string
	Token           string
	HolderName      string
	LastFour        string
	ExpirationMonth int
	ExpirationYear  int
	RoutingLastFour string
	AccountLastFour string
	IsPrimary       bool
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type transactionModel struct {
	ID                   string
	PaymentID            string
	Type                 string
	GatewayTransactionID string
	GatewayResponseCode  string
	CreatedAt            time.Time
}

type scheduledPaymentModel struct {
	ID              string
	AccountID       string
	Amount          int64
	PaymentMethodID string
	Trigger         string
	Metadata        []byte
	Status          string
	PaymentID       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type accountModel struct {
	ID              string
	AreaID          string
	Name            string
	AutopayMethodID *string
}
