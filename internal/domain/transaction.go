package domain

import "time"

// TransactionType is the gateway operation a ledger entry records.
type TransactionType string

const (
	TransactionAuthorize TransactionType = "AUTHORIZE"
	TransactionCapture   TransactionType = "CAPTURE"
	TransactionCancel    TransactionType = "CANCEL"
	TransactionCredit    TransactionType = "CREDIT"
)

// Transaction is one immutable ledger entry per gateway call attempt.
// Entries are append-only; later operations (capture, cancel) read them
// to reconstruct the last successful gateway operation they must
// reference, they never rewrite them.
type Transaction struct {
	ID                   string
	PaymentID            string
	Type                 TransactionType
	GatewayTransactionID string
	GatewayResponseCode  string
	CreatedAt            time.Time
}

func NewTransaction(id, paymentID string, txType TransactionType, gatewayTransactionID, responseCode string) *Transaction {
	return &Transaction{
		ID:                   id,
		PaymentID:            paymentID,
		Type:                 txType,
		GatewayTransactionID: gatewayTransactionID,
		GatewayResponseCode:  responseCode,
		CreatedAt:            time.Now(),
	}
}
