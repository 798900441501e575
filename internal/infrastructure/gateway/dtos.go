package gateway

// Wire shapes for the processor HTTP APIs. All amounts are minor
// currency units, matching the domain.

type authorizePayload struct {
	ReferenceID     string `json:"reference_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Capture         bool   `json:"capture"`
	Token           string `json:"token,omitempty"`
	HolderName      string `json:"holder_name,omitempty"`
	LastFour        string `json:"last_four,omitempty"`
	ExpirationMonth int    `json:"expiration_month,omitempty"`
	ExpirationYear  int    `json:"expiration_year,omitempty"`
	AccountLastFour string `json:"account_last_four,omitempty"`
	RoutingLastFour string `json:"routing_last_four,omitempty"`
}

type capturePayload struct {
	ReferenceID   string `json:"reference_id"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id"`
}

type cancelPayload struct {
	ReferenceID   string `json:"reference_id"`
	TransactionID string `json:"transaction_id"`
}

type creditPayload struct {
	ReferenceID string `json:"reference_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Token       string `json:"token,omitempty"`
}

// transactionResponse is the processor's answer to any of the four
// verbs. Approved=false with a 2xx status is a business decline; the
// client maps it to an unsuccessful GatewayResult, not an error.
type transactionResponse struct {
	TransactionID string `json:"transaction_id"`
	Approved      bool   `json:"approved"`
	ResponseCode  string `json:"response_code"`
	Message       string `json:"message,omitempty"`
}

type errorResponse struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}
