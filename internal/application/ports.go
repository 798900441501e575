// Package application holds the orchestration layer: the ports every
// handler composes and the service-level error taxonomy.
package application

import (
	"context"

	"github.com/clearbill/payments/internal/domain"
)

// Credentials are the per-gateway secrets resolved at call time.
type Credentials struct {
	MerchantID string `json:"merchant_id"`
	APIKey     string `json:"api_key"`
	APISecret  string `json:"api_secret"`
}

// CredentialsProvider resolves secrets for a gateway. Read-only; the
// core does no caching of its own.
type CredentialsProvider interface {
	Get(ctx context.Context, gateway domain.GatewayID) (Credentials, error)
}

// GatewayResult is the outcome of a gateway call. A business decline is
// Success=false with a message; it is not an error. Errors are reserved
// for infrastructure failures, which abort the enclosing unit of work.
type GatewayResult struct {
	Success              bool
	GatewayTransactionID string
	ResponseCode         string
	Message              string
}

// AuthorizationRequest carries everything a processor needs to reserve
// funds. Capture requests processor "sale" semantics: authorize and
// capture in the same call.
type AuthorizationRequest struct {
	PaymentID       string
	Amount          int64
	Currency        string
	Capture         bool
	Token           string
	HolderName      string
	LastFour        string
	ExpirationMonth int
	ExpirationYear  int
	AccountLastFour string
	RoutingLastFour string
}

type CaptureRequest struct {
	PaymentID            string
	Amount               int64
	GatewayTransactionID string
}

type CancelRequest struct {
	PaymentID            string
	GatewayTransactionID string
}

type CreditRequest struct {
	PaymentID string
	Amount    int64
	Currency  string
	Token     string
}

// GatewayAdapter is the uniform interface to one external processor.
type GatewayAdapter interface {
	Authorize(ctx context.Context, req AuthorizationRequest, creds Credentials) (*GatewayResult, error)
	Capture(ctx context.Context, req CaptureRequest, creds Credentials) (*GatewayResult, error)
	Cancel(ctx context.Context, req CancelRequest, creds Credentials) (*GatewayResult, error)
	Credit(ctx context.Context, req CreditRequest, creds Credentials) (*GatewayResult, error)
}

// GatewayRegistry maps gateway ids to adapters.
type GatewayRegistry map[domain.GatewayID]GatewayAdapter

// Adapter looks up the adapter for a gateway.
func (r GatewayRegistry) Adapter(id domain.GatewayID) (GatewayAdapter, bool) {
	adapter, ok := r[id]
	return adapter, ok
}

// EventPublisher delivers fire-and-forget notifications. Implementations
// log failures; they never propagate them into the calling operation.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}

// SubscriptionService resolves subscriptions referenced by scheduled
// payment triggers. External collaborator.
type SubscriptionService interface {
	SubscriptionExists(ctx context.Context, subscriptionID string) (bool, error)
}

// PaymentRepository persists payment aggregates.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	// FindByIDForUpdate takes a row-level lock; only meaningful inside a
	// unit of work.
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
	// FindRefundsByOriginal returns every payment in the refund lineage
	// of the original, regardless of status.
	FindRefundsByOriginal(ctx context.Context, originalID string) ([]*domain.Payment, error)
	FindSuspendedByArea(ctx context.Context, areaID string) ([]*domain.Payment, error)
	FindUnsettledByArea(ctx context.Context, areaID string) ([]*domain.Payment, error)
}

// PaymentMethodRepository persists stored payment methods.
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *domain.PaymentMethod) error
	FindByID(ctx context.Context, id string) (*domain.PaymentMethod, error)
	FindPrimaryByAccount(ctx context.Context, accountID string) (*domain.PaymentMethod, error)
	Update(ctx context.Context, method *domain.PaymentMethod) error
	// ClearPrimary demotes the account's current primary method, if any.
	ClearPrimary(ctx context.Context, accountID string) error
}

// TransactionRepository is the append-only gateway-call ledger.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
	FindByPayment(ctx context.Context, paymentID string) ([]*domain.Transaction, error)
	// FindLastByPayment returns the most recent ledger entry of one of
	// the given types, or ErrTransactionNotFound.
	FindLastByPayment(ctx context.Context, paymentID string, types ...domain.TransactionType) (*domain.Transaction, error)
}

// ScheduledPaymentRepository persists scheduled payment intents.
type ScheduledPaymentRepository interface {
	Create(ctx context.Context, scheduled *domain.ScheduledPayment) error
	FindByID(ctx context.Context, id string) (*domain.ScheduledPayment, error)
	Update(ctx context.Context, scheduled *domain.ScheduledPayment) error
	// FindDuplicate returns a non-cancelled scheduled payment with the
	// same account, trigger and metadata, or nil.
	FindDuplicate(ctx context.Context, accountID string, trigger domain.ScheduledTrigger, metadata map[string]string) (*domain.ScheduledPayment, error)
}

// AccountRepository is the read-only view of billing accounts.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	ListAreaIDs(ctx context.Context) ([]string, error)
}

// Repositories bundles every repository a handler may touch. A unit of
// work hands out a transaction-scoped bundle.
type Repositories struct {
	Payments  PaymentRepository
	Methods   PaymentMethodRepository
	Ledger    TransactionRepository
	Scheduled ScheduledPaymentRepository
	Accounts  AccountRepository
}

// UnitOfWork runs fn inside one atomic boundary. Everything written
// through the bundle is visible all-or-nothing; returning an error rolls
// the whole boundary back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error
}
