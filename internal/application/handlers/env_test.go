package handlers_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
)

// testEnv wires every handler dependency against the in-memory fakes,
// pre-seeded with one account and one primary card method.
type testEnv struct {
	payments  *mockPaymentRepository
	methods   *mockPaymentMethodRepository
	ledger    *mockTransactionRepository
	scheduled *mockScheduledPaymentRepository
	accounts  *mockAccountRepository

	repos    *application.Repositories
	uow      application.UnitOfWork
	gateway  *mockGatewayAdapter
	gateways application.GatewayRegistry
	events   *recordingPublisher
	logger   *slog.Logger
}

const (
	testAccountID = "acct-1"
	testMethodID  = "method-1"
)

func newTestEnv() *testEnv {
	env := &testEnv{
		payments:  newMockPaymentRepository(),
		methods:   newMockPaymentMethodRepository(),
		ledger:    newMockTransactionRepository(),
		scheduled: newMockScheduledPaymentRepository(),
		accounts:  newMockAccountRepository(),
		gateway:   &mockGatewayAdapter{},
		events:    &recordingPublisher{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	env.repos = &application.Repositories{
		Payments:  env.payments,
		Methods:   env.methods,
		Ledger:    env.ledger,
		Scheduled: env.scheduled,
		Accounts:  env.accounts,
	}
	env.uow = &passthroughUnitOfWork{repos: env.repos}
	env.gateways = application.GatewayRegistry{
		domain.GatewayCard:       env.gateway,
		domain.GatewayACH:        env.gateway,
		domain.GatewayTokenProxy: env.gateway,
		domain.GatewayCheck:      env.gateway,
	}

	env.accounts.accounts[testAccountID] = &domain.Account{
		ID:     testAccountID,
		AreaID: "north",
		Name:   "Test Account",
	}
	env.methods.methods[testMethodID] = &domain.PaymentMethod{
		ID:              testMethodID,
		AccountID:       testAccountID,
		Type:            domain.TypeCard,
		Gateway:         domain.GatewayCard,
		Token:           "tok-1",
		HolderName:      "Pat Tester",
		LastFour:        "4242",
		ExpirationMonth: 12,
		ExpirationYear:  2030,
		IsPrimary:       true,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	return env
}

// seedPayment persists a payment in the given status. processedAt
// controls the capture window and settlement checks.
func (env *testEnv) seedPayment(status domain.PaymentStatus, gateway domain.GatewayID, processedAt time.Time) *domain.Payment {
	methodID := testMethodID
	payment := &domain.Payment{
		ID:              uuid.New().String(),
		AccountID:       testAccountID,
		Amount:          1234,
		Currency:        "USD",
		Status:          status,
		Gateway:         gateway,
		Type:            domain.TypeCard,
		PaymentMethodID: &methodID,
		ProcessedAt:     processedAt,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	env.payments.payments[payment.ID] = payment
	return payment
}

// seedAuthEntry appends the AUTHORIZE ledger entry a seeded payment
// would have from its authorization.
func (env *testEnv) seedAuthEntry(paymentID string) *domain.Transaction {
	entry := domain.NewTransaction(uuid.New().String(), paymentID, domain.TransactionAuthorize, "auth-seed", "00")
	env.ledger.entries = append(env.ledger.entries, entry)
	return entry
}
