package handlers_test

import (
	"context"
	"sync"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
)

// In-memory fakes for the repository and gateway ports. Defaults behave
// like a well-formed store; individual Fn fields override behavior per
// test.

type mockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateFn            func(ctx context.Context, payment *domain.Payment) error
	UpdateFn            func(ctx context.Context, payment *domain.Payment) error
	FindByIDFn          func(ctx context.Context, id string) (*domain.Payment, error)
	FindByIDForUpdateFn func(ctx context.Context, id string) (*domain.Payment, error)
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateFn != nil {
		return m.CreateFn(ctx, payment)
	}
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

func (m *mockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, payment)
	}
	if _, ok := m.payments[payment.ID]; !ok {
		return application.ErrPaymentNotFound
	}
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	if p, ok := m.payments[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, application.ErrPaymentNotFound
}

func (m *mockPaymentRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error) {
	if m.FindByIDForUpdateFn != nil {
		return m.FindByIDForUpdateFn(ctx, id)
	}
	return m.FindByID(ctx, id)
}

func (m *mockPaymentRepository) FindRefundsByOriginal(ctx context.Context, originalID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.OriginalPaymentID != nil && *p.OriginalPaymentID == originalID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) FindSuspendedByArea(ctx context.Context, areaID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.Status == domain.StatusSuspended {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) FindUnsettledByArea(ctx context.Context, areaID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if !p.IsTerminal() {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

// stored returns the persisted state of a payment, bypassing Fn hooks.
func (m *mockPaymentRepository) stored(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

type mockPaymentMethodRepository struct {
	mu      sync.RWMutex
	methods map[string]*domain.PaymentMethod
}

func newMockPaymentMethodRepository() *mockPaymentMethodRepository {
	return &mockPaymentMethodRepository{methods: make(map[string]*domain.PaymentMethod)}
}

func (m *mockPaymentMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *method
	m.methods[method.ID] = &copied
	return nil
}

func (m *mockPaymentMethodRepository) FindByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if method, ok := m.methods[id]; ok {
		copied := *method
		return &copied, nil
	}
	return nil, application.ErrPaymentMethodNotFound
}

func (m *mockPaymentMethodRepository) FindPrimaryByAccount(ctx context.Context, accountID string) (*domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, method := range m.methods {
		if method.AccountID == accountID && method.IsPrimary && method.DeletedAt == nil {
			copied := *method
			return &copied, nil
		}
	}
	return nil, application.ErrPaymentMethodNotFound
}

func (m *mockPaymentMethodRepository) Update(ctx context.Context, method *domain.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.methods[method.ID]; !ok {
		return application.ErrPaymentMethodNotFound
	}
	copied := *method
	m.methods[method.ID] = &copied
	return nil
}

func (m *mockPaymentMethodRepository) ClearPrimary(ctx context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, method := range m.methods {
		if method.AccountID == accountID {
			method.IsPrimary = false
		}
	}
	return nil
}

func (m *mockPaymentMethodRepository) stored(id string) *domain.PaymentMethod {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.methods[id]
}

type mockTransactionRepository struct {
	mu      sync.RWMutex
	entries []*domain.Transaction

	CreateFn func(ctx context.Context, transaction *domain.Transaction) error
}

func newMockTransactionRepository() *mockTransactionRepository {
	return &mockTransactionRepository{}
}

func (m *mockTransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateFn != nil {
		return m.CreateFn(ctx, transaction)
	}
	m.entries = append(m.entries, transaction)
	return nil
}

func (m *mockTransactionRepository) FindByPayment(ctx context.Context, paymentID string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, entry := range m.entries {
		if entry.PaymentID == paymentID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *mockTransactionRepository) FindLastByPayment(ctx context.Context, paymentID string, types ...domain.TransactionType) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		entry := m.entries[i]
		if entry.PaymentID != paymentID {
			continue
		}
		for _, t := range types {
			if entry.Type == t {
				return entry, nil
			}
		}
	}
	return nil, application.ErrTransactionNotFound
}

func (m *mockTransactionRepository) byType(paymentID string, txType domain.TransactionType) []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, entry := range m.entries {
		if entry.PaymentID == paymentID && entry.Type == txType {
			out = append(out, entry)
		}
	}
	return out
}

type mockScheduledPaymentRepository struct {
	mu        sync.RWMutex
	scheduled map[string]*domain.ScheduledPayment
}

func newMockScheduledPaymentRepository() *mockScheduledPaymentRepository {
	return &mockScheduledPaymentRepository{scheduled: make(map[string]*domain.ScheduledPayment)}
}

func (m *mockScheduledPaymentRepository) Create(ctx context.Context, scheduled *domain.ScheduledPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *scheduled
	m.scheduled[scheduled.ID] = &copied
	return nil
}

func (m *mockScheduledPaymentRepository) FindByID(ctx context.Context, id string) (*domain.ScheduledPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.scheduled[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, application.ErrScheduledPaymentNotFound
}

func (m *mockScheduledPaymentRepository) Update(ctx context.Context, scheduled *domain.ScheduledPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scheduled[scheduled.ID]; !ok {
		return application.ErrScheduledPaymentNotFound
	}
	copied := *scheduled
	m.scheduled[scheduled.ID] = &copied
	return nil
}

func (m *mockScheduledPaymentRepository) FindDuplicate(ctx context.Context, accountID string, trigger domain.ScheduledTrigger, metadata map[string]string) (*domain.ScheduledPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.scheduled {
		if s.AccountID != accountID || s.Trigger != trigger || s.Status == domain.ScheduledCancelled {
			continue
		}
		if len(s.Metadata) != len(metadata) {
			continue
		}
		match := true
		for k, v := range metadata {
			if s.Metadata[k] != v {
				match = false
				break
			}
		}
		if match {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

type mockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (m *mockAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, application.ErrAccountNotFound
}

func (m *mockAccountRepository) ListAreaIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, a := range m.accounts {
		if !seen[a.AreaID] {
			seen[a.AreaID] = true
			out = append(out, a.AreaID)
		}
	}
	return out, nil
}

// passthroughUnitOfWork hands the same repositories to the closure. Good
// enough for handler tests: an aborted unit of work shows up as changes
// the handler never got to make.
type passthroughUnitOfWork struct {
	repos *application.Repositories
}

func (u *passthroughUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, r *application.Repositories) error) error {
	return fn(ctx, u.repos)
}

// mockGatewayAdapter counts calls and delegates to Fn fields; a verb
// without an Fn approves with a canned transaction id.
type mockGatewayAdapter struct {
	AuthorizeFn func(ctx context.Context, req application.AuthorizationRequest, creds application.Credentials) (*application.GatewayResult, error)
	CaptureFn   func(ctx context.Context, req application.CaptureRequest, creds application.Credentials) (*application.GatewayResult, error)
	CancelFn    func(ctx context.Context, req application.CancelRequest, creds application.Credentials) (*application.GatewayResult, error)
	CreditFn    func(ctx context.Context, req application.CreditRequest, creds application.Credentials) (*application.GatewayResult, error)

	AuthorizeCalls int
	CaptureCalls   int
	CancelCalls    int
	CreditCalls    int
}

func approved(id string) *application.GatewayResult {
	return &application.GatewayResult{Success: true, GatewayTransactionID: id, ResponseCode: "00"}
}

func (m *mockGatewayAdapter) Authorize(ctx context.Context, req application.AuthorizationRequest, creds application.Credentials) (*application.GatewayResult, error) {
	m.AuthorizeCalls++
	if m.AuthorizeFn != nil {
		return m.AuthorizeFn(ctx, req, creds)
	}
	return approved("auth-1"), nil
}

func (m *mockGatewayAdapter) Capture(ctx context.Context, req application.CaptureRequest, creds application.Credentials) (*application.GatewayResult, error) {
	m.CaptureCalls++
	if m.CaptureFn != nil {
		return m.CaptureFn(ctx, req, creds)
	}
	return approved("cap-1"), nil
}

func (m *mockGatewayAdapter) Cancel(ctx context.Context, req application.CancelRequest, creds application.Credentials) (*application.GatewayResult, error) {
	m.CancelCalls++
	if m.CancelFn != nil {
		return m.CancelFn(ctx, req, creds)
	}
	return approved("void-1"), nil
}

func (m *mockGatewayAdapter) Credit(ctx context.Context, req application.CreditRequest, creds application.Credentials) (*application.GatewayResult, error) {
	m.CreditCalls++
	if m.CreditFn != nil {
		return m.CreditFn(ctx, req, creds)
	}
	return approved("credit-1"), nil
}

type staticCredentials struct{}

func (staticCredentials) Get(ctx context.Context, gateway domain.GatewayID) (application.Credentials, error) {
	return application.Credentials{MerchantID: "test-merchant"}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) byType(t domain.EventType) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type stubSubscriptionService struct {
	ExistsFn func(ctx context.Context, subscriptionID string) (bool, error)
}

func (s *stubSubscriptionService) SubscriptionExists(ctx context.Context, subscriptionID string) (bool, error) {
	if s.ExistsFn != nil {
		return s.ExistsFn(ctx, subscriptionID)
	}
	return true, nil
}
