package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
)

const paymentColumns = `id, account_id, amount, currency, status, gateway, type,
	payment_method_id, original_payment_id, processed_at,
	terminated_at, terminated_by, notes, created_at, updated_at`

type PaymentRepository struct {
	q dbtx
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{q: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	m := toPaymentModel(payment)
	_, err := r.q.Exec(ctx, query,
		m.ID, m.AccountID, m.Amount, m.Currency, m.Status, m.Gateway, m.Type,
		m.PaymentMethodID, m.OriginalPaymentID, m.ProcessedAt,
		m.TerminatedAt, m.TerminatedBy, m.Notes, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.q.QueryRow(ctx, query, id))
}

// FindByIDForUpdate retrieves a payment with a row-level lock. Only
// meaningful when the repository is transaction-scoped.
func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	return scanPayment(r.q.QueryRow(ctx, query, id))
}

func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, payment_method_id = $2, processed_at = $3,
			terminated_at = $4, terminated_by = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`

	m := toPaymentModel(payment)
	result, err := r.q.Exec(ctx, query,
		m.Status, m.PaymentMethodID, m.ProcessedAt,
		m.TerminatedAt, m.TerminatedBy, m.Notes, m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return application.ErrPaymentNotFound
	}
	return nil
}

// FindRefundsByOriginal lists every refund payment linked to the
// original, in creation order.
func (r *PaymentRepository) FindRefundsByOriginal(ctx context.Context, originalID string) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE original_payment_id = $1
		ORDER BY created_at ASC
	`
	return r.queryPayments(ctx, query, originalID)
}

func (r *PaymentRepository) FindSuspendedByArea(ctx context.Context, areaID string) ([]*domain.Payment, error) {
	query := `
		SELECT ` + prefixed(paymentColumns, "p.") + `
		FROM payments p
		JOIN accounts a ON a.id = p.account_id
		WHERE a.area_id = $1 AND p.status = 'SUSPENDED'
		ORDER BY p.created_at ASC
	`
	return r.queryPayments(ctx, query, areaID)
}

// FindUnsettledByArea lists payments still in flight or not yet past
// their settlement date, the working set of the reconciliation report.
func (r *PaymentRepository) FindUnsettledByArea(ctx context.Context, areaID string) ([]*domain.Payment, error) {
	query := `
		SELECT ` + prefixed(paymentColumns, "p.") + `
		FROM payments p
		JOIN accounts a ON a.id = p.account_id
		WHERE a.area_id = $1
		  AND (p.status IN ('AUTHORIZING', 'AUTHORIZED', 'AUTH_CAPTURING', 'SUSPENDED')
		       OR p.processed_at > now())
		ORDER BY p.processed_at ASC
	`
	return r.queryPayments(ctx, query, areaID)
}

func (r *PaymentRepository) queryPayments(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		var m paymentModel
		err := row.Scan(
			&m.ID, &m.AccountID, &m.Amount, &m.Currency, &m.Status, &m.Gateway, &m.Type,
			&m.PaymentMethodID, &m.OriginalPaymentID, &m.ProcessedAt,
			&m.TerminatedAt, &m.TerminatedBy, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
		)
		return toDomainPayment(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan payments: %w", err)
	}
	return results, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var m paymentModel
	err := row.Scan(
		&m.ID, &m.AccountID, &m.Amount, &m.Currency, &m.Status, &m.Gateway, &m.Type,
		&m.PaymentMethodID, &m.OriginalPaymentID, &m.ProcessedAt,
		&m.TerminatedAt, &m.TerminatedBy, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toDomainPayment(m), nil
}
