package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
)

const scheduledColumns = `id, account_id, amount, payment_method_id, trigger_type,
	metadata, status, payment_id, created_at, updated_at`

type ScheduledPaymentRepository struct {
	q dbtx
}

func NewScheduledPaymentRepository(db *pgxpool.Pool) *ScheduledPaymentRepository {
	return &ScheduledPaymentRepository{q: db}
}

func (r *ScheduledPaymentRepository) Create(ctx context.Context, scheduled *domain.ScheduledPayment) error {
	query := `
		INSERT INTO scheduled_payments (` + scheduledColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	m, err := toScheduledPaymentModel(scheduled)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, query,
		m.ID, m.AccountID, m.Amount, m.PaymentMethodID, m.Trigger,
		m.Metadata, m.Status, m.PaymentID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduled payment: %w", err)
	}
	return nil
}

func (r *ScheduledPaymentRepository) FindByID(ctx context.Context, id string) (*domain.ScheduledPayment, error) {
	query := `SELECT ` + scheduledColumns + ` FROM scheduled_payments WHERE id = $1`
	return scanScheduledPayment(r.q.QueryRow(ctx, query, id))
}

func (r *ScheduledPaymentRepository) Update(ctx context.Context, scheduled *domain.ScheduledPayment) error {
	query := `
		UPDATE scheduled_payments
		SET status = $1, payment_id = $2, updated_at = $3
		WHERE id = $4
	`

	m, err := toScheduledPaymentModel(scheduled)
	if err != nil {
		return err
	}
	result, err := r.q.Exec(ctx, query, m.Status, m.PaymentID, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update scheduled payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return application.ErrScheduledPaymentNotFound
	}
	return nil
}

// FindDuplicate returns a non-cancelled scheduled payment with the same
// account, trigger and metadata, or nil. Metadata equality is full JSONB
// equality, key order independent.
func (r *ScheduledPaymentRepository) FindDuplicate(ctx context.Context, accountID string, trigger domain.ScheduledTrigger, metadata map[string]string) (*domain.ScheduledPayment, error) {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshalling scheduled payment metadata: %w", err)
	}

	query := `
		SELECT ` + scheduledColumns + `
		FROM scheduled_payments
		WHERE account_id = $1 AND trigger_type = $2 AND metadata = $3::jsonb
		  AND status <> 'CANCELLED'
		LIMIT 1
	`

	scheduled, err := scanScheduledPayment(r.q.QueryRow(ctx, query, accountID, string(trigger), metadataJSON))
	if err != nil {
		if errors.Is(err, application.ErrScheduledPaymentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return scheduled, nil
}

func scanScheduledPayment(row pgx.Row) (*domain.ScheduledPayment, error) {
	var m scheduledPaymentModel
	err := row.Scan(
		&m.ID, &m.AccountID, &m.Amount, &m.PaymentMethodID, &m.Trigger,
		&m.Metadata, &m.Status, &m.PaymentID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrScheduledPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan scheduled payment: %w", err)
	}
	return toDomainScheduledPayment(m)
}
