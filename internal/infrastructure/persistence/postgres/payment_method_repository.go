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

const methodColumns = `id, account_id, type, gateway, token, holder_name, last_four,
	expiration_month, expiration_year, routing_last_four, account_last_four,
	is_primary, deleted_at, created_at, updated_at`

type PaymentMethodRepository struct {
	q dbtx
}

func NewPaymentMethodRepository(db *pgxpool.Pool) *PaymentMethodRepository {
	return &PaymentMethodRepository{q: db}
}

func (r *PaymentMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (` + methodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	m := toPaymentMethodModel(method)
	_, err := r.q.Exec(ctx, query,
		m.ID, m.AccountID, m.Type, m.Gateway, m.Token, m.HolderName, m.LastFour,
		m.ExpirationMonth, m.ExpirationYear, m.RoutingLastFour, m.AccountLastFour,
		m.IsPrimary, m.DeletedAt, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

func (r *PaymentMethodRepository) FindByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	query := `SELECT ` + methodColumns + ` FROM payment_methods WHERE id = $1`
	return scanPaymentMethod(r.q.QueryRow(ctx, query, id))
}

func (r *PaymentMethodRepository) FindPrimaryByAccount(ctx context.Context, accountID string) (*domain.PaymentMethod, error) {
	query := `
		SELECT ` + methodColumns + `
		FROM payment_methods
		WHERE account_id = $1 AND is_primary AND deleted_at IS NULL
	`
	return scanPaymentMethod(r.q.QueryRow(ctx, query, accountID))
}

func (r *PaymentMethodRepository) Update(ctx context.Context, method *domain.PaymentMethod) error {
	query := `
		UPDATE payment_methods
		SET expiration_month = $1, expiration_year = $2, is_primary = $3,
			deleted_at = $4, updated_at = $5
		WHERE id = $6
	`

	m := toPaymentMethodModel(method)
	result, err := r.q.Exec(ctx, query,
		m.ExpirationMonth, m.ExpirationYear, m.IsPrimary,
		m.DeletedAt, m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment method: %w", err)
	}
	if result.RowsAffected() == 0 {
		return application.ErrPaymentMethodNotFound
	}
	return nil
}

func (r *PaymentMethodRepository) ClearPrimary(ctx context.Context, accountID string) error {
	query := `
		UPDATE payment_methods
		SET is_primary = false, updated_at = now()
		WHERE account_id = $1 AND is_primary
	`
	if _, err := r.q.Exec(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to clear primary payment method: %w", err)
	}
	return nil
}

func scanPaymentMethod(row pgx.Row) (*domain.PaymentMethod, error) {
	var m paymentMethodModel
	err := row.Scan(
		&m.ID, &m.AccountID, &m.Type, &m.Gateway, &m.Token, &m.HolderName, &m.LastFour,
		&m.ExpirationMonth, &m.ExpirationYear, &m.RoutingLastFour, &m.AccountLastFour,
		&m.IsPrimary, &m.DeletedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to scan payment method: %w", err)
	}
	return toDomainPaymentMethod(m), nil
}
