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

const transactionColumns = `id, payment_id, type, gateway_transaction_id, gateway_response_code, created_at`

// TransactionRepository is the append-only gateway-call ledger. There is
// deliberately no Update or Delete.
type TransactionRepository struct {
	q dbtx
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{q: db}
}

func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		transaction.ID, transaction.PaymentID, string(transaction.Type),
		transaction.GatewayTransactionID, transaction.GatewayResponseCode, transaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) FindByPayment(ctx context.Context, paymentID string) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE payment_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Transaction, error) {
		var m transactionModel
		err := row.Scan(&m.ID, &m.PaymentID, &m.Type, &m.GatewayTransactionID, &m.GatewayResponseCode, &m.CreatedAt)
		return toDomainTransaction(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan transactions: %w", err)
	}
	return results, nil
}

// FindLastByPayment returns the most recent ledger entry of one of the
// given types, or ErrTransactionNotFound.
func (r *TransactionRepository) FindLastByPayment(ctx context.Context, paymentID string, types ...domain.TransactionType) (*domain.Transaction, error) {
	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE payment_id = $1 AND type = ANY($2)
		ORDER BY created_at DESC
		LIMIT 1
	`

	var m transactionModel
	err := r.q.QueryRow(ctx, query, paymentID, typeNames).Scan(
		&m.ID, &m.PaymentID, &m.Type, &m.GatewayTransactionID, &m.GatewayResponseCode, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return toDomainTransaction(m), nil
}
