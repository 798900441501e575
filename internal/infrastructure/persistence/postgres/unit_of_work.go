package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clearbill/payments/internal/application"
)

// UnitOfWork runs a function inside one database transaction, handing it
// transaction-scoped repositories. Returning an error rolls everything
// back, including rows written earlier in the same unit.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, r *application.Repositories) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txRepos := &application.Repositories{
		Payments:  &PaymentRepository{q: tx},
		Methods:   &PaymentMethodRepository{q: tx},
		Ledger:    &TransactionRepository{q: tx},
		Scheduled: &ScheduledPaymentRepository{q: tx},
		Accounts:  &AccountRepository{q: tx},
	}

	if err := fn(ctx, txRepos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// NewRepositories bundles pool-scoped repositories for reads outside a
// unit of work.
func NewRepositories(pool *pgxpool.Pool) *application.Repositories {
	return &application.Repositories{
		Payments:  NewPaymentRepository(pool),
		Methods:   NewPaymentMethodRepository(pool),
		Ledger:    NewTransactionRepository(pool),
		Scheduled: NewScheduledPaymentRepository(pool),
		Accounts:  NewAccountRepository(pool),
	}
}
