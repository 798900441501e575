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

// AccountRepository is the read-only projection of billing accounts.
// Account lifecycle is owned elsewhere; the payment core only reads.
type AccountRepository struct {
	q dbtx
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{q: db}
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT id, area_id, name, autopay_method_id FROM accounts WHERE id = $1`

	var m accountModel
	err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.AreaID, &m.Name, &m.AutopayMethodID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return toDomainAccount(m), nil
}

func (r *AccountRepository) ListAreaIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT area_id FROM accounts ORDER BY area_id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query area ids: %w", err)
	}
	areaIDs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var areaID string
		err := row.Scan(&areaID)
		return areaID, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan area ids: %w", err)
	}
	return areaIDs, nil
}
