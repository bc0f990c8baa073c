package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"videoserver/internal/domain"
	"videoserver/internal/infra"
	"videoserver/internal/sqlinline"
)

// CreditRepositoryPG implements domain.CreditRepository over PostgreSQL.
// Spending happens inside the enqueue statement; this repository covers
// balance reads and grants.
type CreditRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewCreditRepository creates a credit repository.
func NewCreditRepository(sql infra.SQLExecutor) *CreditRepositoryPG {
	return &CreditRepositoryPG{sql: sql}
}

// Balance returns the owner's remaining credits.
func (r *CreditRepositoryPG) Balance(ctx context.Context, ownerID string) (int, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectCredits, ownerID)
	var balance int
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

// Grant adds credits to the owner's balance, creating the account row if
// it does not exist yet.
func (r *CreditRepositoryPG) Grant(ctx context.Context, ownerID string, amount int) error {
	_, err := r.sql.Exec(ctx, sqlinline.QGrantCredits, ownerID, amount)
	return err
}

var _ domain.CreditRepository = (*CreditRepositoryPG)(nil)
