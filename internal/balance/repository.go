// Package balance exposes the account balance of the logged in user.
package balance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/seeran-grades/seeran-backend/internal/database"
)

var ErrNotFound = errors.New("balance not found")

// Balance is a user's outstanding amount. Amount keeps the numeric text as stored.
type Balance struct {
	UserID      uuid.UUID `json:"-"`
	Amount      string    `json:"amount"`
	LastUpdated time.Time `json:"last_updated"`
}

type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// GetByUserID retrieves the balance of a user
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	row := new(database.Balance)
	err := r.db.NewSelect().
		Model(row).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &Balance{UserID: row.UserID, Amount: row.Amount, LastUpdated: row.LastUpdated}, nil
}

// Set creates or replaces the balance of a user
func (r *Repository) Set(ctx context.Context, userID uuid.UUID, amount string) error {
	row := &database.Balance{UserID: userID, Amount: amount, LastUpdated: time.Now()}
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("amount = EXCLUDED.amount").
		Set("last_updated = EXCLUDED.last_updated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}
