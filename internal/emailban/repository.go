package emailban

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

var (
	ErrNotFound        = errors.New("email ban not found")
	ErrAlreadyAppealed = errors.New("an appeal has already been made for this ban")
	ErrAppealRequired  = errors.New("appeal text is required")
)

// BunRepository stores bans in Postgres
type BunRepository struct {
	db bun.IDB
}

func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

// Create records a new pending ban
func (r *BunRepository) Create(ctx context.Context, email, reason string) (*Ban, error) {
	row := &database.EmailBan{
		Email:  email,
		Reason: reason,
		Status: string(StatusPending),
	}

	_, err := r.db.NewInsert().
		Model(row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create email ban: %w", err)
	}

	return mapDBBanToModel(row), nil
}

// ListByEmail returns the bans of an address, newest first
func (r *BunRepository) ListByEmail(ctx context.Context, email string) ([]*Ban, error) {
	var rows []database.EmailBan
	err := r.db.NewSelect().
		Model(&rows).
		Where("email = ?", email).
		Order("banned_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list email bans: %w", err)
	}
	return mapDBBans(rows), nil
}

// GetByID retrieves one ban
func (r *BunRepository) GetByID(ctx context.Context, banID uuid.UUID) (*Ban, error) {
	row := new(database.EmailBan)
	err := r.db.NewSelect().
		Model(row).
		Where("ban_id = ?", banID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get email ban: %w", err)
	}

	return mapDBBanToModel(row), nil
}

// SubmitAppeal stores the appeal text unless one was already submitted
func (r *BunRepository) SubmitAppeal(ctx context.Context, banID uuid.UUID, appeal string, at time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.EmailBan)(nil)).
		Set("appeal = ?", appeal).
		Set("appealed_at = ?", at).
		Where("ban_id = ?", banID).
		Where("appeal IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to submit appeal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, banID); err != nil {
			return err
		}
		return ErrAlreadyAppealed
	}

	return nil
}

// ListPendingAppeals returns appealed bans still awaiting review, latest appeal first
func (r *BunRepository) ListPendingAppeals(ctx context.Context) ([]*Ban, error) {
	var rows []database.EmailBan
	err := r.db.NewSelect().
		Model(&rows).
		Where("status = ?", string(StatusPending)).
		Where("appeal IS NOT NULL").
		Order("appealed_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appeals: %w", err)
	}
	return mapDBBans(rows), nil
}

func mapDBBans(rows []database.EmailBan) []*Ban {
	bans := make([]*Ban, 0, len(rows))
	for i := range rows {
		bans = append(bans, mapDBBanToModel(&rows[i]))
	}
	return bans
}

func mapDBBanToModel(row *database.EmailBan) *Ban {
	return &Ban{
		BanID:      row.BanID,
		Email:      row.Email,
		Reason:     row.Reason,
		Status:     Status(row.Status),
		Appeal:     row.Appeal,
		BannedAt:   row.BannedAt,
		AppealedAt: row.AppealedAt,
	}
}
