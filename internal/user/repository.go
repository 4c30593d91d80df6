package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/seeran-grades/seeran-backend/internal/database"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("a user with the provided email already exists")
	ErrDuplicateIDNumber = errors.New("a user with the provided ID number already exists")
)

// NewUser holds the fields an operator provides when provisioning an account
type NewUser struct {
	Email    string
	IDNumber string
	Name     string
	Surname  string
	Kind     Kind
}

// Repository handles user data persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account without a usable password
func (r *Repository) Create(ctx context.Context, nu NewUser) (*User, error) {
	flags, founder := nu.Kind.Flags()
	dbUser := &database.User{
		Email:       strings.ToLower(strings.TrimSpace(nu.Email)),
		Name:        strings.TrimSpace(nu.Name),
		Surname:     strings.TrimSpace(nu.Surname),
		IsPrincipal: flags.Principal,
		IsAdmin:     flags.Admin,
		IsParent:    flags.Parent,
		IsStudent:   flags.Student,
		IsFounder:   founder,
	}
	if id := strings.TrimSpace(nu.IDNumber); id != "" {
		dbUser.IDNumber = &id
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			if strings.Contains(err.Error(), "id_number") {
				return nil, ErrDuplicateIDNumber
			}
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// ExistsByEmail reports whether an account uses the email
func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("email = ?", email).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// ExistsByIDNumber reports whether an account uses the ID number
func (r *Repository) ExistsByIDNumber(ctx context.Context, idNumber string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("id_number = ?", idNumber).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check id number: %w", err)
	}
	return exists, nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "get user by email", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("email = ?", email)
	})
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, "get user by id", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id)
	})
}

// GetByIdentifier retrieves a user by email or ID number
func (r *Repository) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return r.getOne(ctx, "get user by identifier", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("email = ?", identifier).WhereOr("id_number = ?", identifier)
		})
	})
}

// GetByNameSurnameEmail retrieves the user matching all three fields exactly
func (r *Repository) GetByNameSurnameEmail(ctx context.Context, name, surname, email string) (*User, error) {
	return r.getOne(ctx, "get user by name, surname and email", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("name = ?", name).
			Where("surname = ?", surname).
			Where("email = ?", email)
	})
}

func (r *Repository) getOne(ctx context.Context, op string, where func(*bun.SelectQuery) *bun.SelectQuery) (*User, error) {
	dbUser := new(database.User)
	err := where(r.db.NewSelect().Model(dbUser)).Limit(1).Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdatePassword updates a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:             dbu.ID,
		Email:          dbu.Email,
		IDNumber:       dbu.IDNumber,
		Name:           dbu.Name,
		Surname:        dbu.Surname,
		PasswordHash:   dbu.PasswordHash,
		IsPrincipal:    dbu.IsPrincipal,
		IsAdmin:        dbu.IsAdmin,
		IsParent:       dbu.IsParent,
		IsStudent:      dbu.IsStudent,
		IsFounder:      dbu.IsFounder,
		ProfilePicture: dbu.ProfilePicture,
		CreatedAt:      dbu.CreatedAt,
		UpdatedAt:      dbu.UpdatedAt,
	}
}
