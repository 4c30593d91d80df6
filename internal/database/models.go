package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun model for the users table
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email          string    `bun:"email,notnull,unique"`
	IDNumber       *string   `bun:"id_number,unique"`
	Name           string    `bun:"name,notnull"`
	Surname        string    `bun:"surname,notnull"`
	PasswordHash   *string   `bun:"password_hash"`
	IsPrincipal    bool      `bun:"is_principal,notnull,default:false"`
	IsAdmin        bool      `bun:"is_admin,notnull,default:false"`
	IsParent       bool      `bun:"is_parent,notnull,default:false"`
	IsStudent      bool      `bun:"is_student,notnull,default:false"`
	IsFounder      bool      `bun:"is_founder,notnull,default:false"`
	ProfilePicture *string   `bun:"profile_picture"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// RefreshToken records an issued refresh token by its jti
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	TokenID   string     `bun:"token_id,notnull,unique"`
	ExpiresAt time.Time  `bun:"expires_at,notnull"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	RevokedAt *time.Time `bun:"revoked_at"`
}

// EmailBan is the bun model for the email_bans table
type EmailBan struct {
	bun.BaseModel `bun:"table:email_bans,alias:eb"`

	BanID      uuid.UUID  `bun:"ban_id,pk,type:uuid,default:gen_random_uuid()"`
	Email      string     `bun:"email,notnull"`
	Reason     string     `bun:"reason,notnull"`
	Status     string     `bun:"status,notnull,default:'PENDING'"`
	Appeal     *string    `bun:"appeal"`
	BannedAt   time.Time  `bun:"banned_at,notnull,default:current_timestamp"`
	AppealedAt *time.Time `bun:"appealed_at"`
}

// Balance is the bun model for the balances table
type Balance struct {
	bun.BaseModel `bun:"table:balances,alias:b"`

	UserID      uuid.UUID `bun:"user_id,pk,type:uuid"`
	Amount      string    `bun:"amount,notnull,type:numeric(10,2),default:0"`
	LastUpdated time.Time `bun:"last_updated,notnull,default:current_timestamp"`
}
