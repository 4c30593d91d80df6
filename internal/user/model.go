package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	IDNumber       *string   `json:"id_number,omitempty"`
	Name           string    `json:"name"`
	Surname        string    `json:"surname"`
	PasswordHash   *string   `json:"-"` // nil until the account is activated
	IsPrincipal    bool      `json:"-"`
	IsAdmin        bool      `json:"-"`
	IsParent       bool      `json:"-"`
	IsStudent      bool      `json:"-"`
	IsFounder      bool      `json:"-"`
	ProfilePicture *string   `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasUsablePassword reports whether the account has been activated
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Role resolves the user's role from its flags
func (u *User) Role() Role {
	return ResolveRole(Flags{
		Principal: u.IsPrincipal,
		Admin:     u.IsAdmin,
		Parent:    u.IsParent,
		Student:   u.IsStudent,
	})
}
