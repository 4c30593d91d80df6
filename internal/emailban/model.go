// Package emailban lets users read their email bans and appeal them once.
// Founders review the pending appeals.
package emailban

import (
	"time"

	"github.com/google/uuid"
)

// Status of a ban
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
)

// Ban blocks an email address from receiving mail from the platform
type Ban struct {
	BanID      uuid.UUID  `json:"ban_id"`
	Email      string     `json:"email"`
	Reason     string     `json:"reason"`
	Status     Status     `json:"status"`
	Appeal     *string    `json:"appeal"`
	BannedAt   time.Time  `json:"banned_at"`
	AppealedAt *time.Time `json:"appealed_at"`
}

// Appealed reports whether an appeal has been submitted
func (b *Ban) Appealed() bool {
	return b.Appeal != nil
}
