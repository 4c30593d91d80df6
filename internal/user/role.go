package user

import (
	"fmt"
	"strings"
)

// Role is the capability a user acts with
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleParent  Role = "parent"
	RoleStudent Role = "student"
)

func (r Role) String() string {
	return string(r)
}

// Flags are the stored role booleans of a user
type Flags struct {
	Principal bool
	Admin     bool
	Parent    bool
	Student   bool
}

// ResolveRole maps flags to a role.
// Principal or admin wins over parent, parent wins over the student default.
func ResolveRole(f Flags) Role {
	switch {
	case f.Principal || f.Admin:
		return RoleAdmin
	case f.Parent:
		return RoleParent
	default:
		return RoleStudent
	}
}

// Kind is the account type an operator provisions
type Kind string

const (
	KindPrincipal Kind = "principal"
	KindAdmin     Kind = "admin"
	KindParent    Kind = "parent"
	KindStudent   Kind = "student"
	KindFounder   Kind = "founder"
)

// Kinds lists every provisionable account type
var Kinds = []Kind{KindPrincipal, KindAdmin, KindParent, KindStudent, KindFounder}

// ParseKind parses an account type name, case-insensitively
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// Flags returns the stored flags for the account type.
// Founders are also admins.
func (k Kind) Flags() (flags Flags, founder bool) {
	switch k {
	case KindPrincipal:
		flags.Principal = true
	case KindAdmin:
		flags.Admin = true
	case KindParent:
		flags.Parent = true
	case KindFounder:
		flags.Admin = true
		founder = true
	default:
		flags.Student = true
	}
	return flags, founder
}
