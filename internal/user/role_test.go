package user

import "testing"

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
		want  Role
	}{
		{"principal", Flags{Principal: true}, RoleAdmin},
		{"principal and parent", Flags{Principal: true, Parent: true}, RoleAdmin},
		{"admin", Flags{Admin: true}, RoleAdmin},
		{"admin and parent", Flags{Admin: true, Parent: true}, RoleAdmin},
		{"parent", Flags{Parent: true}, RoleParent},
		{"parent and student", Flags{Parent: true, Student: true}, RoleParent},
		{"student", Flags{Student: true}, RoleStudent},
		{"no flags", Flags{}, RoleStudent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRole(tt.flags); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestUserRoleAndPassword(t *testing.T) {
	u := &User{IsParent: true}
	if u.Role() != RoleParent {
		t.Fatalf("expected parent role")
	}
	if u.HasUsablePassword() {
		t.Fatalf("nil hash must not be usable")
	}

	empty := ""
	u.PasswordHash = &empty
	if u.HasUsablePassword() {
		t.Fatalf("empty hash must not be usable")
	}

	hash := "$argon2id$..."
	u.PasswordHash = &hash
	if !u.HasUsablePassword() {
		t.Fatalf("expected usable password")
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Principal ")
	if err != nil || k != KindPrincipal {
		t.Fatalf("expected principal, got %q %v", k, err)
	}
	if _, err := ParseKind("janitor"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestKindFlags(t *testing.T) {
	flags, founder := KindFounder.Flags()
	if !founder || ResolveRole(flags) != RoleAdmin {
		t.Fatalf("founder should be an admin with the founder flag")
	}

	flags, founder = KindStudent.Flags()
	if founder || !flags.Student || ResolveRole(flags) != RoleStudent {
		t.Fatalf("unexpected student flags %+v", flags)
	}

	flags, _ = KindPrincipal.Flags()
	if ResolveRole(flags) != RoleAdmin {
		t.Fatalf("principal should resolve to admin")
	}
}
