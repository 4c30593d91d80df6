package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/seeran-grades/seeran-backend/internal/user"
)

type mockUsers struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*user.User, error)
}

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return m.getByIDFn(ctx, id)
}

type mockImages struct {
	err error
}

func (m *mockImages) ProfileImageURL(_ context.Context, email string, picture *string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if picture == nil {
		return "https://cdn.example/default.svg?sig", nil
	}
	return "https://cdn.example/" + email + "?sig", nil
}

func identityOf(id uuid.UUID) IdentityFunc {
	return func(context.Context) (uuid.UUID, bool) { return id, id != uuid.Nil }
}

func TestMeTitleCasesNamesAndRole(t *testing.T) {
	id := uuid.New()
	u := &user.User{ID: id, Email: "jane@x.com", Name: "jane", Surname: "van der merwe", IsParent: true}
	users := &mockUsers{getByIDFn: func(context.Context, uuid.UUID) (*user.User, error) { return u, nil }}
	h := NewHandler(users, &mockImages{}, identityOf(id))

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/users/me/profile", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Response{
		Name:    "Jane",
		Surname: "Van Der Merwe",
		Email:   "jane@x.com",
		ID:      id,
		Role:    "Parent",
		Image:   "https://cdn.example/default.svg?sig",
	}
	if resp != want {
		t.Fatalf("expected %+v, got %+v", want, resp)
	}
}

func TestMeErrors(t *testing.T) {
	id := uuid.New()
	missing := &mockUsers{getByIDFn: func(context.Context, uuid.UUID) (*user.User, error) { return nil, user.ErrNotFound }}
	found := &mockUsers{getByIDFn: func(context.Context, uuid.UUID) (*user.User, error) {
		return &user.User{ID: id, Email: "jane@x.com", Name: "Jane", Surname: "Doe"}, nil
	}}

	cases := []struct {
		name   string
		h      *Handler
		status int
	}{
		{"anonymous", NewHandler(found, &mockImages{}, identityOf(uuid.Nil)), http.StatusUnauthorized},
		{"vanished", NewHandler(missing, &mockImages{}, identityOf(id)), http.StatusNotFound},
		{"signer down", NewHandler(found, &mockImages{err: errors.New("bad key")}, identityOf(id)), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.h.Me(rec, httptest.NewRequest(http.MethodGet, "/users/me/profile", nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}
