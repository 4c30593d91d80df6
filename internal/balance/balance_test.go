package balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/seeran-grades/seeran-backend/internal/database"
	"github.com/seeran-grades/seeran-backend/internal/database/dbtest"
	"github.com/seeran-grades/seeran-backend/internal/user"
)

type mockReader struct {
	getFn func(ctx context.Context, userID uuid.UUID) (*Balance, error)
}

func (m *mockReader) GetByUserID(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	return m.getFn(ctx, userID)
}

func authenticatedAs(id uuid.UUID) func(context.Context) (uuid.UUID, bool) {
	return func(context.Context) (uuid.UUID, bool) { return id, id != uuid.Nil }
}

func TestHandlerMe(t *testing.T) {
	id := uuid.New()
	updated := time.Date(2026, 2, 14, 8, 30, 0, 0, time.UTC)
	reader := &mockReader{getFn: func(_ context.Context, userID uuid.UUID) (*Balance, error) {
		if userID != id {
			return nil, ErrNotFound
		}
		return &Balance{UserID: id, Amount: "1250.50", LastUpdated: updated}, nil
	}}

	rec := httptest.NewRecorder()
	NewHandler(reader, authenticatedAs(id)).Me(rec, httptest.NewRequest(http.MethodGet, "/users/me/balance", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["amount"] != "1250.50" || body["last_updated"] != "2026-02-14T08:30:00Z" {
		t.Fatalf("unexpected body %v", body)
	}
	if _, leaked := body["UserID"]; leaked {
		t.Fatalf("user id must not be serialized")
	}

	rec = httptest.NewRecorder()
	NewHandler(reader, authenticatedAs(uuid.New())).Me(rec, httptest.NewRequest(http.MethodGet, "/users/me/balance", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHandler(reader, authenticatedAs(uuid.Nil)).Me(rec, httptest.NewRequest(http.MethodGet, "/users/me/balance", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	failing := &mockReader{getFn: func(context.Context, uuid.UUID) (*Balance, error) { return nil, errors.New("db down") }}
	rec = httptest.NewRecorder()
	NewHandler(failing, authenticatedAs(id)).Me(rec, httptest.NewRequest(http.MethodGet, "/users/me/balance", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRepositorySetAndGet(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	u, err := user.NewRepository(db).Create(ctx, user.NewUser{
		Email: "bal-" + uuid.NewString() + "@x.com", Name: "Bal", Surname: "Ance", Kind: user.KindParent,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.NewDelete().Model((*database.Balance)(nil)).Where("user_id = ?", u.ID).Exec(ctx)
		_, _ = db.NewDelete().Model((*database.User)(nil)).Where("id = ?", u.ID).Exec(ctx)
	})

	repo := NewRepository(db)
	if _, err := repo.GetByUserID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := repo.Set(ctx, u.ID, "10.00"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, u.ID, "99.95"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	b, err := repo.GetByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.Amount != "99.95" {
		t.Fatalf("expected 99.95, got %s", b.Amount)
	}
}
