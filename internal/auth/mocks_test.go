package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/seeran-grades/seeran-backend/internal/cache"
	"github.com/seeran-grades/seeran-backend/internal/logging"
	"github.com/seeran-grades/seeran-backend/internal/metrics"
	"github.com/seeran-grades/seeran-backend/internal/otp"
	"github.com/seeran-grades/seeran-backend/internal/ratelimit"
	"github.com/seeran-grades/seeran-backend/internal/user"
)

// --- Mock Repository ---

// mockUserRepo implements UserRepository for testing.
type mockUserRepo struct {
	getByEmailFn            func(ctx context.Context, email string) (*user.User, error)
	getByIDFn               func(ctx context.Context, id uuid.UUID) (*user.User, error)
	getByIdentifierFn       func(ctx context.Context, identifier string) (*user.User, error)
	getByNameSurnameEmailFn func(ctx context.Context, name, surname, email string) (*user.User, error)
	updatePasswordFn        func(ctx context.Context, userID uuid.UUID, passwordHash string) error

	updatePasswordCalls int
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	if m.getByIdentifierFn != nil {
		return m.getByIdentifierFn(ctx, identifier)
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByNameSurnameEmail(ctx context.Context, name, surname, email string) (*user.User, error) {
	if m.getByNameSurnameEmailFn != nil {
		return m.getByNameSurnameEmailFn(ctx, name, surname, email)
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	m.updatePasswordCalls++
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, userID, passwordHash)
	}
	return nil
}

// newMemUserRepo backs the mock with an in-memory table
func newMemUserRepo(users ...*user.User) *mockUserRepo {
	var mu sync.Mutex
	byID := map[uuid.UUID]*user.User{}
	for _, u := range users {
		byID[u.ID] = u
	}

	find := func(match func(*user.User) bool) (*user.User, error) {
		mu.Lock()
		defer mu.Unlock()
		for _, u := range byID {
			if match(u) {
				cp := *u
				return &cp, nil
			}
		}
		return nil, user.ErrNotFound
	}

	return &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*user.User, error) {
			return find(func(u *user.User) bool { return u.Email == email })
		},
		getByIDFn: func(_ context.Context, id uuid.UUID) (*user.User, error) {
			return find(func(u *user.User) bool { return u.ID == id })
		},
		getByIdentifierFn: func(_ context.Context, identifier string) (*user.User, error) {
			return find(func(u *user.User) bool {
				return u.Email == identifier || (u.IDNumber != nil && *u.IDNumber == identifier)
			})
		},
		getByNameSurnameEmailFn: func(_ context.Context, name, surname, email string) (*user.User, error) {
			return find(func(u *user.User) bool {
				return u.Name == name && u.Surname == surname && u.Email == email
			})
		},
		updatePasswordFn: func(_ context.Context, id uuid.UUID, hash string) error {
			mu.Lock()
			defer mu.Unlock()
			u, ok := byID[id]
			if !ok {
				return user.ErrNotFound
			}
			u.PasswordHash = &hash
			return nil
		},
	}
}

// mockMailer records sent codes
type mockMailer struct {
	mu    sync.Mutex
	sent  map[string]string
	errFn func(to string) error
}

func newMockMailer() *mockMailer {
	return &mockMailer{sent: map[string]string{}}
}

func (m *mockMailer) SendOTPEmail(_ context.Context, to, code string) error {
	if m.errFn != nil {
		if err := m.errFn(to); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[to] = code
	return nil
}

func (m *mockMailer) lastCode(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[to]
}

var errSESDown = errors.New("ses: throttled")

// --- Fixtures ---

const (
	testSecret      = "0123456789abcdef0123456789abcdef"
	testMaxAttempts = 5
)

func mustHash(t *testing.T, password string) *string {
	t.Helper()
	h, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &h
}

func janeDoe() *user.User {
	return &user.User{
		ID:        uuid.New(),
		Email:     "jane@x.com",
		Name:      "Jane",
		Surname:   "Doe",
		IsStudent: true,
	}
}

type testEnv struct {
	mr         *miniredis.Miniredis
	users      *mockUserRepo
	mailer     *mockMailer
	tokens     *JWTService
	registry   *RedisRepository
	otps       *otp.Store
	service    *Service
	activation *Activation
	cookies    *CookieManager
	handler    *Handler
	middleware *Middleware
}

func newTestEnv(t *testing.T, users ...*user.User) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := NewJWTService([]byte(testSecret), "seeran-test")
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}

	m := metrics.NewNop()
	logger := logging.NewNop()
	repo := newMemUserRepo(users...)
	mailer := newMockMailer()
	registry := NewRedisRepository(client)
	otps := otp.NewStore(cache.NewRedisStore(client, ""), otp.NewGenerator(bcrypt.MinCost), 300*time.Second, testMaxAttempts)

	service := NewService(repo, registry, tokens, m, logger, ServiceConfig{
		AccessTokenDuration:  5 * time.Minute,
		RefreshTokenDuration: 30 * 24 * time.Hour,
		PasswordMinChars:     8,
	})
	activation := NewActivation(repo, otps, mailer, m, logger, 8)
	cookies := NewCookieManager(".seeran-grades.com", 5*time.Minute, 30*24*time.Hour, 300*time.Second)
	limiter := ratelimit.NewLimiter(client, 15*time.Minute, map[string]int{
		"login":        20,
		"signin":       10,
		"resend-otp":   10,
		"verify-otp":   20,
		"set-password": 3,
	})

	return &testEnv{
		mr:         mr,
		users:      repo,
		mailer:     mailer,
		tokens:     tokens,
		registry:   registry,
		otps:       otps,
		service:    service,
		activation: activation,
		cookies:    cookies,
		handler:    NewHandler(service, activation, cookies, limiter, m),
		middleware: NewMiddleware(tokens, repo),
	}
}
