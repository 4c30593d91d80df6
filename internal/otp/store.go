package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seeran-grades/seeran-backend/internal/cache"
)

var (
	ErrExpired         = errors.New("otp expired")
	ErrMismatch        = errors.New("otp mismatch")
	ErrTooManyAttempts = errors.New("otp attempts exceeded")
)

const (
	// proofSuffix separates the password-set stage from the activation stage
	proofSuffix    = "setpasswordotp"
	attemptsSuffix = ":attempts"
)

// ActivationKey is the store key for the emailed activation code
func ActivationKey(email string) string {
	return email
}

// ProofKey is the store key for the code that authorizes setting a password
func ProofKey(email string) string {
	return email + proofSuffix
}

func attemptsKey(key string) string {
	return key + attemptsSuffix
}

// Store keeps at most one hashed code per key. Issuing again overwrites.
// After maxAttempts wrong guesses the code is destroyed; zero means no cap.
type Store struct {
	cache       cache.Store
	generator   *Generator
	ttl         time.Duration
	maxAttempts int
}

func NewStore(c cache.Store, generator *Generator, ttl time.Duration, maxAttempts int) *Store {
	return &Store{cache: c, generator: generator, ttl: ttl, maxAttempts: maxAttempts}
}

// Issue generates a code, stores its hash under key and returns the plaintext
func (s *Store) Issue(ctx context.Context, key string) (string, error) {
	code, hash, err := s.generator.Generate()
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, key, hash, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}
	// a fresh code gets a fresh attempt budget
	if err := s.cache.Delete(ctx, attemptsKey(key)); err != nil {
		return "", fmt.Errorf("failed to reset otp attempts: %w", err)
	}

	return code, nil
}

// check compares candidate with the entry under key without consuming it and
// returns the stored hash. A wrong candidate leaves the entry in place until
// the attempt cap is reached.
func (s *Store) check(ctx context.Context, key, candidate string) (string, error) {
	hash, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return "", ErrExpired
		}
		return "", fmt.Errorf("failed to read otp: %w", err)
	}

	if !s.generator.Verify(candidate, hash) {
		return "", s.recordFailure(ctx, key)
	}

	return hash, nil
}

// recordFailure counts a wrong guess and destroys the code once the cap is hit
func (s *Store) recordFailure(ctx context.Context, key string) error {
	if s.maxAttempts <= 0 {
		return ErrMismatch
	}

	attempts, err := s.cache.Incr(ctx, attemptsKey(key), s.ttl)
	if err != nil {
		return fmt.Errorf("failed to count otp attempt: %w", err)
	}
	if attempts < int64(s.maxAttempts) {
		return ErrMismatch
	}

	if err := s.discard(ctx, key); err != nil {
		return err
	}
	return ErrTooManyAttempts
}

// Consume checks candidate and deletes the entry on success.
// The delete only succeeds for the entry that was checked, so of two
// concurrent correct guesses exactly one wins; the other sees ErrExpired.
func (s *Store) Consume(ctx context.Context, key, candidate string) error {
	hash, err := s.check(ctx, key, candidate)
	if err != nil {
		return err
	}

	deleted, err := s.cache.DeleteIfEqual(ctx, key, hash)
	if err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}
	if !deleted {
		return ErrExpired
	}

	// a leftover counter expires with the code's ttl
	_ = s.cache.Delete(ctx, attemptsKey(key))
	return nil
}

// discard removes the entry under key and its attempt counter
func (s *Store) discard(ctx context.Context, key string) error {
	if err := s.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	if err := s.cache.Delete(ctx, attemptsKey(key)); err != nil {
		return fmt.Errorf("failed to delete otp attempts: %w", err)
	}
	return nil
}

// Exists reports whether a live entry is stored under key
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read otp: %w", err)
	}
	return true, nil
}
