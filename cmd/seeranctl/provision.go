package main

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	"github.com/seeran-grades/seeran-backend/internal/user"
)

var errMissingFields = errors.New("name, surname, email and account type are required")

type userStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByIDNumber(ctx context.Context, idNumber string) (bool, error)
	Create(ctx context.Context, nu user.NewUser) (*user.User, error)
}

func normalizeNewUser(nu user.NewUser) user.NewUser {
	nu.Name = strings.TrimSpace(nu.Name)
	nu.Surname = strings.TrimSpace(nu.Surname)
	nu.Email = strings.ToLower(strings.TrimSpace(nu.Email))
	nu.IDNumber = strings.TrimSpace(nu.IDNumber)
	return nu
}

// provisionUser creates an account without a password after the duplicate checks
func provisionUser(ctx context.Context, users userStore, nu user.NewUser) (*user.User, error) {
	nu = normalizeNewUser(nu)
	if nu.Name == "" || nu.Surname == "" || nu.Email == "" || nu.Kind == "" {
		return nil, errMissingFields
	}
	if _, err := mail.ParseAddress(nu.Email); err != nil {
		return nil, fmt.Errorf("invalid email address %q", nu.Email)
	}
	if _, err := user.ParseKind(string(nu.Kind)); err != nil {
		return nil, err
	}

	exists, err := users.ExistsByEmail(ctx, nu.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, user.ErrDuplicateEmail
	}

	if nu.IDNumber != "" {
		exists, err := users.ExistsByIDNumber(ctx, nu.IDNumber)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, user.ErrDuplicateIDNumber
		}
	}

	return users.Create(ctx, nu)
}

var amountPattern = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

// parseAmount checks amount fits numeric(10,2) and formats it with two decimals
func parseAmount(amount string) (string, error) {
	amount = strings.TrimSpace(amount)
	if !amountPattern.MatchString(amount) {
		return "", fmt.Errorf("invalid amount %q", amount)
	}
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return strconv.FormatFloat(value, 'f', 2, 64), nil
}
