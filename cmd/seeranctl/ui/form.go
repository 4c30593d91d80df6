package ui

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/seeran-grades/seeran-backend/internal/user"
)

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validEmail(s string) error {
	if err := required("email")(s); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// RunUserForm asks for the account fields that nu is still missing.
// Fields already set from flags are left alone.
func RunUserForm(nu *user.NewUser) error {
	var fields []huh.Field

	if nu.Name == "" {
		fields = append(fields, huh.NewInput().
			Title("Name").
			Value(&nu.Name).
			Validate(required("name")))
	}
	if nu.Surname == "" {
		fields = append(fields, huh.NewInput().
			Title("Surname").
			Value(&nu.Surname).
			Validate(required("surname")))
	}
	if nu.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("jane@seeran-grades.com").
			Value(&nu.Email).
			Validate(validEmail))
	}
	if nu.IDNumber == "" {
		fields = append(fields, huh.NewInput().
			Title("ID number").
			Description("Optional, lets the user log in with it").
			Value(&nu.IDNumber))
	}
	if nu.Kind == "" {
		options := make([]huh.Option[user.Kind], 0, len(user.Kinds))
		for _, k := range user.Kinds {
			options = append(options, huh.NewOption(string(k), k))
		}
		fields = append(fields, huh.NewSelect[user.Kind]().
			Title("Account type").
			Options(options...).
			Value(&nu.Kind))
	}

	if len(fields) == 0 {
		return nil
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(huh.ThemeCatppuccin()).
		Run()
}

// ConfirmUser asks the operator to confirm the account before it is created.
func ConfirmUser(nu user.NewUser) (bool, error) {
	PrintUserSummary(nu)

	var ok bool
	err := huh.NewConfirm().
		Title("Create this account?").
		Value(&ok).
		Run()
	return ok, err
}
