package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/seeran-grades/seeran-backend/cmd/seeranctl/ui"
	"github.com/seeran-grades/seeran-backend/internal/balance"
	"github.com/seeran-grades/seeran-backend/internal/config"
	"github.com/seeran-grades/seeran-backend/internal/database"
	"github.com/seeran-grades/seeran-backend/internal/emailban"
	"github.com/seeran-grades/seeran-backend/internal/user"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "seeranctl",
		Short:         "Operator tools for the Seeran Grades backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		RunE:  runMigrate,
	}

	createUserCmd := &cobra.Command{
		Use:   "create-user",
		Short: "Provision an account that the user activates by one-time code",
		RunE:  runCreateUser,
	}
	// Missing flags are asked for interactively
	createUserCmd.Flags().String("name", "", "First name")
	createUserCmd.Flags().String("surname", "", "Surname")
	createUserCmd.Flags().String("email", "", "Email address")
	createUserCmd.Flags().String("id-number", "", "ID number (optional)")
	createUserCmd.Flags().String("role", "", "Account type (principal, admin, parent, student, founder)")
	createUserCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	setBalanceCmd := &cobra.Command{
		Use:   "set-balance",
		Short: "Set the outstanding balance of a user",
		RunE:  runSetBalance,
	}
	setBalanceCmd.Flags().String("email", "", "Email of the user")
	setBalanceCmd.Flags().String("amount", "", "Amount, e.g. 1250.00")
	_ = setBalanceCmd.MarkFlagRequired("email")
	_ = setBalanceCmd.MarkFlagRequired("amount")

	banEmailCmd := &cobra.Command{
		Use:   "ban-email",
		Short: "Record an email ban the owner can appeal",
		RunE:  runBanEmail,
	}
	banEmailCmd.Flags().String("email", "", "Banned email address")
	banEmailCmd.Flags().String("reason", "", "Reason shown to the owner")
	_ = banEmailCmd.MarkFlagRequired("email")
	_ = banEmailCmd.MarkFlagRequired("reason")

	rootCmd.AddCommand(migrateCmd, createUserCmd, setBalanceCmd, banEmailCmd)

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*bun.DB, error) {
	cfg := config.LoadDatabase()
	db, err := database.Open(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.CreateSchema(ctx, db); err != nil {
		return err
	}

	ui.PrintSuccess("Schema is up to date")
	return nil
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	surname, _ := cmd.Flags().GetString("surname")
	email, _ := cmd.Flags().GetString("email")
	idNumber, _ := cmd.Flags().GetString("id-number")
	role, _ := cmd.Flags().GetString("role")
	yes, _ := cmd.Flags().GetBool("yes")

	nu := user.NewUser{
		Name:     name,
		Surname:  surname,
		Email:    email,
		IDNumber: idNumber,
	}
	if role != "" {
		kind, err := user.ParseKind(role)
		if err != nil {
			return err
		}
		nu.Kind = kind
	}

	// If all required flags are provided, run non-interactively
	interactive := nu.Name == "" || nu.Surname == "" || nu.Email == "" || nu.Kind == ""
	if interactive {
		if err := ui.RunUserForm(&nu); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
	}

	if interactive && !yes {
		ok, err := ui.ConfirmUser(normalizeNewUser(nu))
		if err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := provisionUser(ctx, user.NewRepository(db), nu)
	if err != nil {
		return err
	}

	ui.PrintUserCreated(created)
	return nil
}

func runSetBalance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	email, _ := cmd.Flags().GetString("email")
	rawAmount, _ := cmd.Flags().GetString("amount")

	amount, err := parseAmount(rawAmount)
	if err != nil {
		return err
	}

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := user.NewRepository(db).GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return fmt.Errorf("no user with email %q", email)
		}
		return err
	}

	if err := balance.NewRepository(db).Set(ctx, u.ID, amount); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Balance of %s set to %s", u.Email, amount))
	return nil
}

func runBanEmail(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	email, _ := cmd.Flags().GetString("email")
	reason, _ := cmd.Flags().GetString("reason")

	email = strings.ToLower(strings.TrimSpace(email))
	reason = strings.TrimSpace(reason)
	if email == "" || reason == "" {
		return errors.New("email and reason are required")
	}

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	ban, err := emailban.NewBunRepository(db).Create(ctx, email, reason)
	if err != nil {
		return err
	}

	ui.PrintBan(ban)
	return nil
}
