package ui

import (
	"fmt"

	"github.com/seeran-grades/seeran-backend/internal/emailban"
	"github.com/seeran-grades/seeran-backend/internal/user"
)

func row(label, value string) {
	if value == "" {
		value = subtleStyle.Render("-")
	}
	fmt.Printf("  %s %s\n", labelStyle.Render(label), value)
}

// PrintUserSummary prints the account about to be created.
func PrintUserSummary(nu user.NewUser) {
	fmt.Println(titleStyle.Render("New account"))
	row("Name", nu.Name)
	row("Surname", nu.Surname)
	row("Email", nu.Email)
	row("ID number", nu.IDNumber)
	row("Type", string(nu.Kind))
	fmt.Println()
}

// PrintUserCreated prints the created account with activation instructions.
func PrintUserCreated(u *user.User) {
	fmt.Println(successStyle.Render("Account created"))
	row("ID", u.ID.String())
	row("Email", u.Email)
	row("Role", u.Role().String())
	fmt.Println()
	fmt.Println(subtleStyle.Render("The user activates the account with a one-time code sent to this email."))
}

// PrintBan prints a newly recorded email ban.
func PrintBan(b *emailban.Ban) {
	fmt.Println(successStyle.Render("Email ban recorded"))
	row("Ban ID", b.BanID.String())
	row("Email", b.Email)
	row("Reason", b.Reason)
	row("Status", string(b.Status))
}

// PrintSuccess prints a one-line success message.
func PrintSuccess(msg string) {
	fmt.Println(successStyle.Render(msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Println(errorStyle.Render("Error: " + msg))
}
