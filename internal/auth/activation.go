package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/seeran-grades/seeran-backend/internal/logging"
	"github.com/seeran-grades/seeran-backend/internal/metrics"
	"github.com/seeran-grades/seeran-backend/internal/otp"
	"github.com/seeran-grades/seeran-backend/internal/user"
)

// State is a step of first-time account activation
type State int

const (
	StateUnverified State = iota
	StateOTPSent
	StateOTPVerified
	StatePasswordSet
)

func (s State) String() string {
	switch s {
	case StateOTPSent:
		return "otp_sent"
	case StateOTPVerified:
		return "otp_verified"
	case StatePasswordSet:
		return "password_set"
	default:
		return "unverified"
	}
}

// ProofToken is the second-stage code returned by a successful OTP
// verification. It authorizes exactly one password set.
type ProofToken string

var ErrProofRequired = errors.New("password set proof is required")

// EmailDeliveryError reports that the email provider rejected a message.
// The code stays stored so the user can ask for a resend.
type EmailDeliveryError struct {
	Err error
}

func (e *EmailDeliveryError) Error() string {
	return fmt.Sprintf("Email not sent: %v", e.Err)
}

func (e *EmailDeliveryError) Unwrap() error {
	return e.Err
}

// Activation runs the activation steps. Each step checks the proof left by the
// previous one in the OTP store, so the flow holds no state of its own.
type Activation struct {
	users            UserRepository
	otps             *otp.Store
	mailer           EmailSender
	metrics          *metrics.Metrics
	logger           *logging.Logger
	passwordMinChars int
}

func NewActivation(
	users UserRepository,
	otps *otp.Store,
	mailer EmailSender,
	m *metrics.Metrics,
	logger *logging.Logger,
	passwordMinChars int,
) *Activation {
	return &Activation{
		users:            users,
		otps:             otps,
		mailer:           mailer,
		metrics:          m,
		logger:           logger,
		passwordMinChars: passwordMinChars,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn starts activation for the user matching name, surname and email exactly.
// A mismatch on any of the three yields ErrInvalidCredentials.
func (a *Activation) SignIn(ctx context.Context, name, surname, email string) (State, error) {
	name, surname, email = strings.TrimSpace(name), strings.TrimSpace(surname), normalizeEmail(email)
	if name == "" || surname == "" || email == "" {
		return StateUnverified, ErrFieldsRequired
	}

	if _, err := a.users.GetByNameSurnameEmail(ctx, name, surname, email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return StateUnverified, ErrInvalidCredentials
		}
		return StateUnverified, fmt.Errorf("failed to get user: %w", err)
	}

	return a.sendActivationCode(ctx, email)
}

// ResendOTP replaces any pending activation code for email with a new one
func (a *Activation) ResendOTP(ctx context.Context, email string) (State, error) {
	email = normalizeEmail(email)
	if email == "" {
		return StateUnverified, ErrFieldsRequired
	}

	if _, err := a.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return StateUnverified, user.ErrNotFound
		}
		return StateUnverified, fmt.Errorf("failed to get user: %w", err)
	}

	return a.sendActivationCode(ctx, email)
}

func (a *Activation) sendActivationCode(ctx context.Context, email string) (State, error) {
	code, err := a.otps.Issue(ctx, otp.ActivationKey(email))
	if err != nil {
		return StateUnverified, fmt.Errorf("failed to issue otp: %w", err)
	}
	a.metrics.OTPIssued.WithLabelValues("activation").Inc()

	if err := a.mailer.SendOTPEmail(ctx, email, code); err != nil {
		a.metrics.EmailsSent.WithLabelValues("failure").Inc()
		return StateOTPSent, &EmailDeliveryError{Err: err}
	}
	a.metrics.EmailsSent.WithLabelValues("success").Inc()

	return StateOTPSent, nil
}

// VerifyOTP consumes the activation code and returns the proof for SetPassword.
// A wrong code leaves the pending code in place.
func (a *Activation) VerifyOTP(ctx context.Context, email, code string) (ProofToken, error) {
	email, code = normalizeEmail(email), strings.TrimSpace(code)
	if email == "" || code == "" {
		return "", ErrFieldsRequired
	}

	if err := a.otps.Consume(ctx, otp.ActivationKey(email), code); err != nil {
		a.recordVerification("activation", err)
		return "", err
	}
	a.recordVerification("activation", nil)

	proof, err := a.otps.Issue(ctx, otp.ProofKey(email))
	if err != nil {
		return "", fmt.Errorf("failed to issue proof: %w", err)
	}
	a.metrics.OTPIssued.WithLabelValues("proof").Inc()

	return ProofToken(proof), nil
}

// SetPassword stores the first password of the account.
// Field validation happens before the proof or the user is looked at.
func (a *Activation) SetPassword(ctx context.Context, proof ProofToken, email, password, confirm string) error {
	email = normalizeEmail(email)
	if proof == "" {
		return ErrProofRequired
	}
	if email == "" || password == "" || confirm == "" {
		return ErrFieldsRequired
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) < a.passwordMinChars {
		return ErrPasswordTooShort
	}

	// The proof is claimed before the write so concurrent requests cannot both set a password
	if err := a.otps.Consume(ctx, otp.ProofKey(email), string(proof)); err != nil {
		a.recordVerification("proof", err)
		return err
	}
	a.recordVerification("proof", nil)

	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.users.UpdatePassword(ctx, u.ID, passwordHash); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		a.logger.Warn("password set proof spent without storing a password", "email", email)
		return fmt.Errorf("failed to set password: %w", err)
	}

	return nil
}

// State reports how far activation has progressed for email
func (a *Activation) State(ctx context.Context, email string) (State, error) {
	email = normalizeEmail(email)

	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return StateUnverified, err
	}
	if u.HasUsablePassword() {
		return StatePasswordSet, nil
	}

	if ok, err := a.otps.Exists(ctx, otp.ProofKey(email)); err != nil {
		return StateUnverified, err
	} else if ok {
		return StateOTPVerified, nil
	}

	if ok, err := a.otps.Exists(ctx, otp.ActivationKey(email)); err != nil {
		return StateUnverified, err
	} else if ok {
		return StateOTPSent, nil
	}

	return StateUnverified, nil
}

func (a *Activation) recordVerification(purpose string, err error) {
	result := "success"
	switch {
	case errors.Is(err, otp.ErrExpired):
		result = "expired"
	case errors.Is(err, otp.ErrMismatch):
		result = "mismatch"
	case errors.Is(err, otp.ErrTooManyAttempts):
		result = "attempts_exceeded"
	case err != nil:
		result = "error"
	}
	a.metrics.OTPVerified.WithLabelValues(purpose, result).Inc()
}
