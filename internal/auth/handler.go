package auth

import (
	"errors"
	"net/http"

	"github.com/seeran-grades/seeran-backend/internal/httputil"
	"github.com/seeran-grades/seeran-backend/internal/logging"
	"github.com/seeran-grades/seeran-backend/internal/metrics"
	"github.com/seeran-grades/seeran-backend/internal/otp"
	"github.com/seeran-grades/seeran-backend/internal/ratelimit"
	"github.com/seeran-grades/seeran-backend/internal/user"
)

// Rate limit purposes
const (
	purposeLogin       = "login"
	purposeSignIn      = "signin"
	purposeResendOTP   = "resend-otp"
	purposeVerifyOTP   = "verify-otp"
	purposeSetPassword = "set-password"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service     *Service
	activation  *Activation
	cookies     *CookieManager
	rateLimiter *ratelimit.Limiter
	metrics     *metrics.Metrics
}

func NewHandler(service *Service, activation *Activation, cookies *CookieManager, rateLimiter *ratelimit.Limiter, m *metrics.Metrics) *Handler {
	return &Handler{
		service:     service,
		activation:  activation,
		cookies:     cookies,
		rateLimiter: rateLimiter,
		metrics:     m,
	}
}

// LoginRequest represents the login request body.
// Email also accepts an ID number.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login; the tokens travel in cookies
type LoginResponse struct {
	Message string    `json:"message"`
	Role    user.Role `json:"role"`
}

// SignInRequest starts account activation
type SignInRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

// SignInResponse confirms the activation code was sent
type SignInResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// EmailRequest carries only an email address
type EmailRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest carries the emailed activation code
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// SetPasswordRequest sets the first password of an account
type SetPasswordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
}

// CredentialsResponse is the name pair of the logged in user
type CredentialsResponse struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// AccountStatusResponse describes an account that still needs activation
type AccountStatusResponse struct {
	Message string `json:"message"`
	State   string `json:"state" example:"otp_sent"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest replaces the password of the logged in user
type ChangePasswordRequest struct {
	PreviousPassword string `json:"previous_password"`
	NewPassword      string `json:"new_password"`
	ConfirmPassword  string `json:"confirm_password"`
}

func respondError(w http.ResponseWriter, message string, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}

// allow applies the per-IP limit for purpose and writes 429 when it is used up.
// Limiter failures are logged and let the request through.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := httputil.ClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		h.metrics.RateLimited.WithLabelValues(purpose).Inc()
		respondError(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return false
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return true
}

// Login authenticates a user and sets the session cookies
// @Summary      User login
// @Description  Authenticate with email (or ID number) and password. Access and refresh tokens are set as cookies.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      404 {object} httputil.ErrorResponse "User does not exist"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(w, r, purposeLogin) {
		return
	}

	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: invalid credentials")
			respondError(w, "Invalid credentials", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("login failed: user vanished")
			respondError(w, "User does not exist.", httputil.CodeUserNotFound, http.StatusNotFound)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			respondError(w, "Error logging in", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in successfully", "role", tokens.Role)

	h.cookies.SetAuthCookies(w, tokens.AccessToken, tokens.RefreshToken)
	httputil.RespondJSON(w, LoginResponse{Message: "Login successful", Role: tokens.Role}, http.StatusOK)
}

// SignIn starts account activation by emailing a one-time code
// @Summary      Request account activation
// @Description  Match name, surname and email against an existing account and email a one-time code.
// @Tags         activation
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "Account details"
// @Success      200 {object} SignInResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields or invalid credentials"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Email not sent"
// @Router       /auth/signin [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(w, r, purposeSignIn) {
		return
	}

	var req SignInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if _, err := h.activation.SignIn(r.Context(), req.Name, req.Surname, req.Email); err != nil {
		h.respondActivationError(w, logger, err, "Failed to send OTP via email")
		return
	}

	logger.Info("activation code sent")
	httputil.RespondJSON(w, SignInResponse{
		Message: "OTP created for user and sent via email",
		Email:   normalizeEmail(req.Email),
	}, http.StatusOK)
}

// ResendOTP replaces the pending activation code
// @Summary      Resend activation code
// @Description  Email a new one-time code, replacing any pending one.
// @Tags         activation
// @Accept       json
// @Produce      json
// @Param        request body EmailRequest true "Account email"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Unknown email"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Email not sent"
// @Router       /auth/resend-otp [post]
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(w, r, purposeResendOTP) {
		return
	}

	var req EmailRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if _, err := h.activation.ResendOTP(r.Context(), req.Email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, "User with this email does not exist.", httputil.CodeUserNotFound, http.StatusBadRequest)
			return
		}
		h.respondActivationError(w, logger, err, "Failed to send OTP via email")
		return
	}

	logger.Info("activation code resent")
	httputil.RespondMessage(w, "A new OTP has been sent to your email address", http.StatusOK)
}

// VerifyOTP checks the activation code and hands out the password set proof
// @Summary      Verify activation code
// @Description  Consume the emailed code. On success a short-lived setpasswordotp cookie authorizes setting the password.
// @Tags         activation
// @Accept       json
// @Produce      json
// @Param        request body VerifyOTPRequest true "Email and code"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing, expired or incorrect code"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /auth/verify-otp [post]
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(w, r, purposeVerifyOTP) {
		return
	}

	var req VerifyOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	proof, err := h.activation.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		if errors.Is(err, ErrFieldsRequired) {
			respondError(w, "Email and OTP are required.", httputil.CodeFieldsRequired, http.StatusBadRequest)
			return
		}
		h.respondActivationError(w, logger, err, "Error verifying OTP")
		return
	}

	logger.Info("activation code verified")
	h.cookies.SetProofCookie(w, proof)
	httputil.RespondMessage(w, "OTP verified successfully", http.StatusOK)
}

// SetPassword stores the first password using the proof cookie
// @Summary      Set account password
// @Description  Requires the setpasswordotp cookie issued by verify-otp.
// @Tags         activation
// @Accept       json
// @Produce      json
// @Param        request body SetPasswordRequest true "Email and new password"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing proof, mismatch, expired or incorrect code"
// @Failure      404 {object} httputil.ErrorResponse "User does not exist"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/set-password [post]
func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(w, r, purposeSetPassword) {
		return
	}

	var req SetPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})
	proof := ProofToken(cookieValue(r, ProofCookie))

	err := h.activation.SetPassword(r.Context(), proof, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrProofRequired):
			respondError(w, "OTP verification required. Please verify your OTP first", httputil.CodeOTPMissing, http.StatusBadRequest)
		case errors.Is(err, ErrFieldsRequired):
			respondError(w, "Email, new password, and confirm password are required.", httputil.CodeFieldsRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordMismatch):
			respondError(w, "Passwords do not match", httputil.CodePasswordMismatch, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			respondError(w, "Password is too short", httputil.CodePasswordTooShort, http.StatusBadRequest)
		case errors.Is(err, otp.ErrExpired):
			respondError(w, "OTP expired. Please reload the page to request a new OTP", httputil.CodeOTPExpired, http.StatusBadRequest)
		case errors.Is(err, user.ErrNotFound):
			respondError(w, "User does not exist.", httputil.CodeUserNotFound, http.StatusNotFound)
		default:
			h.respondActivationError(w, logger, err, "Error setting password")
		}
		return
	}

	logger.Info("account activated")
	h.cookies.ClearProofCookie(w)
	httputil.RespondMessage(w, "Password set successfully", http.StatusOK)
}

func (h *Handler) respondActivationError(w http.ResponseWriter, logger *logging.Logger, err error, fallback string) {
	var deliveryErr *EmailDeliveryError
	switch {
	case errors.Is(err, ErrFieldsRequired):
		respondError(w, "All fields are required", httputil.CodeFieldsRequired, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidCredentials):
		respondError(w, "Invalid credentials", httputil.CodeInvalidCredentials, http.StatusBadRequest)
	case errors.Is(err, otp.ErrExpired):
		respondError(w, "OTP expired. Please generate a new one", httputil.CodeOTPExpired, http.StatusBadRequest)
	case errors.Is(err, otp.ErrMismatch):
		respondError(w, "Incorrect OTP. Please try again.", httputil.CodeOTPIncorrect, http.StatusBadRequest)
	case errors.Is(err, otp.ErrTooManyAttempts):
		respondError(w, "Too many incorrect attempts. Please request a new OTP", httputil.CodeOTPAttemptsExceeded, http.StatusBadRequest)
	case errors.As(err, &deliveryErr):
		logger.Error("failed to send activation email", "error", deliveryErr.Err)
		respondError(w, deliveryErr.Error(), httputil.CodeEmailNotSent, http.StatusInternalServerError)
	default:
		logger.Error("activation step failed", "error", err.Error())
		respondError(w, fallback, httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// Credentials returns the name of the user the access token cookie belongs to
// @Summary      Current user credentials
// @Tags         auth
// @Produce      json
// @Success      200 {object} CredentialsResponse
// @Failure      406 {object} httputil.ErrorResponse "Invalid access token"
// @Router       /auth/credentials [get]
func (h *Handler) Credentials(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Credentials(r.Context(), cookieValue(r, AccessTokenCookie))
	if err != nil {
		respondError(w, "Invalid access token", httputil.CodeInvalidToken, http.StatusNotAcceptable)
		return
	}

	httputil.RespondJSON(w, CredentialsResponse{Name: u.Name, Surname: u.Surname}, http.StatusOK)
}

// AccountStatus reports whether an account still needs activation
// @Summary      Account activation status
// @Tags         activation
// @Accept       json
// @Produce      json
// @Param        request body EmailRequest true "Account email"
// @Success      200 {object} AccountStatusResponse "Account not activated"
// @Failure      400 {object} httputil.ErrorResponse "Unknown email"
// @Failure      403 {object} httputil.ErrorResponse "Account already activated"
// @Router       /auth/account-status [post]
func (h *Handler) AccountStatus(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req EmailRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	err := h.service.AccountStatus(r.Context(), req.Email)
	if err == nil {
		state, stateErr := h.activation.State(r.Context(), req.Email)
		if stateErr != nil {
			logger.Error("account state lookup failed", "error", stateErr.Error())
			respondError(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
		httputil.RespondJSON(w, AccountStatusResponse{Message: "Account not activated", State: state.String()}, http.StatusOK)
		return
	}

	switch {
	case errors.Is(err, ErrFieldsRequired):
		respondError(w, "Email is required", httputil.CodeFieldsRequired, http.StatusBadRequest)
	case errors.Is(err, user.ErrNotFound):
		respondError(w, "User with the provided email does not exist.", httputil.CodeUserNotFound, http.StatusBadRequest)
	case errors.Is(err, ErrAccountActivated):
		respondError(w, "Account already activated", httputil.CodeAccountActivated, http.StatusForbidden)
	default:
		logger.Error("account status failed", "error", err.Error())
		respondError(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// Refresh issues a new access token cookie from the refresh token
// @Summary      Refresh access token
// @Description  Uses the refresh_token cookie (or body) to set a new access_token cookie. The refresh token is not rotated.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest false "Refresh token, when not sent as a cookie"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Refresh token required"
// @Failure      401 {object} httputil.ErrorResponse "Invalid or expired refresh token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	refreshToken := cookieValue(r, RefreshTokenCookie)
	if refreshToken == "" {
		var req RefreshRequest
		if err := httputil.DecodeJSON(r, &req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		respondError(w, "refresh token required", httputil.CodeRefreshTokenRequired, http.StatusBadRequest)
		return
	}

	tokens, err := h.service.RefreshAccessToken(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			respondError(w, "invalid or expired refresh token", httputil.CodeInvalidRefreshToken, http.StatusUnauthorized)
			return
		}
		logger.Error("token refresh failed", "error", err.Error())
		respondError(w, "failed to refresh token", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.cookies.SetAccessCookie(w, tokens.AccessToken)
	httputil.RespondJSON(w, LoginResponse{Message: "Token refreshed", Role: tokens.Role}, http.StatusOK)
}

// Logout clears the session cookies and blacklists the refresh token
// @Summary      User logout
// @Description  Always succeeds. Both session cookies are deleted.
// @Tags         auth
// @Produce      json
// @Success      200 {object} httputil.MessageResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := cookieValue(r, RefreshTokenCookie)
	if refreshToken == "" {
		var req RefreshRequest
		if err := httputil.DecodeJSON(r, &req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	h.service.Logout(r.Context(), refreshToken)

	h.cookies.ClearAuthCookies(w)
	httputil.RespondMessage(w, "Logout successful", http.StatusOK)
}

// ChangePassword replaces the password of the logged in user
// @Summary      Change password
// @Description  Verifies the previous password, stores the new one, revokes refresh tokens and clears session cookies.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "Passwords"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Incorrect or mismatched password"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/change-password [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"user_id": userID})

	err := h.service.ChangePassword(r.Context(), userID, req.PreviousPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired):
			respondError(w, "All fields are required", httputil.CodeFieldsRequired, http.StatusBadRequest)
		case errors.Is(err, ErrIncorrectPassword):
			respondError(w, "Previous password is incorrect", httputil.CodeIncorrectPassword, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordMismatch):
			respondError(w, "New password and confirm password do not match", httputil.CodePasswordMismatch, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			respondError(w, "Password is too short", httputil.CodePasswordTooShort, http.StatusBadRequest)
		case errors.Is(err, user.ErrNotFound):
			respondError(w, "User does not exist.", httputil.CodeUserNotFound, http.StatusNotFound)
		default:
			logger.Error("password change failed", "error", err.Error())
			respondError(w, "failed to change password", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password changed")
	h.cookies.ClearAuthCookies(w)
	httputil.RespondMessage(w, "Password changed successfully", http.StatusOK)
}
