package httputil

// Machine-readable error codes returned alongside error messages
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeNotFound           = "NOT_FOUND"

	// Login and session
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeMissingAuth          = "MISSING_AUTH"
	CodeInvalidAuthHeader    = "INVALID_AUTH_HEADER"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeInvalidTokenUserID   = "INVALID_TOKEN_USER_ID"
	CodeRefreshTokenRequired = "REFRESH_TOKEN_REQUIRED"
	CodeInvalidRefreshToken  = "INVALID_REFRESH_TOKEN"
	CodeForbidden            = "FORBIDDEN"
	CodeIncorrectPassword    = "INCORRECT_PASSWORD"
	CodePasswordMismatch     = "PASSWORD_MISMATCH"
	CodePasswordTooShort     = "PASSWORD_TOO_SHORT"
	CodeAccountActivated     = "ACCOUNT_ALREADY_ACTIVATED"

	// Activation
	CodeFieldsRequired      = "FIELDS_REQUIRED"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodeOTPIncorrect        = "OTP_INCORRECT"
	CodeOTPMissing          = "OTP_MISSING"
	CodeOTPAttemptsExceeded = "OTP_ATTEMPTS_EXCEEDED"
	CodeEmailNotSent        = "EMAIL_NOT_SENT"

	// Email bans
	CodeInvalidBanID    = "INVALID_EMAIL_BAN_ID"
	CodeAlreadyAppealed = "ALREADY_APPEALED"
	CodeAppealRequired  = "APPEAL_REQUIRED"
)
