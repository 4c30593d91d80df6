package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/seeran-grades/seeran-backend/internal/httputil"
)

func jsonRequest(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httputil.MessageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp.Message
}

func TestHandlerLoginSetsCookies(t *testing.T) {
	env := newTestEnv(t, activatedUser(t, "s3cret-pass"))

	rec := httptest.NewRecorder()
	env.handler.Login(rec, jsonRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "jane@x.com", Password: "s3cret-pass"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Login successful" || resp.Role != "student" {
		t.Fatalf("unexpected response %+v", resp)
	}

	cookies := cookiesByName(rec)
	access, refresh := cookies[AccessTokenCookie], cookies[RefreshTokenCookie]
	if access == nil || refresh == nil {
		t.Fatalf("expected session cookies, got %v", cookies)
	}
	if access.MaxAge != 300 || refresh.MaxAge != 2592000 {
		t.Fatalf("unexpected max-ages %d %d", access.MaxAge, refresh.MaxAge)
	}
	assertSessionAttributes(t, access)
	assertSessionAttributes(t, refresh)
}

func TestHandlerLoginFailures(t *testing.T) {
	env := newTestEnv(t, activatedUser(t, "s3cret-pass"))

	rec := httptest.NewRecorder()
	env.handler.Login(rec, jsonRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "jane@x.com", Password: "nope"}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "Invalid credentials" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set cookies")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{not json"))
	env.handler.Login(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed body, got %d", rec.Code)
	}
}

func TestHandlerLoginRateLimited(t *testing.T) {
	env := newTestEnv(t, activatedUser(t, "s3cret-pass"))

	for range 20 {
		rec := httptest.NewRecorder()
		env.handler.Login(rec, jsonRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "jane@x.com", Password: "nope"}))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 before the limit, got %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	env.handler.Login(rec, jsonRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "jane@x.com", Password: "s3cret-pass"}))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != httputil.CodeTooManyRequests {
		t.Fatalf("unexpected code %q", resp.Code)
	}
}

func TestHandlerLogoutAlwaysSucceeds(t *testing.T) {
	env := newTestEnv(t, activatedUser(t, "s3cret-pass"))
	tokens, err := env.service.Login(context.Background(), "jane@x.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	requests := map[string]*http.Request{
		"no cookies": jsonRequest(t, http.MethodPost, "/auth/logout", nil),
		"garbage":    jsonRequest(t, http.MethodPost, "/auth/logout", nil, &http.Cookie{Name: RefreshTokenCookie, Value: "garbage"}),
		"valid":      jsonRequest(t, http.MethodPost, "/auth/logout", nil, &http.Cookie{Name: RefreshTokenCookie, Value: tokens.RefreshToken}),
	}
	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.handler.Logout(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if msg := decodeMessage(t, rec); msg != "Logout successful" {
				t.Fatalf("unexpected message %q", msg)
			}
			cookies := cookiesByName(rec)
			for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
				if c := cookies[name]; c == nil || c.MaxAge >= 0 {
					t.Fatalf("expected %s to be cleared, got %+v", name, c)
				}
			}
		})
	}

	if _, err := env.service.RefreshAccessToken(context.Background(), tokens.RefreshToken); err == nil {
		t.Fatalf("expected refresh token to be revoked by logout")
	}
}

func TestHandlerActivationFlow(t *testing.T) {
	env := newTestEnv(t, janeDoe())

	rec := httptest.NewRecorder()
	env.handler.SignIn(rec, jsonRequest(t, http.MethodPost, "/auth/signin", SignInRequest{Name: "Jane", Surname: "Doe", Email: "jane@x.com"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("signin: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var signIn SignInResponse
	_ = json.NewDecoder(rec.Body).Decode(&signIn)
	if signIn.Email != "jane@x.com" || signIn.Message != "OTP created for user and sent via email" {
		t.Fatalf("unexpected signin response %+v", signIn)
	}

	rec = httptest.NewRecorder()
	env.handler.VerifyOTP(rec, jsonRequest(t, http.MethodPost, "/auth/verify-otp", VerifyOTPRequest{Email: "jane@x.com", OTP: env.mailer.lastCode("jane@x.com")}))
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	proof := cookiesByName(rec)[ProofCookie]
	if proof == nil || proof.MaxAge != 300 {
		t.Fatalf("expected setpasswordotp cookie, got %+v", proof)
	}
	assertSessionAttributes(t, proof)

	body := SetPasswordRequest{Email: "jane@x.com", Password: "long-enough", ConfirmPassword: "long-enough"}

	rec = httptest.NewRecorder()
	env.handler.SetPassword(rec, jsonRequest(t, http.MethodPost, "/auth/set-password", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("set-password without proof: expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "OTP verification required. Please verify your OTP first" {
		t.Fatalf("unexpected error %q", resp.Error)
	}

	rec = httptest.NewRecorder()
	env.handler.SetPassword(rec, jsonRequest(t, http.MethodPost, "/auth/set-password", body, &http.Cookie{Name: ProofCookie, Value: proof.Value}))
	if rec.Code != http.StatusOK {
		t.Fatalf("set-password: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if c := cookiesByName(rec)[ProofCookie]; c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected proof cookie to be cleared, got %+v", c)
	}
	if env.users.updatePasswordCalls != 1 {
		t.Fatalf("expected exactly one password update, got %d", env.users.updatePasswordCalls)
	}
}

func TestHandlerSignInErrors(t *testing.T) {
	env := newTestEnv(t, janeDoe())

	cases := []struct {
		name   string
		body   SignInRequest
		status int
		msg    string
	}{
		{"missing fields", SignInRequest{Email: "jane@x.com"}, http.StatusBadRequest, "All fields are required"},
		{"no match", SignInRequest{Name: "Jane", Surname: "Smith", Email: "jane@x.com"}, http.StatusBadRequest, "Invalid credentials"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.handler.SignIn(rec, jsonRequest(t, http.MethodPost, "/auth/signin", tc.body))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if resp := decodeError(t, rec); resp.Error != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, resp.Error)
			}
		})
	}

	env.mailer.errFn = func(string) error { return errSESDown }
	rec := httptest.NewRecorder()
	env.handler.SignIn(rec, jsonRequest(t, http.MethodPost, "/auth/signin", SignInRequest{Name: "Jane", Surname: "Doe", Email: "jane@x.com"}))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on delivery failure, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != httputil.CodeEmailNotSent {
		t.Fatalf("unexpected code %q", resp.Code)
	}
}

func TestHandlerVerifyOTPErrors(t *testing.T) {
	env := newTestEnv(t, janeDoe())

	rec := httptest.NewRecorder()
	env.handler.VerifyOTP(rec, jsonRequest(t, http.MethodPost, "/auth/verify-otp", VerifyOTPRequest{Email: "jane@x.com"}))
	if resp := decodeError(t, rec); rec.Code != http.StatusBadRequest || resp.Error != "Email and OTP are required." {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}

	rec = httptest.NewRecorder()
	env.handler.VerifyOTP(rec, jsonRequest(t, http.MethodPost, "/auth/verify-otp", VerifyOTPRequest{Email: "jane@x.com", OTP: "123456"}))
	if resp := decodeError(t, rec); rec.Code != http.StatusBadRequest || resp.Error != "OTP expired. Please generate a new one" {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}
	if _, ok := cookiesByName(rec)[ProofCookie]; ok {
		t.Fatalf("failed verification must not set the proof cookie")
	}
}

func TestHandlerCredentials(t *testing.T) {
	env := newTestEnv(t, activatedUser(t, "s3cret-pass"))
	tokens, _ := env.service.Login(context.Background(), "jane@x.com", "s3cret-pass")

	rec := httptest.NewRecorder()
	env.handler.Credentials(rec, jsonRequest(t, http.MethodGet, "/auth/credentials", nil, &http.Cookie{Name: AccessTokenCookie, Value: tokens.AccessToken}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp CredentialsResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Name != "Jane" || resp.Surname != "Doe" {
		t.Fatalf("unexpected credentials %+v", resp)
	}

	rec = httptest.NewRecorder()
	env.handler.Credentials(rec, jsonRequest(t, http.MethodGet, "/auth/credentials", nil))
	if rec.Code != http.StatusNotAcceptable {
		t.Fatalf("expected 406 without a cookie, got %d", rec.Code)
	}
}

func TestHandlerAccountStatus(t *testing.T) {
	fresh := janeDoe()
	fresh.Email = "new@x.com"
	env := newTestEnv(t, activatedUser(t, "s3cret-pass"), fresh)

	cases := []struct {
		email  string
		status int
	}{
		{"jane@x.com", http.StatusForbidden},
		{"new@x.com", http.StatusOK},
		{"ghost@x.com", http.StatusBadRequest},
		{"", http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		env.handler.AccountStatus(rec, jsonRequest(t, http.MethodPost, "/auth/account-status", EmailRequest{Email: tc.email}))
		if rec.Code != tc.status {
			t.Fatalf("%q: expected %d, got %d", tc.email, tc.status, rec.Code)
		}
	}
}

func TestHandlerAccountStatusReportsState(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, janeDoe())

	state := func() AccountStatusResponse {
		t.Helper()
		rec := httptest.NewRecorder()
		env.handler.AccountStatus(rec, jsonRequest(t, http.MethodPost, "/auth/account-status", EmailRequest{Email: "Jane@x.com"}))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp AccountStatusResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp
	}

	if resp := state(); resp.Message != "Account not activated" || resp.State != "unverified" {
		t.Fatalf("unexpected status %+v", resp)
	}

	_, _ = env.activation.SignIn(ctx, "Jane", "Doe", "jane@x.com")
	if resp := state(); resp.State != "otp_sent" {
		t.Fatalf("expected otp_sent, got %q", resp.State)
	}

	_, _ = env.activation.VerifyOTP(ctx, "jane@x.com", env.mailer.lastCode("jane@x.com"))
	if resp := state(); resp.State != "otp_verified" {
		t.Fatalf("expected otp_verified, got %q", resp.State)
	}
}

func TestHandlerSetPasswordRateLimited(t *testing.T) {
	env := newTestEnv(t, janeDoe())
	body := SetPasswordRequest{Email: "jane@x.com", Password: "long-enough", ConfirmPassword: "long-enough"}
	proof := &http.Cookie{Name: ProofCookie, Value: "000000"}

	for range 3 {
		rec := httptest.NewRecorder()
		env.handler.SetPassword(rec, jsonRequest(t, http.MethodPost, "/auth/set-password", body, proof))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 before the limit, got %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	env.handler.SetPassword(rec, jsonRequest(t, http.MethodPost, "/auth/set-password", body, proof))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != httputil.CodeTooManyRequests {
		t.Fatalf("unexpected code %q", resp.Code)
	}
	if env.users.updatePasswordCalls != 0 {
		t.Fatalf("limited requests must not persist, got %d updates", env.users.updatePasswordCalls)
	}
}

func TestHandlerVerifyOTPAttemptsExceeded(t *testing.T) {
	env := newTestEnv(t, janeDoe())
	_, _ = env.activation.SignIn(context.Background(), "Jane", "Doe", "jane@x.com")

	wrong := "000000"
	if env.mailer.lastCode("jane@x.com") == wrong {
		wrong = "111111"
	}

	var rec *httptest.ResponseRecorder
	for range testMaxAttempts {
		rec = httptest.NewRecorder()
		env.handler.VerifyOTP(rec, jsonRequest(t, http.MethodPost, "/auth/verify-otp", VerifyOTPRequest{Email: "jane@x.com", OTP: wrong}))
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != httputil.CodeOTPAttemptsExceeded {
		t.Fatalf("expected %s, got %q", httputil.CodeOTPAttemptsExceeded, resp.Code)
	}
}

func TestHandlerRefresh(t *testing.T) {
	env := newTestEnv(t, activatedUser(t, "s3cret-pass"))
	tokens, _ := env.service.Login(context.Background(), "jane@x.com", "s3cret-pass")

	rec := httptest.NewRecorder()
	env.handler.Refresh(rec, jsonRequest(t, http.MethodPost, "/auth/refresh", nil, &http.Cookie{Name: RefreshTokenCookie, Value: tokens.RefreshToken}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := cookiesByName(rec)
	if cookies[AccessTokenCookie] == nil {
		t.Fatalf("expected a new access cookie")
	}
	if cookies[RefreshTokenCookie] != nil {
		t.Fatalf("refresh token must not be rotated")
	}

	rec = httptest.NewRecorder()
	env.handler.Refresh(rec, jsonRequest(t, http.MethodPost, "/auth/refresh", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.handler.Refresh(rec, jsonRequest(t, http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: "garbage"}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", rec.Code)
	}
}

func TestHandlerChangePassword(t *testing.T) {
	u := activatedUser(t, "old-password")
	env := newTestEnv(t, u)

	rec := httptest.NewRecorder()
	env.handler.ChangePassword(rec, jsonRequest(t, http.MethodPost, "/auth/change-password", ChangePasswordRequest{}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	body := ChangePasswordRequest{PreviousPassword: "old-password", NewPassword: "new-password", ConfirmPassword: "nope"}
	req := jsonRequest(t, http.MethodPost, "/auth/change-password", body)
	req = req.WithContext(WithUser(req.Context(), u.ID, u.Email))

	rec = httptest.NewRecorder()
	env.handler.ChangePassword(rec, req)
	if resp := decodeError(t, rec); rec.Code != http.StatusBadRequest || resp.Error != "New password and confirm password do not match" {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}

	body.ConfirmPassword = "new-password"
	req = jsonRequest(t, http.MethodPost, "/auth/change-password", body)
	req = req.WithContext(WithUser(req.Context(), u.ID, u.Email))

	rec = httptest.NewRecorder()
	env.handler.ChangePassword(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := decodeMessage(t, rec); msg != "Password changed successfully" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t, activatedUser(t, "s3cret-pass"))
	tokens, _ := env.service.Login(context.Background(), "jane@x.com", "s3cret-pass")

	var seen uuid.UUID
	protected := env.middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	bearer := httptest.NewRequest(http.MethodGet, "/", nil)
	bearer.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

	cookie := httptest.NewRequest(http.MethodGet, "/", nil)
	cookie.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tokens.AccessToken})

	for name, req := range map[string]*http.Request{"bearer": bearer, "cookie": cookie} {
		seen = uuid.Nil
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent || seen == uuid.Nil {
			t.Fatalf("%s: expected authenticated request, got %d", name, rec.Code)
		}
	}

	badHeader := httptest.NewRequest(http.MethodGet, "/", nil)
	badHeader.Header.Set("Authorization", "Token abc")

	refreshAsAccess := httptest.NewRequest(http.MethodGet, "/", nil)
	refreshAsAccess.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tokens.RefreshToken})

	for name, req := range map[string]*http.Request{
		"none":              httptest.NewRequest(http.MethodGet, "/", nil),
		"bad header":        badHeader,
		"refresh as access": refreshAsAccess,
	} {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestRequireFounder(t *testing.T) {
	founder := activatedUser(t, "s3cret-pass")
	founder.IsAdmin, founder.IsFounder = true, true
	student := janeDoe()
	student.Email = "kid@x.com"
	env := newTestEnv(t, founder, student)

	guarded := env.middleware.RequireFounder(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		ctx    context.Context
		status int
	}{
		{"founder", WithUser(context.Background(), founder.ID, founder.Email), http.StatusNoContent},
		{"student", WithUser(context.Background(), student.ID, student.Email), http.StatusForbidden},
		{"unknown", WithUser(context.Background(), uuid.New(), "ghost@x.com"), http.StatusUnauthorized},
		{"anonymous", context.Background(), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tc.ctx))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}
