package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondErrorWithCode(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithCode(rec, "OTP expired", CodeOTPExpired, http.StatusBadRequest)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Error != "OTP expired" || body.Code != CodeOTPExpired {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", http.NoBody)
	var dst struct {
		Email string `json:"email"`
	}
	if err := DecodeJSON(req, &dst); err != nil {
		t.Fatalf("expected empty body to decode, got %v", err)
	}
}

func TestDecodeJSONInvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
	var dst map[string]string
	if err := DecodeJSON(req, &dst); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote addr ip, got %q", got)
	}

	// client supplied headers never pick the key
	req.Header.Set("X-Real-IP", "10.0.0.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.3")
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("forwarding headers must be ignored, got %q", got)
	}

	req.RemoteAddr = "[2001:db8::1]:443"
	if got := ClientIP(req); got != "2001:db8::1" {
		t.Fatalf("expected bare ipv6, got %q", got)
	}

	// as left by chi's RealIP
	req.RemoteAddr = "198.51.100.7"
	if got := ClientIP(req); got != "198.51.100.7" {
		t.Fatalf("expected bare ip, got %q", got)
	}
}
