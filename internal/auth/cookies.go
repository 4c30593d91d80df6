package auth

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	ProofCookie        = "setpasswordotp"
)

// CookieManager writes and deletes the session and activation cookies.
// Every cookie is scoped to the shared root domain and is
// SameSite=None, Secure and HttpOnly.
type CookieManager struct {
	domain     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	proofTTL   time.Duration
}

func NewCookieManager(domain string, accessTTL, refreshTTL, proofTTL time.Duration) *CookieManager {
	return &CookieManager{
		domain:     domain,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		proofTTL:   proofTTL,
	}
}

func (m *CookieManager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   m.domain,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
}

// SetAuthCookies writes the access and refresh token cookies
func (m *CookieManager) SetAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	m.SetAccessCookie(w, accessToken)
	http.SetCookie(w, m.cookie(RefreshTokenCookie, refreshToken, int(m.refreshTTL.Seconds())))
}

// SetAccessCookie writes only the access token cookie
func (m *CookieManager) SetAccessCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, m.cookie(AccessTokenCookie, accessToken, int(m.accessTTL.Seconds())))
}

// SetProofCookie writes the cookie that authorizes a single password set
func (m *CookieManager) SetProofCookie(w http.ResponseWriter, proof ProofToken) {
	http.SetCookie(w, m.cookie(ProofCookie, string(proof), int(m.proofTTL.Seconds())))
}

// ClearAuthCookies deletes both token cookies
func (m *CookieManager) ClearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, m.cookie(RefreshTokenCookie, "", -1))
}

// ClearProofCookie deletes the activation proof cookie
func (m *CookieManager) ClearProofCookie(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(ProofCookie, "", -1))
}

// cookieValue returns the named cookie's value, or "" when absent
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
