// Package metrics exposes Prometheus counters for the auth and media flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "seeran"

// Metrics groups the application counters
type Metrics struct {
	OTPIssued     *prometheus.CounterVec
	OTPVerified   *prometheus.CounterVec
	Logins        *prometheus.CounterVec
	SignedURLs    *prometheus.CounterVec
	RateLimited   *prometheus.CounterVec
	EmailsSent    *prometheus.CounterVec
	TokensRevoked prometheus.Counter
}

// New creates the counters and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OTPIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_issued_total",
			Help:      "One-time codes issued, by purpose.",
		}, []string{"purpose"}),
		OTPVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "One-time code verifications, by purpose and result.",
		}, []string{"purpose", "result"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts, by result.",
		}, []string{"result"}),
		SignedURLs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signed_urls_total",
			Help:      "Profile image URLs returned, by source.",
		}, []string{"source"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter, by purpose.",
		}, []string{"purpose"}),
		EmailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Outbound emails, by result.",
		}, []string{"result"}),
		TokensRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_tokens_revoked_total",
			Help:      "Refresh tokens blacklisted.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.OTPIssued,
			m.OTPVerified,
			m.Logins,
			m.SignedURLs,
			m.RateLimited,
			m.EmailsSent,
			m.TokensRevoked,
		)
	}

	return m
}

// NewNop returns unregistered counters, for tests and tools
func NewNop() *Metrics {
	return New(nil)
}
