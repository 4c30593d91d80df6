// Package media produces CloudFront-signed URLs for profile images.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/cloudfront/sign"

	"github.com/seeran-grades/seeran-backend/internal/cache"
	"github.com/seeran-grades/seeran-backend/internal/logging"
	"github.com/seeran-grades/seeran-backend/internal/metrics"
)

// URLSigner signs a URL so that it stops working at expires
type URLSigner interface {
	Sign(url string, expires time.Time) (string, error)
}

// NewCloudFrontSigner loads the PEM private key of a CloudFront key pair
func NewCloudFrontSigner(keyPairID, privateKeyPath string) (*sign.URLSigner, error) {
	if keyPairID == "" {
		return nil, errors.New("cloudfront key pair id is required")
	}

	key, err := sign.LoadPEMPrivKeyFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load cloudfront private key: %w", err)
	}

	return sign.NewURLSigner(keyPairID, key), nil
}

// Config holds the URL rewriting and lifetime settings
type Config struct {
	OriginBaseURL   string
	CDNBaseURL      string
	DefaultImageURL string
	URLTTL          time.Duration
}

// ImageSigner returns signed profile image URLs, caching them per user
type ImageSigner struct {
	signer  URLSigner
	cache   cache.Store
	cfg     Config
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewImageSigner(signer URLSigner, c cache.Store, cfg Config, m *metrics.Metrics) *ImageSigner {
	return &ImageSigner{
		signer:  signer,
		cache:   c,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
	}
}

// CacheKey is where the signed URL of a user's picture is cached
func CacheKey(email string) string {
	return email + "profile_picture"
}

// ProfileImageURL returns a signed URL for picture, or for the default icon when
// the user has none. Only real pictures are cached.
func (s *ImageSigner) ProfileImageURL(ctx context.Context, email string, picture *string) (string, error) {
	if picture == nil || *picture == "" {
		signed, _, err := s.sign(s.cfg.DefaultImageURL)
		if err != nil {
			return "", err
		}
		s.metrics.SignedURLs.WithLabelValues("default").Inc()
		return signed, nil
	}

	key := CacheKey(email)
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		s.metrics.SignedURLs.WithLabelValues("cache").Inc()
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logging.GetLoggerFromContext(ctx).Warn("failed to read signed url cache", "email", email, "error", err)
	}

	signed, expires, err := s.sign(*picture)
	if err != nil {
		return "", err
	}
	s.metrics.SignedURLs.WithLabelValues("signer").Inc()

	if ttl := expires.Sub(s.now()); ttl > 0 {
		if err := s.cache.Set(ctx, key, signed, ttl); err != nil {
			logging.GetLoggerFromContext(ctx).Warn("failed to cache signed url", "email", email, "error", err)
		}
	}

	return signed, nil
}

func (s *ImageSigner) sign(originURL string) (string, time.Time, error) {
	expires := s.now().Add(s.cfg.URLTTL)

	signed, err := s.signer.Sign(s.cdnURL(originURL), expires)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign url: %w", err)
	}

	return signed, expires, nil
}

// cdnURL points an S3 object URL at the CloudFront distribution
func (s *ImageSigner) cdnURL(originURL string) string {
	if s.cfg.OriginBaseURL == "" || s.cfg.CDNBaseURL == "" {
		return originURL
	}
	return strings.Replace(originURL, s.cfg.OriginBaseURL, s.cfg.CDNBaseURL, 1)
}
