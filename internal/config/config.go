package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	OTP       OTPConfig
	Email     EmailConfig
	CDN       CDNConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for cookie auth
	// Only honor X-Forwarded-For / X-Real-IP when a proxy in front overwrites them
	TrustProxyHeaders bool
	// Internal listener for /metrics; METRICS_ADDR=off disables it
	MetricsAddr string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Token formats understood by the auth package.
const (
	TokenFormatJWT    = "jwt"
	TokenFormatPaseto = "paseto"
)

// Refresh token registry backends.
const (
	RegistryRedis    = "redis"
	RegistryPostgres = "postgres"
)

type AuthConfig struct {
	TokenFormat string
	// HS256 signing secret, used when TokenFormat is jwt
	JWTSecret []byte
	// PASETO symmetric key (must be 32 bytes for v4.local), used when TokenFormat is paseto
	PasetoKey            []byte
	Issuer               string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	// Root domain shared by all subdomains, e.g. ".seeran-grades.com"
	CookieDomain     string
	RegistryBackend  string
	OTPHashCost      int
	PasswordMinChars int
}

type OTPConfig struct {
	TTL time.Duration
	// Prepended to every OTP key. Empty keeps the bare email keys.
	KeyPrefix string
	// Wrong guesses that destroy a code; 0 disables the cap
	MaxAttempts int
}

// Email providers.
const (
	EmailProviderSES  = "ses"
	EmailProviderSMTP = "smtp"
)

type EmailConfig struct {
	Provider     string
	FromAddress  string
	SESRegion    string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
}

type CDNConfig struct {
	OriginBaseURL   string // S3 bucket base URL stored in user rows
	CDNBaseURL      string // CloudFront distribution base URL
	KeyPairID       string
	PrivateKeyPath  string
	DefaultImageURL string
	URLTTL          time.Duration
}

type RateLimitConfig struct {
	Window time.Duration
	// Max requests per IP per window, keyed by purpose (login, signin, resend-otp, verify-otp, set-password)
	Limits map[string]int
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads configuration from environment variables
// Call godotenv.Load() before this if using .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins: getSliceEnv("TRUSTED_ORIGINS", []string{
				"http://localhost:3000",
				"https://www.seeran-grades.com",
				"https://server.seeran-grades.com",
			}),
			TrustProxyHeaders: getBoolEnv("TRUST_PROXY_HEADERS", false),
			MetricsAddr:       getAddrEnv("METRICS_ADDR", "127.0.0.1:9090"),
		},
		Database: loadDatabase(),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 1),
		},
		Auth: AuthConfig{
			TokenFormat:          strings.ToLower(getEnv("TOKEN_FORMAT", TokenFormatJWT)),
			JWTSecret:            []byte(getEnv("JWT_SECRET", "")),
			PasetoKey:            []byte(getEnv("PASETO_KEY", "")),
			Issuer:               getEnv("TOKEN_ISSUER", "seeran-backend"),
			AccessTokenDuration:  getDurationEnv("ACCESS_TOKEN_DURATION", 5*time.Minute),
			RefreshTokenDuration: getDurationEnv("REFRESH_TOKEN_DURATION", 30*24*time.Hour),
			CookieDomain:         getEnv("COOKIE_DOMAIN", ".seeran-grades.com"),
			RegistryBackend:      strings.ToLower(getEnv("REFRESH_REGISTRY_BACKEND", RegistryRedis)),
			OTPHashCost:          getIntEnv("OTP_HASH_COST", 10),
			PasswordMinChars:     getIntEnv("PASSWORD_MIN_CHARS", 8),
		},
		OTP: OTPConfig{
			TTL:         getDurationEnv("OTP_TTL", 300*time.Second),
			KeyPrefix:   getEnv("OTP_KEY_PREFIX", ""),
			MaxAttempts: getIntEnv("OTP_MAX_ATTEMPTS", 5),
		},
		Email: EmailConfig{
			Provider:     strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderSES)),
			FromAddress:  getEnv("EMAIL_FROM", "authorization@seeran-grades.com"),
			SESRegion:    getEnv("SES_REGION", "af-south-1"),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASS", ""),
		},
		CDN: CDNConfig{
			OriginBaseURL:   getEnv("CDN_ORIGIN_BASE_URL", "https://seeranbucket.s3.amazonaws.com"),
			CDNBaseURL:      getEnv("CDN_BASE_URL", "https://d31psdy2k7b4vc.cloudfront.net"),
			KeyPairID:       getEnv("CLOUDFRONT_KEY_PAIR_ID", ""),
			PrivateKeyPath:  getEnv("CLOUDFRONT_PRIVATE_KEY_PATH", "private_keys/cloudfront_private_key.pem"),
			DefaultImageURL: getEnv("DEFAULT_PROFILE_IMAGE_URL", "https://seeranbucket.s3.amazonaws.com/defaults/default-user-icon.svg"),
			URLTTL:          getDurationEnv("SIGNED_URL_TTL", time.Hour),
		},
		RateLimit: RateLimitConfig{
			Window: getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
			Limits: map[string]int{
				"login":        getIntEnv("RATE_LIMIT_LOGIN", 20),
				"signin":       getIntEnv("RATE_LIMIT_SIGNIN", 10),
				"resend-otp":   getIntEnv("RATE_LIMIT_RESEND_OTP", 10),
				"verify-otp":   getIntEnv("RATE_LIMIT_VERIFY_OTP", 20),
				"set-password": getIntEnv("RATE_LIMIT_SET_PASSWORD", 20),
			},
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", ""),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings, for tools that do not serve requests
func LoadDatabase() DatabaseConfig {
	_ = godotenv.Load()
	return loadDatabase()
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", "postgres"),
		Password:       getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "seeran_database"),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
	}
}

func (c *Config) validate() error {
	switch c.Auth.TokenFormat {
	case TokenFormatJWT:
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.Auth.JWTSecret))
		}
	case TokenFormatPaseto:
		// Validate PASETO key length (must be 32 bytes for v4.local)
		if len(c.Auth.PasetoKey) != 32 {
			return fmt.Errorf("PASETO_KEY must be exactly 32 bytes, got %d", len(c.Auth.PasetoKey))
		}
	default:
		return fmt.Errorf("unsupported TOKEN_FORMAT %q", c.Auth.TokenFormat)
	}

	switch c.Auth.RegistryBackend {
	case RegistryRedis, RegistryPostgres:
	default:
		return fmt.Errorf("unsupported REFRESH_REGISTRY_BACKEND %q", c.Auth.RegistryBackend)
	}

	switch c.Email.Provider {
	case EmailProviderSES, EmailProviderSMTP:
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.Email.Provider)
	}

	if c.OTP.TTL <= 0 {
		return fmt.Errorf("OTP_TTL must be positive")
	}
	if c.OTP.MaxAttempts < 0 {
		return fmt.Errorf("OTP_MAX_ATTEMPTS must not be negative")
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// getAddrEnv treats "off" as no address
func getAddrEnv(key, defaultValue string) string {
	value := getEnv(key, defaultValue)
	if strings.EqualFold(value, "off") {
		return ""
	}
	return value
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// getDurationEnv accepts either a Go duration ("5m") or a plain number of seconds
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
