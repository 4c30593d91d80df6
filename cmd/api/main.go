package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	_ "github.com/seeran-grades/seeran-backend/docs" // Swagger docs (generated)
	"github.com/seeran-grades/seeran-backend/internal/auth"
	"github.com/seeran-grades/seeran-backend/internal/balance"
	"github.com/seeran-grades/seeran-backend/internal/cache"
	"github.com/seeran-grades/seeran-backend/internal/config"
	"github.com/seeran-grades/seeran-backend/internal/database"
	"github.com/seeran-grades/seeran-backend/internal/email"
	"github.com/seeran-grades/seeran-backend/internal/emailban"
	httpServer "github.com/seeran-grades/seeran-backend/internal/http"
	"github.com/seeran-grades/seeran-backend/internal/logging"
	"github.com/seeran-grades/seeran-backend/internal/media"
	"github.com/seeran-grades/seeran-backend/internal/metrics"
	"github.com/seeran-grades/seeran-backend/internal/otp"
	"github.com/seeran-grades/seeran-backend/internal/profile"
	"github.com/seeran-grades/seeran-backend/internal/ratelimit"
	"github.com/seeran-grades/seeran-backend/internal/user"
)

// @title           Seeran Grades API
// @version         1.0
// @description     Account activation, session and email ban endpoints of the Seeran Grades backend.

// @contact.name   API Support
// @contact.email  support@seeran-grades.com

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

const tokenCleanupInterval = time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Server.IsDevelopment(),
		File:        cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger.Zap())

	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
		"email_provider", cfg.Email.Provider,
	)

	// Initialize database connection
	db, err := database.Open(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Repositories
	userRepo := user.NewRepository(db)
	refreshTokens := initRegistry(cfg.Auth.RegistryBackend, db, redisClient)
	balanceRepo := balance.NewRepository(db)
	banRepo := emailban.NewBunRepository(db)

	tokenService, err := initTokens(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	mailer, err := initMailer(ctx, cfg.Email, cfg.OTP.TTL)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	cloudFront, err := media.NewCloudFrontSigner(cfg.CDN.KeyPairID, cfg.CDN.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("failed to initialize CloudFront signer: %w", err)
	}

	otpStore := otp.NewStore(
		cache.NewRedisStore(redisClient, cfg.OTP.KeyPrefix),
		otp.NewGenerator(cfg.Auth.OTPHashCost),
		cfg.OTP.TTL,
		cfg.OTP.MaxAttempts,
	)
	images := media.NewImageSigner(
		cloudFront,
		cache.NewRedisStore(redisClient, ""),
		media.Config{
			OriginBaseURL:   cfg.CDN.OriginBaseURL,
			CDNBaseURL:      cfg.CDN.CDNBaseURL,
			DefaultImageURL: cfg.CDN.DefaultImageURL,
			URLTTL:          cfg.CDN.URLTTL,
		},
		m,
	)

	// Services
	authService := auth.NewService(userRepo, refreshTokens, tokenService, m, logger, auth.ServiceConfig{
		AccessTokenDuration:  cfg.Auth.AccessTokenDuration,
		RefreshTokenDuration: cfg.Auth.RefreshTokenDuration,
		PasswordMinChars:     cfg.Auth.PasswordMinChars,
	})
	activation := auth.NewActivation(userRepo, otpStore, mailer, m, logger, cfg.Auth.PasswordMinChars)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimit.Window, cfg.RateLimit.Limits)

	cookies := auth.NewCookieManager(
		cfg.Auth.CookieDomain,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
		cfg.OTP.TTL,
	)

	// Initialize HTTP handlers
	handlers := httpServer.Handlers{
		Auth:           auth.NewHandler(authService, activation, cookies, rateLimiter, m),
		AuthMiddleware: auth.NewMiddleware(tokenService, userRepo),
		Profile:        profile.NewHandler(userRepo, images, auth.GetUserIDFromContext),
		Balance:        balance.NewHandler(balanceRepo, auth.GetUserIDFromContext),
		EmailBans:      emailban.NewHandler(emailban.NewService(banRepo), auth.GetUserEmailFromContext),
	}

	router := httpServer.NewRouter(cfg, handlers, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Metrics stay off the public listener
	var metricsServer *httpServer.Server
	if cfg.Server.MetricsAddr != "" {
		metricsServer = httpServer.NewServer(
			cfg.Server.MetricsAddr,
			httpServer.NewMetricsRouter(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
			cfg.Server.ReadTimeout,
			cfg.Server.WriteTimeout,
			logger,
		)
	}

	go cleanupTokens(ctx, refreshTokens, logger)

	// Start servers in goroutines
	serverErrors := make(chan error, 2)
	go func() {
		serverErrors <- server.Start()
	}()
	if metricsServer != nil {
		go func() {
			serverErrors <- metricsServer.Start()
		}()
	}

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", "error", err)
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

func initRegistry(backend string, db bun.IDB, client redis.UniversalClient) auth.RefreshTokenRepository {
	if backend == config.RegistryPostgres {
		return auth.NewRepository(db)
	}
	return auth.NewRedisRepository(client)
}

func initTokens(cfg config.AuthConfig) (auth.TokenService, error) {
	if cfg.TokenFormat == config.TokenFormatPaseto {
		return auth.NewPasetoService(cfg.PasetoKey, cfg.Issuer)
	}
	return auth.NewJWTService(cfg.JWTSecret, cfg.Issuer)
}

func initMailer(ctx context.Context, cfg config.EmailConfig, codeTTL time.Duration) (auth.EmailSender, error) {
	if cfg.Provider == config.EmailProviderSMTP {
		return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromAddress, codeTTL), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SESRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return email.NewSESSenderFromConfig(awsCfg, cfg.FromAddress, codeTTL), nil
}

// cleanupTokens drops expired registry rows until ctx is done
func cleanupTokens(ctx context.Context, repo auth.RefreshTokenRepository, logger *logging.Logger) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.CleanupExpiredTokens(ctx); err != nil {
				logger.Error("failed to clean up refresh tokens", "error", err)
			}
		}
	}
}
