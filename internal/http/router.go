package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/seeran-grades/seeran-backend/internal/auth"
	"github.com/seeran-grades/seeran-backend/internal/balance"
	"github.com/seeran-grades/seeran-backend/internal/config"
	"github.com/seeran-grades/seeran-backend/internal/emailban"
	"github.com/seeran-grades/seeran-backend/internal/httputil"
	"github.com/seeran-grades/seeran-backend/internal/logging"
	"github.com/seeran-grades/seeran-backend/internal/profile"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth           *auth.Handler
	AuthMiddleware *auth.Middleware
	Profile        *profile.Handler
	Balance        *balance.Handler
	EmailBans      *emailban.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders(!cfg.Server.IsDevelopment())) // Security headers on all responses
	r.Use(middleware.Recoverer)                         // Recover from panics
	r.Use(middleware.RequestID)                         // Add request ID
	// Forwarding headers are client controlled unless a proxy overwrites them,
	// and rate limits are keyed on RemoteAddr
	if cfg.Server.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Auth and activation routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)
		r.Post("/signin", h.Auth.SignIn)
		r.Post("/resend-otp", h.Auth.ResendOTP)
		r.Post("/verify-otp", h.Auth.VerifyOTP)
		r.Post("/set-password", h.Auth.SetPassword)
		r.Get("/credentials", h.Auth.Credentials)
		r.Post("/account-status", h.Auth.AccountStatus)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/logout", h.Auth.Logout)

		r.With(h.AuthMiddleware.RequireAuth).Post("/change-password", h.Auth.ChangePassword)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware.RequireAuth)

		r.Get("/users/me/profile", h.Profile.Me)
		r.Get("/users/me/balance", h.Balance.Me)

		r.Route("/email-bans", func(r chi.Router) {
			r.Get("/", h.EmailBans.List)

			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware.RequireFounder)
				r.Get("/appeals", h.EmailBans.PendingAppeals)
				r.Get("/appeals/{"+emailban.BanIDParam+"}", h.EmailBans.GetAppeal)
			})

			r.Get("/{"+emailban.BanIDParam+"}", h.EmailBans.Get)
			r.Patch("/{"+emailban.BanIDParam+"}/appeal", h.EmailBans.Appeal)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}

// NewMetricsRouter serves /metrics for the internal listener
func NewMetricsRouter(metrics http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", metrics)
	return r
}
