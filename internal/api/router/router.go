package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rvalenzuelab/voznote/internal/api/handlers"
	"github.com/rvalenzuelab/voznote/internal/api/middleware"
	"github.com/rvalenzuelab/voznote/internal/config"
	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
	"github.com/rvalenzuelab/voznote/internal/pkg/metrics"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Settings  *handlers.SettingsHandler
	Recording *handlers.RecordingHandler
	Payment   *handlers.PaymentHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/swagger/*", httpSwagger.WrapHandler)

		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
		r.Handle("/metrics", metrics.Handler())

		r.Post("/api/v1/auth/register", h.Auth.Register)
		r.Post("/api/v1/auth/login", h.Auth.Login)
		r.Post("/api/v1/auth/refresh", h.Auth.RefreshToken)
		r.Post("/api/v1/auth/logout", h.Auth.Logout)

		// Gateway-facing, authenticated by the getStatus round trip
		r.Post("/api/v1/payments/webhook", h.Payment.Webhook)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

		r.Get("/api/v1/auth/me", h.Auth.Me)

		r.Route("/api/v1/settings", func(r chi.Router) {
			r.Get("/", h.Settings.Get)
			r.Put("/", h.Settings.Update)
			r.Get("/plan", h.Settings.Plan)
		})

		r.Route("/api/v1/recordings", func(r chi.Router) {
			r.Get("/", h.Recording.List)
			r.Post("/", h.Recording.Create)
			r.Get("/{id}", h.Recording.Get)
			r.Put("/{id}", h.Recording.Rename)
			r.Delete("/{id}", h.Recording.Delete)
			r.Get("/{id}/audio", h.Recording.Audio)
			r.Post("/{id}/transcribe", h.Recording.Transcribe)
		})

		r.Post("/api/v1/payments/order", h.Payment.CreateOrder)
	})

	return r
}
