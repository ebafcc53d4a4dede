package router

import (
	"net/http"

	"automind-api/internal/handler"
	"automind-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Config holds the configuration for creating a router.
type Config struct {
	Logger          *zap.Logger
	Handler         *handler.Handler
	AdminHandler    *handler.AdminHandler
	AuthHandler     *handler.AuthHandler
	MessageHandler  *handler.MessageHandler
	ListingHandler  *handler.ListingHandler
	RequestHandler  *handler.RequestHandler
	EstimateHandler *handler.EstimateHandler
	AuthMiddleware  func(http.Handler) http.Handler
	AllowedOrigins  []string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Token", "X-Login-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// PUBLIC routes (no session required)
		r.Group(func(r chi.Router) {
			if cfg.Handler != nil {
				r.Get("/health", cfg.Handler.Health)
				r.Get("/ready", cfg.Handler.Ready)
			}

			if cfg.AuthHandler != nil {
				r.Post("/accounts", cfg.AuthHandler.Signup)
				r.Post("/sessions", cfg.AuthHandler.Login)
			}

			if cfg.ListingHandler != nil {
				r.Get("/listings", cfg.ListingHandler.List)
				r.Get("/listings/{id:[0-9]+}", cfg.ListingHandler.Get)
			}

			if cfg.EstimateHandler != nil {
				r.Get("/catalog", cfg.EstimateHandler.Catalog)
				r.Get("/catalog/{company}/models", cfg.EstimateHandler.Models)
				r.Post("/predictions", cfg.EstimateHandler.Predict)
				r.Post("/assistant/chat", cfg.EstimateHandler.Chat)
			}

			// Admin endpoints check X-Login-Key themselves
			if cfg.AdminHandler != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Post("/login", cfg.AdminHandler.VerifyLogin)
				})
			}
		})

		// AUTHENTICATED routes
		r.Group(func(r chi.Router) {
			if cfg.AuthMiddleware != nil {
				r.Use(cfg.AuthMiddleware)
			}

			if cfg.AuthHandler != nil {
				r.Delete("/sessions", cfg.AuthHandler.Logout)
				r.Post("/sessions/refresh", cfg.AuthHandler.Refresh)
				r.Get("/accounts/me", cfg.AuthHandler.Me)
				r.Delete("/accounts/me", cfg.AuthHandler.DeleteMe)
			}

			if cfg.MessageHandler != nil {
				r.Get("/accounts", cfg.MessageHandler.Roster)
				r.Get("/messages", cfg.MessageHandler.History)
				r.Post("/messages", cfg.MessageHandler.Send)
			}

			if cfg.ListingHandler != nil {
				r.Post("/listings", cfg.ListingHandler.Create)
				r.Get("/listings/mine", cfg.ListingHandler.Mine)
				r.Delete("/listings/{id:[0-9]+}", cfg.ListingHandler.Delete)
			}

			if cfg.RequestHandler != nil {
				r.Route("/requests", func(r chi.Router) {
					r.Get("/", cfg.RequestHandler.Inbox)
					r.Post("/", cfg.RequestHandler.Create)
					r.Get("/accepted", cfg.RequestHandler.Accepted)
					r.Get("/mine", cfg.RequestHandler.Mine)
					r.Post("/{id:[0-9]+}/resolve", cfg.RequestHandler.Resolve)
				})
			}
		})
	})

	return r
}
