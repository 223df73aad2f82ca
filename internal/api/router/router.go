package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/mindcare/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/mindcare/internal/http/middleware"
	"github.com/wolfman30/mindcare/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Handler            *handlers.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// AuthLimiter throttles /auth/* per client IP when set.
	AuthLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	h := cfg.Handler

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", h.Health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Get("/slots", h.Slots)
		public.Get("/slots/dates", h.Dates)
	})

	// Session-scoped endpoints
	r.Group(func(sr chi.Router) {
		sr.Use(httpmiddleware.RequireSession)

		sr.Route("/auth", func(auth chi.Router) {
			if cfg.AuthLimiter != nil {
				auth.Use(httpmiddleware.RateLimit(cfg.AuthLimiter))
			}
			auth.Post("/signup", h.SignUp)
			auth.Post("/login", h.Login)
			auth.Post("/logout", h.Logout)
		})

		sr.Get("/users", h.ListUsers)
		sr.Get("/me", h.Me)
		sr.Patch("/me", h.UpdateMe)

		sr.Get("/payments", h.ListPayments)
		sr.Post("/payments", h.Pay)

		sr.Route("/chats", func(chats chi.Router) {
			chats.Get("/", h.ListChats)
			chats.Route("/{doctorID}", func(thread chi.Router) {
				thread.Get("/", h.GetChat)
				thread.Delete("/", h.DeleteChat)
				thread.Post("/messages", h.PostMessage)
			})
		})

		sr.Get("/appointment", h.GetAppointment)
		sr.Post("/appointment", h.Schedule)
		sr.Delete("/appointment", h.ClearAppointment)
	})

	return r
}
