package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/taskhub-be/internal/api/handlers"
	"github.com/isdelr/taskhub-be/internal/metrics"
	"github.com/isdelr/taskhub-be/internal/models"
	"github.com/isdelr/taskhub-be/internal/ratelimit"
	"github.com/isdelr/taskhub-be/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Services groups the business services the router exposes.
type Services struct {
	Users     services.UserServiceProvider
	Tasks     services.TaskServiceProvider
	Sessions  services.SessionServiceProvider
	Passwords services.PasswordServiceProvider
}

// NewRouter creates and configures a new Chi router. A nil limiter disables rate limiting.
func NewRouter(svc Services, allowedOrigins []string, limiter *ratelimit.Limiter) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(ratelimit.CapturePeer)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewResourceHandler[models.User](svc.Users, "user")
	taskHandler := handlers.NewTaskHandler(svc.Tasks)
	sessionHandler := handlers.NewSessionHandler(svc.Sessions)
	passwordHandler := handlers.NewPasswordHandler(svc.Passwords)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Server is running"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.GetAll)
			r.Post("/", userHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				r.Put("/", userHandler.Update)
				r.Delete("/", userHandler.Delete)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.GetAll)
			r.Post("/", taskHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.Put("/", taskHandler.Update)
				r.Delete("/", taskHandler.Delete)
			})
		})

		// Credential endpoints are rate limited per client address.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/sessions/login", sessionHandler.Login)
			r.Post("/auth/reset-password", passwordHandler.RequestReset)
			r.Post("/auth/reset-password/confirm", passwordHandler.Confirm)
		})
	})

	return r
}
