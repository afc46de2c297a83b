package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atinyakov/planner/internal/middleware"
	"github.com/atinyakov/planner/internal/middleware/metrics"
)

// RouterConfig holds everything NewRouter mounts.
type RouterConfig struct {
	Auth     *AuthHandler
	Planner  *PlannerHandler
	Sessions middleware.SessionResolver
	Logger   *zap.Logger
	// CORSOrigins enables CORS with credentials for the listed origins.
	CORSOrigins []string
}

// NewRouter constructs the HTTP handler serving the planner.
//
// Routes:
//
//	GET  /              → Index
//	GET  /metrics       → Prometheus exposition
//	POST /api/register  → AuthHandler.Register
//	POST /api/login     → AuthHandler.Login
//	GET  /api/logout    → AuthHandler.Logout
//	GET  /api/data      → PlannerHandler.Data (requires a session)
//	POST /api/save      → PlannerHandler.Save (requires a session)
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(cfg.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/", Index)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// bodies must be JSON; empty GET requests pass through
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
		r.Get("/logout", cfg.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(cfg.Sessions, cfg.Logger))
			r.Get("/data", cfg.Planner.Data)
			r.Post("/save", cfg.Planner.Save)
		})
	})

	return r
}
