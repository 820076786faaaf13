package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idatech-backoffice/internal/config"
	"idatech-backoffice/internal/handler"
	"idatech-backoffice/internal/middleware"
	"idatech-backoffice/internal/model"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Records   *handler.RecordHandler
	Trash     *handler.TrashHandler
	Activity  *handler.ActivityHandler
	Dashboard *handler.DashboardHandler
	Live      *handler.LiveHandler
}

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers, health HealthCheck) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins, cfg.CORSExposedHeaders, cfg.CORSMaxAge))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", healthHandler(health))
	r.Handle("/metrics", promhttp.Handler())
	r.With(authMiddleware.RequireAuth).Get("/ws", h.Live.Serve)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin)).Post("/register", h.Auth.Register)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.Group(func(private chi.Router) {
			private.Use(authMiddleware.RequireAuth)

			private.Get("/dashboard", h.Dashboard.Overview)
			private.Get("/dashboard/summary", h.Dashboard.Summary)
			private.Get("/search", h.Dashboard.Search)
			private.Get("/transactions/recent", h.Dashboard.RecentTransactions)

			private.Route("/records/{variant}", func(records chi.Router) {
				records.Get("/", h.Records.List)
				records.Post("/", h.Records.Create)
				records.Post("/bulk-delete", h.Records.BulkDelete)
				records.Get("/{id}", h.Records.Get)
				records.Put("/{id}", h.Records.Update)
				records.Delete("/{id}", h.Records.Delete)
				records.Get("/{id}/export", h.Records.Export)
			})

			private.Get("/trash", h.Trash.List)
			private.Post("/trash/empty", h.Trash.Empty)
			private.Post("/trash/{id}/restore", h.Trash.Restore)
			private.Delete("/trash/{id}", h.Trash.Purge)

			private.Get("/activities", h.Activity.List)
			private.With(authMiddleware.RequireRoles(model.RoleAdmin)).Delete("/activities/{id}", h.Activity.Delete)
		})
	})

	return r
}

func healthHandler(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
