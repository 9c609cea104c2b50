package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/ferretcode/lovebug/internal/api"
	"github.com/ferretcode/lovebug/internal/auth"
	"github.com/ferretcode/lovebug/internal/cache"
	"github.com/ferretcode/lovebug/internal/websocket"
	"github.com/ferretcode/lovebug/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type routerDeps struct {
	config  *types.LovebugConfig
	handler *api.Handler
	auth    auth.AuthService
	hub     *websocket.Hub
	cache   cache.Cache
	logger  *slog.Logger
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: !deps.config.AllowsAnyOrigin(),
		MaxAge:           300,
	}))

	registerRoutes(r, deps)

	return r
}

func registerRoutes(r chi.Router, deps routerDeps) {
	h := deps.handler

	r.Get("/", h.Handle("root", h.Root))
	r.Get("/health", h.Handle("health", h.Health))

	// healthcheck for startup probe
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("OK"))
	})

	r.Get("/ws", deps.hub.HandleConnection)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/reports", h.Handle("reports/list", h.Reports))
		r.Get("/reports/{id}", h.Handle("reports/get", h.Report))
		r.Get("/search", h.Handle("search", h.Search))
		r.Get("/locations/nearby", h.Handle("locations/nearby", h.Nearby))

		r.Group(func(r chi.Router) {
			r.Use(cache.Middleware(deps.cache))

			r.Get("/stats", h.Handle("stats", h.Stats))
			r.Get("/hotspots", h.Handle("hotspots", h.Hotspots))
			r.Get("/districts", h.Handle("districts", h.Districts))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.auth.RequireAPIKey)

			r.Post("/crawl", h.Handle("admin/crawl", h.Crawl))
			r.Post("/seed", h.Handle("admin/seed", h.Seed))
		})
	})

	if info, err := os.Stat(deps.config.StaticDir); err == nil && info.IsDir() {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.config.StaticDir))))
	} else {
		deps.logger.Debug("static directory not found, /static disabled", "dir", deps.config.StaticDir)
	}
}
