package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fkhayef/chama/internal/contribution"
	"github.com/fkhayef/chama/internal/group"
	"github.com/fkhayef/chama/internal/member"
	"github.com/fkhayef/chama/internal/notification"
	"github.com/fkhayef/chama/internal/user"
	mw "github.com/fkhayef/chama/pkg/middleware"
)

// handlers groups the feature handlers mounted under /api/v1
type handlers struct {
	users         *user.Handler
	groups        *group.Handler
	members       *member.Handler
	contributions *contribution.Handler
	notifications *notification.Handler
}

func newRouter(h handlers, tokens mw.TokenValidator, metrics *mw.Metrics, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", h.users.AuthRoutes())

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth(tokens))

			r.Mount("/users", h.users.Routes())
			r.Mount("/groups", h.groups.Routes())
			r.Mount("/members", h.members.Routes())
			r.Mount("/contributions", h.contributions.Routes())
			r.Mount("/notifications", h.notifications.Routes())
		})
	})

	return r
}
