package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/srijonashraf/sellswipe-server/internal/platform/metrics"
)

// NewRouter wires every endpoint. Static segments (filter, search)
// are registered on the same subtree as {id}; chi matches them first.
func NewRouter(h *Handler, admin *AdminHandler, mm *metrics.MetricsManager) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if mm != nil {
		r.Use(latencyMiddleware(mm))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, nil)
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", h.HandleFeed)
		r.Get("/filter", h.HandleFilteredList)
		r.Get("/search", h.HandleSearch)
		r.Post("/", h.HandleCreatePost)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleDetail)
			r.Put("/", h.HandleUpdatePost)
			r.Delete("/", h.HandleDeletePost)
			r.Delete("/image", h.HandleDeleteImage)
			r.Post("/report", h.HandleReportPost)
		})
	})

	r.Route("/api/my/posts", func(r chi.Router) {
		r.Get("/", h.HandleMyPosts)
		r.Get("/pending", h.HandleMyPendingPosts)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/posts", admin.HandleQueue)
		r.Post("/posts/{id}/approve", admin.HandleApprove)
		r.Post("/posts/{id}/decline", admin.HandleDecline)
		r.Post("/posts/{id}/withdraw-report", admin.HandleWithdrawReport)
		r.Delete("/posts/{id}", admin.HandleAdminDelete)

		r.Get("/users", admin.HandleUserList)
		r.Post("/users/{id}/warn", admin.HandleWarnAccount)
		r.Post("/users/{id}/restrict", admin.HandleRestrictAccount)
		r.Post("/users/{id}/withdraw-restrictions", admin.HandleWithdrawRestrictions)
	})

	return r
}

// latencyMiddleware records per-route request latency. The route
// pattern is only known after the handler ran, so observation happens
// on the way out.
func latencyMiddleware(mm *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			mm.APILatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}
