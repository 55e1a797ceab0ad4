package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
)

// MetricsManager holds the service's custom Prometheus metrics.
type MetricsManager struct {
	Registry *prometheus.Registry

	PostsCreatedTotal prometheus.Counter
	PostsUpdatedTotal prometheus.Counter
	PostsDeletedTotal prometheus.Counter

	// Moderation transitions by action: approve, decline, report,
	// withdraw_report, warn_account, restrict_account.
	ModerationActionsTotal *prometheus.CounterVec

	APIErrorsTotal *prometheus.CounterVec
	APILatency     *prometheus.HistogramVec
}

// NewMetricsManager initializes and registers the custom metrics on a
// dedicated registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	postsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "posts_created_total",
		Help:      "Total number of posts created.",
	})
	postsUpdatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "posts_updated_total",
		Help:      "Total number of posts updated.",
	})
	postsDeletedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "posts_deleted_total",
		Help:      "Total number of posts deleted.",
	})
	moderationActionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "moderation_actions_total",
		Help:      "Total number of moderation transitions by action.",
	}, []string{"action"})
	apiErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by operation.",
	}, []string{"operation", "error_type"})
	apiLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		postsCreatedTotal,
		postsUpdatedTotal,
		postsDeletedTotal,
		moderationActionsTotal,
		apiErrorsTotal,
		apiLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:               registry,
		PostsCreatedTotal:      postsCreatedTotal,
		PostsUpdatedTotal:      postsUpdatedTotal,
		PostsDeletedTotal:      postsDeletedTotal,
		ModerationActionsTotal: moderationActionsTotal,
		APIErrorsTotal:         apiErrorsTotal,
		APILatency:             apiLatency,
	}
}

// StartMetricsServer exposes the registry on /metrics. Blocking;
// returns when the server stops.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
