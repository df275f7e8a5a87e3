package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "silverpineapple"

// Metrics owns the site's collectors and the registry they are exposed from.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpLatency         *prometheus.HistogramVec
	notFound            *prometheus.CounterVec
	missingTranslations *prometheus.CounterVec
	submissions         *prometheus.CounterVec
	widgetProbes        *prometheus.CounterVec
}

// NewMetrics creates and registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "http_request_duration_seconds",
				Help:    "HTTP request duration seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		notFound: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "not_found_total", Help: "Terminal not-found resolutions."},
			[]string{"reason"}, // locale|unit|route
		),
		missingTranslations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "missing_translations_total", Help: "Lookups absent from the requested locale."},
			[]string{"locale"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "form_submissions_total", Help: "Form submissions by outcome."},
			[]string{"form", "outcome"}, // outcome: accepted|invalid|failed|limited
		),
		widgetProbes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "widget_probes_total", Help: "Vendor widget script probes."},
			[]string{"outcome"},
		),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpLatency, m.notFound, m.missingTranslations, m.submissions, m.widgetProbes,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func (m *Metrics) NotFound(reason string) {
	if m == nil {
		return
	}
	m.notFound.WithLabelValues(reason).Inc()
}

func (m *Metrics) MissingTranslation(locale string) {
	if m == nil {
		return
	}
	m.missingTranslations.WithLabelValues(locale).Inc()
}

func (m *Metrics) Submission(form, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(form, outcome).Inc()
}

func (m *Metrics) WidgetProbe(outcome string) {
	if m == nil {
		return
	}
	m.widgetProbes.WithLabelValues(outcome).Inc()
}

// Serve runs a dedicated /metrics listener on addr until ctx is done.
// An empty addr disables it.
func Serve(ctx context.Context, addr string, m *Metrics, logger *zap.Logger) {
	if addr == "" || m == nil {
		return
	}
	if logger == nil {
		logger = noopLogger
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
}
