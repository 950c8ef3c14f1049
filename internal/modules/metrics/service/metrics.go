package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trade_risk/internal/models"
)

const namespace = "riskcalc"

// Outcome of a calculation request.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics держит свой реестр, чтобы тесты не делили глобальный.
type Metrics struct {
	registry *prometheus.Registry

	calculations    *prometheus.CounterVec
	calcDuration    *prometheus.HistogramVec
	warnings        *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	telegramUpdates *prometheus.CounterVec
	wsSessions      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Calculations by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		calcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "calculation_duration_seconds",
				Help:      "Time spent in the risk calculator",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"mode"},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "warnings_total",
				Help:      "Warnings attached to results",
			},
			[]string{"code"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
		telegramUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "telegram_updates_total",
				Help:      "Telegram updates by kind",
			},
			[]string{"kind"},
		),
		wsSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_sessions",
				Help:      "Open websocket sessions",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.calculations,
		m.calcDuration,
		m.warnings,
		m.httpRequests,
		m.httpDuration,
		m.rateLimited,
		m.telegramUpdates,
		m.wsSessions,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveCalculation(mode models.Mode, outcome string, took time.Duration, warnings []models.Warning) {
	m.calculations.WithLabelValues(string(mode), outcome).Inc()
	m.calcDuration.WithLabelValues(string(mode)).Observe(took.Seconds())
	for _, w := range warnings {
		m.warnings.WithLabelValues(string(w.Code)).Inc()
	}
}

func (m *Metrics) ObserveHTTP(route string, status int, took time.Duration) {
	m.httpRequests.WithLabelValues(route, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(took.Seconds())
}

func (m *Metrics) RateLimited() { m.rateLimited.Inc() }

func (m *Metrics) TelegramUpdate(kind string) { m.telegramUpdates.WithLabelValues(kind).Inc() }

func (m *Metrics) WSOpened() { m.wsSessions.Inc() }
func (m *Metrics) WSClosed() { m.wsSessions.Dec() }

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
