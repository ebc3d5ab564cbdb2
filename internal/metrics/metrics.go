package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - все метрики приложения на собственном реестре, без глобального состояния
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	httpRequestDuration    *prometheus.HistogramVec
	httpRequestPercentiles *prometheus.SummaryVec
	httpRequestsTotal      *prometheus.CounterVec
	httpErrorsTotal        *prometheus.CounterVec

	// Приложение
	activeUsers     prometheus.Gauge
	dbQueryDuration *prometheus.HistogramVec
	authEvents      *prometheus.CounterVec
	rateLimitHits   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec

	// WebSocket
	wsConnections prometheus.Gauge
	wsMessages    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.1, 0.3, 0.5, 0.7, 1, 3, 5, 7, 10},
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestPercentiles: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       "http_request_duration_percentiles",
				Help:       "HTTP request duration percentiles in seconds",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
			},
			[]string{"method", "route"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_errors_total",
				Help: "Total number of HTTP responses with status >= 400",
			},
			[]string{"method", "route", "status_code"},
		),

		activeUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "active_users_total",
			Help: "Total number of registered users",
		}),
		dbQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Duration of database queries in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"operation", "table", "success"},
		),
		authEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_events_total",
				Help: "Authentication events by outcome",
			},
			[]string{"event", "outcome"},
		),
		rateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_hits_total",
				Help: "Requests rejected by a rate limiter",
			},
			[]string{"limiter"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Unexpected application errors",
			},
			[]string{"kind"},
		),

		wsConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Currently open WebSocket connections",
		}),
		wsMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websocket_messages_total",
				Help: "WebSocket messages by type and direction",
			},
			[]string{"type", "direction"},
		),
	}
}

// Registry нужен тестам и внешним коллекторам
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдает метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ============================================
// HTTP
// ============================================

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	seconds := duration.Seconds()

	m.httpRequestDuration.WithLabelValues(method, route, code).Observe(seconds)
	m.httpRequestPercentiles.WithLabelValues(method, route).Observe(seconds)
	m.httpRequestsTotal.WithLabelValues(method, route, code).Inc()
	if status >= 400 {
		m.httpErrorsTotal.WithLabelValues(method, route, code).Inc()
	}
}

// ============================================
// Приложение
// ============================================

func (m *Metrics) SetActiveUsers(n int64) {
	m.activeUsers.Set(float64(n))
}

func (m *Metrics) ObserveDBQuery(operation, table string, success bool, duration time.Duration) {
	m.dbQueryDuration.WithLabelValues(operation, table, strconv.FormatBool(success)).Observe(duration.Seconds())
}

// AuthEvent - event: signup, login, refresh, verify_email, password_reset...; outcome: success | failure
func (m *Metrics) AuthEvent(event, outcome string) {
	m.authEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) RateLimitHit(limiter string) {
	m.rateLimitHits.WithLabelValues(limiter).Inc()
}

func (m *Metrics) Error(kind string) {
	m.errorsTotal.WithLabelValues(kind).Inc()
}

// ============================================
// WebSocket
// ============================================

func (m *Metrics) WSConnected() {
	m.wsConnections.Inc()
}

func (m *Metrics) WSDisconnected() {
	m.wsConnections.Dec()
}

func (m *Metrics) WSMessage(msgType, direction string) {
	m.wsMessages.WithLabelValues(msgType, direction).Inc()
}
