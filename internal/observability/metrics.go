package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/creatorcoach-backend/internal/platform/envutil"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	planGenerations *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
	tasksChanged    *prometheus.CounterVec

	notifications  *prometheus.CounterVec
	notifySweepDur *prometheus.HistogramVec
	breakerState   *prometheus.GaugeVec

	autosaveFlushes *prometheus.CounterVec
}

var (
	metricsMu sync.RWMutex
	current   *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", true)
}

// Current returns the process-wide collector set by Init, or nil.
func Current() *Metrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return current
}

// Init builds the collectors on a private registry and installs them as Current.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		if log != nil {
			log.Info("metrics disabled")
		}
		return nil
	}
	m := NewMetrics()
	metricsMu.Lock()
	current = m
	metricsMu.Unlock()
	if log != nil {
		log.Info("metrics initialized")
	}
	return m
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorcoach_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creatorcoach_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creatorcoach_http_inflight_requests",
			Help: "In-flight HTTP requests.",
		}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorcoach_llm_requests_total",
			Help: "LLM gateway calls by model, endpoint and status.",
		}, []string{"model", "endpoint", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creatorcoach_llm_request_duration_seconds",
			Help:    "LLM gateway call latency.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"model", "endpoint"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorcoach_llm_tokens_total",
			Help: "LLM tokens by model and direction.",
		}, []string{"model", "direction"}),
		planGenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorcoach_plan_generations_total",
			Help: "Plan generation attempts by duration and outcome.",
		}, []string{"duration", "outcome"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorcoach_plan_reconciliations_total",
			Help: "Per-plan posting-day reconciliations by outcome.",
		}, []string{"outcome"}),
		tasksChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorcoach_plan_tasks_changed_total",
			Help: "Tasks created or deleted by reconciliation.",
		}, []string{"op"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorcoach_notifications_total",
			Help: "Notification decisions by channel and outcome.",
		}, []string{"channel", "outcome"}),
		notifySweepDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creatorcoach_notification_sweep_duration_seconds",
			Help:    "Duration of one notification sweep.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creatorcoach_circuit_breaker_open",
			Help: "1 when the named circuit breaker is open.",
		}, []string{"name"}),
		autosaveFlushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorcoach_autosave_flushes_total",
			Help: "Coalesced note writes by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.planGenerations, m.reconciliations, m.tasksChanged,
		m.notifications, m.notifySweepDur, m.breakerState,
		m.autosaveFlushes,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	if model == "" {
		model = "unknown"
	}
	m.llmRequests.WithLabelValues(model, endpoint, status).Inc()
	m.llmLatency.WithLabelValues(model, endpoint).Observe(dur.Seconds())
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) IncPlanGeneration(duration int, outcome string) {
	if m == nil {
		return
	}
	m.planGenerations.WithLabelValues(strconv.Itoa(duration), outcome).Inc()
}

func (m *Metrics) ObserveReconciliation(outcome string, created, deleted int) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(outcome).Inc()
	if created > 0 {
		m.tasksChanged.WithLabelValues("create").Add(float64(created))
	}
	if deleted > 0 {
		m.tasksChanged.WithLabelValues("delete").Add(float64(deleted))
	}
}

func (m *Metrics) IncNotification(channel, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) ObserveNotificationSweep(channel string, dur time.Duration) {
	if m == nil {
		return
	}
	m.notifySweepDur.WithLabelValues(channel).Observe(dur.Seconds())
}

func (m *Metrics) SetBreakerOpen(name string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.breakerState.WithLabelValues(name).Set(v)
}

func (m *Metrics) IncAutosaveFlush(outcome string) {
	if m == nil {
		return
	}
	m.autosaveFlushes.WithLabelValues(outcome).Inc()
}
