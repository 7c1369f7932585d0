package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks records check, cache and HTTP events as Prometheus
// metrics. Create it with NewPrometheusHooks and activate it with Install.
type PrometheusHooks struct {
	parses        *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	decisions     *prometheus.CounterVec
	checkDuration prometheus.Histogram
	updates       *prometheus.CounterVec
	filesChanged  prometheus.Counter
	cacheEvents   *prometheus.CounterVec
	cacheBytes    prometheus.Counter
	requests      *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpErrors    *prometheus.CounterVec
}

// NewPrometheusHooks creates the metrics and registers them with reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackbump_parse_total",
				Help: "Number of dependency file set parses by parser and outcome.",
			},
			[]string{"parser", "outcome"},
		),
		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stackbump_parse_duration_seconds",
				Help:    "Time taken to parse a dependency file set.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"parser"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackbump_check_decisions_total",
				Help: "Number of dependency checks by decision reason.",
			},
			[]string{"reason"},
		),
		checkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stackbump_check_duration_seconds",
				Help:    "Time taken to check one dependency, registry calls included.",
				Buckets: prometheus.DefBuckets,
			},
		),
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackbump_update_total",
				Help: "Number of file set rewrites by outcome.",
			},
			[]string{"outcome"},
		),
		filesChanged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stackbump_files_changed_total",
				Help: "Total number of dependency files rewritten.",
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackbump_cache_events_total",
				Help: "Cache hits, misses and writes by key type.",
			},
			[]string{"key_type", "event"},
		),
		cacheBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stackbump_cache_written_bytes_total",
				Help: "Total number of bytes written to the cache.",
			},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackbump_registry_requests_total",
				Help: "Registry HTTP responses by host and status code.",
			},
			[]string{"host", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stackbump_registry_request_duration_seconds",
				Help:    "Registry HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackbump_registry_errors_total",
				Help: "Registry requests that failed without a response.",
			},
			[]string{"host"},
		),
	}
	reg.MustRegister(
		h.parses, h.parseDuration,
		h.decisions, h.checkDuration,
		h.updates, h.filesChanged,
		h.cacheEvents, h.cacheBytes,
		h.requests, h.httpDuration, h.httpErrors,
	)
	return h
}

// Install registers h as the check, cache and HTTP hooks.
func (h *PrometheusHooks) Install() {
	SetCheckHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnParseStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnParseComplete(_ context.Context, parser string, _ int, d time.Duration, err error) {
	h.parses.WithLabelValues(parser, outcome(err)).Inc()
	h.parseDuration.WithLabelValues(parser).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCheckComplete(_ context.Context, _ string, reason string, d time.Duration, err error) {
	if err != nil {
		reason = "error"
	}
	h.decisions.WithLabelValues(reason).Inc()
	h.checkDuration.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnUpdateComplete(_ context.Context, files int, _ time.Duration, err error) {
	h.updates.WithLabelValues(outcome(err)).Inc()
	h.filesChanged.Add(float64(files))
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.requests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpErrors.WithLabelValues(host).Inc()
}
