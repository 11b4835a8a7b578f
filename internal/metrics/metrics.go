package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the service exposes.
type Metrics struct {
	HTTPRequestTotal    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ModelCallTotal    *prometheus.CounterVec
	ModelCallDuration *prometheus.HistogramVec

	SessionsCreatedTotal prometheus.Counter
	SessionsExpiredTotal prometheus.Counter

	ImageUploadTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	mu       sync.Mutex
)

// New builds the collector set and registers it with the default
// registerer. Repeated calls return the same instance.
func New() *Metrics {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	m := &Metrics{
		HTTPRequestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clot_http_requests_total",
				Help: "HTTP requests served, by method, path and status code.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clot_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ModelCallTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clot_model_calls_total",
				Help: "Model invocations, by pipeline stage and outcome.",
			},
			[]string{"stage", "status"},
		),
		ModelCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clot_model_call_duration_seconds",
				Help:    "Model invocation latency in seconds.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"stage"},
		),
		SessionsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "clot_sessions_created_total",
				Help: "Analysis sessions created.",
			},
		),
		SessionsExpiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "clot_sessions_expired_total",
				Help: "Sessions removed after passing their expiry.",
			},
		),
		ImageUploadTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clot_image_uploads_total",
				Help: "Image store writes, by backend and outcome.",
			},
			[]string{"backend", "status"},
		),
	}

	m.HTTPRequestTotal = registerOrGetCounterVec(m.HTTPRequestTotal)
	m.HTTPRequestDuration = registerOrGetHistogramVec(m.HTTPRequestDuration)
	m.ModelCallTotal = registerOrGetCounterVec(m.ModelCallTotal)
	m.ModelCallDuration = registerOrGetHistogramVec(m.ModelCallDuration)
	m.SessionsCreatedTotal = registerOrGetCounter(m.SessionsCreatedTotal)
	m.SessionsExpiredTotal = registerOrGetCounter(m.SessionsExpiredTotal)
	m.ImageUploadTotal = registerOrGetCounterVec(m.ImageUploadTotal)

	instance = m
	return m
}

func registerOrGetCounterVec(c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return c
}

func registerOrGetHistogramVec(h *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
	}
	return h
}

func registerOrGetCounter(c prometheus.Counter) prometheus.Counter {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(prometheus.Counter)
		}
	}
	return c
}
