package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	loginsTotal         *prometheus.CounterVec
)

// Login outcome labels for loginsTotal.
const (
	loginResultSuccess         = "success"
	loginResultUnknownProvider = "unknown_provider"
	loginResultInvalidState    = "invalid_state"
	loginResultExchangeFailed  = "exchange_failed"
	loginResultProfileFailed   = "profile_failed"
	loginResultError           = "error"
)

// providerUnknown stands in for unregistered provider names in metric
// labels. Label values must come from the fixed registry, never from the
// request path, or scanners mint unbounded label children.
const providerUnknown = "unknown"

// RegisterMetrics initializes the HTTP and login metrics and returns the
// handler for /metrics. Safe to call once per process.
func RegisterMetrics(registry prometheus.Registerer) (http.Handler, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authfront_http_requests_total",
			Help: "Total HTTP requests processed",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authfront_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authfront_logins_total",
			Help: "Login callback outcomes by provider",
		}, []string{"provider", "result"})

		for _, c := range []prometheus.Collector{httpRequestsTotal, httpRequestDuration, loginsTotal} {
			if err := registry.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					metricsErr = err
					return
				}
			}
		}
	})

	if metricsErr != nil {
		return nil, metricsErr
	}
	return promhttp.Handler(), nil
}

func observeRequest(method, path string, status int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func countLogin(provider, result string) {
	if loginsTotal == nil {
		return
	}
	loginsTotal.WithLabelValues(provider, result).Inc()
}
