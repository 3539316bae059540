// Package metrics collects Prometheus metrics for the HTTP surface and the
// authentication flow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the subset of metrics the HTTP layer reports into.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordLogin(provider, outcome string)
	RecordRejectedCredential(reason string)
}

// Collector implements Recorder on top of Prometheus collectors.
type Collector struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	logins      *prometheus.CounterVec
	credentials *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactbook_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_oauth_logins_total",
			Help: "OAuth callback outcomes by provider.",
		}, []string{"provider", "outcome"}),
		credentials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_rejected_credentials_total",
			Help: "Bearer credentials rejected by the authorization gate.",
		}, []string{"reason"}),
	}

	reg.MustRegister(c.requests, c.latency, c.logins, c.credentials)
	return c
}

// RecordRequest records one served HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordLogin records the terminal state of an OAuth handoff.
func (c *Collector) RecordLogin(provider, outcome string) {
	c.logins.WithLabelValues(provider, outcome).Inc()
}

// RecordRejectedCredential records a request turned away by the gate.
func (c *Collector) RecordRejectedCredential(reason string) {
	c.credentials.WithLabelValues(reason).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordLogin(string, string)                      {}
func (Nop) RecordRejectedCredential(string)                 {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
