// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for auth events.
const (
	OutcomeSuccess   = "success"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Collector is the Prometheus-backed metrics sink.
type Collector struct {
	registrations   *prometheus.CounterVec
	logins          *prometheus.CounterVec
	listingsCreated prometheus.Counter
	uploads         prometheus.Counter
	uploadBytes     prometheus.Counter
	discards        *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staynest_registrations_total",
			Help: "User registrations by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staynest_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		listingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "staynest_listings_created_total",
			Help: "Listings persisted.",
		}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "staynest_uploads_total",
			Help: "Attachments written to media storage.",
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "staynest_upload_bytes_total",
			Help: "Bytes written to media storage.",
		}),
		discards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staynest_attachments_discarded_total",
			Help: "Attachments removed after their record failed to persist, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staynest_http_requests_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "staynest_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.listingsCreated,
		c.uploads,
		c.uploadBytes,
		c.discards,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordListingCreated() {
	c.listingsCreated.Inc()
}

// RecordUpload counts one stored attachment of n bytes.
func (c *Collector) RecordUpload(n int64) {
	c.uploads.Inc()
	if n > 0 {
		c.uploadBytes.Add(float64(n))
	}
}

// RecordDiscard counts a compensating delete; failed means the file is orphaned.
func (c *Collector) RecordDiscard(failed bool) {
	result := "removed"
	if failed {
		result = "orphaned"
	}
	c.discards.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPRequest(statusCode int, d time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(d.Seconds())
}

// Handler returns the HTTP handler for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every event. Used when metrics are disabled.
type Nop struct{}

func (Nop) RecordRegistration(string) {}
func (Nop) RecordLogin(string) {}
func (Nop) RecordListingCreated() {}
func (Nop) RecordUpload(int64) {}
func (Nop) RecordDiscard(bool) {}
func (Nop) RecordHTTPRequest(int, time.Duration) {}
