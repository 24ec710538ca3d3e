package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyz_http_requests_total",
		Help: "HTTP requests served, by route pattern and status code",
	}, []string{"route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voyz_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyz_upstream_requests_total",
		Help: "Calls to third-party APIs, by vendor and outcome",
	}, []string{"vendor", "outcome"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voyz_upstream_request_duration_seconds",
		Help:    "Duration of calls to third-party APIs",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"vendor"})

	MenuItemsParsed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voyz_menu_items_parsed",
		Help:    "Menu items extracted per OCR request",
		Buckets: []float64{0, 1, 5, 10, 20, 40, 80},
	})

	OCRCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyz_ocr_cache_lookups_total",
		Help: "OCR cache lookups by result (hit, miss, error)",
	}, []string{"result"})
)

// ObserveUpstream records one vendor call started at start.
func ObserveUpstream(vendor string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(vendor, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(vendor).Observe(time.Since(start).Seconds())
}
