package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atlas_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"route", "status"})
	ViewportFitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_viewport_fits_total",
		Help: "Viewport computations by outcome (fitted, default, degenerate)",
	}, []string{"outcome"})
	ImagePagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_image_pages_total",
		Help: "Image page requests by result (ok, error, in_flight, stale)",
	}, []string{"result"})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_provider_requests_total",
		Help: "Upstream provider calls by provider and result",
	}, []string{"provider", "result"})
	ProviderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atlas_provider_duration_ms",
		Help:    "Upstream provider call duration in milliseconds",
		Buckets: []float64{5, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	}, []string{"provider"})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_cache_hits_total",
		Help: "Redis cache hits by namespace",
	}, []string{"namespace"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_cache_misses_total",
		Help: "Redis cache misses by namespace",
	}, []string{"namespace"})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "atlas_active_sessions",
		Help: "Number of live page sessions",
	})
)

func init() {
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(ViewportFitsTotal)
	prometheus.MustRegister(ImagePagesTotal)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(ActiveSessions)
}

// Handler exposes the registered collectors for scraping
func Handler() http.Handler { return promhttp.Handler() }
