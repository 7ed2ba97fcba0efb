package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// Scanner metrics
	ScanDurationSeconds prometheus.Histogram
	ScanFilesTotal      *prometheus.CounterVec // labels: outcome (scanned|skipped)
	ScanSkippedByReason *prometheus.CounterVec // labels: reason

	// Metadata client metrics
	MetadataRequestsTotal *prometheus.CounterVec // labels: operation, outcome
	MetadataRetriesTotal  prometheus.Counter

	// Discography sync metrics
	DiscographySyncTotal       *prometheus.CounterVec // labels: outcome
	DiscographySyncDurationSec prometheus.Histogram

	// Job queue metrics
	JobDurationSeconds *prometheus.HistogramVec // labels: type, status

	// Health metrics
	HealthStatus *prometheus.GaugeVec // labels: dependency
}

// NewMetrics creates a new Metrics instance with all required metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		ScanDurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crate_scan_duration_seconds",
				Help:    "Duration of a full library scan in seconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		ScanFilesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crate_scan_files_total",
				Help: "Total number of files processed by the scanner",
			},
			[]string{"outcome"},
		),
		ScanSkippedByReason: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crate_scan_skipped_total",
				Help: "Total number of files skipped by the scanner, by reason",
			},
			[]string{"reason"},
		),

		MetadataRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crate_metadata_requests_total",
				Help: "Total number of metadata client requests to the upstream discography service",
			},
			[]string{"operation", "outcome"},
		),
		MetadataRetriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crate_metadata_retries_total",
				Help: "Total number of metadata client retries after a rate-limit or transient upstream error",
			},
		),

		DiscographySyncTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crate_discography_sync_total",
				Help: "Total number of expected-discography sync attempts",
			},
			[]string{"outcome"},
		),
		DiscographySyncDurationSec: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crate_discography_sync_duration_seconds",
				Help:    "Duration of a single artist's discography sync in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		JobDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "crate_job_duration_seconds",
				Help: "Duration of background jobs in seconds",
			},
			[]string{"type", "status"},
		),

		HealthStatus: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crate_health_status",
				Help: "Health status of dependencies (1=ok, 0=down)",
			},
			[]string{"dependency"},
		),
	}
}

// InitializeMetrics creates a Metrics instance and seeds the "db" and
// "queue" HealthStatus gauges at 0.
func InitializeMetrics() *Metrics {
	m := NewMetrics()
	m.HealthStatus.WithLabelValues("db").Set(0)
	m.HealthStatus.WithLabelValues("queue").Set(0)
	return m
}
