package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Report names used as metric labels. Keep this set closed so cardinality
// stays bounded.
const (
	ReportOverview  = "overview"
	ReportInventory = "inventory"
	ReportStockouts = "stockouts"
	ReportMovers    = "movers"
	ReportRoutes    = "routes"
	ReportPipeline  = "pipeline"
)

// Config carries the constant labels stamped on every metric.
type Config struct {
	ServiceName string
	Environment string
}

// ReportMetrics captures analytics pipeline health signals.
type ReportMetrics struct {
	reportBuilds    *prometheus.CounterVec
	reportErrors    *prometheus.CounterVec
	reportDuration  *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	datasetRows     *prometheus.GaugeVec
	refreshRuns     prometheus.Counter
	refreshErrors   prometheus.Counter
	refreshDuration prometheus.Observer
}

var (
	reportMetricsOnce sync.Once
	reportMetrics     *ReportMetrics
)

// Reports returns the singleton report metrics registry.
func Reports() *ReportMetrics {
	return ReportsWithConfig(Config{})
}

// ReportsWithConfig returns the singleton report metrics registry using
// config labels.
func ReportsWithConfig(cfg Config) *ReportMetrics {
	reportMetricsOnce.Do(func() {
		reportMetrics = newReportMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return reportMetrics
}

// ResetReportMetricsForTest resets the report metrics singleton for tests.
func ResetReportMetricsForTest() {
	reportMetricsOnce = sync.Once{}
	reportMetrics = nil
}

func newReportMetrics(registerer prometheus.Registerer, cfg Config) *ReportMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "vendhub"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	reportBuilds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "vendhub_report_builds_total",
		Help:        "Report computations by report name.",
		ConstLabels: constLabels,
	}, []string{"report"})
	reportErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "vendhub_report_errors_total",
		Help:        "Report computations that failed, usually on dataset fetch.",
		ConstLabels: constLabels,
	}, []string{"report"})
	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "vendhub_report_duration_seconds",
		Help:        "Report computation latency including dataset mapping.",
		Buckets:     []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"report"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "vendhub_dataset_cache_total",
		Help:        "Dataset cache lookups by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	datasetRows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "vendhub_dataset_rows",
		Help:        "Row counts of the most recent dataset pull by record kind.",
		ConstLabels: constLabels,
	}, []string{"kind"})
	refreshRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "vendhub_refresh_runs_total",
		Help:        "Background cache refresh attempts.",
		ConstLabels: constLabels,
	})
	refreshErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "vendhub_refresh_errors_total",
		Help:        "Background cache refresh failures.",
		ConstLabels: constLabels,
	})
	refreshDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "vendhub_refresh_duration_seconds",
		Help:        "Background cache refresh latency.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	})

	registerer.MustRegister(
		reportBuilds,
		reportErrors,
		reportDuration,
		cacheHits,
		datasetRows,
		refreshRuns,
		refreshErrors,
		refreshDuration,
	)

	return &ReportMetrics{
		reportBuilds:    reportBuilds,
		reportErrors:    reportErrors,
		reportDuration:  reportDuration,
		cacheHits:       cacheHits,
		datasetRows:     datasetRows,
		refreshRuns:     refreshRuns,
		refreshErrors:   refreshErrors,
		refreshDuration: refreshDuration,
	}
}

// ObserveReportBuild records one successful report computation.
func (m *ReportMetrics) ObserveReportBuild(report string, duration time.Duration) {
	if m == nil {
		return
	}
	m.reportBuilds.WithLabelValues(report).Inc()
	m.reportDuration.WithLabelValues(report).Observe(duration.Seconds())
}

// IncReportError records a failed report computation.
func (m *ReportMetrics) IncReportError(report string) {
	if m == nil {
		return
	}
	m.reportErrors.WithLabelValues(report).Inc()
}

// IncCacheHit records a dataset served from cache.
func (m *ReportMetrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues("hit").Inc()
}

// IncCacheMiss records a dataset rebuilt from the provider.
func (m *ReportMetrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues("miss").Inc()
}

// SetDatasetRows records the row count of the latest dataset pull.
func (m *ReportMetrics) SetDatasetRows(kind string, rows int) {
	if m == nil {
		return
	}
	m.datasetRows.WithLabelValues(kind).Set(float64(rows))
}

// IncRefreshRun counts one background refresh attempt.
func (m *ReportMetrics) IncRefreshRun() {
	if m == nil {
		return
	}
	m.refreshRuns.Inc()
}

// IncRefreshError counts one background refresh failure.
func (m *ReportMetrics) IncRefreshError() {
	if m == nil {
		return
	}
	m.refreshErrors.Inc()
}

// ObserveRefreshDuration records background refresh latency.
func (m *ReportMetrics) ObserveRefreshDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(duration.Seconds())
}
