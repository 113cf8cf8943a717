package observability

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"covrun/internal/domain"
)

// Metrics holds run gauges on a private registry so a textfile export
// carries only covrun series.
type Metrics struct {
	registry *prometheus.Registry

	// Total statement coverage of the last run. Watch for: drops after merges.
	CoveragePercent prometheus.Gauge

	StatementsTotal   prometheus.Gauge
	StatementsCovered prometheus.Gauge

	// Exit code of the delegated go test command.
	TestExitCode prometheus.Gauge

	RunDuration prometheus.Gauge

	// Runs by result ("pass", "fail", "threshold"). Only meaningful inside
	// a long-lived `covrun serve` process.
	RunsTotal *prometheus.CounterVec

	// Manifests accepted over POST /api/runs.
	PublishedTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CoveragePercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "covrun_coverage_percent",
			Help: "Total statement coverage of the last run, in percent",
		}),
		StatementsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "covrun_statements_total",
			Help: "Statements instrumented in the last run",
		}),
		StatementsCovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "covrun_statements_covered",
			Help: "Statements executed at least once in the last run",
		}),
		TestExitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "covrun_test_exit_code",
			Help: "Exit code of the delegated go test command",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "covrun_run_duration_seconds",
			Help: "Wall time of the delegated go test command",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "covrun_runs_total",
			Help: "Runs recorded, by result",
		}, []string{"result"}),
		PublishedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "covrun_published_runs_total",
			Help: "Run manifests accepted from remote publishers",
		}),
	}
	m.registry.MustRegister(
		m.CoveragePercent,
		m.StatementsTotal,
		m.StatementsCovered,
		m.TestExitCode,
		m.RunDuration,
		m.RunsTotal,
		m.PublishedTotal,
	)
	return m
}

// Record sets the gauges from m and counts the run.
func (m *Metrics) Record(man domain.Manifest, d time.Duration) {
	if man.Summary != nil {
		m.CoveragePercent.Set(man.Summary.Percent)
		m.StatementsTotal.Set(float64(man.Summary.Statements))
		m.StatementsCovered.Set(float64(man.Summary.Covered))
	}
	m.TestExitCode.Set(float64(man.TestExitCode))
	m.RunDuration.Set(d.Seconds())
	m.RunsTotal.WithLabelValues(runResult(man)).Inc()
}

// WriteTextfile exports the registry in the text exposition format, for a
// node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func runResult(man domain.Manifest) string {
	switch {
	case man.ThresholdFailed:
		return "threshold"
	case man.TestExitCode != 0:
		return "fail"
	default:
		return "pass"
	}
}

var _ domain.MetricsRecorder = (*Metrics)(nil)
