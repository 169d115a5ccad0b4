package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

const namespace = "pagebundle"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	reg              *prom.Registry
	stageDuration    *prom.HistogramVec
	buildDuration    prom.Histogram
	stageResults     *prom.CounterVec
	buildOutcome     *prom.CounterVec
	minifierDuration *prom.HistogramVec
	minifierRuns     *prom.CounterVec
	assetsSkipped    *prom.CounterVec
	bundleBytes      prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.minifierDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "minifier_duration_seconds",
			Help:      "Duration of individual minifier invocations",
			Buckets:   prom.DefBuckets,
		}, []string{"kind", "result"})
		pr.minifierRuns = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "minifier_invocations_total",
			Help:      "Minifier invocations by asset kind and result",
		}, []string{"kind", "result"})
		pr.assetsSkipped = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "assets_skipped_total",
			Help:      "Already minified assets passed through without invocation",
		}, []string{"kind"})
		pr.bundleBytes = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "bundle_bytes",
			Help:      "Size of the last written script bundle including the license header",
		})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
			pr.minifierDuration, pr.minifierRuns, pr.assetsSkipped, pr.bundleBytes)
	})
	return pr
}

// Registry exposes the registry the metrics were registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// WriteTextfile writes the current metric values in the text exposition
// format, atomically, for the node exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write metrics textfile").
			WithContext("path", path).
			Build()
	}
	return nil
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveMinifierDuration(kind string, d time.Duration, success bool) {
	if p == nil || p.minifierDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.minifierDuration.WithLabelValues(kind, res).Observe(d.Seconds())
	p.minifierRuns.WithLabelValues(kind, res).Inc()
}

func (p *PrometheusRecorder) IncAssetSkipped(kind string) {
	if p == nil || p.assetsSkipped == nil {
		return
	}
	p.assetsSkipped.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) SetBundleBytes(n int) {
	if p == nil || p.bundleBytes == nil {
		return
	}
	p.bundleBytes.Set(float64(n))
}
