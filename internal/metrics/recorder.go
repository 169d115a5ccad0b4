package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
	ResultSkipped  ResultLabel = "skipped"
)

// Recorder defines observability hooks for build, stage and minifier metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|canceled
	// ObserveMinifierDuration records one minifier invocation; kind is
	// "script" or "stylesheet".
	ObserveMinifierDuration(kind string, d time.Duration, success bool)
	// IncAssetSkipped counts assets passed through because they are already minified.
	IncAssetSkipped(kind string)
	SetBundleBytes(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)          {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                  {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                  {}
func (NoopRecorder) IncBuildOutcome(string)                              {}
func (NoopRecorder) ObserveMinifierDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncAssetSkipped(string)                              {}
func (NoopRecorder) SetBundleBytes(int)                                  {}
