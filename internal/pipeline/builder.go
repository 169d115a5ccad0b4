package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagebundle/internal/config"
	"git.home.luguber.info/inful/pagebundle/internal/events"
	"git.home.luguber.info/inful/pagebundle/internal/history"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
	"git.home.luguber.info/inful/pagebundle/internal/metrics"
	"git.home.luguber.info/inful/pagebundle/internal/minify"
)

// Builder runs bundle builds for one configuration. Collaborators default to
// no-op implementations and are swapped in with the With* methods.
type Builder struct {
	cfg *config.Config

	recorder  metrics.Recorder
	observers []BuildObserver
	publisher events.Publisher
	history   history.Store

	// Minifier overrides; nil means "as configured".
	scripts minify.ScriptMinifier
	styles  minify.StylesheetMinifier

	newID func() string
}

// NewBuilder creates a Builder for cfg.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:       cfg,
		recorder:  metrics.NoopRecorder{},
		publisher: events.NoopPublisher{},
		newID:     uuid.NewString,
	}
}

// WithRecorder injects a metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// WithObserver adds an observer notified in addition to the metrics recorder.
func (b *Builder) WithObserver(o BuildObserver) *Builder {
	if o != nil {
		b.observers = append(b.observers, o)
	}
	return b
}

// WithPublisher injects the build event publisher.
func (b *Builder) WithPublisher(p events.Publisher) *Builder {
	if p != nil {
		b.publisher = p
	}
	return b
}

// WithHistory records every build in store.
func (b *Builder) WithHistory(store history.Store) *Builder {
	b.history = store
	return b
}

// WithMinifiers replaces the configured minifiers (tests, embedding).
func (b *Builder) WithMinifiers(scripts minify.ScriptMinifier, styles minify.StylesheetMinifier) *Builder {
	b.scripts = scripts
	b.styles = styles
	return b
}

// Stages returns the ordered stage list for the configuration.
func (b *Builder) Stages() []StageDef {
	return NewPipeline().
		Add(StageResolvePaths, stageResolvePaths).
		Add(StageScanDocument, stageScanDocument).
		Add(StageBundleScripts, stageBundleScripts).
		Add(StageInjectLicense, stageInjectLicense).
		Add(StageCommitOutputs, stageCommitOutputs).
		AddIf(b.cfg.VerifyOutput, StageVerifyOutput, stageVerifyOutput).
		Build()
}

// Build runs one bundle build. The report is returned even when the build
// fails; the error is the fatal stage error, if any.
func (b *Builder) Build(ctx context.Context) (*BuildReport, error) {
	report := NewBuildReport(b.newID())
	report.Input = b.cfg.Input
	report.Output = b.cfg.Output

	bs := newBuildState(b, report)
	defer bs.discardPending()

	slog.Info("Bundling page",
		logfields.BuildID(report.BuildID),
		logfields.Path(b.cfg.Input),
		logfields.Target(b.cfg.Output))

	err := RunStages(ctx, bs, b.Stages())

	if bs.Orchestrator != nil {
		for _, n := range bs.Orchestrator.Invocations {
			report.MinifierInvocations += n
		}
	}
	report.Finish()
	report.DeriveOutcome()
	bs.observer.OnBuildComplete(report)
	b.afterBuild(ctx, report)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "Build finished",
		logfields.BuildID(report.BuildID),
		logfields.Outcome(string(report.Outcome)),
		logfields.Duration(report.Duration()),
		logfields.Count(report.ScriptsCollected),
		logfields.Bytes(report.BundleBytes))
	return report, err
}

// afterBuild records the finished build. Failures here never change the
// build outcome; they are logged as warnings.
func (b *Builder) afterBuild(ctx context.Context, report *BuildReport) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if b.history != nil {
		if err := b.history.Record(ctx, historyEntry(report)); err != nil {
			slog.Warn("Failed to record build history", logfields.Error(err))
		}
	}

	if err := b.publisher.PublishBuildCompleted(ctx, buildEvent(report)); err != nil {
		slog.Warn("Failed to publish build event", logfields.Error(err))
	}

	if dir := b.cfg.ReportDir; dir != "" {
		if err := report.Persist(dir); err != nil {
			slog.Warn("Failed to persist build report", logfields.Path(dir), logfields.Error(err))
		}
	}
}

func (b *Builder) buildObserver() BuildObserver {
	obs := append([]BuildObserver{RecorderObserver{Recorder: b.recorder}}, b.observers...)
	return multiObserver(obs)
}

type multiObserver []BuildObserver

func (m multiObserver) OnStageStart(stage StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m multiObserver) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, res)
	}
}

func (m multiObserver) OnBuildComplete(report *BuildReport) {
	for _, o := range m {
		o.OnBuildComplete(report)
	}
}

func historyEntry(r *BuildReport) history.Entry {
	return history.Entry{
		BuildID:     r.BuildID,
		StartedAt:   r.Start,
		Duration:    r.Duration(),
		Input:       r.Input,
		Output:      r.Output,
		Outcome:     string(r.Outcome),
		Scripts:     r.ScriptsCollected,
		Stylesheets: r.StylesheetsMinified + r.PreMinifiedStylesheets,
		BundleBytes: r.BundleBytes,
		Revision:    r.Revision,
		Error:       r.FirstError(),
	}
}

func buildEvent(r *BuildReport) *events.BuildCompleted {
	ev := &events.BuildCompleted{
		BuildID:     r.BuildID,
		Outcome:     string(r.Outcome),
		Input:       r.Input,
		Output:      r.Output,
		Scripts:     r.ScriptsCollected,
		Stylesheets: r.StylesheetsMinified + r.PreMinifiedStylesheets,
		BundleBytes: r.BundleBytes,
		Revision:    r.Revision,
		DurationMS:  r.Duration().Milliseconds(),
		Error:       r.FirstError(),
		Timestamp:   r.End,
	}
	if !r.BundleSkipped && r.BundleBytes > 0 {
		ev.Bundle = r.Bundle
	}
	return ev
}
