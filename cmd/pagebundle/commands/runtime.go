package commands

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagebundle/internal/config"
	"git.home.luguber.info/inful/pagebundle/internal/events"
	"git.home.luguber.info/inful/pagebundle/internal/history"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
	"git.home.luguber.info/inful/pagebundle/internal/metrics"
	"git.home.luguber.info/inful/pagebundle/internal/pipeline"
)

// runtime holds the collaborators that outlive a single build: the metrics
// registry, the event publisher and the history database. Optional services
// that cannot be reached are logged and replaced by no-ops.
type runtime struct {
	recorder  *metrics.PrometheusRecorder
	publisher events.Publisher
	history   history.Store
	textfile  string
}

func newRuntime(cfg *config.Config) *runtime {
	rt := &runtime{
		recorder:  metrics.NewPrometheusRecorder(prom.NewRegistry()),
		publisher: events.NoopPublisher{},
		textfile:  cfg.Metrics.Textfile,
	}

	if cfg.History.Path != "" {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			slog.Warn("Build history disabled", logfields.Path(cfg.History.Path), logfields.Error(err))
		} else {
			rt.history = store
		}
	}

	if cfg.Events.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			slog.Warn("Build events disabled", slog.String("url", cfg.Events.NATSURL), logfields.Error(err))
		} else {
			rt.publisher = pub
		}
	}
	return rt
}

func (rt *runtime) builder(cfg *config.Config) *pipeline.Builder {
	b := pipeline.NewBuilder(cfg).
		WithRecorder(rt.recorder).
		WithPublisher(rt.publisher)
	if rt.history != nil {
		b = b.WithHistory(rt.history)
	}
	return b
}

// build runs one build and exports metrics afterwards.
func (rt *runtime) build(ctx context.Context, cfg *config.Config) (*pipeline.BuildReport, error) {
	report, err := rt.builder(cfg).Build(ctx)
	rt.exportMetrics()
	return report, err
}

func (rt *runtime) exportMetrics() {
	if rt.textfile == "" {
		return
	}
	if err := rt.recorder.WriteTextfile(rt.textfile); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(rt.textfile), logfields.Error(err))
	}
}

func (rt *runtime) close() {
	if err := rt.publisher.Close(); err != nil {
		slog.Warn("Failed to close event publisher", logfields.Error(err))
	}
	if rt.history != nil {
		if err := rt.history.Close(); err != nil {
			slog.Warn("Failed to close history database", logfields.Error(err))
		}
	}
}
