package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"git.home.luguber.info/inful/pagebundle/internal/assets"
	"git.home.luguber.info/inful/pagebundle/internal/config"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
	"git.home.luguber.info/inful/pagebundle/internal/paths"
	"git.home.luguber.info/inful/pagebundle/internal/pipeline"
	"git.home.luguber.info/inful/pagebundle/internal/server"
	"git.home.luguber.info/inful/pagebundle/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildFlags `embed:""`

	Debounce time.Duration `help:"Quiet period before a change triggers a rebuild (default from watch.debounce)"`
	Interval time.Duration `help:"Also rebuild unconditionally at this interval"`
	Listen   string        `help:"Serve /healthz, /status and /metrics on this address, e.g. :9109"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := w.load(root)
	if err != nil {
		return err
	}
	opts, err := w.options(root, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	rt := newRuntime(cfg)
	defer rt.close()

	tracker := &buildTracker{}
	if w.Listen != "" {
		srv := server.New(w.Listen, rt.recorder.Registry(), tracker)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if err := srv.Stop(stopCtx); err != nil {
				slog.Warn("Failed to stop status server", logfields.Error(err))
			}
		}()
	}

	out := g.out()
	watcher, err := watch.New(opts, func(ctx context.Context, reason string) error {
		// Configuration is re-read so edits to pagebundle.yaml apply on the next build.
		cfg, err := w.load(root)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Bundling page %s (%s)\n", cfg.Input, reason)
		report, err := rt.build(ctx, cfg)
		tracker.record(report)
		if err != nil {
			return err
		}
		printPaths(out, cfg, report)
		return nil
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

// options derives what to watch from the resolved layout: the input
// document, the configuration files and both asset directories. Files the
// build writes itself are ignored.
func (w *WatchCmd) options(root *CLI, cfg *config.Config) (watch.Options, error) {
	layout, err := paths.Resolve(cfg)
	if err != nil {
		return watch.Options{}, err
	}

	files := []string{layout.InputDocument}
	if path, _ := root.configPath(); fileExists(path) {
		files = append(files, path)
	}
	if cfg.LicenseManifest != "" {
		files = append(files, cfg.LicenseManifest)
	}

	dirs := []string{layout.JSDir}
	if info, err := os.Stat(layout.CSSDir); err == nil && info.IsDir() {
		dirs = append(dirs, layout.CSSDir)
	}

	naming := assets.Naming{Marker: cfg.Assets.MinifiedMarker}
	debounce := cfg.Watch.Debounce
	if w.Debounce > 0 {
		debounce = w.Debounce
	}
	interval := cfg.Watch.Interval
	if w.Interval > 0 {
		interval = w.Interval
	}

	return watch.Options{
		Files:    files,
		Dirs:     dirs,
		Ignore:   buildOutputFilter(layout, naming),
		Debounce: debounce,
		Interval: interval,
	}, nil
}

// buildOutputFilter matches files written by a build: the bundle, pending
// temp files and minified assets.
func buildOutputFilter(layout *paths.Layout, naming assets.Naming) func(string) bool {
	return func(path string) bool {
		name := filepath.Base(path)
		return name == layout.BundleName || assets.IsTempFile(name) || naming.IsPreMinified(name)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// buildTracker remembers the most recent build report for the status server.
type buildTracker struct {
	mu   sync.Mutex
	last *pipeline.BuildReport
}

func (b *buildTracker) record(r *pipeline.BuildReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = r
}

// LastBuild implements server.StatusSource.
func (b *buildTracker) LastBuild() *pipeline.BuildReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
