// Package watch rebuilds whenever a watched source changes, and optionally on
// a fixed interval. Builds never overlap.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
)

// BuildFunc runs one build. reason is "startup", "change" or "interval".
// Its error is logged; watching continues.
type BuildFunc func(ctx context.Context, reason string) error

// Options selects what is watched.
type Options struct {
	// Files are watched individually (through their directories).
	Files []string
	// Dirs are watched for changes to any file directly inside them.
	Dirs []string
	// Ignore drops events for paths inside Dirs, e.g. the build's own outputs.
	Ignore func(path string) bool

	Debounce time.Duration
	// Interval schedules an unconditional rebuild when > 0.
	Interval time.Duration
}

// Watcher drives rebuilds from file system events.
type Watcher struct {
	opts    Options
	build   BuildFunc
	watcher *fsnotify.Watcher

	files map[string]bool
	dirs  map[string]bool

	buildMu sync.Mutex
}

// New creates a Watcher. Nothing is watched until Run.
func New(opts Options, build BuildFunc) (*Watcher, error) {
	if build == nil {
		return nil, errors.ValidationError("build function is required").Build()
	}
	if opts.Debounce <= 0 {
		return nil, errors.ValidationError("debounce must be > 0").Build()
	}
	if opts.Ignore == nil {
		opts.Ignore = func(string) bool { return false }
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to create file watcher").Build()
	}

	w := &Watcher{
		opts:    opts,
		build:   build,
		watcher: fw,
		files:   map[string]bool{},
		dirs:    map[string]bool{},
	}
	for _, f := range opts.Files {
		w.files[absPath(f)] = true
	}
	for _, d := range opts.Dirs {
		w.dirs[absPath(d)] = true
	}
	return w, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(p)
}

// Run builds once, then rebuilds on changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	watched := map[string]bool{}
	for f := range w.files {
		watched[filepath.Dir(f)] = true
	}
	for d := range w.dirs {
		watched[d] = true
	}
	for dir := range watched {
		if err := w.watcher.Add(dir); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
				WithContext("path", dir).
				Build()
		}
		slog.Debug("Watching directory", logfields.Path(dir))
	}

	if w.opts.Interval > 0 {
		s, err := w.schedule(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Shutdown(); err != nil {
				slog.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}()
	}

	slog.Info("Watching for changes", logfields.Count(len(watched)), slog.Duration("debounce", w.opts.Debounce))
	w.runBuild(ctx, "startup")

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watcher")
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.runBuild(ctx, "change")
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	p := absPath(event.Name)
	if w.files[p] {
		return true
	}
	return w.dirs[filepath.Dir(p)] && !w.opts.Ignore(p)
}

func (w *Watcher) schedule(ctx context.Context) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(w.runBuild, ctx, "interval"),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	s.Start()
	slog.Info("Scheduled periodic rebuild", slog.Duration("interval", w.opts.Interval))
	return s, nil
}

// runBuild serialises builds between the event loop and the scheduler.
func (w *Watcher) runBuild(ctx context.Context, reason string) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := w.build(ctx, reason); err != nil {
		slog.Error("Rebuild failed", slog.String("reason", reason), logfields.Error(err))
	}
}
