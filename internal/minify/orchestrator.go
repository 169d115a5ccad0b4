package minify

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/pagebundle/internal/assets"
	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
	"git.home.luguber.info/inful/pagebundle/internal/metrics"
)

// Orchestrator sequences minifier invocations and applies the skip policy for
// already-minified assets. It satisfies scan.StylesheetHandler.
type Orchestrator struct {
	scripts  ScriptMinifier
	styles   StylesheetMinifier
	recorder metrics.Recorder

	// Invocations counts minifier runs per asset kind for the build report.
	Invocations map[assets.Kind]int
}

// NewOrchestrator creates an Orchestrator using the given minifiers.
func NewOrchestrator(scripts ScriptMinifier, styles StylesheetMinifier) *Orchestrator {
	return &Orchestrator{
		scripts:     scripts,
		styles:      styles,
		recorder:    metrics.NoopRecorder{},
		Invocations: map[assets.Kind]int{},
	}
}

// WithRecorder injects a metrics recorder.
func (o *Orchestrator) WithRecorder(r metrics.Recorder) *Orchestrator {
	if r != nil {
		o.recorder = r
	}
	return o
}

// HandleStylesheet minifies a stylesheet into its target path, or does
// nothing for a pre-minified one.
func (o *Orchestrator) HandleStylesheet(ctx context.Context, ref assets.Reference) error {
	if ref.PreMinified {
		o.recorder.IncAssetSkipped(string(assets.KindStylesheet))
		slog.Debug("Skipping pre-minified stylesheet", logfields.AssetKind(string(assets.KindStylesheet)), logfields.Path(ref.SourcePath))
		return nil
	}

	// A stale target from an earlier build must not pass for fresh output.
	if err := os.Remove(ref.TargetPath); err != nil && !os.IsNotExist(err) {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove previous stylesheet output").
			WithContext("path", ref.TargetPath).
			Build()
	}

	start := time.Now()
	err := o.styles.MinifyStylesheet(ctx, ref.SourcePath, ref.TargetPath)
	if err == nil {
		// An empty file is valid output for a stylesheet with no rules.
		if _, statErr := os.Stat(ref.TargetPath); statErr != nil {
			err = errors.ExternalToolError("stylesheet minifier produced no output").
				WithContext("tool", o.styles.Name()).
				WithContext("path", ref.TargetPath).
				Build()
		}
	}
	o.observe(assets.KindStylesheet, start, err)
	if err != nil {
		return err
	}

	slog.Info("Minified stylesheet",
		logfields.Path(ref.SourcePath),
		logfields.Target(ref.TargetPath),
		logfields.Tool(o.styles.Name()),
		logfields.Duration(time.Since(start)))
	return nil
}

// BundleScripts concatenates scriptPaths into a temporary file inside tempDir
// and minifies it in one invocation. The minified text replaces the
// concatenation; the temporary file is always removed. An empty list
// returns nil without invoking the minifier.
func (o *Orchestrator) BundleScripts(ctx context.Context, scriptPaths []string, tempDir string) ([]byte, error) {
	if len(scriptPaths) == 0 {
		return nil, nil
	}

	f, err := os.CreateTemp(tempDir, assets.TempPattern+".js")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create concatenation file").
			WithContext("path", tempDir).
			Build()
	}
	concatPath := f.Name()
	defer func() { _ = os.Remove(concatPath) }()

	n, err := Concatenate(f, scriptPaths)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = errors.WrapError(closeErr, errors.CategoryFileSystem, "failed to write concatenation file").
			WithContext("path", concatPath).
			Build()
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("Concatenated scripts", logfields.Count(len(scriptPaths)), logfields.Bytes(int(n)))

	start := time.Now()
	out, err := o.scripts.MinifyScript(ctx, concatPath)
	if err == nil && len(bytes.TrimSpace(out)) == 0 {
		err = errors.ExternalToolError("script minifier produced no output").
			WithContext("tool", o.scripts.Name()).
			Build()
	}
	o.observe(assets.KindScript, start, err)
	if err != nil {
		return nil, err
	}

	slog.Info("Minified script bundle",
		logfields.Count(len(scriptPaths)),
		logfields.Bytes(len(out)),
		logfields.Tool(o.scripts.Name()),
		logfields.Duration(time.Since(start)))
	return out, nil
}

func (o *Orchestrator) observe(kind assets.Kind, start time.Time, err error) {
	o.Invocations[kind]++
	o.recorder.ObserveMinifierDuration(string(kind), time.Since(start), err == nil)
}

// SkipScript records a pre-minified script that bypasses the bundle.
func (o *Orchestrator) SkipScript(ref assets.Reference) {
	o.recorder.IncAssetSkipped(string(assets.KindScript))
	slog.Debug("Skipping pre-minified script", logfields.AssetKind(string(assets.KindScript)), logfields.Path(ref.SourcePath))
}
