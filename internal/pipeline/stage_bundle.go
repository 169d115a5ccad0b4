package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pagebundle/internal/license"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
)

// stageBundleScripts concatenates the collected scripts and minifies them in
// a single invocation.
func stageBundleScripts(ctx context.Context, bs *BuildState) error {
	if bs.Collector.Len() == 0 {
		bs.Report.BundleSkipped = true
		slog.Info("No scripts to bundle; minifier not invoked")
		return ErrStageSkipped
	}

	out, err := bs.Orchestrator.BundleScripts(ctx, bs.Collector.Paths(), bs.Layout.JSDir)
	if err != nil {
		return err
	}
	bs.Minified = out
	return nil
}

// stageInjectLicense writes the license header and the minified bundle to a
// pending bundle file.
func stageInjectLicense(_ context.Context, bs *BuildState) error {
	if bs.Report.BundleSkipped {
		return ErrStageSkipped
	}

	f, err := createPending(bs.Layout.BundlePath)
	if err != nil {
		return err
	}
	bs.bundle = f

	var notes []string
	if bs.Config.StampRevision && !bs.Revision.IsZero() {
		notes = append(notes, "revision: "+bs.Revision.String())
	}

	n, err := license.Inject(f, bs.Licenses, bs.Minified, notes...)
	if err != nil {
		return wrapFS(err, "failed to write bundle", bs.Layout.BundlePath)
	}
	if err := f.Close(); err != nil {
		return err
	}
	bs.Report.BundleBytes = n

	slog.Debug("Injected license header",
		logfields.Count(len(bs.Licenses)),
		logfields.Bytes(n))
	return nil
}
