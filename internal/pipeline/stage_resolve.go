package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pagebundle/internal/license"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
	"git.home.luguber.info/inful/pagebundle/internal/minify"
	"git.home.luguber.info/inful/pagebundle/internal/paths"
	"git.home.luguber.info/inful/pagebundle/internal/revision"
)

// stageResolvePaths validates the configuration against the file system and
// prepares everything later stages need. Nothing is written here.
func stageResolvePaths(_ context.Context, bs *BuildState) error {
	layout, err := paths.Resolve(bs.Config)
	if err != nil {
		return err
	}
	bs.Layout = layout
	bs.Report.Bundle = layout.BundlePath

	licenses, err := license.Resolve(bs.Config.Licenses, bs.Config.LicenseManifest)
	if err != nil {
		return err
	}
	bs.Licenses = licenses

	js, css := bs.builder.scripts, bs.builder.styles
	if js == nil || css == nil {
		defJS, defCSS := minify.FromConfig(bs.Config, layout)
		if js == nil {
			js = defJS
		}
		if css == nil {
			css = defCSS
		}
	}
	bs.Orchestrator = minify.NewOrchestrator(js, css).WithRecorder(bs.recorder)

	slog.Debug("Resolved layout",
		logfields.Path(layout.InputDocument),
		logfields.Target(layout.OutputDocument),
		slog.String("prefix", layout.RelativePrefix),
		logfields.Tool(js.Name()))

	if bs.Config.StampRevision {
		info, err := revision.Detect(layout.InputDir)
		if err != nil {
			return NewWarnStageError(StageResolvePaths, err)
		}
		bs.Revision = info
		bs.Report.Revision = info.String()
	}
	return nil
}
