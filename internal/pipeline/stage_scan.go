package pipeline

import (
	"context"
	"os"

	"git.home.luguber.info/inful/pagebundle/internal/assets"
	ferrors "git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/scan"
)

// stageScanDocument streams the input document through the scanner into a
// pending output file. Stylesheets are minified as they are encountered.
func stageScanDocument(ctx context.Context, bs *BuildState) error {
	layout := bs.Layout

	in, err := os.Open(layout.InputDocument)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open input document").
			WithContext("path", layout.InputDocument).
			Build()
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(layout.OutputDir, 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", layout.OutputDir).
			Build()
	}
	doc, err := createPending(layout.OutputDocument)
	if err != nil {
		return err
	}
	bs.document = doc

	scanner := scan.New(layout,
		assets.Naming{Marker: bs.Config.Assets.MinifiedMarker},
		bs.Orchestrator,
		scan.WithBodyOnly(bs.Config.Assets.BodyOnly))

	res, err := scanner.Scan(ctx, in, doc, bs.Collector)
	bs.Scan = res
	recordScan(bs.Report, res)
	if err != nil {
		return err
	}
	if err := doc.Close(); err != nil {
		return err
	}

	for _, ref := range res.References {
		if ref.Kind == assets.KindScript && ref.PreMinified {
			bs.Orchestrator.SkipScript(ref)
		}
	}
	return nil
}

func recordScan(r *BuildReport, res *scan.Result) {
	if res == nil {
		return
	}
	r.LinesRead = res.LinesRead
	r.LinesWritten = res.LinesWritten
	r.BlankLinesDropped = res.BlankLinesDropped
	r.ScriptsCollected = res.ScriptsCollected
	r.PreMinifiedScripts = res.PreMinifiedScripts
	r.StylesheetsMinified = res.StylesheetsMinified
	r.PreMinifiedStylesheets = res.PreMinifiedStylesheets
}
