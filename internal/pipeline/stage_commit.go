package pipeline

import (
	"context"
	"log/slog"
	"strings"

	ferrors "git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
	"git.home.luguber.info/inful/pagebundle/internal/verify"
)

// stageCommitOutputs moves the pending outputs into place. The bundle goes
// first so the document never references a bundle that is not there yet.
func stageCommitOutputs(_ context.Context, bs *BuildState) error {
	for _, p := range []*pendingFile{bs.bundle, bs.document} {
		if p == nil {
			continue
		}
		if err := p.Commit(); err != nil {
			return err
		}
		slog.Debug("Committed output", logfields.Path(p.target))
	}
	return nil
}

// stageVerifyOutput checks that every relative asset reference in the written
// document resolves. Missing targets are warnings.
func stageVerifyOutput(_ context.Context, bs *BuildState) error {
	res, err := verify.Document(bs.Layout.OutputDocument)
	if err != nil {
		return NewWarnStageError(StageVerifyOutput, err)
	}
	if res.OK() {
		return nil
	}

	missing := make([]string, 0, len(res.Missing))
	for _, l := range res.Missing {
		missing = append(missing, l.URL)
		slog.Warn("Output references a missing asset", logfields.Target(l.URL), logfields.Path(l.Resolved))
	}
	bs.Report.MissingAssets = missing
	return NewWarnStageError(StageVerifyOutput,
		ferrors.NewError(ferrors.CategoryFileSystem, "output document references missing assets").
			WithContext("missing", strings.Join(missing, ", ")).
			Warning().
			Build())
}

func wrapFS(err error, msg, path string) error {
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, msg).
		WithContext("path", path).
		Build()
}
