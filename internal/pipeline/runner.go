package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagebundle/internal/logfields"
)

// ErrStageSkipped is returned by a stage that had nothing to do. It is
// recorded as a skipped result, not as an issue.
var ErrStageSkipped = errors.New("stage skipped")

// RunStages executes stages in order, recording timing and stopping on first fatal error.
func RunStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := NewCanceledStageError(st.Name, err)
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.AddIssue(IssueCanceled, st.Name, SeverityError, se.Error(), se)
			bs.Report.RecordStageResult(st.Name, StageResultCanceled, bs.recorder)
			bs.observer.OnStageComplete(st.Name, 0, StageResultCanceled)
			return se
		}

		bs.observer.OnStageStart(st.Name)

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[string(st.Name)] = dur

		if errors.Is(err, ErrStageSkipped) {
			bs.Report.RecordStageResult(st.Name, StageResultSkipped, bs.recorder)
			bs.observer.OnStageComplete(st.Name, dur, StageResultSkipped)
			slog.Debug("Stage skipped", logfields.Stage(string(st.Name)))
			continue
		}

		out := ClassifyStageResult(st.Name, err)
		if out.Error != nil {
			bs.Report.StageErrorKinds[st.Name] = out.Error.Kind
			bs.Report.AddIssue(out.IssueCode, out.Stage, out.Severity, out.Error.Error(), out.Error)
			if out.Severity == SeverityWarning {
				slog.Warn("Stage completed with warning", logfields.Stage(string(st.Name)), logfields.Error(out.Error.Err))
			}
		}

		bs.Report.RecordStageResult(st.Name, out.Result, bs.recorder)
		bs.observer.OnStageComplete(st.Name, dur, out.Result)

		if out.Abort {
			return out.Error
		}
		slog.Debug("Stage complete", logfields.Stage(string(st.Name)), logfields.Duration(dur))
	}
	return nil
}
