package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	ferrors "git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

func TestDeriveOutcome(t *testing.T) {
	r := NewBuildReport("id")
	r.DeriveOutcome()
	assert.Equal(t, OutcomeSuccess, r.Outcome)

	r.Warnings = append(r.Warnings, errors.New("w"))
	r.DeriveOutcome()
	assert.Equal(t, OutcomeWarning, r.Outcome)

	r.Errors = append(r.Errors, NewFatalStageError(StageScanDocument, errors.New("x")))
	r.DeriveOutcome()
	assert.Equal(t, OutcomeFailed, r.Outcome)

	r.Errors = []error{NewCanceledStageError(StageScanDocument, context.Canceled)}
	r.DeriveOutcome()
	assert.Equal(t, OutcomeCanceled, r.Outcome)
}

func TestClassifyStageResult(t *testing.T) {
	tests := []struct {
		name   string
		stage  StageName
		err    error
		result StageResult
		code   ReportIssueCode
		abort  bool
	}{
		{name: "success", stage: StageScanDocument, result: StageResultSuccess},
		{name: "tool missing", stage: StageResolvePaths, err: ferrors.ToolMissingError("x").Build(), result: StageResultFatal, code: IssueToolMissing, abort: true},
		{name: "asset dir", stage: StageScanDocument, err: ferrors.AssetDirMissingError("x").Build(), result: StageResultFatal, code: IssueAssetDirMissing, abort: true},
		{name: "plain error", stage: StageCommitOutputs, err: errors.New("x"), result: StageResultFatal, code: IssueGenericStageFail, abort: true},
		{name: "canceled category", stage: StageScanDocument, err: ferrors.CanceledError("x").Build(), result: StageResultCanceled, code: IssueCanceled, abort: true},
		{name: "revision warning", stage: StageResolvePaths, err: NewWarnStageError(StageResolvePaths, ferrors.FileSystemError("x").Build()), result: StageResultWarning, code: IssueRevision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ClassifyStageResult(tt.stage, tt.err)
			assert.Equal(t, tt.result, out.Result)
			assert.Equal(t, tt.code, out.IssueCode)
			assert.Equal(t, tt.abort, out.Abort)
		})
	}
}

func TestSanitizedCopy(t *testing.T) {
	r := NewBuildReport("id")
	r.Errors = append(r.Errors, errors.New("boom"))
	r.RecordStageResult(StageBundleScripts, StageResultSkipped, nil)
	s := r.SanitizedCopy()
	assert.Equal(t, []string{"boom"}, s.Errors)
	assert.Equal(t, 1, s.StageCounts[string(StageBundleScripts)].Skipped)
	assert.NotNil(t, s.Issues)
}
