package pipeline

import (
	"errors"

	ferrors "git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

// StageOutcome normalized result of stage execution.
type StageOutcome struct {
	Stage     StageName
	Error     *StageError
	Result    StageResult
	IssueCode ReportIssueCode
	Severity  IssueSeverity
	Abort     bool
}

// ClassifyStageResult converts a raw error from a stage into a StageOutcome.
// Errors that are not StageErrors are fatal unless they carry the canceled
// category.
func ClassifyStageResult(stage StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var se *StageError
	if !errors.As(err, &se) {
		if ferrors.HasCategory(err, ferrors.CategoryCanceled) {
			se = NewCanceledStageError(stage, err)
		} else {
			se = NewFatalStageError(stage, err)
		}
	}

	switch se.Kind {
	case StageErrorCanceled:
		return StageOutcome{Stage: stage, Error: se, Result: StageResultCanceled, IssueCode: IssueCanceled, Severity: SeverityError, Abort: true}
	case StageErrorWarning:
		return StageOutcome{Stage: stage, Error: se, Result: StageResultWarning, IssueCode: issueCode(se), Severity: SeverityWarning}
	default:
		return StageOutcome{Stage: stage, Error: se, Result: StageResultFatal, IssueCode: issueCode(se), Severity: SeverityError, Abort: true}
	}
}

// issueCode maps the error category of the cause to a report issue code.
func issueCode(se *StageError) ReportIssueCode {
	if se.Stage == StageVerifyOutput && se.Kind == StageErrorWarning {
		return IssueMissingAsset
	}
	switch ferrors.GetCategory(se.Err) {
	case ferrors.CategoryValidation:
		return IssueInvalidConfig
	case ferrors.CategoryConfig:
		return IssueConfigLoad
	case ferrors.CategoryInputMissing:
		return IssueInputMissing
	case ferrors.CategoryToolMissing:
		return IssueToolMissing
	case ferrors.CategoryAssetDirMissing:
		return IssueAssetDirMissing
	case ferrors.CategoryScan:
		return IssueScanFailure
	case ferrors.CategoryExternalTool:
		return IssueMinifierFailure
	case ferrors.CategoryFileSystem:
		if se.Stage == StageResolvePaths && se.Kind == StageErrorWarning {
			return IssueRevision
		}
		return IssueFileSystem
	case ferrors.CategoryCanceled:
		return IssueCanceled
	}
	return IssueGenericStageFail
}
