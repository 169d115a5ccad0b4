package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ferrors "git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/metrics"
	"git.home.luguber.info/inful/pagebundle/internal/version"
)

// Report file names written by Persist.
const (
	ReportJSONName = "pagebundle-report.json"
	ReportTextName = "pagebundle-report.txt"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ReportIssueCode enumerates machine-parseable issue identifiers.
type ReportIssueCode string

const (
	IssueInvalidConfig    ReportIssueCode = "INVALID_CONFIGURATION"
	IssueInputMissing     ReportIssueCode = "INPUT_MISSING"
	IssueToolMissing      ReportIssueCode = "TOOL_MISSING"
	IssueAssetDirMissing  ReportIssueCode = "ASSET_DIR_MISSING"
	IssueConfigLoad       ReportIssueCode = "CONFIG_LOAD"
	IssueScanFailure      ReportIssueCode = "SCAN_FAILURE"
	IssueMinifierFailure  ReportIssueCode = "MINIFIER_FAILURE"
	IssueFileSystem       ReportIssueCode = "FILESYSTEM"
	IssueMissingAsset     ReportIssueCode = "MISSING_ASSET"
	IssueRevision         ReportIssueCode = "REVISION_UNAVAILABLE"
	IssueCanceled         ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageFail ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured taxonomy entry describing a discrete problem encountered.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Message  string          `json:"message"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
	Skipped  int `json:"skipped"`
}

// BuildReport captures what a single bundle build did.
type BuildReport struct {
	SchemaVersion int
	BuildID       string
	Start         time.Time
	End           time.Time

	Input  string
	Output string
	Bundle string

	Errors          []error // fatal errors causing build abortion (at most one)
	Warnings        []error // non-fatal issues
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount
	Outcome         BuildOutcome
	Issues          []ReportIssue

	LinesRead              int
	LinesWritten           int
	BlankLinesDropped      int
	ScriptsCollected       int
	PreMinifiedScripts     int
	StylesheetsMinified    int
	PreMinifiedStylesheets int
	MinifierInvocations    int

	// BundleSkipped is true when no script qualified for bundling, so neither
	// the minifier ran nor a bundle was written.
	BundleSkipped bool
	BundleBytes   int
	// MissingAssets lists output references that did not resolve on disk.
	MissingAssets []string

	Revision string
	Version  string
}

// NewBuildReport constructs a new BuildReport.
func NewBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		BuildID:         buildID,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
		Version:         version.Version,
	}
}

// AddIssue appends a structured issue and mirrors severity into Errors/Warnings slices.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg})
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// RecordStageResult updates BuildReport counters and emits metrics (if recorder non-nil).
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if r.StageCounts == nil {
		r.StageCounts = make(map[StageName]StageCount)
	}
	sc := r.StageCounts[stage]
	var label metrics.ResultLabel
	switch res {
	case StageResultSuccess:
		sc.Success++
		label = metrics.ResultSuccess
	case StageResultWarning:
		sc.Warning++
		label = metrics.ResultWarning
	case StageResultFatal:
		sc.Fatal++
		label = metrics.ResultFatal
	case StageResultCanceled:
		sc.Canceled++
		label = metrics.ResultCanceled
	case StageResultSkipped:
		sc.Skipped++
		label = metrics.ResultSkipped
	}
	r.StageCounts[stage] = sc
	if recorder != nil && label != "" {
		recorder.IncStageResult(string(stage), label)
	}
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// Duration is the wall time between Start and End.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// DeriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// FirstError returns the fatal error message, if any.
func (r *BuildReport) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Error()
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("build=%s scripts=%d premin_scripts=%d stylesheets=%d premin_stylesheets=%d bundle_bytes=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.BuildID, r.ScriptsCollected, r.PreMinifiedScripts, r.StylesheetsMinified, r.PreMinifiedStylesheets,
		r.BundleBytes, r.Duration().Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), string(r.Outcome))
}

// Persist writes the report atomically into the provided directory.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create report directory").
			WithContext("path", root).
			Build()
	}
	jb, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := writeAtomic(filepath.Join(root, ReportJSONName), jb); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(root, ReportTextName), []byte(r.Summary()+"\n"))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write report").
			WithContext("path", tmp).
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to rename report").
			WithContext("path", path).
			Build()
	}
	return nil
}

// SanitizedCopy returns a copy with error fields converted to strings for JSON friendliness.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}
	durations := make(map[string]int64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[k] = v.Milliseconds()
	}
	issues := r.Issues
	if issues == nil {
		issues = []ReportIssue{}
	}

	s := &BuildReportSerializable{
		SchemaVersion:          r.SchemaVersion,
		BuildID:                r.BuildID,
		Start:                  r.Start,
		End:                    r.End,
		Input:                  r.Input,
		Output:                 r.Output,
		Bundle:                 r.Bundle,
		Errors:                 make([]string, len(r.Errors)),
		Warnings:               make([]string, len(r.Warnings)),
		StageDurationsMS:       durations,
		StageErrorKinds:        sek,
		StageCounts:            stageCounts,
		Outcome:                string(r.Outcome),
		Issues:                 issues,
		LinesRead:              r.LinesRead,
		LinesWritten:           r.LinesWritten,
		BlankLinesDropped:      r.BlankLinesDropped,
		ScriptsCollected:       r.ScriptsCollected,
		PreMinifiedScripts:     r.PreMinifiedScripts,
		StylesheetsMinified:    r.StylesheetsMinified,
		PreMinifiedStylesheets: r.PreMinifiedStylesheets,
		MinifierInvocations:    r.MinifierInvocations,
		BundleSkipped:          r.BundleSkipped,
		BundleBytes:            r.BundleBytes,
		MissingAssets:          r.MissingAssets,
		Revision:               r.Revision,
		Version:                r.Version,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport but with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion          int                   `json:"schema_version"`
	BuildID                string                `json:"build_id"`
	Start                  time.Time             `json:"start"`
	End                    time.Time             `json:"end"`
	Input                  string                `json:"input"`
	Output                 string                `json:"output"`
	Bundle                 string                `json:"bundle,omitempty"`
	Errors                 []string              `json:"errors"`
	Warnings               []string              `json:"warnings"`
	StageDurationsMS       map[string]int64      `json:"stage_durations_ms"`
	StageErrorKinds        map[string]string     `json:"stage_error_kinds"`
	StageCounts            map[string]StageCount `json:"stage_counts"`
	Outcome                string                `json:"outcome"`
	Issues                 []ReportIssue         `json:"issues"`
	LinesRead              int                   `json:"lines_read"`
	LinesWritten           int                   `json:"lines_written"`
	BlankLinesDropped      int                   `json:"blank_lines_dropped"`
	ScriptsCollected       int                   `json:"scripts_collected"`
	PreMinifiedScripts     int                   `json:"pre_minified_scripts"`
	StylesheetsMinified    int                   `json:"stylesheets_minified"`
	PreMinifiedStylesheets int                   `json:"pre_minified_stylesheets"`
	MinifierInvocations    int                   `json:"minifier_invocations"`
	BundleSkipped          bool                  `json:"bundle_skipped"`
	BundleBytes            int                   `json:"bundle_bytes"`
	MissingAssets          []string              `json:"missing_assets,omitempty"`
	Revision               string                `json:"revision,omitempty"`
	Version                string                `json:"version"`
}
