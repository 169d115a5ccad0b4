package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Exit codes returned by the pagebundle binary, one per failure class.
const (
	ExitSuccess         = 0
	ExitGeneral         = 1
	ExitUsage           = 2
	ExitInputMissing    = 3
	ExitToolMissing     = 4
	ExitAssetDirMissing = 5
	ExitScan            = 6
	ExitConfig          = 7
	ExitExternalTool    = 8
	ExitInternal        = 10
	ExitFileSystem      = 11
	ExitCanceled        = 130
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if classified, ok := AsClassified(err); ok {
		return exitCodeFromCategory(classified.Category())
	}
	return ExitGeneral
}

func exitCodeFromCategory(c ErrorCategory) int {
	switch c {
	case CategoryValidation:
		return ExitUsage
	case CategoryInputMissing:
		return ExitInputMissing
	case CategoryToolMissing:
		return ExitToolMissing
	case CategoryAssetDirMissing:
		return ExitAssetDirMissing
	case CategoryScan:
		return ExitScan
	case CategoryConfig:
		return ExitConfig
	case CategoryExternalTool:
		return ExitExternalTool
	case CategoryFileSystem:
		return ExitFileSystem
	case CategoryCanceled:
		return ExitCanceled
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitGeneral
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	if classified, ok := AsClassified(err); ok {
		return a.formatClassified(classified)
	}
	return fmt.Sprintf("Error: %v", err)
}

// formatClassified names the offending path or tool and, for external tools,
// repeats the tool's own diagnostics verbatim.
func (a *CLIErrorAdapter) formatClassified(err *ClassifiedError) string {
	var b strings.Builder
	if a.verbose {
		b.WriteString(err.Error())
	} else {
		b.WriteString("Error: ")
		b.WriteString(err.Message())
		if cause := err.Cause(); cause != nil {
			b.WriteString(": ")
			b.WriteString(cause.Error())
		}
	}

	keys := make([]string, 0, len(err.Context()))
	for k := range err.Context() {
		if k == "stderr" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, _ := err.Context().Get(k)
		fmt.Fprintf(&b, "\n  %s: %v", k, v)
	}

	if stderr, ok := err.Context().GetString("stderr"); ok && strings.TrimSpace(stderr) != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(stderr, "\n"))
	}
	return b.String()
}

// Handle writes the formatted error to w, logs it when verbose and returns
// the exit code for it.
func (a *CLIErrorAdapter) Handle(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	if a.verbose {
		a.logError(err)
	}
	fmt.Fprintln(w, a.FormatError(err))
	return a.ExitCodeFor(err)
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if classified, ok := AsClassified(err); ok {
		attrs := []slog.Attr{
			slog.String("category", string(classified.Category())),
		}
		if classified.CanRetry() {
			attrs = append(attrs, slog.Bool("retryable", true))
		}
		a.logger.LogAttrs(context.Background(), a.slogLevelFromSeverity(classified.Severity()), classified.Message(), attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts ClassifiedError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityError, SeverityFatal:
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
