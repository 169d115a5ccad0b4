package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitSuccess},
		{"identical paths", ValidationError("input and output are the same file").Build(), ExitUsage},
		{"missing input", InputMissingError("missing").Build(), ExitInputMissing},
		{"missing tool", ToolMissingError("missing").Build(), ExitToolMissing},
		{"missing js dir", AssetDirMissingError("missing").Build(), ExitAssetDirMissing},
		{"scan", ScanError("bad line").Build(), ExitScan},
		{"config file", ConfigError("bad yaml").Build(), ExitConfig},
		{"external tool", ExternalToolError("minifier failed").Build(), ExitExternalTool},
		{"filesystem", FileSystemError("write failed").Build(), ExitFileSystem},
		{"canceled", CanceledError("interrupted").Build(), ExitCanceled},
		{"wrapped classified", fmt.Errorf("stage: %w", ScanError("x").Build()), ExitScan},
		{"unclassified error", errors.New("unknown error"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_ExitCodesAreDistinctPerClass(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)
	seen := map[int]ErrorCategory{}
	for _, c := range []ErrorCategory{
		CategoryValidation, CategoryInputMissing, CategoryToolMissing, CategoryAssetDirMissing,
		CategoryScan, CategoryConfig, CategoryExternalTool,
	} {
		code := adapter.ExitCodeFor(NewError(c, "x").Build())
		if prev, dup := seen[code]; dup {
			t.Fatalf("exit code %d shared by %s and %s", code, prev, c)
		}
		if code == ExitSuccess {
			t.Fatalf("category %s mapped to success", c)
		}
		seen[code] = c
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "nil error",
			err:      nil,
			contains: nil,
		},
		{
			name:     "names the offending path",
			err:      InputMissingError("input document does not exist").WithContext("path", "site/index.html").Build(),
			contains: []string{"Error: input document does not exist", "path: site/index.html"},
		},
		{
			name: "external tool stderr surfaced verbatim",
			err: ExternalToolError("js minifier failed").
				WithContext("tool", "uglifyjs").
				WithContext("stderr", "Parse error: Unexpected token\n  at js/a.js:3\n").
				Build(),
			contains: []string{"js minifier failed", "tool: uglifyjs", "Parse error: Unexpected token\n  at js/a.js:3"},
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			contains: []string{"Error: unknown error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.FormatError(tt.err)
			if tt.contains == nil {
				if got != "" {
					t.Errorf("FormatError() = %q, want empty string", got)
				}
				return
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatError() = %q, want to contain %q", got, want)
				}
			}
		})
	}
}

func TestCLIErrorAdapter_FormatErrorVerbose(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, slog.Default())
	err := ScanError("malformed script reference").WithContext("line", 7).Build()

	got := adapter.FormatError(err)
	if !strings.HasPrefix(got, "[scan:fatal] malformed script reference") {
		t.Errorf("unexpected verbose output %q", got)
	}
	if !strings.Contains(got, "line: 7") {
		t.Errorf("expected line context in %q", got)
	}
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

func TestCLIErrorAdapter_Handle(t *testing.T) {
	var buf strings.Builder
	a := NewCLIErrorAdapter(false, nil)

	if code := a.Handle(&buf, nil); code != ExitSuccess || buf.Len() != 0 {
		t.Fatalf("nil error: got code %d, output %q", code, buf.String())
	}

	err := ToolMissingError("js minifier not found").WithContext("tool", "uglifyjs").Build()
	if code := a.Handle(&buf, err); code != ExitToolMissing {
		t.Errorf("exit code = %d, want %d", code, ExitToolMissing)
	}
	for _, want := range []string{"Error: js minifier not found", "tool: uglifyjs"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q missing %q", buf.String(), want)
		}
	}
}
