package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryInputMissing, "input document does not exist").
			WithSeverity(SeverityFatal).
			WithContext("path", "index.html").
			Build()

		if err.Category() != CategoryInputMissing {
			t.Errorf("expected category %s, got %s", CategoryInputMissing, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "input document does not exist" {
			t.Errorf("unexpected message %q", err.Message())
		}

		path, exists := err.Context().GetString("path")
		if !exists || path != "index.html" {
			t.Errorf("expected context path=index.html, got %v", path)
		}
	})

	t.Run("Configuration family", func(t *testing.T) {
		for _, b := range []*ErrorBuilder{
			ValidationError("x"), ConfigError("x"), InputMissingError("x"),
			ToolMissingError("x"), AssetDirMissingError("x"),
		} {
			err := b.Build()
			if !err.IsConfiguration() {
				t.Errorf("expected %s to be a configuration error", err.Category())
			}
			if err.CanRetry() {
				t.Errorf("expected %s to not be retryable", err.Category())
			}
		}

		for _, b := range []*ErrorBuilder{ScanError("x"), ExternalToolError("x"), FileSystemError("x")} {
			if b.Build().IsConfiguration() {
				t.Errorf("did not expect configuration family")
			}
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		base := ScanError("unparseable script reference").WithContext("line", 12).Build()
		wrapped := fmt.Errorf("scan_document: %w", base)

		if !IsClassified(wrapped) {
			t.Fatal("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryScan) {
			t.Error("expected scan category through wrapper")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified errors to default to internal")
		}
		if GetSeverity(wrapped) != SeverityFatal {
			t.Error("expected fatal severity")
		}
	})

	t.Run("WithContext does not mutate original", func(t *testing.T) {
		orig := ExternalToolError("css minifier failed").Build()
		extended := orig.WithContext("tool", "cleancss")

		if _, ok := orig.Context().Get("tool"); ok {
			t.Error("original context mutated")
		}
		if v, _ := extended.Context().GetString("tool"); v != "cleancss" {
			t.Errorf("expected tool=cleancss, got %q", v)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("exit status 1")
		err := WrapError(originalErr, CategoryExternalTool, "js minifier failed").
			WithContext("tool", "uglifyjs").
			WithContextMap(ErrorContext{"stderr": "Parse error at a.js:3"}).
			Build()

		if err.Category() != CategoryExternalTool {
			t.Errorf("expected category %s, got %s", CategoryExternalTool, err.Category())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if err.Cause() != originalErr {
			t.Error("expected cause to be the original error")
		}
		stderr, _ := err.Context().GetString("stderr")
		if stderr != "Parse error at a.js:3" {
			t.Errorf("unexpected stderr context %q", stderr)
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
			retry    RetryStrategy
		}{
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal, RetryUserAction},
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal, RetryUserAction},
			{"InputMissingError", InputMissingError("test"), CategoryInputMissing, SeverityFatal, RetryUserAction},
			{"ToolMissingError", ToolMissingError("test"), CategoryToolMissing, SeverityFatal, RetryUserAction},
			{"AssetDirMissingError", AssetDirMissingError("test"), CategoryAssetDirMissing, SeverityFatal, RetryUserAction},
			{"ScanError", ScanError("test"), CategoryScan, SeverityFatal, RetryNever},
			{"ExternalToolError", ExternalToolError("test"), CategoryExternalTool, SeverityFatal, RetryNever},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityFatal, RetryNever},
			{"CanceledError", CanceledError("test"), CategoryCanceled, SeverityFatal, RetryNever},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal, RetryNever},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
				if err.RetryStrategy() != tt.retry {
					t.Errorf("expected retry strategy %s, got %s", tt.retry, err.RetryStrategy())
				}
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	t.Run("Context operations", func(t *testing.T) {
		ctx := make(ErrorContext)
		ctx = ctx.Set("key1", "value1")
		ctx = ctx.Set("key2", 42)

		value1, exists1 := ctx.GetString("key1")
		if !exists1 || value1 != "value1" {
			t.Errorf("expected key1=value1, got %v", value1)
		}

		value2, exists2 := ctx.Get("key2")
		if !exists2 || value2 != 42 {
			t.Errorf("expected key2=42, got %v", value2)
		}

		if _, exists3 := ctx.Get("nonexistent"); exists3 {
			t.Error("expected nonexistent key to not exist")
		}
	})

	t.Run("Context merge", func(t *testing.T) {
		ctx1 := ErrorContext{"key1": "value1", "shared": "original"}
		ctx2 := ErrorContext{"key2": "value2", "shared": "overridden"}

		merged := ctx1.Merge(ctx2)

		shared, _ := merged.GetString("shared")
		if shared != "overridden" {
			t.Errorf("expected shared=overridden, got %s", shared)
		}
		if _, ok := merged.Get("key1"); !ok {
			t.Error("expected key1 in merged context")
		}
		if v, _ := ctx1.GetString("shared"); v != "original" {
			t.Error("merge mutated the receiver")
		}
	})
}
