package errors

import "maps"

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// Configuration family. Detected before any output is written.
	CategoryValidation      ErrorCategory = "validation"
	CategoryConfig          ErrorCategory = "config"
	CategoryInputMissing    ErrorCategory = "input_missing"
	CategoryToolMissing     ErrorCategory = "tool_missing"
	CategoryAssetDirMissing ErrorCategory = "asset_dir_missing"

	// CategoryScan marks a reference line that could not be parsed.
	CategoryScan ErrorCategory = "scan"

	// CategoryExternalTool marks a failing JS or CSS minifier process.
	CategoryExternalTool ErrorCategory = "external_tool"

	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryCanceled   ErrorCategory = "canceled"
	CategoryInternal   ErrorCategory = "internal"
)

// configurationCategories lists the categories reported as configuration errors.
var configurationCategories = map[ErrorCategory]struct{}{
	CategoryValidation:      {},
	CategoryConfig:          {},
	CategoryInputMissing:    {},
	CategoryToolMissing:     {},
	CategoryAssetDirMissing: {},
}

// IsConfigurationCategory reports whether c belongs to the configuration family.
func IsConfigurationCategory(c ErrorCategory) bool {
	_, ok := configurationCategories[c]
	return ok
}

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RetryStrategy indicates how an error should be handled in retry scenarios.
// Minifiers are assumed deterministic, so almost everything here is RetryNever.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryImmediate  RetryStrategy = "immediate"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c[key]
	return value, exists
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	if value, exists := c.Get(key); exists {
		if str, ok := value.(string); ok {
			return str, true
		}
	}
	return "", false
}

// Merge combines two contexts, with other taking precedence.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}
	result := make(ErrorContext)
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
