// Package errors provides the classified error primitives used across pagebundle.
//
// Every failure a run can hit belongs to one of three families:
//
//   - configuration errors: bad arguments, identical input/output paths, missing
//     input document, minifier tool or asset directory, unreadable config files
//   - scan errors: a reference line that looks like an asset reference but cannot
//     be parsed into a usable filename
//   - external tool errors: a minifier that exits non-zero or produces nothing
//
// Each family is expressed as one or more ErrorCategory values so the CLI adapter
// can map them to distinct exit codes.
//
// Example usage:
//
//	err := errors.ExternalToolError("js minifier failed").
//		WithContext("tool", toolPath).
//		WithContext("stderr", stderr).
//		WithCause(runErr).
//		Build()
package errors
