package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyTarget     = "target"
	KeyAssetKind  = "asset_kind"
	KeyTool       = "tool"
	KeyLine       = "line"
	KeyCount      = "count"
	KeyBytes      = "bytes"
	KeyOutcome    = "outcome"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Target(p string) slog.Attr          { return slog.String(KeyTarget, p) }
func AssetKind(k string) slog.Attr       { return slog.String(KeyAssetKind, k) }
func Tool(t string) slog.Attr            { return slog.String(KeyTool, t) }
func Line(n int) slog.Attr               { return slog.Int(KeyLine, n) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func Bytes(n int) slog.Attr              { return slog.Int(KeyBytes, n) }
func Outcome(o string) slog.Attr         { return slog.String(KeyOutcome, o) }
func Duration(d time.Duration) slog.Attr { return DurationMS(float64(d.Microseconds()) / 1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
