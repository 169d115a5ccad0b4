// Package history keeps a local ledger of bundle builds in SQLite so past
// runs can be listed with `pagebundle history`.
package history

import (
	"context"
	"time"
)

// Entry is one recorded build.
type Entry struct {
	BuildID     string        `json:"build_id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Input       string        `json:"input"`
	Output      string        `json:"output"`
	Outcome     string        `json:"outcome"`
	Scripts     int           `json:"scripts"`
	Stylesheets int           `json:"stylesheets"`
	BundleBytes int           `json:"bundle_bytes"`
	Revision    string        `json:"revision,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Store defines the interface for the build ledger.
type Store interface {
	// Record appends an entry.
	Record(ctx context.Context, e Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Close closes the store.
	Close() error
}
