// Package events publishes build lifecycle notifications so other systems
// (deploy hooks, cache purgers) can react to a finished bundle.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// BuildCompleted is published once per build, whatever the outcome.
type BuildCompleted struct {
	BuildID     string    `json:"build_id"`
	Outcome     string    `json:"outcome"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Bundle      string    `json:"bundle,omitempty"`
	Scripts     int       `json:"scripts"`
	Stylesheets int       `json:"stylesheets"`
	BundleBytes int       `json:"bundle_bytes"`
	Revision    string    `json:"revision,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Encode renders the event as JSON.
func (e *BuildCompleted) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers build events.
type Publisher interface {
	PublishBuildCompleted(ctx context.Context, event *BuildCompleted) error
	Close() error
}

// NoopPublisher discards events (default when no broker is configured).
type NoopPublisher struct{}

func (NoopPublisher) PublishBuildCompleted(context.Context, *BuildCompleted) error { return nil }
func (NoopPublisher) Close() error                                                 { return nil }
