package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
)

const (
	// DefaultSubject is used when the configuration names none.
	DefaultSubject = "pagebundle.builds"

	connectTimeout = 5 * time.Second
	flushTimeout   = 5 * time.Second
)

// NATSPublisher publishes events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to url. Connection errors are returned so the
// caller can decide to fall back to NoopPublisher.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	conn, err := nats.Connect(url,
		nats.Name("pagebundle"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryExternalTool, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}

	slog.Debug("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishBuildCompleted publishes event and waits for the server to
// acknowledge the flush.
func (p *NATSPublisher) PublishBuildCompleted(ctx context.Context, event *BuildCompleted) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := event.Encode()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal build event").Build()
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryExternalTool, "failed to publish build event").
			WithContext("subject", p.subject).
			Build()
	}

	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		return errors.WrapError(err, errors.CategoryExternalTool, "failed to flush build event").
			WithContext("subject", p.subject).
			Build()
	}

	slog.Debug("Published build event",
		logfields.BuildID(event.BuildID),
		logfields.Outcome(event.Outcome),
		slog.String("subject", p.subject))
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
