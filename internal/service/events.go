package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Event is a domain event emitted after successful mutations.
type Event struct {
	Type string                 `json:"type"`
	At   time.Time              `json:"at"`
	Data map[string]interface{} `json:"data"`
}

// EventPublisher broadcasts domain events to interested consumers.
// Publishing is best-effort: failures are logged, never surfaced.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewNATSPublisher builds a publisher over an established NATS connection.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	if subject == "" {
		subject = "classroom.events"
	}

	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
		now:     time.Now,
	}
}

func (p *natsPublisher) Publish(_ context.Context, event Event) {
	if p.conn == nil {
		return
	}

	if event.At.IsZero() {
		event.At = p.now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to encode event")
		return
	}

	if err := p.conn.Publish(p.subject+"."+event.Type, payload); err != nil {
		p.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to publish event")
	}
}

type fanoutPublisher struct {
	publishers []EventPublisher
}

// NewFanoutPublisher delivers every event to each of the given publishers
// in order. Nil entries are skipped.
func NewFanoutPublisher(publishers ...EventPublisher) EventPublisher {
	kept := make([]EventPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			kept = append(kept, p)
		}
	}

	return &fanoutPublisher{publishers: kept}
}

func (p *fanoutPublisher) Publish(ctx context.Context, event Event) {
	for _, target := range p.publishers {
		target.Publish(ctx, event)
	}
}

// noopPublisher is used when no broker is configured.
type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() EventPublisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) {}
