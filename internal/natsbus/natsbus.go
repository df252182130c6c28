package natsbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kiwari-pos/tableside/internal/event"
	"github.com/nats-io/nats.go"
)

// DefaultPrefix is prepended to the event type to form the subject.
const DefaultPrefix = "tableside"

// Conn is the subset of *nats.Conn used by the publisher.
type Conn interface {
	Publish(subj string, data []byte) error
	Close()
}

// Publisher forwards engine events to NATS, one subject per event type
// (e.g. "tableside.item.status_changed").
type Publisher struct {
	conn   Conn
	prefix string
}

// Connect dials the NATS server at url.
func Connect(url, prefix string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("tableside"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return New(conn, prefix), nil
}

// New wraps an existing connection.
func New(conn Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event is published on.
func (p *Publisher) Subject(ev event.Event) string {
	return p.prefix + "." + ev.Type
}

// Publish implements event.Publisher.
func (p *Publisher) Publish(_ context.Context, ev event.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(ev), data); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Close closes the underlying connection.
func (p *Publisher) Close() error {
	p.conn.Close()
	return nil
}
