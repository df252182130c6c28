package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the engine.
const (
	LineAdded                = "line.added"
	LineRemoved              = "line.removed"
	LineUpdated              = "line.updated"
	ItemStatusChanged        = "item.status_changed"
	ItemPriorityChanged      = "item.priority_changed"
	OrderSubmitted           = "order.submitted"
	PaymentAccepted          = "payment.accepted"
	PaymentRejected          = "payment.rejected"
	TableStatusChanged       = "table.status_changed"
	ReservationCreated       = "reservation.created"
	ReservationStatusChanged = "reservation.status_changed"
)

// TopicAll receives every event regardless of topic.
const TopicAll = "all"

// Event is a change notification for presentation and logging layers.
type Event struct {
	Type     string          `json:"type"`
	EntityID uuid.UUID       `json:"entity_id"`
	TableID  *uuid.UUID      `json:"table_id,omitempty"`
	Payload  json.RawMessage `json:"payload"`
	At       time.Time       `json:"at"`
}

// New builds an event, marshalling payload to JSON.
func New(typ string, entityID uuid.UUID, payload any, at time.Time) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{Type: typ, EntityID: entityID, Payload: raw, At: at}, nil
}

// ForTable sets the table the event belongs to.
func (e Event) ForTable(id uuid.UUID) Event {
	tid := id
	e.TableID = &tid
	return e
}

// Topic is the part of the type before the first dot ("line", "item", ...).
func (e Event) Topic() string {
	topic, _, _ := strings.Cut(e.Type, ".")
	return topic
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to several publishers. Every publisher is tried;
// the failures are joined.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
type Discard struct{}

// Publish implements Publisher.
func (Discard) Publish(context.Context, Event) error { return nil }

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns the recorded events in publish order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
