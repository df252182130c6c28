package reservation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/enum"
)

// Errors returned by the book.
var (
	ErrNameRequired     = errors.New("name is required")
	ErrInvalidPartySize = errors.New("party_size must be >= 1")
	ErrInvalidTime      = errors.New("time must be HH:MM")
	ErrDateRequired     = errors.New("date is required")
	ErrUnknownStatus    = errors.New("unknown reservation status")
)

// Status is the state of a booking.
type Status string

const (
	StatusConfirmed Status = enum.ReservationStatusConfirmed
	StatusSeated    Status = enum.ReservationStatusSeated
	StatusCompleted Status = enum.ReservationStatusCompleted
	StatusCancelled Status = enum.ReservationStatusCancelled
	StatusNoShow    Status = enum.ReservationStatusNoShow
)

// Valid reports whether s is a reservation status.
func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusSeated, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Reservation is a booking for a party.
type Reservation struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Date      time.Time  `json:"date"`
	Time      string     `json:"time"`
	PartySize int        `json:"party_size"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	TableID   *uuid.UUID `json:"table_id,omitempty"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// SameDay reports whether the reservation falls on the calendar day of d.
// Only year, month and day are compared; no timezone conversion is done.
func (r Reservation) SameDay(d time.Time) bool {
	y1, m1, d1 := r.Date.Date()
	y2, m2, d2 := d.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Book stores every reservation of the venue.
type Book struct {
	mu    sync.Mutex
	items []Reservation
}

// NewBook creates an empty reservation book.
func NewBook() *Book {
	return &Book{}
}

// Add validates and stores a reservation. Status defaults to confirmed.
func (b *Book) Add(r Reservation, now time.Time) (Reservation, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return Reservation{}, ErrNameRequired
	}
	if r.PartySize < 1 {
		return Reservation{}, ErrInvalidPartySize
	}
	if r.Date.IsZero() {
		return Reservation{}, ErrDateRequired
	}
	if _, err := time.Parse("15:04", r.Time); err != nil {
		return Reservation{}, fmt.Errorf("%w: %q", ErrInvalidTime, r.Time)
	}
	if r.Status == "" {
		r.Status = StatusConfirmed
	}
	if !r.Status.Valid() {
		return Reservation{}, fmt.Errorf("%w: %q", ErrUnknownStatus, r.Status)
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = now

	b.mu.Lock()
	defer b.mu.Unlock()
	next := make([]Reservation, len(b.items), len(b.items)+1)
	copy(next, b.items)
	b.items = append(next, r)
	return r, nil
}

// Get looks up a reservation by id.
func (b *Book) Get(id uuid.UUID) (Reservation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return Reservation{}, false
	}
	return b.items[i], true
}

// UpdateStatus overwrites the status of a reservation. Any status may be
// written; nothing reverts on its own. Unknown ids report false.
func (b *Book) UpdateStatus(id uuid.UUID, status Status) (Reservation, bool, error) {
	if !status.Valid() {
		return Reservation{}, false, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return b.update(id, func(r *Reservation) { r.Status = status })
}

// AssignTable links a reservation to a table.
func (b *Book) AssignTable(id, tableID uuid.UUID) (Reservation, bool) {
	r, ok, _ := b.update(id, func(r *Reservation) {
		tid := tableID
		r.TableID = &tid
	})
	return r, ok
}

// ListForDate returns the reservations on the calendar day of d, ordered by
// time.
func (b *Book) ListForDate(d time.Time) []Reservation {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Reservation
	for _, r := range b.items {
		if r.SameDay(d) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(x, y Reservation) int {
		return strings.Compare(x.Time, y.Time)
	})
	return out
}

func (b *Book) update(id uuid.UUID, fn func(*Reservation)) (Reservation, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(id)
	if i < 0 {
		return Reservation{}, false, nil
	}
	next := slices.Clone(b.items)
	fn(&next[i])
	b.items = next
	return next[i], true, nil
}

func (b *Book) index(id uuid.UUID) int {
	for i, r := range b.items {
		if r.ID == id {
			return i
		}
	}
	return -1
}
