package floor

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/enum"
)

// ErrUnknownStatus is returned for a status outside the table lifecycle.
var ErrUnknownStatus = errors.New("unknown table status")

// Status is the lifecycle state of a table.
type Status string

const (
	StatusAvailable Status = enum.TableStatusAvailable
	StatusOccupied  Status = enum.TableStatusOccupied
	StatusOrdering  Status = enum.TableStatusOrdering
	StatusServed    Status = enum.TableStatusServed
	StatusPaying    Status = enum.TableStatusPaying
)

// Valid reports whether s is a table status.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusOrdering, StatusServed, StatusPaying:
		return true
	}
	return false
}

// Table is one seating position on the floor.
type Table struct {
	ID            uuid.UUID  `json:"id"`
	Number        int        `json:"number"`
	Seats         int        `json:"seats"`
	Status        Status     `json:"status"`
	OccupiedSince *time.Time `json:"occupied_since,omitempty"`
	Server        string     `json:"server,omitempty"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
}

// OccupiedMinutes returns whole minutes since the table was occupied, or 0
// for a free table.
func (t Table) OccupiedMinutes(now time.Time) int {
	if t.OccupiedSince == nil {
		return 0
	}
	return minutesBetween(*t.OccupiedSince, now)
}

// OccupiedFor formats the occupied duration, or "" for a free table.
func (t Table) OccupiedFor(now time.Time) string {
	if t.OccupiedSince == nil {
		return ""
	}
	return FormatOccupied(*t.OccupiedSince, now)
}

// FormatOccupied renders the time since `since` as "Xm" below an hour and
// "Xh Ym" otherwise.
func FormatOccupied(since, now time.Time) string {
	minutes := minutesBetween(since, now)
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func minutesBetween(since, now time.Time) int {
	d := now.Sub(since)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// Floor holds every table of the venue.
type Floor struct {
	mu     sync.Mutex
	tables map[uuid.UUID]Table
}

// New creates a floor with tables numbered 1..n, each seating `seats`.
func New(n, seats int) *Floor {
	f := &Floor{tables: make(map[uuid.UUID]Table, n)}
	for i := 1; i <= n; i++ {
		id := uuid.New()
		f.tables[id] = Table{ID: id, Number: i, Seats: seats, Status: StatusAvailable}
	}
	return f
}

// NewWithTables creates a floor from an explicit table list. Missing ids are
// generated and missing statuses default to available.
func NewWithTables(tables []Table) *Floor {
	f := &Floor{tables: make(map[uuid.UUID]Table, len(tables))}
	for _, t := range tables {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if t.Status == "" {
			t.Status = StatusAvailable
		}
		f.tables[t.ID] = t
	}
	return f
}

// Tables returns every table ordered by number.
func (f *Floor) Tables() []Table {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Table, 0, len(f.tables))
	for _, t := range f.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Get looks up a table by id.
func (f *Floor) Get(id uuid.UUID) (Table, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[id]
	return t, ok
}

// SetStatus overwrites the table status. Leaving available stamps the
// occupation time; returning to available clears the occupation time, the
// server and the reservation link. Unknown ids report false.
func (f *Floor) SetStatus(id uuid.UUID, status Status, now time.Time) (Table, bool, error) {
	if !status.Valid() {
		return Table{}, false, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tables[id]
	if !ok {
		return Table{}, false, nil
	}
	f.tables[id] = applyStatus(t, status, now)
	return f.tables[id], true, nil
}

// AssignServer sets the server responsible for a table.
func (f *Floor) AssignServer(id uuid.UUID, server string) (Table, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tables[id]
	if !ok {
		return Table{}, false
	}
	t.Server = server
	f.tables[id] = t
	return t, true
}

// Seat occupies a table for a party, optionally linking the reservation
// they booked.
func (f *Floor) Seat(id uuid.UUID, reservationID *uuid.UUID, now time.Time) (Table, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tables[id]
	if !ok {
		return Table{}, false
	}
	t = applyStatus(t, StatusOccupied, now)
	if reservationID != nil {
		rid := *reservationID
		t.ReservationID = &rid
	}
	f.tables[id] = t
	return t, true
}

func applyStatus(t Table, status Status, now time.Time) Table {
	t.Status = status
	if status == StatusAvailable {
		t.OccupiedSince = nil
		t.Server = ""
		t.ReservationID = nil
		return t
	}
	if t.OccupiedSince == nil {
		at := now
		t.OccupiedSince = &at
	}
	return t
}
