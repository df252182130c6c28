package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/event"
	"github.com/kiwari-pos/tableside/internal/floor"
	"github.com/kiwari-pos/tableside/internal/report"
	"github.com/kiwari-pos/tableside/internal/reservation"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrTableBusy           = errors.New("table is not available")
	ErrUnknownServer       = errors.New("server is not an active staff member")
)

// Tables lists the floor ordered by table number.
func (s *OrderService) Tables() []floor.Table {
	return s.floor.Tables()
}

// Table looks up one table.
func (s *OrderService) Table(id uuid.UUID) (floor.Table, bool) {
	return s.floor.Get(id)
}

// Now is the service clock.
func (s *OrderService) Now() time.Time {
	return s.now()
}

// SetTableStatus overwrites a table's status. Unknown tables report false.
func (s *OrderService) SetTableStatus(ctx context.Context, id uuid.UUID, status floor.Status) (floor.Table, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !status.Valid() {
		return floor.Table{}, false, fmt.Errorf("%w: %q", floor.ErrUnknownStatus, status)
	}
	if _, ok := s.floor.Get(id); !ok {
		return floor.Table{}, false, nil
	}
	s.setTableStatus(ctx, id, status)
	t, _ := s.floor.Get(id)
	return t, true, nil
}

// AssignServer records the server looking after a table. An empty name
// clears the assignment. With a roster, the name must belong to an active
// member and is stored as the roster spells it.
func (s *OrderService) AssignServer(ctx context.Context, id uuid.UUID, server string) (floor.Table, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	server = strings.TrimSpace(server)
	if server != "" && s.roster != nil {
		m, err := s.roster.FindActive(server)
		if err != nil {
			return floor.Table{}, false, fmt.Errorf("%w: %w", ErrUnknownServer, err)
		}
		server = m.Name
	}

	t, ok := s.floor.AssignServer(id, server)
	if !ok {
		return floor.Table{}, false, nil
	}
	s.emit(ctx, id, event.TableStatusChanged, id, map[string]any{
		"id":     t.ID,
		"status": t.Status,
		"server": t.Server,
	})
	return t, true, nil
}

// Reservations lists the bookings of a calendar day.
func (s *OrderService) Reservations(day time.Time) []reservation.Reservation {
	return s.reservations.ListForDate(day)
}

// CreateReservation books a party.
func (s *OrderService) CreateReservation(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.reservations.Add(r, s.now())
	if err != nil {
		return reservation.Reservation{}, err
	}
	s.emit(ctx, uuid.Nil, event.ReservationCreated, r.ID, r)
	return r, nil
}

// UpdateReservationStatus overwrites a reservation's status. Unknown ids
// report false.
func (s *OrderService) UpdateReservationStatus(ctx context.Context, id uuid.UUID, status reservation.Status) (reservation.Reservation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.reservations.Get(id)
	if !ok {
		if !status.Valid() {
			return reservation.Reservation{}, false, fmt.Errorf("%w: %q", reservation.ErrUnknownStatus, status)
		}
		return reservation.Reservation{}, false, nil
	}
	r, ok, err := s.reservations.UpdateStatus(id, status)
	if err != nil || !ok {
		return r, ok, err
	}
	if r.Status != before.Status {
		s.emit(ctx, uuid.Nil, event.ReservationStatusChanged, r.ID, map[string]any{
			"id":     r.ID,
			"from":   before.Status,
			"status": r.Status,
		})
	}
	return r, true, nil
}

// SeatReservation seats a booked party at a table: the reservation becomes
// seated and linked to the table, and the table becomes occupied. Only an
// available table with no open check can be seated.
func (s *OrderService) SeatReservation(ctx context.Context, reservationID, tableID uuid.UUID) (floor.Table, reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations.Get(reservationID); !ok {
		return floor.Table{}, reservation.Reservation{}, ErrReservationNotFound
	}
	before, ok := s.floor.Get(tableID)
	if !ok {
		return floor.Table{}, reservation.Reservation{}, ErrTableNotFound
	}
	if l, open := s.ledgers[tableID]; before.Status != floor.StatusAvailable || (open && l.Len() > 0) {
		return floor.Table{}, reservation.Reservation{}, fmt.Errorf("%w: table %d is %s", ErrTableBusy, before.Number, before.Status)
	}

	t, _ := s.floor.Seat(tableID, &reservationID, s.now())
	s.reservations.AssignTable(reservationID, tableID)
	r, _, err := s.reservations.UpdateStatus(reservationID, reservation.StatusSeated)
	if err != nil {
		return floor.Table{}, reservation.Reservation{}, err
	}

	s.emit(ctx, uuid.Nil, event.ReservationStatusChanged, r.ID, map[string]any{
		"id":       r.ID,
		"status":   r.Status,
		"table_id": tableID,
	})
	if before.Status != t.Status {
		s.emit(ctx, tableID, event.TableStatusChanged, tableID, map[string]any{
			"id":     t.ID,
			"from":   before.Status,
			"status": t.Status,
		})
	}
	return t, r, nil
}

// SalesSummary reports the sales between two calendar days. Nil bounds are
// open.
func (s *OrderService) SalesSummary(from, to *time.Time) report.Summary {
	return s.sales.Summary(from, to)
}
