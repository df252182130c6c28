package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/catalog"
	"github.com/kiwari-pos/tableside/internal/event"
	"github.com/kiwari-pos/tableside/internal/floor"
	"github.com/kiwari-pos/tableside/internal/ledger"
	"github.com/kiwari-pos/tableside/internal/payment"
	"github.com/kiwari-pos/tableside/internal/report"
	"github.com/kiwari-pos/tableside/internal/reservation"
	"github.com/kiwari-pos/tableside/internal/staff"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrItemNotFound    = errors.New("menu item not found")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrTableNotFound   = errors.New("table not found")
	ErrEmptyOrder      = errors.New("order has no billable lines")
	ErrNoNextStatus    = errors.New("line has no next status")
)

// OrderView is a table's check as shown to the floor.
type OrderView struct {
	TableID  uuid.UUID          `json:"table_id"`
	Lines    []ledger.OrderLine `json:"lines"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Tax      decimal.Decimal    `json:"tax"`
	Total    decimal.Decimal    `json:"total"`
}

// KitchenTicket is one line on the kitchen display.
type KitchenTicket struct {
	TableID     uuid.UUID        `json:"table_id"`
	TableNumber int              `json:"table_number"`
	Line        ledger.OrderLine `json:"line"`
}

// Option configures an OrderService.
type Option func(*OrderService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

// WithDefaultServer sets the name recorded on delivered lines when the caller
// does not identify a server.
func WithDefaultServer(name string) Option {
	return func(s *OrderService) { s.defaultServer = name }
}

// WithRoster makes AssignServer accept only active roster members.
func WithRoster(r *staff.Roster) Option {
	return func(s *OrderService) { s.roster = r }
}

// OrderService owns the check of every table and keeps the floor,
// reservations and sales in step with it. All methods are serialized.
type OrderService struct {
	mu            sync.Mutex
	catalog       *catalog.Catalog
	floor         *floor.Floor
	reservations  *reservation.Book
	sales         *report.Recorder
	events        event.Publisher
	roster        *staff.Roster
	defaultServer string
	now           func() time.Time
	ledgers       map[uuid.UUID]*ledger.Ledger
}

// NewOrderService creates a new OrderService.
func NewOrderService(cat *catalog.Catalog, fl *floor.Floor, book *reservation.Book, sales *report.Recorder, events event.Publisher, opts ...Option) *OrderService {
	if events == nil {
		events = event.Discard{}
	}
	s := &OrderService{
		catalog:       cat,
		floor:         fl,
		reservations:  book,
		sales:         sales,
		events:        events,
		defaultServer: "Server",
		now:           time.Now,
		ledgers:       make(map[uuid.UUID]*ledger.Ledger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the menu the service prices against.
func (s *OrderService) Catalog() *catalog.Catalog { return s.catalog }

// DefaultServer is the server name used when none is given.
func (s *OrderService) DefaultServer() string { return s.defaultServer }

// Quote prices a selection without touching any check.
func (s *OrderService) Quote(itemID string, c Choices) (Quote, error) {
	item, ok := s.catalog.FindItem(itemID)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %q", ErrItemNotFound, itemID)
	}
	sel, err := SelectionFromChoices(item, c)
	if err != nil {
		return Quote{}, err
	}
	return PriceSelection(item, sel)
}

// Commit prices the selection and appends it to the table's check. Price,
// labels and combo picks are frozen on the returned line.
func (s *OrderService) Commit(ctx context.Context, tableID uuid.UUID, itemID string, c Choices) (ledger.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.floor.Get(tableID)
	if !ok {
		return ledger.OrderLine{}, ErrTableNotFound
	}
	item, ok := s.catalog.FindItem(itemID)
	if !ok {
		return ledger.OrderLine{}, fmt.Errorf("%w: %q", ErrItemNotFound, itemID)
	}
	if !item.Available {
		return ledger.OrderLine{}, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}

	sel, err := SelectionFromChoices(item, c)
	if err != nil {
		return ledger.OrderLine{}, err
	}
	if err := sel.Complete(); err != nil {
		return ledger.OrderLine{}, err
	}
	q, err := PriceSelection(item, sel)
	if err != nil {
		return ledger.OrderLine{}, err
	}

	var comboNames []string
	for _, id := range q.ComboItems {
		name := id
		if cand, ok := s.catalog.FindItem(id); ok {
			name = cand.Name
		}
		comboNames = append(comboNames, name)
	}

	line, err := s.ledgerFor(tableID).Add(ledger.OrderLine{
		ItemID:     item.ID,
		Name:       lineName(item, sel),
		Category:   item.Category,
		UnitPrice:  q.UnitPrice,
		Quantity:   q.Quantity,
		Modifiers:  q.Labels,
		ComboItems: comboNames,
		Notes:      sel.Notes(),
		CreatedAt:  s.now(),
	})
	if err != nil {
		return ledger.OrderLine{}, fmt.Errorf("add line: %w", err)
	}

	s.emit(ctx, tableID, event.LineAdded, line.ID, line)

	switch table.Status {
	case floor.StatusAvailable, floor.StatusOccupied, floor.StatusServed:
		s.setTableStatus(ctx, tableID, floor.StatusOrdering)
	}
	return line, nil
}

// RemoveLine takes an unsubmitted line off the check. Unknown tables and
// lines report false.
func (s *OrderService) RemoveLine(ctx context.Context, tableID, lineID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[tableID]
	if !ok {
		return false, nil
	}
	removed, err := l.Remove(lineID)
	if err != nil || !removed {
		return false, err
	}
	s.emit(ctx, tableID, event.LineRemoved, lineID, map[string]any{"id": lineID})
	return true, nil
}

// UpdateLine changes the status or server of a line. Delivering a line
// that has no server and names none records staff, or the default server
// when staff is empty. A line that already has a server keeps it.
func (s *OrderService) UpdateLine(ctx context.Context, tableID, lineID uuid.UUID, u ledger.LineUpdate, staff string) (ledger.OrderLine, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLine(ctx, tableID, lineID, u, staff)
}

// Advance moves a line one step along pending, preparing, ready, delivered.
func (s *OrderService) Advance(ctx context.Context, tableID, lineID uuid.UUID, staff string) (ledger.OrderLine, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[tableID]
	if !ok {
		return ledger.OrderLine{}, false, nil
	}
	line, ok := l.Line(lineID)
	if !ok {
		return ledger.OrderLine{}, false, nil
	}
	next, ok := nextStatus(line.Status)
	if !ok {
		return line, true, fmt.Errorf("%w: %s", ErrNoNextStatus, line.Status)
	}
	return s.updateLine(ctx, tableID, lineID, ledger.LineUpdate{Status: &next}, staff)
}

// TogglePriority cycles the fire/hold tag of a line. It reports false for
// unknown lines and lines past preparation.
func (s *OrderService) TogglePriority(ctx context.Context, tableID, lineID uuid.UUID) (ledger.OrderLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[tableID]
	if !ok {
		return ledger.OrderLine{}, false
	}
	line, ok := l.TogglePriority(lineID)
	if !ok {
		return ledger.OrderLine{}, false
	}
	s.emit(ctx, tableID, event.ItemPriorityChanged, line.ID, map[string]any{
		"id":       line.ID,
		"priority": line.Priority,
	})
	return line, true
}

// Submit sends every new line of the table to the kitchen.
func (s *OrderService) Submit(ctx context.Context, tableID uuid.UUID) ([]ledger.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.floor.Get(tableID); !ok {
		return nil, ErrTableNotFound
	}
	l, ok := s.ledgers[tableID]
	if !ok {
		return []ledger.OrderLine{}, nil
	}
	sent := l.Submit(s.now())
	if len(sent) == 0 {
		return []ledger.OrderLine{}, nil
	}

	ids := make([]uuid.UUID, len(sent))
	for i, line := range sent {
		ids[i] = line.ID
	}
	s.emit(ctx, tableID, event.OrderSubmitted, tableID, map[string]any{"line_ids": ids})
	return sent, nil
}

// Order returns the table's check. Tables without lines get an empty check.
func (s *OrderService) Order(tableID uuid.UUID) (OrderView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.floor.Get(tableID); !ok {
		return OrderView{}, false
	}
	return s.view(tableID), true
}

// KitchenQueue lists the submitted lines still in the kitchen across all
// tables: fired lines first, held lines last, otherwise oldest first. A
// non-empty status keeps only lines in that status.
func (s *OrderService) KitchenQueue(status ledger.Status) []KitchenTicket {
	s.mu.Lock()
	defer s.mu.Unlock()

	type owned struct {
		table floor.Table
		line  ledger.OrderLine
	}
	var all []owned
	for tableID, l := range s.ledgers {
		table, _ := s.floor.Get(tableID)
		for _, line := range l.Lines() {
			if !line.Submitted {
				continue
			}
			all = append(all, owned{table: table, line: line})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.line.SubmittedAt.Equal(*b.line.SubmittedAt) {
			return a.line.SubmittedAt.Before(*b.line.SubmittedAt)
		}
		if a.table.Number != b.table.Number {
			return a.table.Number < b.table.Number
		}
		return a.line.CreatedAt.Before(b.line.CreatedAt)
	})

	lines := make([]ledger.OrderLine, len(all))
	tables := make(map[uuid.UUID]floor.Table, len(all))
	for i, o := range all {
		lines[i] = o.line
		tables[o.line.ID] = o.table
	}

	tickets := []KitchenTicket{}
	for _, line := range ledger.KitchenQueue(lines) {
		if status != "" && line.Status != status {
			continue
		}
		t := tables[line.ID]
		tickets = append(tickets, KitchenTicket{TableID: t.ID, TableNumber: t.Number, Line: line})
	}
	return tickets
}

// BeginPayment opens the check for payment and moves the table to paying.
func (s *OrderService) BeginPayment(ctx context.Context, tableID uuid.UUID) (OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.floor.Get(tableID); !ok {
		return OrderView{}, ErrTableNotFound
	}
	v := s.view(tableID)
	if !hasBillable(v.Lines) {
		return OrderView{}, ErrEmptyOrder
	}
	s.setTableStatus(ctx, tableID, floor.StatusPaying)
	return v, nil
}

// ValidatePayment checks an attempt against the table's total without
// settling it.
func (s *OrderService) ValidatePayment(tableID uuid.UUID, a payment.Attempt) (payment.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.floor.Get(tableID); !ok {
		return payment.Result{}, false
	}
	return a.Validate(s.view(tableID).Total), true
}

// Settle validates the attempt and, when it passes, archives the check,
// clears it and frees the table. A rejected attempt changes nothing and is
// reported through the result, not the error.
func (s *OrderService) Settle(ctx context.Context, tableID uuid.UUID, a payment.Attempt) (*report.Receipt, payment.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.floor.Get(tableID)
	if !ok {
		return nil, payment.Result{}, ErrTableNotFound
	}
	v := s.view(tableID)
	if !hasBillable(v.Lines) {
		return nil, payment.Result{}, ErrEmptyOrder
	}

	details, res := payment.Accept(v.Total, a)
	if !res.Valid {
		s.emit(ctx, tableID, event.PaymentRejected, tableID, res)
		return nil, res, nil
	}

	rc := s.sales.Record(report.Receipt{
		TableID:     tableID,
		TableNumber: table.Number,
		Lines:       v.Lines,
		Subtotal:    v.Subtotal,
		Tax:         v.Tax,
		Tip:         a.Tip,
		Total:       res.AmountDue,
		Payment:     *details,
		PaidAt:      s.now(),
	})
	delete(s.ledgers, tableID)

	s.emit(ctx, tableID, event.PaymentAccepted, rc.ID, rc)

	if table.ReservationID != nil {
		status := reservation.StatusCompleted
		if r, ok, err := s.reservations.UpdateStatus(*table.ReservationID, status); err == nil && ok {
			s.emit(ctx, tableID, event.ReservationStatusChanged, r.ID, map[string]any{"id": r.ID, "status": r.Status})
		}
	}
	s.setTableStatus(ctx, tableID, floor.StatusAvailable)
	return &rc, res, nil
}

func (s *OrderService) updateLine(ctx context.Context, tableID, lineID uuid.UUID, u ledger.LineUpdate, staff string) (ledger.OrderLine, bool, error) {
	l, ok := s.ledgers[tableID]
	if !ok {
		return ledger.OrderLine{}, false, nil
	}
	before, ok := l.Line(lineID)
	if !ok {
		return ledger.OrderLine{}, false, nil
	}

	// An empty server name is unspecified and never blanks the line.
	if u.ServedBy != nil && *u.ServedBy == "" {
		u.ServedBy = nil
	}
	if u.Status != nil && *u.Status == ledger.StatusDelivered && u.ServedBy == nil && before.ServedBy == "" {
		server := staff
		if server == "" {
			server = s.defaultServer
		}
		u.ServedBy = &server
	}

	line, found, err := l.Update(lineID, u)
	if err != nil || !found {
		return line, found, err
	}

	s.emit(ctx, tableID, event.LineUpdated, line.ID, line)
	if line.Status != before.Status {
		s.emit(ctx, tableID, event.ItemStatusChanged, line.ID, map[string]any{
			"id":        line.ID,
			"from":      before.Status,
			"status":    line.Status,
			"served_by": line.ServedBy,
		})
		if l.AllDelivered() {
			s.setTableStatus(ctx, tableID, floor.StatusServed)
		}
	}
	return line, true, nil
}

func (s *OrderService) ledgerFor(tableID uuid.UUID) *ledger.Ledger {
	l, ok := s.ledgers[tableID]
	if !ok {
		l = ledger.New()
		s.ledgers[tableID] = l
	}
	return l
}

func (s *OrderService) view(tableID uuid.UUID) OrderView {
	l, ok := s.ledgers[tableID]
	if !ok {
		l = ledger.New()
	}
	return OrderView{
		TableID:  tableID,
		Lines:    l.Lines(),
		Subtotal: l.Subtotal(),
		Tax:      l.Tax(),
		Total:    l.Total(),
	}
}

func (s *OrderService) setTableStatus(ctx context.Context, tableID uuid.UUID, status floor.Status) {
	before, ok := s.floor.Get(tableID)
	if !ok || before.Status == status {
		return
	}
	t, ok, err := s.floor.SetStatus(tableID, status, s.now())
	if err != nil || !ok {
		log.Printf("ERROR: set table %s status %s: %v", tableID, status, err)
		return
	}
	s.emit(ctx, tableID, event.TableStatusChanged, tableID, map[string]any{
		"id":     t.ID,
		"from":   before.Status,
		"status": t.Status,
	})
}

// emit publishes an event for a mutation that has already happened, so a
// failing publisher is logged rather than returned.
func (s *OrderService) emit(ctx context.Context, tableID uuid.UUID, typ string, entityID uuid.UUID, payload any) {
	ev, err := event.New(typ, entityID, payload, s.now())
	if err != nil {
		log.Printf("ERROR: %v", err)
		return
	}
	if tableID != uuid.Nil {
		ev = ev.ForTable(tableID)
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("ERROR: publish %s: %v", typ, err)
	}
}

func nextStatus(st ledger.Status) (ledger.Status, bool) {
	switch st {
	case ledger.StatusPending:
		return ledger.StatusPreparing, true
	case ledger.StatusPreparing:
		return ledger.StatusReady, true
	case ledger.StatusReady:
		return ledger.StatusDelivered, true
	}
	return "", false
}

func hasBillable(lines []ledger.OrderLine) bool {
	for _, l := range lines {
		if l.Status != ledger.StatusCancelled {
			return true
		}
	}
	return false
}

func lineName(item catalog.MenuItem, sel *Selection) string {
	if v, ok := item.FindVariant(sel.Variant()); ok {
		return item.Name + " (" + v.Name + ")"
	}
	return item.Name
}
