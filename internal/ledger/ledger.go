package ledger

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxRate is the flat sales tax applied to every ledger.
var TaxRate = decimal.RequireFromString("0.08")

// Errors returned by the ledger.
var (
	ErrLineSubmitted     = errors.New("line already sent to the kitchen; cancel it instead")
	ErrServedByRequired  = errors.New("served_by is required to mark a line delivered")
	ErrInvalidQuantity   = errors.New("quantity must be >= 1")
	ErrNegativeUnitPrice = errors.New("unit price must be >= 0")
)

// OrderLine is one priced, configured instance of a menu item on a check.
// Price, labels and combo picks are frozen when the line is committed.
type OrderLine struct {
	ID          uuid.UUID       `json:"id"`
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Modifiers   []string        `json:"modifiers"`
	ComboItems  []string        `json:"combo_items,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Status      Status          `json:"status"`
	ServedBy    string          `json:"served_by,omitempty"`
	Priority    Priority        `json:"priority,omitempty"`
	Submitted   bool            `json:"submitted"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LineTotal is unit price times quantity.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineUpdate carries the fields of a line that may change after commit.
// Nil fields are left untouched.
type LineUpdate struct {
	Status   *Status
	ServedBy *string
}

// Ledger is the ordered set of lines for one table session. Every mutation
// builds a new slice with the changed entry and swaps it in, so slices
// returned by Lines are never modified afterwards.
type Ledger struct {
	lines []OrderLine
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Add appends a line and returns it as stored. A missing id is generated and
// a missing status defaults to pending.
func (l *Ledger) Add(line OrderLine) (OrderLine, error) {
	if line.Quantity < 1 {
		return OrderLine{}, ErrInvalidQuantity
	}
	if line.UnitPrice.IsNegative() {
		return OrderLine{}, ErrNegativeUnitPrice
	}
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if line.Status == "" {
		line.Status = StatusPending
	}
	if !line.Status.Valid() {
		return OrderLine{}, fmt.Errorf("%w: %q", ErrUnknownStatus, line.Status)
	}
	line.Modifiers = slices.Clone(line.Modifiers)
	line.ComboItems = slices.Clone(line.ComboItems)
	if line.Modifiers == nil {
		line.Modifiers = []string{}
	}

	next := make([]OrderLine, len(l.lines), len(l.lines)+1)
	copy(next, l.lines)
	l.lines = append(next, line)
	return line, nil
}

// Remove deletes a line that has not been submitted yet. Removing an unknown
// id is a no-op and reports false.
func (l *Ledger) Remove(id uuid.UUID) (bool, error) {
	i := l.index(id)
	if i < 0 {
		return false, nil
	}
	if l.lines[i].Submitted {
		return false, ErrLineSubmitted
	}
	next := make([]OrderLine, 0, len(l.lines)-1)
	next = append(next, l.lines[:i]...)
	next = append(next, l.lines[i+1:]...)
	l.lines = next
	return true, nil
}

// Update applies u to the line with the given id. Status changes must follow
// the transition table and delivering a line requires a server. Updating an
// unknown id is a no-op and reports false.
func (l *Ledger) Update(id uuid.UUID, u LineUpdate) (OrderLine, bool, error) {
	i := l.index(id)
	if i < 0 {
		return OrderLine{}, false, nil
	}
	line := l.lines[i]

	if u.ServedBy != nil {
		line.ServedBy = *u.ServedBy
	}
	if u.Status != nil && *u.Status != line.Status {
		if err := ValidateTransition(line.Status, *u.Status); err != nil {
			return OrderLine{}, true, err
		}
		line.Status = *u.Status
		if !line.Status.Active() {
			line.Priority = PriorityNone
		}
	}
	if line.Status == StatusDelivered && line.ServedBy == "" {
		return OrderLine{}, true, ErrServedByRequired
	}

	l.replace(i, line)
	return line, true, nil
}

// TogglePriority cycles the fire/hold tag of a pending or preparing line.
// It reports false when the id is unknown or the line is past preparation.
func (l *Ledger) TogglePriority(id uuid.UUID) (OrderLine, bool) {
	i := l.index(id)
	if i < 0 || !l.lines[i].Status.Active() {
		return OrderLine{}, false
	}
	line := l.lines[i]
	line.Priority = line.Priority.Next()
	l.replace(i, line)
	return line, true
}

// Submit marks every unsubmitted line as sent to the kitchen and returns the
// lines that were sent.
func (l *Ledger) Submit(now time.Time) []OrderLine {
	var sent []OrderLine
	next := make([]OrderLine, len(l.lines))
	for i, line := range l.lines {
		if !line.Submitted && line.Status != StatusCancelled {
			at := now
			line.Submitted = true
			line.SubmittedAt = &at
			sent = append(sent, line)
		}
		next[i] = line
	}
	l.lines = next
	return sent
}

// Clear drops every line.
func (l *Ledger) Clear() {
	l.lines = nil
}

// Lines returns the lines in insertion order.
func (l *Ledger) Lines() []OrderLine {
	return slices.Clone(l.lines)
}

// Line looks up a line by id.
func (l *Ledger) Line(id uuid.UUID) (OrderLine, bool) {
	i := l.index(id)
	if i < 0 {
		return OrderLine{}, false
	}
	return l.lines[i], true
}

// Len returns the number of lines, cancelled ones included.
func (l *Ledger) Len() int {
	return len(l.lines)
}

// Billable returns the lines that count towards the subtotal.
func (l *Ledger) Billable() []OrderLine {
	var out []OrderLine
	for _, line := range l.lines {
		if line.Status != StatusCancelled {
			out = append(out, line)
		}
	}
	return out
}

// AllDelivered reports whether the ledger has billable lines and every one
// of them has been delivered.
func (l *Ledger) AllDelivered() bool {
	billable := l.Billable()
	if len(billable) == 0 {
		return false
	}
	for _, line := range billable {
		if line.Status != StatusDelivered {
			return false
		}
	}
	return true
}

// Subtotal is the sum of unit price times quantity over non-cancelled lines.
func (l *Ledger) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range l.lines {
		if line.Status == StatusCancelled {
			continue
		}
		sum = sum.Add(line.LineTotal())
	}
	return sum
}

// Tax is Subtotal times TaxRate.
func (l *Ledger) Tax() decimal.Decimal {
	return l.Subtotal().Mul(TaxRate)
}

// Total is Subtotal plus Tax.
func (l *Ledger) Total() decimal.Decimal {
	sub := l.Subtotal()
	return sub.Add(sub.Mul(TaxRate))
}

func (l *Ledger) index(id uuid.UUID) int {
	for i, line := range l.lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) replace(i int, line OrderLine) {
	next := slices.Clone(l.lines)
	next[i] = line
	l.lines = next
}
