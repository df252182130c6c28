package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func statusPtr(s Status) *Status { return &s }
func strPtr(s string) *string   { return &s }

func mustAdd(t *testing.T, l *Ledger, line OrderLine) OrderLine {
	t.Helper()
	got, err := l.Add(line)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	return got
}

// assertTotal re-checks total == subtotal * 1.08.
func assertTotal(t *testing.T, l *Ledger) {
	t.Helper()
	want := l.Subtotal().Mul(dec("1.08"))
	if !l.Total().Equal(want) {
		t.Fatalf("total: got %s, want %s (subtotal %s)", l.Total(), want, l.Subtotal())
	}
	if !l.Total().Equal(l.Subtotal().Add(l.Tax())) {
		t.Fatalf("total %s != subtotal %s + tax %s", l.Total(), l.Subtotal(), l.Tax())
	}
}

func TestAdd_Defaults(t *testing.T) {
	l := New()
	line := mustAdd(t, l, OrderLine{Name: "Iced Tea", UnitPrice: dec("2.99"), Quantity: 2})

	if line.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if line.Status != StatusPending {
		t.Errorf("status: got %s, want pending", line.Status)
	}
	if line.Modifiers == nil {
		t.Error("modifiers should be an empty slice, not nil")
	}
	if !l.Subtotal().Equal(dec("5.98")) {
		t.Errorf("subtotal: got %s, want 5.98", l.Subtotal())
	}
	assertTotal(t, l)
}

func TestAdd_Invalid(t *testing.T) {
	l := New()
	if _, err := l.Add(OrderLine{Name: "x", UnitPrice: dec("1"), Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := l.Add(OrderLine{Name: "x", UnitPrice: dec("-1"), Quantity: 1}); !errors.Is(err, ErrNegativeUnitPrice) {
		t.Errorf("expected ErrNegativeUnitPrice, got %v", err)
	}
	if _, err := l.Add(OrderLine{Name: "x", UnitPrice: dec("1"), Quantity: 1, Status: "burnt"}); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("rejected lines must not be stored, got %d", l.Len())
	}
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	l := New()
	a := mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("1"), Quantity: 1})
	b := mustAdd(t, l, OrderLine{Name: "b", UnitPrice: dec("2"), Quantity: 1})
	c := mustAdd(t, l, OrderLine{Name: "c", UnitPrice: dec("3"), Quantity: 1})

	lines := l.Lines()
	for i, want := range []uuid.UUID{a.ID, b.ID, c.ID} {
		if lines[i].ID != want {
			t.Errorf("lines[%d]: got %s, want %s", i, lines[i].ID, want)
		}
	}
}

func TestRemove_UnknownIsNoOp(t *testing.T) {
	l := New()
	mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("4.50"), Quantity: 2})
	before := l.Lines()
	subtotal := l.Subtotal()

	removed, err := l.Remove(uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Error("expected removed=false for unknown id")
	}
	after := l.Lines()
	if len(after) != len(before) || after[0].ID != before[0].ID {
		t.Error("line sequence changed")
	}
	if !l.Subtotal().Equal(subtotal) {
		t.Errorf("subtotal changed: %s -> %s", subtotal, l.Subtotal())
	}
	assertTotal(t, l)
}

func TestRemove_BeforeAndAfterSubmit(t *testing.T) {
	l := New()
	a := mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("1"), Quantity: 1})
	b := mustAdd(t, l, OrderLine{Name: "b", UnitPrice: dec("2"), Quantity: 1})

	removed, err := l.Remove(a.ID)
	if err != nil || !removed {
		t.Fatalf("remove pre-submit: removed=%v err=%v", removed, err)
	}
	assertTotal(t, l)

	l.Submit(time.Now())
	removed, err = l.Remove(b.ID)
	if !errors.Is(err, ErrLineSubmitted) {
		t.Fatalf("expected ErrLineSubmitted, got %v", err)
	}
	if removed || l.Len() != 1 {
		t.Error("submitted line must stay in the ledger")
	}
}

func TestRemove_DoesNotAliasEarlierSnapshot(t *testing.T) {
	l := New()
	a := mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("1"), Quantity: 1})
	mustAdd(t, l, OrderLine{Name: "b", UnitPrice: dec("2"), Quantity: 1})

	snapshot := l.Lines()
	if _, err := l.Remove(a.ID); err != nil {
		t.Fatal(err)
	}
	if snapshot[0].Name != "a" || snapshot[1].Name != "b" {
		t.Errorf("snapshot mutated: %+v", snapshot)
	}
}

func TestCancelledLinesExcludedFromSubtotal(t *testing.T) {
	l := New()
	a := mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("10"), Quantity: 1})
	mustAdd(t, l, OrderLine{Name: "b", UnitPrice: dec("5"), Quantity: 2})

	if _, _, err := l.Update(a.ID, LineUpdate{Status: statusPtr(StatusCancelled)}); err != nil {
		t.Fatal(err)
	}
	if !l.Subtotal().Equal(dec("10")) {
		t.Errorf("subtotal: got %s, want 10", l.Subtotal())
	}
	if !l.Total().Equal(dec("10.8")) {
		t.Errorf("total: got %s, want 10.8", l.Total())
	}
	assertTotal(t, l)
}

func TestUpdate_FullLifecycle(t *testing.T) {
	l := New()
	line := mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("1"), Quantity: 1})

	for _, s := range []Status{StatusPreparing, StatusReady} {
		got, found, err := l.Update(line.ID, LineUpdate{Status: statusPtr(s)})
		if err != nil || !found {
			t.Fatalf("to %s: found=%v err=%v", s, found, err)
		}
		if got.Status != s {
			t.Fatalf("status: got %s, want %s", got.Status, s)
		}
	}

	got, _, err := l.Update(line.ID, LineUpdate{Status: statusPtr(StatusDelivered), ServedBy: strPtr("Alex")})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusDelivered || got.ServedBy != "Alex" {
		t.Errorf("got %s by %q", got.Status, got.ServedBy)
	}
	if !l.AllDelivered() {
		t.Error("expected AllDelivered")
	}
}

func TestUpdate_SkipIsRejected(t *testing.T) {
	l := New()
	line := mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("1"), Quantity: 1})

	_, found, err := l.Update(line.ID, LineUpdate{Status: statusPtr(StatusDelivered), ServedBy: strPtr("Alex")})
	if !found {
		t.Fatal("expected found")
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	stored, _ := l.Line(line.ID)
	if stored.Status != StatusPending || stored.ServedBy != "" {
		t.Errorf("rejected update mutated the line: %+v", stored)
	}
}

func TestUpdate_DeliveredRequiresServer(t *testing.T) {
	l := New()
	line := mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("1"), Quantity: 1, Status: StatusReady})

	_, _, err := l.Update(line.ID, LineUpdate{Status: statusPtr(StatusDelivered)})
	if !errors.Is(err, ErrServedByRequired) {
		t.Fatalf("expected ErrServedByRequired, got %v", err)
	}
	stored, _ := l.Line(line.ID)
	if stored.Status != StatusReady {
		t.Errorf("status: got %s, want ready", stored.Status)
	}
}

func TestUpdate_UnknownIsNoOp(t *testing.T) {
	l := New()
	mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("1"), Quantity: 1})

	_, found, err := l.Update(uuid.New(), LineUpdate{Status: statusPtr(StatusPreparing)})
	if err != nil || found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	assertTotal(t, l)
}

func TestTogglePriority(t *testing.T) {
	l := New()
	line := mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("1"), Quantity: 1})

	want := []Priority{PriorityFire, PriorityHold, PriorityNone, PriorityFire}
	for i, w := range want {
		got, ok := l.TogglePriority(line.ID)
		if !ok {
			t.Fatalf("toggle %d: not applied", i)
		}
		if got.Priority != w {
			t.Errorf("toggle %d: got %q, want %q", i, got.Priority, w)
		}
	}

	// Moving past preparation clears the tag and disables toggling.
	l.Update(line.ID, LineUpdate{Status: statusPtr(StatusPreparing)})
	got, _, _ := l.Update(line.ID, LineUpdate{Status: statusPtr(StatusReady)})
	if got.Priority != PriorityNone {
		t.Errorf("priority after ready: got %q", got.Priority)
	}
	if _, ok := l.TogglePriority(line.ID); ok {
		t.Error("toggle on ready line should not apply")
	}
	if _, ok := l.TogglePriority(uuid.New()); ok {
		t.Error("toggle on unknown line should not apply")
	}
}

func TestSubmit(t *testing.T) {
	l := New()
	a := mustAdd(t, l, OrderLine{Name: "a", UnitPrice: dec("1"), Quantity: 1})
	now := time.Date(2026, 10, 16, 19, 0, 0, 0, time.UTC)

	sent := l.Submit(now)
	if len(sent) != 1 || sent[0].ID != a.ID {
		t.Fatalf("sent: %+v", sent)
	}
	if sent[0].SubmittedAt == nil || !sent[0].SubmittedAt.Equal(now) {
		t.Errorf("submitted_at: %v", sent[0].SubmittedAt)
	}

	mustAdd(t, l, OrderLine{Name: "b", UnitPrice: dec("1"), Quantity: 1})
	if sent = l.Submit(now.Add(time.Minute)); len(sent) != 1 || sent[0].Name != "b" {
		t.Errorf("second submit should only send b, got %+v", sent)
	}
	if sent = l.Submit(now); len(sent) != 0 {
		t.Errorf("nothing left to send, got %d", len(sent))
	}
}

func TestTotalInvariantAcrossMutations(t *testing.T) {
	l := New()
	assertTotal(t, l)

	ids := []uuid.UUID{}
	for _, p := range []string{"18.99", "17.091", "0.01", "4.99"} {
		line := mustAdd(t, l, OrderLine{Name: p, UnitPrice: dec(p), Quantity: 3})
		ids = append(ids, line.ID)
		assertTotal(t, l)
	}

	l.Remove(ids[1])
	assertTotal(t, l)
	l.Remove(uuid.New())
	assertTotal(t, l)
	l.Update(ids[0], LineUpdate{Status: statusPtr(StatusCancelled)})
	assertTotal(t, l)
	l.Update(ids[2], LineUpdate{ServedBy: strPtr("Sam")})
	assertTotal(t, l)
	l.Submit(time.Now())
	assertTotal(t, l)
	l.Clear()
	assertTotal(t, l)
	if !l.Total().IsZero() {
		t.Errorf("cleared ledger total: %s", l.Total())
	}
}
