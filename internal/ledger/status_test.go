package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTransitionTable(t *testing.T) {
	want := map[Status][]Status{
		StatusPending:   {StatusPreparing, StatusCancelled},
		StatusPreparing: {StatusReady, StatusCancelled},
		StatusReady:     {StatusDelivered, StatusCancelled},
		StatusDelivered: {},
		StatusCancelled: {},
	}

	for from, next := range want {
		got := Transitions(from)
		if len(got) != len(next) {
			t.Errorf("%s: got %v, want %v", from, got, next)
			continue
		}
		for i := range next {
			if got[i] != next[i] {
				t.Errorf("%s[%d]: got %s, want %s", from, i, got[i], next[i])
			}
		}
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     error
	}{
		{StatusPending, StatusPreparing, nil},
		{StatusPending, StatusReady, ErrInvalidTransition},
		{StatusPending, StatusDelivered, ErrInvalidTransition},
		{StatusPreparing, StatusReady, nil},
		{StatusReady, StatusPreparing, ErrInvalidTransition},
		{StatusReady, StatusDelivered, nil},
		{StatusDelivered, StatusCancelled, ErrInvalidTransition},
		{StatusCancelled, StatusPending, ErrInvalidTransition},
		{StatusPreparing, StatusCancelled, nil},
		{StatusPending, "burnt", ErrUnknownStatus},
	}

	for _, tt := range tests {
		err := ValidateTransition(tt.from, tt.to)
		if tt.want == nil && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tt.from, tt.to, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, err)
		}
	}
}

func TestTransitionsReturnsCopy(t *testing.T) {
	got := Transitions(StatusPending)
	got[0] = StatusDelivered
	if Transitions(StatusPending)[0] != StatusPreparing {
		t.Fatal("Transitions must not expose the table")
	}
}

func TestKitchenQueueOrdering(t *testing.T) {
	now := time.Now()
	mk := func(name string, status Status, p Priority, submitted bool) OrderLine {
		return OrderLine{ID: uuid.New(), Name: name, Status: status, Priority: p, Submitted: submitted, SubmittedAt: &now}
	}
	lines := []OrderLine{
		mk("held", StatusPending, PriorityHold, true),
		mk("plain1", StatusPreparing, PriorityNone, true),
		mk("fired", StatusPending, PriorityFire, true),
		mk("draft", StatusPending, PriorityFire, false),
		mk("done", StatusDelivered, PriorityNone, true),
		mk("plain2", StatusReady, PriorityNone, true),
		mk("void", StatusCancelled, PriorityNone, true),
	}

	got := KitchenQueue(lines)
	want := []string{"fired", "plain1", "plain2", "held"}
	if len(got) != len(want) {
		t.Fatalf("queue: got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Errorf("queue[%d]: got %s, want %s", i, got[i].Name, want[i])
		}
	}
}
