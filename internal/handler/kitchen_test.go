package handler_test

import (
	"net/http"
	"testing"
	"time"
)

func TestKitchenQueue(t *testing.T) {
	f := newFixture(t)

	first := f.addLine(t, 0, map[string]any{"item_id": "grilled-salmon"})
	assertStatus(t, doRequest(t, f.router, "POST", f.orderPath(0)+"/submit", nil), http.StatusOK)

	*f.clock = f.clock.Add(5 * time.Minute)
	second := f.addLine(t, 1, map[string]any{"item_id": "caesar-salad"})
	assertStatus(t, doRequest(t, f.router, "POST", f.orderPath(1)+"/submit", nil), http.StatusOK)

	// Not sent yet, so not on the queue.
	f.addLine(t, 2, map[string]any{"item_id": "iced-tea"})

	*f.clock = f.clock.Add(7 * time.Minute)
	rr := doRequest(t, f.router, "GET", "/kitchen", nil)
	assertStatus(t, rr, http.StatusOK)

	tickets := decodeList(t, rr)
	if len(tickets) != 2 {
		t.Fatalf("tickets: got %d, want 2", len(tickets))
	}
	if id := tickets[0]["line"].(map[string]interface{})["id"]; id != first {
		t.Errorf("first ticket: got %v, want %s", id, first)
	}
	if tickets[0]["table_number"] != float64(1) || tickets[0]["waiting"] != "12m" {
		t.Errorf("first ticket: table %v waiting %v", tickets[0]["table_number"], tickets[0]["waiting"])
	}

	// Firing the newer ticket moves it to the front.
	assertStatus(t, doRequest(t, f.router, "POST", f.orderPath(1)+"/lines/"+second+"/priority", nil), http.StatusOK)
	rr = doRequest(t, f.router, "GET", "/kitchen", nil)
	tickets = decodeList(t, rr)
	if id := tickets[0]["line"].(map[string]interface{})["id"]; id != second {
		t.Errorf("fired ticket should lead, got %v", id)
	}
}

func TestKitchenQueue_ByStatus(t *testing.T) {
	f := newFixture(t)
	id := f.addLine(t, 0, map[string]any{"item_id": "grilled-salmon"})
	f.addLine(t, 0, map[string]any{"item_id": "french-fries"})
	assertStatus(t, doRequest(t, f.router, "POST", f.orderPath(0)+"/submit", nil), http.StatusOK)
	assertStatus(t, doRequest(t, f.router, "POST", f.orderPath(0)+"/lines/"+id+"/advance", nil), http.StatusOK)

	rr := doRequest(t, f.router, "GET", "/kitchen?status=preparing", nil)
	assertStatus(t, rr, http.StatusOK)
	tickets := decodeList(t, rr)
	if len(tickets) != 1 || tickets[0]["line"].(map[string]interface{})["id"] != id {
		t.Errorf("preparing tickets: %v", tickets)
	}

	rr = doRequest(t, f.router, "GET", "/kitchen?status=delivered", nil)
	if tickets := decodeList(t, rr); len(tickets) != 0 {
		t.Errorf("delivered lines never show: got %d", len(tickets))
	}

	rr = doRequest(t, f.router, "GET", "/kitchen?status=burnt", nil)
	assertStatus(t, rr, http.StatusBadRequest)
}
