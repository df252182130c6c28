package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestRosterList(t *testing.T) {
	f := newFixture(t)

	rr := doRequest(t, f.router, "GET", "/staff", nil)
	assertStatus(t, rr, http.StatusOK)
	list := decodeList(t, rr)
	if len(list) != 4 || list[0]["name"] != "Casey" {
		t.Fatalf("roster: %v", list)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"?q=waiter", 2},
		{"?q=TAYLOR", 1},
		{"?q=tableside.test", 4},
		{"?q=chef", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := doRequest(t, f.router, "GET", "/staff"+tt.query, nil)
			assertStatus(t, rr, http.StatusOK)
			if got := len(decodeList(t, rr)); got != tt.want {
				t.Errorf("got %d members, want %d", got, tt.want)
			}
		})
	}
}

func TestRosterCreate(t *testing.T) {
	f := newFixture(t)

	rr := doRequest(t, f.router, "POST", "/staff", map[string]any{"name": " Sam ", "email": "SAM@tableside.test", "role": "kitchen"})
	assertStatus(t, rr, http.StatusCreated)
	m := decodeMap(t, rr)
	if m["name"] != "Sam" || m["email"] != "sam@tableside.test" || m["role"] != "kitchen" || m["is_active"] != true {
		t.Errorf("created: %v", m)
	}

	rr = doRequest(t, f.router, "GET", "/staff/"+m["id"].(string), nil)
	assertStatus(t, rr, http.StatusOK)

	rr = doRequest(t, f.router, "POST", "/staff", map[string]any{"name": "Robin", "active": false})
	assertStatus(t, rr, http.StatusCreated)
	if m := decodeMap(t, rr); m["role"] != "waiter" || m["is_active"] != false {
		t.Errorf("defaults: %v", m)
	}
}

func TestRosterCreate_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{"bad body", "garbage", http.StatusBadRequest},
		{"missing name", map[string]any{"role": "waiter"}, http.StatusBadRequest},
		{"bad email", map[string]any{"name": "Sam", "email": "sam"}, http.StatusBadRequest},
		{"bad role", map[string]any{"name": "Sam", "role": "owner"}, http.StatusBadRequest},
		{"duplicate name", map[string]any{"name": "jordan"}, http.StatusConflict},
		{"duplicate email", map[string]any{"name": "Sam", "email": "priya@tableside.test"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, f.router, "POST", "/staff", tt.body)
			assertStatus(t, rr, tt.wantCode)
		})
	}
}

func TestRosterUpdate(t *testing.T) {
	f := newFixture(t)
	jordan, err := f.roster.FindActive("Jordan")
	if err != nil {
		t.Fatal(err)
	}
	path := "/staff/" + jordan.ID.String()

	rr := doRequest(t, f.router, "PATCH", path, map[string]any{"role": "manager"})
	assertStatus(t, rr, http.StatusOK)
	if m := decodeMap(t, rr); m["role"] != "manager" || m["email"] != "jordan@tableside.test" {
		t.Errorf("patched: %v", m)
	}

	rr = doRequest(t, f.router, "PUT", path, map[string]any{"active": false})
	assertStatus(t, rr, http.StatusOK)

	// A deactivated member can no longer be put on a table.
	rr = doRequest(t, f.router, "PATCH", "/tables/"+f.table(0).String(), map[string]any{"server": "Jordan"})
	assertStatus(t, rr, http.StatusBadRequest)

	tests := []struct {
		name     string
		path     string
		body     interface{}
		wantCode int
	}{
		{"bad id", "/staff/not-a-uuid", map[string]any{"role": "waiter"}, http.StatusBadRequest},
		{"unknown id", "/staff/" + uuid.New().String(), map[string]any{"role": "waiter"}, http.StatusNotFound},
		{"bad role", path, map[string]any{"role": "chef"}, http.StatusBadRequest},
		{"blank name", path, map[string]any{"name": " "}, http.StatusBadRequest},
		{"taken name", path, map[string]any{"name": "Priya"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, f.router, "PATCH", tt.path, tt.body)
			assertStatus(t, rr, tt.wantCode)
		})
	}
}

func TestRosterDelete(t *testing.T) {
	f := newFixture(t)
	casey, err := f.roster.FindActive("Casey")
	if err != nil {
		t.Fatal(err)
	}
	path := "/staff/" + casey.ID.String()

	rr := doRequest(t, f.router, "DELETE", path, nil)
	assertStatus(t, rr, http.StatusNoContent)

	rr = doRequest(t, f.router, "GET", path, nil)
	assertStatus(t, rr, http.StatusNotFound)

	rr = doRequest(t, f.router, "DELETE", path, nil)
	assertStatus(t, rr, http.StatusNotFound)

	rr = doRequest(t, f.router, "DELETE", "/staff/42", nil)
	assertStatus(t, rr, http.StatusBadRequest)
}
