package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/catalog"
	"github.com/kiwari-pos/tableside/internal/event"
	"github.com/kiwari-pos/tableside/internal/floor"
	"github.com/kiwari-pos/tableside/internal/handler"
	"github.com/kiwari-pos/tableside/internal/report"
	"github.com/kiwari-pos/tableside/internal/reservation"
	"github.com/kiwari-pos/tableside/internal/service"
	"github.com/kiwari-pos/tableside/internal/staff"
)

// --- Fixture ---

type fixture struct {
	svc    *service.OrderService
	roster *staff.Roster
	events *event.Recorder
	tables []floor.Table
	router *chi.Mux
	clock  *time.Time
}

// newFixture wires every handler against a real in-memory service with a
// fixed clock.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	f := &fixture{events: &event.Recorder{}, clock: &now}

	fl := floor.New(4, 4)
	f.roster = newRoster(t)
	f.svc = service.NewOrderService(catalog.Demo(), fl, reservation.NewBook(), report.NewRecorder(), f.events,
		service.WithClock(func() time.Time { return *f.clock }),
		service.WithDefaultServer("Alex"),
		service.WithRoster(f.roster),
	)
	f.tables = fl.Tables()

	r := chi.NewRouter()
	r.Route("/menu", handler.NewMenuHandler(f.svc).RegisterRoutes)
	r.Route("/tables", func(r chi.Router) {
		handler.NewTableHandler(f.svc).RegisterRoutes(r)
		r.Route("/{tid}/order", handler.NewOrderHandler(f.svc).RegisterRoutes)
		r.Route("/{tid}/payments", handler.NewPaymentHandler(f.svc).RegisterRoutes)
	})
	r.Route("/kitchen", handler.NewKitchenHandler(f.svc).RegisterRoutes)
	r.Route("/reservations", handler.NewReservationHandler(f.svc).RegisterRoutes)
	r.Route("/reports", handler.NewReportsHandler(f.svc).RegisterRoutes)
	r.Route("/staff", handler.NewRosterHandler(f.roster).RegisterRoutes)
	f.router = r
	return f
}

// newRoster seeds the staff used across handler tests. Taylor is inactive.
func newRoster(t *testing.T) *staff.Roster {
	t.Helper()
	r := staff.NewRoster()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, m := range []staff.Member{
		{Name: "Jordan", Email: "jordan@tableside.test", Role: staff.RoleWaiter, Active: true},
		{Name: "Priya", Email: "priya@tableside.test", Role: staff.RoleWaiter, Active: true},
		{Name: "Casey", Email: "casey@tableside.test", Role: staff.RoleCashier, Active: true},
		{Name: "Taylor", Email: "taylor@tableside.test", Role: staff.RoleCashier, Active: false},
	} {
		if _, err := r.Add(m, at); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func (f *fixture) table(i int) uuid.UUID {
	return f.tables[i].ID
}

func (f *fixture) orderPath(i int) string {
	return "/tables/" + f.table(i).String() + "/order"
}

func (f *fixture) paymentsPath(i int) string {
	return "/tables/" + f.table(i).String() + "/payments"
}

// addLine commits an item through the API and returns the new line's id.
func (f *fixture) addLine(t *testing.T, i int, body map[string]any) string {
	t.Helper()
	rr := doRequest(t, f.router, "POST", f.orderPath(i)+"/lines", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add line: got %d; body: %s", rr.Code, rr.Body.String())
	}
	return decodeMap(t, rr)["id"].(string)
}

// --- Helpers ---

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}
