package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiwari-pos/tableside/internal/catalog"
	"github.com/kiwari-pos/tableside/internal/config"
	"github.com/kiwari-pos/tableside/internal/event"
	"github.com/kiwari-pos/tableside/internal/floor"
	"github.com/kiwari-pos/tableside/internal/report"
	"github.com/kiwari-pos/tableside/internal/reservation"
	"github.com/kiwari-pos/tableside/internal/router"
	"github.com/kiwari-pos/tableside/internal/service"
	"github.com/kiwari-pos/tableside/internal/staff"
	"github.com/kiwari-pos/tableside/internal/ws"
)

func newRouter(t *testing.T) (http.Handler, *service.OrderService) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		DefaultServer: "House",
		CORSOrigins:   []string{"http://localhost:5173"},
	}
	roster := staff.Demo()
	svc := service.NewOrderService(catalog.Demo(), floor.New(2, 4), reservation.NewBook(), report.NewRecorder(), event.Discard{},
		service.WithRoster(roster),
	)
	return router.New(cfg, svc, roster, ws.NewHub()), svc
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h, _ := newRouter(t)
	rr := do(t, h, "GET", "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
}

func TestRoutes_AttributeDeliveryToSignedInServer(t *testing.T) {
	h, svc := newRouter(t)
	tableID := svc.Tables()[0].ID.String()

	rr := do(t, h, "POST", "/staff/sessions", "", map[string]string{"name": "Priya"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("session: got %d; body: %s", rr.Code, rr.Body.String())
	}
	var session struct {
		Token string `json:"token"`
	}
	json.NewDecoder(rr.Body).Decode(&session)

	rr = do(t, h, "POST", "/tables/"+tableID+"/order/lines", session.Token, map[string]any{"item_id": "iced-tea"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add line: got %d; body: %s", rr.Code, rr.Body.String())
	}
	var line struct {
		ID string `json:"id"`
	}
	json.NewDecoder(rr.Body).Decode(&line)

	do(t, h, "POST", "/tables/"+tableID+"/order/submit", session.Token, nil)
	for i := 0; i < 3; i++ {
		rr = do(t, h, "POST", "/tables/"+tableID+"/order/lines/"+line.ID+"/advance", session.Token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("advance: got %d; body: %s", rr.Code, rr.Body.String())
		}
	}

	var delivered struct {
		Status   string `json:"status"`
		ServedBy string `json:"served_by"`
	}
	json.NewDecoder(rr.Body).Decode(&delivered)
	if delivered.Status != "delivered" || delivered.ServedBy != "Priya" {
		t.Errorf("delivered line: %+v", delivered)
	}
}

func TestRoutes_RejectBadToken(t *testing.T) {
	h, _ := newRouter(t)
	rr := do(t, h, "GET", "/menu", "not-a-token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRoutes_AnonymousUsesDefaultServer(t *testing.T) {
	h, _ := newRouter(t)
	rr := do(t, h, "GET", "/staff/me", "", nil)
	var me struct {
		StaffName string `json:"staff_name"`
	}
	json.NewDecoder(rr.Body).Decode(&me)
	if me.StaffName != "House" {
		t.Errorf("staff: got %q, want House", me.StaffName)
	}
}

func TestRoutes_SessionsRequireActiveRosterMember(t *testing.T) {
	h, _ := newRouter(t)

	tests := []struct {
		name     string
		wantCode int
	}{
		{"Priya", http.StatusCreated},
		{"Nobody", http.StatusUnauthorized},
		{"Taylor", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, "POST", "/staff/sessions", "", map[string]string{"name": tt.name})
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d; body: %s", rr.Code, tt.wantCode, rr.Body.String())
			}
		})
	}
}

func TestRoutes_StaffRosterMountedBesideSessions(t *testing.T) {
	h, _ := newRouter(t)

	rr := do(t, h, "POST", "/staff", "", map[string]string{"name": "Dana", "role": "waiter"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d; body: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, "POST", "/staff/sessions", "", map[string]string{"name": "dana"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("session for new member: got %d", rr.Code)
	}

	rr = do(t, h, "GET", "/staff/me", "", nil)
	var me struct {
		StaffName string `json:"staff_name"`
	}
	json.NewDecoder(rr.Body).Decode(&me)
	if me.StaffName != "House" {
		t.Errorf("/staff/me routed to the roster: %q", me.StaffName)
	}
}
