package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/floor"
)

// TableServicer defines the service methods needed by table handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type TableServicer interface {
	Tables() []floor.Table
	Table(id uuid.UUID) (floor.Table, bool)
	Now() time.Time
	SetTableStatus(ctx context.Context, id uuid.UUID, status floor.Status) (floor.Table, bool, error)
	AssignServer(ctx context.Context, id uuid.UUID, server string) (floor.Table, bool, error)
}

// TableHandler serves the floor plan.
type TableHandler struct {
	svc TableServicer
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(svc TableServicer) *TableHandler {
	return &TableHandler{svc: svc}
}

// RegisterRoutes registers table endpoints on the given Chi router.
// Expected to be mounted at /tables.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{tid}", h.Get)
	r.Patch("/{tid}", h.Update)
}

// --- Request / Response types ---

type updateTableRequest struct {
	Status *string `json:"status"`
	Server *string `json:"server"`
}

type tableResponse struct {
	ID              uuid.UUID  `json:"id"`
	Number          int        `json:"number"`
	Seats           int        `json:"seats"`
	Status          string     `json:"status"`
	OccupiedSince   *time.Time `json:"occupied_since"`
	OccupiedMinutes int        `json:"occupied_minutes"`
	OccupiedFor     string     `json:"occupied_for,omitempty"`
	Server          string     `json:"server,omitempty"`
	ReservationID   *uuid.UUID `json:"reservation_id,omitempty"`
}

// --- Handlers ---

// List handles GET /tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	now := h.svc.Now()
	tables := h.svc.Tables()
	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t, now)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /tables/{tid}.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	t, ok := h.svc.Table(tableID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}
	writeJSON(w, http.StatusOK, toTableResponse(t, h.svc.Now()))
}

// Update handles PATCH /tables/{tid}. Status and server are both optional.
func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}

	var req updateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == nil && req.Server == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status or server is required"})
		return
	}

	t, found := h.svc.Table(tableID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}

	if req.Status != nil {
		var err error
		t, found, err = h.svc.SetTableStatus(r.Context(), tableID, floor.Status(*req.Status))
		if err != nil {
			writeServiceError(w, "set table status", err)
			return
		}
	}
	if req.Server != nil && found {
		var err error
		t, found, err = h.svc.AssignServer(r.Context(), tableID, *req.Server)
		if err != nil {
			writeServiceError(w, "assign server", err)
			return
		}
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}

	writeJSON(w, http.StatusOK, toTableResponse(t, h.svc.Now()))
}

// --- Helpers ---

func toTableResponse(t floor.Table, now time.Time) tableResponse {
	resp := tableResponse{
		ID:            t.ID,
		Number:        t.Number,
		Seats:         t.Seats,
		Status:        string(t.Status),
		OccupiedSince: t.OccupiedSince,
		Server:        t.Server,
		ReservationID: t.ReservationID,
	}
	if t.OccupiedSince != nil {
		resp.OccupiedMinutes = t.OccupiedMinutes(now)
		resp.OccupiedFor = t.OccupiedFor(now)
	}
	return resp
}

func parseTableID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return uuid.Nil, false
	}
	return id, true
}
