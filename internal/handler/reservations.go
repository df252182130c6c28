package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/floor"
	"github.com/kiwari-pos/tableside/internal/reservation"
)

const dateLayout = "2006-01-02"

// ReservationServicer defines the service methods needed by reservation handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type ReservationServicer interface {
	Now() time.Time
	Reservations(day time.Time) []reservation.Reservation
	CreateReservation(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id uuid.UUID, status reservation.Status) (reservation.Reservation, bool, error)
	SeatReservation(ctx context.Context, reservationID, tableID uuid.UUID) (floor.Table, reservation.Reservation, error)
}

// ReservationHandler handles the reservation book.
type ReservationHandler struct {
	svc ReservationServicer
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(svc ReservationServicer) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

// RegisterRoutes registers reservation endpoints on the given Chi router.
// Expected to be mounted at /reservations.
func (h *ReservationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/seat", h.Seat)
}

// --- Request / Response types ---

type createReservationRequest struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	PartySize int    `json:"party_size"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Notes     string `json:"notes"`
}

type updateReservationStatusRequest struct {
	Status string `json:"status"`
}

type seatReservationRequest struct {
	TableID string `json:"table_id"`
}

type reservationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	PartySize int        `json:"party_size"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	TableID   *uuid.UUID `json:"table_id,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// --- Handlers ---

// List handles GET /reservations?date=YYYY-MM-DD. Defaults to today.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	day := h.svc.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, expected YYYY-MM-DD"})
			return
		}
		day = d
	}

	list := h.svc.Reservations(day)
	resp := make([]reservationResponse, len(list))
	for i, res := range list {
		resp[i] = toReservationResponse(res)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /reservations.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var date time.Time
	if req.Date != "" {
		d, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, expected YYYY-MM-DD"})
			return
		}
		date = d
	}

	res, err := h.svc.CreateReservation(r.Context(), reservation.Reservation{
		Name:      req.Name,
		Date:      date,
		Time:      req.Time,
		PartySize: req.PartySize,
		Phone:     req.Phone,
		Email:     req.Email,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, "create reservation", err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}

// UpdateStatus handles PATCH /reservations/{id}/status.
func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReservationID(w, r)
	if !ok {
		return
	}

	var req updateReservationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	res, found, err := h.svc.UpdateReservationStatus(r.Context(), id, reservation.Status(req.Status))
	if err != nil {
		writeServiceError(w, "update reservation status", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reservation not found"})
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

// Seat handles POST /reservations/{id}/seat.
func (h *ReservationHandler) Seat(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReservationID(w, r)
	if !ok {
		return
	}

	var req seatReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	tableID, err := uuid.Parse(req.TableID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table_id"})
		return
	}

	t, res, err := h.svc.SeatReservation(r.Context(), id, tableID)
	if err != nil {
		writeServiceError(w, "seat reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"table":       toTableResponse(t, h.svc.Now()),
		"reservation": toReservationResponse(res),
	})
}

// --- Helpers ---

func toReservationResponse(r reservation.Reservation) reservationResponse {
	return reservationResponse{
		ID:        r.ID,
		Name:      r.Name,
		Date:      r.Date.Format(dateLayout),
		Time:      r.Time,
		PartySize: r.PartySize,
		Phone:     r.Phone,
		Email:     r.Email,
		Notes:     r.Notes,
		TableID:   r.TableID,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

func parseReservationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid reservation ID"})
		return uuid.Nil, false
	}
	return id, true
}
