package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/auth"
	"github.com/kiwari-pos/tableside/internal/floor"
	"github.com/kiwari-pos/tableside/internal/ledger"
	"github.com/kiwari-pos/tableside/internal/middleware"
	"github.com/kiwari-pos/tableside/internal/reservation"
	"github.com/kiwari-pos/tableside/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Order(tableID uuid.UUID) (service.OrderView, bool)
	Commit(ctx context.Context, tableID uuid.UUID, itemID string, c service.Choices) (ledger.OrderLine, error)
	RemoveLine(ctx context.Context, tableID, lineID uuid.UUID) (bool, error)
	UpdateLine(ctx context.Context, tableID, lineID uuid.UUID, u ledger.LineUpdate, staff string) (ledger.OrderLine, bool, error)
	Advance(ctx context.Context, tableID, lineID uuid.UUID, staff string) (ledger.OrderLine, bool, error)
	TogglePriority(ctx context.Context, tableID, lineID uuid.UUID) (ledger.OrderLine, bool)
	Submit(ctx context.Context, tableID uuid.UUID) ([]ledger.OrderLine, error)
}

// OrderHandler handles the check of a table.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside a table-scoped subrouter: /tables/{tid}/order
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/lines", h.AddLine)
	r.Patch("/lines/{lid}", h.UpdateLine)
	r.Delete("/lines/{lid}", h.RemoveLine)
	r.Post("/lines/{lid}/advance", h.Advance)
	r.Post("/lines/{lid}/priority", h.TogglePriority)
	r.Get("/lines/{lid}/transitions", h.Transitions)
	r.Post("/submit", h.Submit)
}

// --- Request / Response types ---

type addLineRequest struct {
	ItemID string `json:"item_id"`
	service.Choices
}

type updateLineRequest struct {
	Status   *string `json:"status"`
	ServedBy *string `json:"served_by"`
}

type orderResponse struct {
	TableID  uuid.UUID      `json:"table_id"`
	Lines    []lineResponse `json:"lines"`
	Subtotal string         `json:"subtotal"`
	Tax      string         `json:"tax"`
	Total    string         `json:"total"`
}

type lineResponse struct {
	ID           uuid.UUID  `json:"id"`
	ItemID       string     `json:"item_id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	UnitPrice    string     `json:"unit_price"`
	Quantity     int        `json:"quantity"`
	LineTotal    string     `json:"line_total"`
	Modifiers    []string   `json:"modifiers"`
	ComboItems   []string   `json:"combo_items"`
	Notes        string     `json:"notes"`
	Status       string     `json:"status"`
	NextStatuses []string   `json:"next_statuses"`
	ServedBy     *string    `json:"served_by"`
	Priority     *string    `json:"priority"`
	Submitted    bool       `json:"submitted"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// --- Handlers ---

// Get handles GET /tables/{tid}/order.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	v, ok := h.svc.Order(tableID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(v))
}

// AddLine handles POST /tables/{tid}/order/lines.
func (h *OrderHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}

	var req addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id is required"})
		return
	}

	line, err := h.svc.Commit(r.Context(), tableID, req.ItemID, req.Choices)
	if err != nil {
		writeServiceError(w, "commit line", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLineResponse(line))
}

// UpdateLine handles PATCH /tables/{tid}/order/lines/{lid}.
func (h *OrderHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	tableID, lineID, ok := parseLineIDs(w, r)
	if !ok {
		return
	}

	var req updateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == nil && req.ServedBy == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status or served_by is required"})
		return
	}

	var u ledger.LineUpdate
	if req.Status != nil {
		status := ledger.Status(*req.Status)
		u.Status = &status
	}
	u.ServedBy = req.ServedBy

	line, found, err := h.svc.UpdateLine(r.Context(), tableID, lineID, u, middleware.StaffFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, "update line", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order line not found"})
		return
	}
	writeJSON(w, http.StatusOK, toLineResponse(line))
}

// RemoveLine handles DELETE /tables/{tid}/order/lines/{lid}. Removing a line
// that is already gone succeeds.
func (h *OrderHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	tableID, lineID, ok := parseLineIDs(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.RemoveLine(r.Context(), tableID, lineID); err != nil {
		writeServiceError(w, "remove line", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Advance handles POST /tables/{tid}/order/lines/{lid}/advance.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	tableID, lineID, ok := parseLineIDs(w, r)
	if !ok {
		return
	}
	line, found, err := h.svc.Advance(r.Context(), tableID, lineID, middleware.StaffFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, "advance line", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order line not found"})
		return
	}
	writeJSON(w, http.StatusOK, toLineResponse(line))
}

// TogglePriority handles POST /tables/{tid}/order/lines/{lid}/priority.
func (h *OrderHandler) TogglePriority(w http.ResponseWriter, r *http.Request) {
	tableID, lineID, ok := parseLineIDs(w, r)
	if !ok {
		return
	}
	line, ok := h.svc.TogglePriority(r.Context(), tableID, lineID)
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "line not found or past preparation"})
		return
	}
	writeJSON(w, http.StatusOK, toLineResponse(line))
}

// Transitions handles GET /tables/{tid}/order/lines/{lid}/transitions.
func (h *OrderHandler) Transitions(w http.ResponseWriter, r *http.Request) {
	tableID, lineID, ok := parseLineIDs(w, r)
	if !ok {
		return
	}
	v, ok := h.svc.Order(tableID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}
	for _, line := range v.Lines {
		if line.ID == lineID {
			writeJSON(w, http.StatusOK, map[string]any{
				"status":      line.Status,
				"transitions": statusStrings(ledger.Transitions(line.Status)),
			})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "order line not found"})
}

// Submit handles POST /tables/{tid}/order/submit.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	sent, err := h.svc.Submit(r.Context(), tableID)
	if err != nil {
		writeServiceError(w, "submit order", err)
		return
	}
	resp := make([]lineResponse, len(sent))
	for i, line := range sent {
		resp[i] = toLineResponse(line)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sent": resp})
}

// --- Helpers ---

func toOrderResponse(v service.OrderView) orderResponse {
	lines := make([]lineResponse, len(v.Lines))
	for i, line := range v.Lines {
		lines[i] = toLineResponse(line)
	}
	return orderResponse{
		TableID:  v.TableID,
		Lines:    lines,
		Subtotal: v.Subtotal.StringFixed(2),
		Tax:      v.Tax.StringFixed(2),
		Total:    v.Total.StringFixed(2),
	}
}

func toLineResponse(l ledger.OrderLine) lineResponse {
	resp := lineResponse{
		ID:           l.ID,
		ItemID:       l.ItemID,
		Name:         l.Name,
		Category:     l.Category,
		UnitPrice:    l.UnitPrice.StringFixed(2),
		Quantity:     l.Quantity,
		LineTotal:    l.LineTotal().StringFixed(2),
		Modifiers:    l.Modifiers,
		ComboItems:   l.ComboItems,
		Notes:        l.Notes,
		Status:       string(l.Status),
		NextStatuses: statusStrings(ledger.Transitions(l.Status)),
		Submitted:    l.Submitted,
		SubmittedAt:  l.SubmittedAt,
		CreatedAt:    l.CreatedAt,
	}
	if resp.Modifiers == nil {
		resp.Modifiers = []string{}
	}
	if resp.ComboItems == nil {
		resp.ComboItems = []string{}
	}
	if l.ServedBy != "" {
		resp.ServedBy = &l.ServedBy
	}
	if l.Priority != ledger.PriorityNone {
		p := string(l.Priority)
		resp.Priority = &p
	}
	return resp
}

func statusStrings(statuses []ledger.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func parseLineIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	lineID, err := uuid.Parse(chi.URLParam(r, "lid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return tableID, lineID, true
}

// writeServiceError maps known service errors to HTTP status codes and logs
// anything else as an internal error.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case isNotFoundError(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case isConflictError(err):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func isNotFoundError(err error) bool {
	return errors.Is(err, service.ErrTableNotFound) ||
		errors.Is(err, service.ErrItemNotFound) ||
		errors.Is(err, service.ErrReservationNotFound)
}

// isValidationError checks if the error is a known validation error
// that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrInvalidSelection) ||
		errors.Is(err, service.ErrItemUnavailable) ||
		errors.Is(err, ledger.ErrUnknownStatus) ||
		errors.Is(err, ledger.ErrInvalidQuantity) ||
		errors.Is(err, floor.ErrUnknownStatus) ||
		errors.Is(err, reservation.ErrNameRequired) ||
		errors.Is(err, reservation.ErrInvalidPartySize) ||
		errors.Is(err, reservation.ErrInvalidTime) ||
		errors.Is(err, reservation.ErrDateRequired) ||
		errors.Is(err, reservation.ErrUnknownStatus) ||
		errors.Is(err, service.ErrUnknownServer) ||
		errors.Is(err, auth.ErrStaffNameRequired)
}

// isConflictError checks if the request is valid but the current state of
// the check does not allow it.
func isConflictError(err error) bool {
	return errors.Is(err, ledger.ErrInvalidTransition) ||
		errors.Is(err, ledger.ErrLineSubmitted) ||
		errors.Is(err, ledger.ErrServedByRequired) ||
		errors.Is(err, service.ErrNoNextStatus) ||
		errors.Is(err, service.ErrEmptyOrder) ||
		errors.Is(err, service.ErrTableBusy)
}
