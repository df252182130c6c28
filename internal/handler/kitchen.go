package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/floor"
	"github.com/kiwari-pos/tableside/internal/ledger"
	"github.com/kiwari-pos/tableside/internal/service"
)

// KitchenServicer defines the service methods needed by the kitchen display.
// Satisfied by *service.OrderService; narrow interface for testability.
type KitchenServicer interface {
	KitchenQueue(status ledger.Status) []service.KitchenTicket
	Now() time.Time
}

// KitchenHandler serves the kitchen display queue.
type KitchenHandler struct {
	svc KitchenServicer
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(svc KitchenServicer) *KitchenHandler {
	return &KitchenHandler{svc: svc}
}

// RegisterRoutes registers kitchen endpoints on the given Chi router.
// Expected to be mounted at /kitchen.
func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Queue)
}

// --- Response types ---

type kitchenTicketResponse struct {
	TableID     uuid.UUID    `json:"table_id"`
	TableNumber int          `json:"table_number"`
	Waiting     string       `json:"waiting"`
	Line        lineResponse `json:"line"`
}

// --- Handlers ---

// Queue handles GET /kitchen. An optional ?status= keeps one status only.
func (h *KitchenHandler) Queue(w http.ResponseWriter, r *http.Request) {
	status := ledger.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	now := h.svc.Now()
	tickets := h.svc.KitchenQueue(status)
	resp := make([]kitchenTicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = kitchenTicketResponse{
			TableID:     t.TableID,
			TableNumber: t.TableNumber,
			Line:        toLineResponse(t.Line),
		}
		if t.Line.SubmittedAt != nil {
			resp[i].Waiting = floor.FormatOccupied(*t.Line.SubmittedAt, now)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
