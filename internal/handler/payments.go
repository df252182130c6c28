package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/payment"
	"github.com/kiwari-pos/tableside/internal/report"
	"github.com/kiwari-pos/tableside/internal/service"
	"github.com/shopspring/decimal"
)

// PaymentServicer defines the service methods needed by payment handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type PaymentServicer interface {
	BeginPayment(ctx context.Context, tableID uuid.UUID) (service.OrderView, error)
	ValidatePayment(tableID uuid.UUID, a payment.Attempt) (payment.Result, bool)
	Settle(ctx context.Context, tableID uuid.UUID, a payment.Attempt) (*report.Receipt, payment.Result, error)
}

// PaymentHandler handles settling a table's check.
type PaymentHandler struct {
	svc PaymentServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc PaymentServicer) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
// Expected to be mounted inside a table-scoped subrouter: /tables/{tid}/payments
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/begin", h.Begin)
	r.Post("/validate", h.Validate)
	r.Post("/", h.Settle)
}

// --- Request / Response types ---

type paymentRequest struct {
	Method         string `json:"method"`
	Tip            string `json:"tip"`
	AmountTendered string `json:"amount_tendered"`
	CardLast4      string `json:"card_last4"`
	CardType       string `json:"card_type"`
	SplitCash      string `json:"split_cash"`
	SplitCard      string `json:"split_card"`
	Notes          string `json:"notes"`
}

type paymentResultResponse struct {
	Valid     bool   `json:"valid"`
	AmountDue string `json:"amount_due"`
	ChangeDue string `json:"change_due"`
	Reason    string `json:"reason,omitempty"`
}

type receiptResponse struct {
	ID          uuid.UUID       `json:"id"`
	TableID     uuid.UUID       `json:"table_id"`
	TableNumber int             `json:"table_number"`
	Lines       []lineResponse  `json:"lines"`
	Subtotal    string          `json:"subtotal"`
	Tax         string          `json:"tax"`
	Tip         string          `json:"tip"`
	Total       string          `json:"total"`
	Payment     payment.Details `json:"payment"`
	PaidAt      time.Time       `json:"paid_at"`
}

// --- Handlers ---

// Begin handles POST /tables/{tid}/payments/begin. The table moves to paying
// and the current check is returned.
func (h *PaymentHandler) Begin(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.BeginPayment(r.Context(), tableID)
	if err != nil {
		writeServiceError(w, "begin payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(v))
}

// Validate handles POST /tables/{tid}/payments/validate. Nothing is settled.
func (h *PaymentHandler) Validate(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	a, ok := decodeAttempt(w, r)
	if !ok {
		return
	}
	res, found := h.svc.ValidatePayment(tableID, a)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResultResponse(res))
}

// Settle handles POST /tables/{tid}/payments. A rejected attempt returns 422
// with the reason and leaves the check open.
func (h *PaymentHandler) Settle(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	a, ok := decodeAttempt(w, r)
	if !ok {
		return
	}

	rc, res, err := h.svc.Settle(r.Context(), tableID, a)
	if err != nil {
		writeServiceError(w, "settle payment", err)
		return
	}
	if rc == nil {
		writeJSON(w, http.StatusUnprocessableEntity, toPaymentResultResponse(res))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"result":  toPaymentResultResponse(res),
		"receipt": toReceiptResponse(*rc),
	})
}

// --- Helpers ---

func decodeAttempt(w http.ResponseWriter, r *http.Request) (payment.Attempt, bool) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return payment.Attempt{}, false
	}
	if req.Method == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "method is required"})
		return payment.Attempt{}, false
	}

	a := payment.Attempt{
		Method:    payment.Method(req.Method),
		CardLast4: req.CardLast4,
		CardType:  req.CardType,
		Notes:     req.Notes,
	}
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"tip", req.Tip, &a.Tip},
		{"amount_tendered", req.AmountTendered, &a.AmountTendered},
		{"split_cash", req.SplitCash, &a.SplitCash},
		{"split_card", req.SplitCard, &a.SplitCard},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + f.name})
			return payment.Attempt{}, false
		}
		*f.dst = d
	}
	return a, true
}

func toPaymentResultResponse(res payment.Result) paymentResultResponse {
	return paymentResultResponse{
		Valid:     res.Valid,
		AmountDue: res.AmountDue.StringFixed(2),
		ChangeDue: res.ChangeDue.RoundFloor(2).StringFixed(2),
		Reason:    res.Reason,
	}
}

func toReceiptResponse(rc report.Receipt) receiptResponse {
	lines := make([]lineResponse, len(rc.Lines))
	for i, line := range rc.Lines {
		lines[i] = toLineResponse(line)
	}
	return receiptResponse{
		ID:          rc.ID,
		TableID:     rc.TableID,
		TableNumber: rc.TableNumber,
		Lines:       lines,
		Subtotal:    rc.Subtotal.StringFixed(2),
		Tax:         rc.Tax.StringFixed(2),
		Tip:         rc.Tip.StringFixed(2),
		Total:       rc.Total.StringFixed(2),
		Payment:     rc.Payment,
		PaidAt:      rc.PaidAt,
	}
}
