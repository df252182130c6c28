package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/tableside/internal/report"
)

// ReportsServicer defines the service methods needed by report handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type ReportsServicer interface {
	SalesSummary(from, to *time.Time) report.Summary
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	svc ReportsServicer
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(svc ReportsServicer) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// RegisterRoutes registers report endpoints.
// Expected to be mounted at /reports.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.Sales)
}

// --- Response types ---

type itemSalesResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Revenue  string `json:"revenue"`
}

type categorySalesResponse struct {
	Category string `json:"category"`
	Sales    string `json:"sales"`
}

type paymentMethodResponse struct {
	Method string `json:"method"`
	Count  int    `json:"count"`
	Total  string `json:"total"`
}

type hourSalesResponse struct {
	Hour   int    `json:"hour"`
	Orders int    `json:"orders"`
	Sales  string `json:"sales"`
}

type daySalesResponse struct {
	Date   string `json:"date"`
	Orders int    `json:"orders"`
	Sales  string `json:"sales"`
}

type salesSummaryResponse struct {
	StartDate         *string                 `json:"start_date"`
	EndDate           *string                 `json:"end_date"`
	TotalSales        string                  `json:"total_sales"`
	NetSales          string                  `json:"net_sales"`
	Tax               string                  `json:"tax"`
	Tips              string                  `json:"tips"`
	OrderCount        int                     `json:"order_count"`
	ItemsSold         int                     `json:"items_sold"`
	AverageOrderValue string                  `json:"average_order_value"`
	TopItems          []itemSalesResponse     `json:"top_items"`
	ByCategory        []categorySalesResponse `json:"by_category"`
	PaymentMethods    []paymentMethodResponse `json:"payment_methods"`
	ByHour            []hourSalesResponse     `json:"by_hour"`
	ByDay             []daySalesResponse      `json:"by_day"`
}

// --- Handlers ---

// Sales handles GET /reports/sales?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD.
// Both bounds are optional and inclusive.
func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s := h.svc.SalesSummary(from, to)
	resp := salesSummaryResponse{
		StartDate:         formatDate(s.From),
		EndDate:           formatDate(s.To),
		TotalSales:        s.TotalSales.StringFixed(2),
		NetSales:          s.NetSales.StringFixed(2),
		Tax:               s.Tax.StringFixed(2),
		Tips:              s.Tips.StringFixed(2),
		OrderCount:        s.OrderCount,
		ItemsSold:         s.ItemsSold,
		AverageOrderValue: s.AverageOrderValue.StringFixed(2),
		TopItems:          make([]itemSalesResponse, len(s.TopItems)),
		ByCategory:        make([]categorySalesResponse, len(s.ByCategory)),
		PaymentMethods:    make([]paymentMethodResponse, len(s.PaymentMethods)),
		ByHour:            make([]hourSalesResponse, len(s.ByHour)),
		ByDay:             make([]daySalesResponse, len(s.ByDay)),
	}
	for i, it := range s.TopItems {
		resp.TopItems[i] = itemSalesResponse{Name: it.Name, Quantity: it.Quantity, Revenue: it.Revenue.StringFixed(2)}
	}
	for i, c := range s.ByCategory {
		resp.ByCategory[i] = categorySalesResponse{Category: c.Category, Sales: c.Sales.StringFixed(2)}
	}
	for i, m := range s.PaymentMethods {
		resp.PaymentMethods[i] = paymentMethodResponse{Method: string(m.Method), Count: m.Count, Total: m.Total.StringFixed(2)}
	}
	for i, hs := range s.ByHour {
		resp.ByHour[i] = hourSalesResponse{Hour: hs.Hour, Orders: hs.Orders, Sales: hs.Sales.StringFixed(2)}
	}
	for i, ds := range s.ByDay {
		resp.ByDay[i] = daySalesResponse{Date: ds.Date.Format(dateLayout), Orders: ds.Orders, Sales: ds.Sales.StringFixed(2)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// parseDateRange parses the optional start_date and end_date query params.
// A missing bound is returned as nil.
func parseDateRange(r *http.Request) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start_date format: %w", err)
		}
		from = &t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end_date format: %w", err)
		}
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("start_date must not be after end_date")
	}
	return from, to, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
