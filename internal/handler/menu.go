package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/tableside/internal/catalog"
	"github.com/kiwari-pos/tableside/internal/service"
)

// MenuServicer defines the service methods needed by menu handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type MenuServicer interface {
	Catalog() *catalog.Catalog
	Quote(itemID string, c service.Choices) (service.Quote, error)
}

// MenuHandler serves the catalog and live quotes.
type MenuHandler struct {
	svc MenuServicer
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc MenuServicer) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
// Expected to be mounted at /menu.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/categories", h.Categories)
	r.Get("/{itemID}", h.Get)
	r.Post("/{itemID}/quote", h.Quote)
}

// --- Response types ---

type menuListResponse struct {
	Categories []string           `json:"categories"`
	Items      []catalog.MenuItem `json:"items"`
}

type menuItemResponse struct {
	catalog.MenuItem
	Suggestions []catalog.MenuItem `json:"suggestions"`
}

type quoteResponse struct {
	service.Quote
	UnitPriceDisplay string `json:"unit_price_display"`
	LineTotalDisplay string `json:"line_total_display"`
}

// --- Handlers ---

// List handles GET /menu. Optional ?q= searches names and descriptions and
// ?category= narrows the result to one category.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	cat := h.svc.Catalog()
	items := cat.Search(r.URL.Query().Get("q"))
	if c := r.URL.Query().Get("category"); c != "" {
		filtered := []catalog.MenuItem{}
		for _, item := range items {
			if item.Category == c {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	writeJSON(w, http.StatusOK, menuListResponse{
		Categories: cat.Categories(),
		Items:      items,
	})
}

// Categories handles GET /menu/categories.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Catalog().Categories())
}

// Get handles GET /menu/{itemID}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	cat := h.svc.Catalog()
	item, ok := cat.FindItem(chi.URLParam(r, "itemID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	writeJSON(w, http.StatusOK, menuItemResponse{
		MenuItem:    item,
		Suggestions: cat.Suggestions(item),
	})
}

// Quote handles POST /menu/{itemID}/quote. An empty body prices the item's
// defaults.
func (h *MenuHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req service.Choices
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	q, err := h.svc.Quote(chi.URLParam(r, "itemID"), req)
	if err != nil {
		writeServiceError(w, "quote", err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Quote:            q,
		UnitPriceDisplay: service.FormatMoney(q.UnitPrice),
		LineTotalDisplay: service.FormatMoney(q.LineTotal),
	})
}
