package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/staff"
)

// RosterStore defines the roster methods needed by staff handlers.
// Satisfied by *staff.Roster; narrow interface for testability.
type RosterStore interface {
	Search(q string) []staff.Member
	Get(id uuid.UUID) (staff.Member, bool)
	Add(m staff.Member, now time.Time) (staff.Member, error)
	Update(id uuid.UUID, c staff.Changes, now time.Time) (staff.Member, error)
	Delete(id uuid.UUID) error
}

// RosterHandler handles staff roster CRUD endpoints.
type RosterHandler struct {
	store RosterStore
	now   func() time.Time
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(store RosterStore) *RosterHandler {
	return &RosterHandler{store: store, now: time.Now}
}

// RegisterRoutes registers roster endpoints on the given Chi router.
// Expected to be mounted at /staff, next to the session endpoints.
func (h *RosterHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createMemberRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active *bool  `json:"active"`
}

type updateMemberRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

type memberResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toMemberResponse(m staff.Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      string(m.Role),
		IsActive:  m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// --- Handlers ---

// List handles GET /staff?q=. The query matches name, email or role.
func (h *RosterHandler) List(w http.ResponseWriter, r *http.Request) {
	members := h.store.Search(r.URL.Query().Get("q"))

	resp := make([]memberResponse, len(members))
	for i, m := range members {
		resp[i] = toMemberResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /staff/{id}.
func (h *RosterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMemberID(w, r)
	if !ok {
		return
	}
	m, found := h.store.Get(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff member not found"})
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(m))
}

// Create adds a member. New members are active unless active is false.
func (h *RosterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	m, err := h.store.Add(staff.Member{
		Name:   req.Name,
		Email:  req.Email,
		Role:   staff.Role(req.Role),
		Active: active,
	}, h.now())
	if err != nil {
		writeStaffError(w, "create staff member", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMemberResponse(m))
}

// Update handles PUT and PATCH /staff/{id}. Omitted fields keep their value.
func (h *RosterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMemberID(w, r)
	if !ok {
		return
	}

	var req updateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c := staff.Changes{Name: req.Name, Email: req.Email, Active: req.Active}
	if req.Role != nil {
		role := staff.Role(*req.Role)
		c.Role = &role
	}
	m, err := h.store.Update(id, c, h.now())
	if err != nil {
		writeStaffError(w, "update staff member", err)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(m))
}

// Delete removes a member from the roster.
func (h *RosterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMemberID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(id); err != nil {
		writeStaffError(w, "delete staff member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func parseMemberID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return uuid.Nil, false
	}
	return id, true
}

func writeStaffError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, staff.ErrMemberNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff member not found"})
	case errors.Is(err, staff.ErrNameRequired),
		errors.Is(err, staff.ErrInvalidEmail),
		errors.Is(err, staff.ErrInvalidRole):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, staff.ErrDuplicateName),
		errors.Is(err, staff.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
