package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/auth"
	"github.com/kiwari-pos/tableside/internal/middleware"
	"github.com/kiwari-pos/tableside/internal/staff"
)

// StaffDirectory resolves a sign-in name to a roster member.
// Satisfied by *staff.Roster; narrow interface for testability.
type StaffDirectory interface {
	FindActive(name string) (staff.Member, error)
}

// StaffHandler issues staff session tokens to active roster members. A token
// only tells the engine which server is working a terminal; it grants
// nothing.
type StaffHandler struct {
	jwtSecret string
	roster    StaffDirectory
	now       func() time.Time
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(jwtSecret string, roster StaffDirectory) *StaffHandler {
	return &StaffHandler{jwtSecret: jwtSecret, roster: roster, now: time.Now}
}

// RegisterRoutes registers staff session endpoints on the given Chi router.
// Expected to be mounted at /staff.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.StartSession)
	r.Get("/me", h.Me)
}

// --- Request / Response types ---

type startSessionRequest struct {
	Name string `json:"name"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	StaffID   uuid.UUID `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- Handlers ---

// StartSession handles POST /staff/sessions.
func (h *StaffHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	member, err := h.roster.FindActive(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, staff.ErrNameRequired):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		case errors.Is(err, staff.ErrInactive):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "staff member is inactive"})
		case errors.Is(err, staff.ErrMemberNotFound):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown staff member"})
		default:
			log.Printf("ERROR: find staff member: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	now := h.now()
	token, err := auth.GenerateToken(h.jwtSecret, member.Name, now)
	if err != nil {
		log.Printf("ERROR: generate staff token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	claims, err := auth.ValidateToken(h.jwtSecret, token)
	if err != nil {
		log.Printf("ERROR: validate fresh staff token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:     token,
		StaffID:   member.ID,
		StaffName: claims.StaffName,
		Role:      string(member.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// Me handles GET /staff/me and reports who the request is attributed to.
func (h *StaffHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"staff_name":    middleware.StaffFromContext(r.Context()),
		"authenticated": middleware.ClaimsFromContext(r.Context()) != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
