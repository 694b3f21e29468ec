package web

import (
	"net/http"
	"strconv"

	"boq-procurement/internal/app"

	"github.com/go-chi/chi/v5"
)

// listUsers handles GET /api/users.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	users, err := h.svc.ListUsers(r.Context(), session.Actor())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, users)
}

// createUser handles POST /api/users.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req app.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session := sessionFromContext(r.Context())
	user, err := h.svc.CreateUser(r.Context(), session.Actor(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, user)
}

// setUserActive handles PATCH /api/users/{id}/active.
func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid user id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	session := sessionFromContext(r.Context())
	if err := h.svc.SetUserActive(r.Context(), session.Actor(), id, req.Active); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "updated"})
}
