package web

import (
	"net/http"
	"strconv"
	"time"

	"boq-procurement/internal/core"

	"github.com/go-chi/chi/v5"
)

// partyKindFromURL validates the {kind} route segment.
func partyKindFromURL(r *http.Request) (core.PartyKind, bool) {
	switch kind := core.PartyKind(chi.URLParam(r, "kind")); kind {
	case core.PartySupplier, core.PartyBillTo, core.PartyShipTo:
		return kind, true
	default:
		return "", false
	}
}

// listParties handles GET /api/partners/{kind}.
func (h *Handler) listParties(w http.ResponseWriter, r *http.Request) {
	kind, ok := partyKindFromURL(r)
	if !ok {
		writeError(w, r, "unknown partner kind", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	parties, err := h.svc.ListParties(r.Context(), kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, parties)
}

// createParty handles POST /api/partners/{kind}.
func (h *Handler) createParty(w http.ResponseWriter, r *http.Request) {
	kind, ok := partyKindFromURL(r)
	if !ok {
		writeError(w, r, "unknown partner kind", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var party core.Party
	if !decodeJSON(w, r, &party) {
		return
	}
	session := sessionFromContext(r.Context())
	created, err := h.svc.CreateParty(r.Context(), session.Actor(), kind, party)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, created)
}

// deleteParty handles DELETE /api/partners/{kind}/{id}.
func (h *Handler) deleteParty(w http.ResponseWriter, r *http.Request) {
	kind, ok := partyKindFromURL(r)
	if !ok {
		writeError(w, r, "unknown partner kind", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid partner id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	session := sessionFromContext(r.Context())
	if err := h.svc.DeleteParty(r.Context(), session.Actor(), kind, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}

// listLocations handles GET /api/locations.
func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.svc.ListLocations(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, locations)
}

// createLocation handles POST /api/locations.
func (h *Handler) createLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"location_code"`
		Name string `json:"location_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	session := sessionFromContext(r.Context())
	loc, err := h.svc.CreateLocation(r.Context(), session.Actor(), req.Code, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, loc)
}

// deleteLocation handles DELETE /api/locations/{id}.
func (h *Handler) deleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid location id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	session := sessionFromContext(r.Context())
	if err := h.svc.DeleteLocation(r.Context(), session.Actor(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}

// previewPONumber handles GET /api/locations/{code}/next-po-number.
// An optional date=YYYY-MM-DD query picks the fiscal year; default is today.
func (h *Handler) previewPONumber(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	at := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, r, "invalid date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		at = parsed
	}

	poNumber, err := h.svc.PreviewPONumber(r.Context(), code, at)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"po_number": poNumber})
}
