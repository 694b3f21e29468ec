package web

import (
	"fmt"
	"net/http"

	"boq-procurement/internal/app"
	"boq-procurement/internal/core"
)

// allocatePO handles POST /api/purchase-orders: validate the draft and, on
// full acceptance, commit the delivery ledger and issue the PO number.
func (h *Handler) allocatePO(w http.ResponseWriter, r *http.Request) {
	var req core.AllocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FiscalDate.IsZero() {
		writeError(w, r, "fiscal_date is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	session := sessionFromContext(r.Context())
	po, err := h.svc.AllocatePO(r.Context(), session.Actor(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, po)
}

// generatePODocument handles POST /api/purchase-orders/document: commit the
// allocation and stream back the rendered xlsx order.
func (h *Handler) generatePODocument(w http.ResponseWriter, r *http.Request) {
	var req app.DocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Allocation.FiscalDate.IsZero() {
		writeError(w, r, "allocation.fiscal_date is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	session := sessionFromContext(r.Context())
	result, err := h.svc.GeneratePODocument(r.Context(), session.Actor(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("X-PO-Number", result.PO.PONumber)
	_, _ = w.Write(result.Workbook)
}

// backupAll handles POST /api/backup.
func (h *Handler) backupAll(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	paths, err := h.svc.BackupAll(r.Context(), session.Actor())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"files": paths})
}
