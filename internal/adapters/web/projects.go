package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps a BOQ file upload. Real BOQ workbooks run to a few MB
// at most; 20 MB leaves generous headroom.
const maxUploadBytes = 20 << 20

// uploadProject handles POST /api/projects (multipart: project_name + file).
func (h *Handler) uploadProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, "invalid multipart form", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	projectName := r.FormValue("project_name")
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "missing BOQ file", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	session := sessionFromContext(r.Context())
	result, err := h.svc.CreateProjectFromUpload(r.Context(), session.Actor(), projectName, header.Filename, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listProjects handles GET /api/projects.
func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListProjects(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, projects)
}

// listProjectItems handles GET /api/projects/{id}/items.
func (h *Handler) listProjectItems(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid project id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	items, err := h.svc.GetProjectItems(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, items)
}

// deleteProject handles DELETE /api/projects/{id}.
func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid project id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	session := sessionFromContext(r.Context())
	if err := h.svc.DeleteProject(r.Context(), session.Actor(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}
