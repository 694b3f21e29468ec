package web

import (
	"net/http"

	"boq-procurement/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the ApplicationService over HTTP.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// Health and auth are public.
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// BOQ uploads are multipart; the handler applies its own limit.
		r.Post("/api/projects", h.uploadProject)

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			r.Get("/api/auth/me", h.me)

			r.Get("/api/projects", h.listProjects)
			r.Get("/api/projects/{id}/items", h.listProjectItems)
			r.Delete("/api/projects/{id}", h.deleteProject)

			r.Get("/api/locations", h.listLocations)
			r.Post("/api/locations", h.createLocation)
			r.Delete("/api/locations/{id}", h.deleteLocation)
			r.Get("/api/locations/{code}/next-po-number", h.previewPONumber)

			r.Get("/api/partners/{kind}", h.listParties)
			r.Post("/api/partners/{kind}", h.createParty)
			r.Delete("/api/partners/{kind}/{id}", h.deleteParty)

			r.Post("/api/purchase-orders", h.allocatePO)
			r.Post("/api/purchase-orders/document", h.generatePODocument)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Post("/api/backup", h.backupAll)
				r.Get("/api/users", h.listUsers)
				r.Post("/api/users", h.createUser)
				r.Patch("/api/users/{id}/active", h.setUserActive)
			})
		})
	})

	return r
}

// health handles GET /api/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
