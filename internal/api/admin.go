package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/reconcile"
)

// AdminHandler serves the staff dashboard and the audit log.
type AdminHandler struct {
	Service *reconcile.Service
}

// Dashboard handles GET /api/dashboard.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context(), currentActor(r))
	if err != nil {
		serviceError(w, r, err, "load dashboard")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Audit handles GET /api/audit. model and target narrow the listing.
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.Service.AuditLog(r.Context(), currentActor(r), q.Get("model"), q.Get("target"))
	if err != nil {
		serviceError(w, r, err, "list audit log")
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}
