package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/reconcile"
	"github.com/erazemk/najdeno/internal/store"
)

// HandInsHandler handles finder reports and their reception into inventory.
type HandInsHandler struct {
	DB      *sql.DB
	Service *reconcile.Service
}

type handInRequest struct {
	FinderName    string `json:"finder_name" validate:"required,max=100"`
	FinderContact string `json:"finder_contact" validate:"max=100"`
	Category      string `json:"category" validate:"omitempty,category"`
	Name          string `json:"name" validate:"required,max=100"`
	Description   string `json:"description" validate:"max=2000"`
	Color         string `json:"color" validate:"max=50"`
	Location      string `json:"location" validate:"required,max=100"`
}

// Submit handles POST /api/handins. No account is needed.
func (h *HandInsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req handInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.Service.SubmitHandIn(r.Context(), model.HandInReport{
		FinderName:    req.FinderName,
		FinderContact: req.FinderContact,
		Category:      model.Category(req.Category),
		Name:          req.Name,
		Description:   req.Description,
		Color:         req.Color,
		Location:      req.Location,
	})
	if err != nil {
		serviceError(w, r, err, "submit hand-in report")
		return
	}
	jsonResponse(w, http.StatusCreated, report)
}

// List handles GET /api/handins. pending=1 hides received reports.
func (h *HandInsHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := store.ListHandIns(r.Context(), h.DB, r.URL.Query().Get("pending") == "1")
	if err != nil {
		slog.Error("failed to list hand-in reports", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list hand-in reports")
		return
	}
	if reports == nil {
		reports = []model.HandInReport{}
	}
	jsonResponse(w, http.StatusOK, reports)
}

// Receive handles POST /api/handins/{id}/receive.
func (h *HandInsHandler) Receive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	item, err := h.Service.ReceiveHandIn(r.Context(), currentActor(r), id)
	if err != nil {
		serviceError(w, r, err, "receive hand-in report")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}
