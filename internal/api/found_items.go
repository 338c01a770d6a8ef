package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/reconcile"
	"github.com/erazemk/najdeno/internal/store"
)

// FoundItemsHandler handles the found item catalogue and inventory edits.
type FoundItemsHandler struct {
	DB      *sql.DB
	Service *reconcile.Service
}

type foundItemRequest struct {
	Category    string `json:"category" validate:"required,category"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Color       string `json:"color" validate:"max=50"`
	DateFound   string `json:"date_found" validate:"required,datetime=2006-01-02"`
	Location    string `json:"location" validate:"required,max=100"`
	Status      string `json:"status" validate:"omitempty,oneof=AVAILABLE CLAIMED DONATED"`
}

func (req foundItemRequest) input() reconcile.FoundItemInput {
	return reconcile.FoundItemInput{
		Category:    model.Category(req.Category),
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		DateFound:   parseDate(req.DateFound),
		Location:    req.Location,
		Status:      model.ItemStatus(req.Status),
	}
}

type claimRequest struct {
	Proof string `json:"proof" validate:"required,max=2000"`
}

// List handles GET /api/found-items. The public catalogue only shows available items.
func (h *FoundItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListFoundItems(r.Context(), h.DB, model.ItemStatusAvailable)
	if err != nil {
		slog.Error("failed to list found items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list found items")
		return
	}
	if items == nil {
		items = []model.FoundItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/found-items/{id}.
func (h *FoundItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetFoundItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get found item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get found item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "found item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/found-items.
func (h *FoundItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req foundItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.Service.RegisterFoundItem(r.Context(), currentActor(r), req.input())
	if err != nil {
		serviceError(w, r, err, "register found item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /api/found-items/{id}.
func (h *FoundItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req foundItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.Service.UpdateFoundItem(r.Context(), currentActor(r), id, req.input())
	if err != nil {
		serviceError(w, r, err, "update found item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Claim handles POST /api/found-items/{id}/claims.
func (h *FoundItemsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req claimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claim, err := h.Service.SubmitClaim(r.Context(), currentActor(r), id, req.Proof)
	if err != nil {
		serviceError(w, r, err, "submit claim")
		return
	}
	jsonResponse(w, http.StatusCreated, claim)
}
