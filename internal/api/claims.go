package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/reconcile"
)

// ClaimsHandler handles claim listing and adjudication.
type ClaimsHandler struct {
	Service *reconcile.Service
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

// List handles GET /api/claims. Students see their own claims, staff see all.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := reconcile.ClaimFilter{Status: model.ClaimStatus(q.Get("status"))}
	if v := q.Get("item"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		filter.ItemID = id
	}

	claims, err := h.Service.ListClaims(r.Context(), currentActor(r), filter)
	if err != nil {
		serviceError(w, r, err, "list claims")
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claims)
}

// Approve handles POST /api/claims/{id}/approve.
func (h *ClaimsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.adjudicate(w, r, reconcile.Approve, "")
}

// Reject handles POST /api/claims/{id}/reject. The body is optional.
func (h *ClaimsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	h.adjudicate(w, r, reconcile.Reject, req.Reason)
}

func (h *ClaimsHandler) adjudicate(w http.ResponseWriter, r *http.Request, decision reconcile.Decision, reason string) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	res, err := h.Service.Adjudicate(r.Context(), currentActor(r), id, decision, reason)
	if err != nil {
		serviceError(w, r, err, string(decision)+" claim")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}
