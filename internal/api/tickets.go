package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/reconcile"
)

// TicketsHandler handles lost tickets and staff matching.
type TicketsHandler struct {
	Service *reconcile.Service
}

type ticketRequest struct {
	Category    string `json:"category" validate:"required,category"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Color       string `json:"color" validate:"max=50"`
	DateLost    string `json:"date_lost" validate:"required,datetime=2006-01-02"`
	Location    string `json:"location" validate:"max=100"`
}

// Create handles POST /api/tickets.
func (h *TicketsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.Service.CreateTicket(r.Context(), currentActor(r), reconcile.TicketInput{
		Category:    model.Category(req.Category),
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		DateLost:    parseDate(req.DateLost),
		Location:    req.Location,
	})
	if err != nil {
		serviceError(w, r, err, "create ticket")
		return
	}
	jsonResponse(w, http.StatusCreated, ticket)
}

// List handles GET /api/tickets. Staff may pass all=1 to see every ticket.
func (h *TicketsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tickets, err := h.Service.ListTickets(r.Context(), currentActor(r), q.Get("all") == "1", model.TicketStatus(q.Get("status")))
	if err != nil {
		serviceError(w, r, err, "list tickets")
		return
	}
	if tickets == nil {
		tickets = []model.LostTicket{}
	}
	jsonResponse(w, http.StatusOK, tickets)
}

// Get handles GET /api/tickets/{id}.
func (h *TicketsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	ticket, err := h.Service.GetTicket(r.Context(), currentActor(r), id)
	if err != nil {
		serviceError(w, r, err, "get ticket")
		return
	}
	jsonResponse(w, http.StatusOK, ticket)
}

// Matches handles GET /api/tickets/{id}/matches.
func (h *TicketsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	matches, err := h.Service.FindMatches(r.Context(), currentActor(r), id)
	if err != nil {
		serviceError(w, r, err, "find matches")
		return
	}
	if matches.Ranked == nil {
		matches.Ranked = []reconcile.Candidate{}
	}
	if matches.Fallback == nil {
		matches.Fallback = []model.FoundItem{}
	}
	jsonResponse(w, http.StatusOK, matches)
}

// ConfirmMatch handles POST /api/tickets/{id}/match/{item_id}.
func (h *TicketsHandler) ConfirmMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}
	itemID, ok := pathID(r, "item_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	ticket, err := h.Service.ConfirmMatch(r.Context(), currentActor(r), id, itemID)
	if err != nil {
		serviceError(w, r, err, "confirm match")
		return
	}
	jsonResponse(w, http.StatusOK, ticket)
}
