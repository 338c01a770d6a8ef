package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// TicketInput carries the fields a student fills in when reporting a loss.
type TicketInput struct {
	Category    model.Category
	Name        string
	Description string
	Color       string
	DateLost    time.Time
	Location    string
}

// CreateTicket opens a SEARCHING ticket owned by the actor.
func (s *Service) CreateTicket(ctx context.Context, actor Actor, in TicketInput) (*model.LostTicket, error) {
	if err := RequireRole(actor, anyRole...); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case !in.Category.Valid():
		return nil, invalid("category", "unknown category %q", in.Category)
	case in.Name == "":
		return nil, invalid("name", "is required")
	case in.DateLost.IsZero():
		return nil, invalid("date_lost", "is required")
	}

	ticket, err := store.CreateTicket(ctx, s.db, model.LostTicket{
		OwnerID:     actor.UserID,
		Category:    in.Category,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		DateLost:    in.DateLost,
		Location:    strings.TrimSpace(in.Location),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket created", "user", actor.UserID, "ticket", ticket.ID, "category", ticket.Category)
	return ticket, nil
}

// GetTicket returns a ticket visible to the actor: its owner or any staff member.
func (s *Service) GetTicket(ctx context.Context, actor Actor, id int64) (*model.LostTicket, error) {
	if err := RequireRole(actor, anyRole...); err != nil {
		return nil, err
	}
	ticket, err := store.GetTicket(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil || (!actor.Role.IsStaff() && ticket.OwnerID != actor.UserID) {
		return nil, notFound("ticket", id)
	}
	return ticket, nil
}

// ListTickets returns the actor's tickets. Staff may set all to see every ticket.
func (s *Service) ListTickets(ctx context.Context, actor Actor, all bool, status model.TicketStatus) ([]model.LostTicket, error) {
	if err := RequireRole(actor, anyRole...); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, invalid("status", "unknown ticket status %q", status)
	}

	owner := actor.UserID
	if all && actor.Role.IsStaff() {
		owner = 0
	}
	return store.ListTickets(ctx, s.db, owner, status)
}
