package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/audit"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Decision is a staff verdict on a claim.
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

// ParseDecision converts s to a Decision.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(s)); d {
	case Approve, Reject:
		return d, nil
	}
	return "", invalid("decision", "must be %q or %q", Approve, Reject)
}

// Adjudication is the outcome of Adjudicate.
type Adjudication struct {
	Claim *model.Claim `json:"claim"`
	// AutoRejected lists the sibling claims rejected by an approval.
	AutoRejected []int64 `json:"auto_rejected,omitempty"`
}

// SubmitClaim files a claim by the actor on a found item. If the claimant has
// an open ticket in the item's category, the oldest one is linked to the item
// and moves to CLAIM_PENDING.
func (s *Service) SubmitClaim(ctx context.Context, actor Actor, itemID int64, proof string) (*model.Claim, error) {
	if err := RequireRole(actor, anyRole...); err != nil {
		return nil, err
	}
	proof = strings.TrimSpace(proof)
	if proof == "" {
		return nil, invalid("proof", "proof of ownership is required")
	}

	var claim *model.Claim
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		item, err := store.GetFoundItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return notFound("found item", itemID)
		}

		dup, err := store.HasPendingClaim(ctx, tx, actor.UserID, itemID)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateClaim
		}

		ticket, err := store.FindOpenTicket(ctx, tx, actor.UserID, item.Category)
		if err != nil {
			return err
		}

		var ticketID *int64
		var events []audit.Event
		if ticket != nil {
			if err := store.LinkTicket(ctx, tx, ticket.ID, model.TicketStatusClaimPending, item.ID); err != nil {
				return err
			}
			ticket.Status = model.TicketStatusClaimPending
			ticket.MatchedItemID = &item.ID
			ticketID = &ticket.ID
			events = audit.TicketUpdated(ticket)
		}

		claim, err = store.CreateClaim(ctx, tx, model.Claim{
			TicketID:    ticketID,
			FoundItemID: item.ID,
			ClaimantID:  actor.UserID,
			Proof:       proof,
		})
		if err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, events...)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("claim submitted", "user", actor.UserID, "claim", claim.ID, "item", itemID, "linked_ticket", claim.TicketID != nil)
	return claim, nil
}

// Adjudicate approves or rejects a claim. Approval marks the item CLAIMED,
// closes the linked ticket and rejects every other pending claim on the item.
// Re-adjudicating a decided claim re-applies the effects.
func (s *Service) Adjudicate(ctx context.Context, actor Actor, claimID int64, decision Decision, reason string) (res *Adjudication, err error) {
	if err := RequireRole(actor, staffRoles...); err != nil {
		return nil, err
	}
	if decision != Approve && decision != Reject {
		return nil, invalid("decision", "must be %q or %q", Approve, Reject)
	}
	defer func() { s.metrics.Adjudication(string(decision), err) }()

	reviewer := actor.UserID
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		claim, err := store.GetClaim(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return notFound("claim", claimID)
		}

		switch decision {
		case Approve:
			res, err = s.approve(ctx, tx, claim, &reviewer)
		case Reject:
			res, err = s.reject(ctx, tx, claim, &reviewer, strings.TrimSpace(reason))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("claim adjudicated", "user", actor.UserID, "claim", claimID,
		"decision", decision, "auto_rejected", len(res.AutoRejected))
	return res, nil
}

func (s *Service) approve(ctx context.Context, tx *sql.Tx, claim *model.Claim, reviewer *int64) (*Adjudication, error) {
	if err := store.ReviewClaim(ctx, tx, claim.ID, model.ClaimStatusApproved, reviewer, ""); err != nil {
		return nil, err
	}
	if err := store.SetFoundItemStatus(ctx, tx, claim.FoundItemID, model.ItemStatusClaimed); err != nil {
		return nil, err
	}
	if claim.TicketID != nil {
		if err := store.SetTicketStatus(ctx, tx, *claim.TicketID, model.TicketStatusClosed); err != nil {
			return nil, err
		}
	}

	rejected, err := store.RejectPendingSiblings(ctx, tx, claim.FoundItemID, claim.ID)
	if err != nil {
		return nil, err
	}

	updated, err := store.GetClaim(ctx, tx, claim.ID)
	if err != nil {
		return nil, err
	}
	item, err := store.GetFoundItem(ctx, tx, claim.FoundItemID)
	if err != nil {
		return nil, err
	}

	events := []audit.Event{
		audit.ClaimReviewed(updated),
		audit.FoundItemSaved(item, false),
	}
	if err := s.recorder.Record(ctx, tx, events...); err != nil {
		return nil, err
	}
	return &Adjudication{Claim: updated, AutoRejected: rejected}, nil
}

func (s *Service) reject(ctx context.Context, tx *sql.Tx, claim *model.Claim, reviewer *int64, reason string) (*Adjudication, error) {
	if err := store.ReviewClaim(ctx, tx, claim.ID, model.ClaimStatusRejected, reviewer, reason); err != nil {
		return nil, err
	}

	updated, err := store.GetClaim(ctx, tx, claim.ID)
	if err != nil {
		return nil, err
	}
	if err := s.recorder.Record(ctx, tx, audit.ClaimReviewed(updated)); err != nil {
		return nil, err
	}
	return &Adjudication{Claim: updated}, nil
}

// ClaimFilter narrows ListClaims. Zero values mean no filter.
type ClaimFilter struct {
	ItemID int64
	Status model.ClaimStatus
}

// ListClaims returns the actor's own claims, or every claim for staff.
func (s *Service) ListClaims(ctx context.Context, actor Actor, filter ClaimFilter) ([]model.Claim, error) {
	if err := RequireRole(actor, anyRole...); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("status", "unknown claim status %q", filter.Status)
	}

	var claimant int64
	if !actor.Role.IsStaff() {
		claimant = actor.UserID
	}
	claims, err := store.ListClaims(ctx, s.db, claimant, filter.ItemID, filter.Status)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	return claims, nil
}
