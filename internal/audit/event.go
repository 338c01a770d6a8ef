// Package audit turns domain events into append-only audit log entries.
//
// State transitions in the reconcile package return the events they imply;
// a Recorder appends them inside the same transaction as the transition, so a
// transition and its audit trail commit or roll back together.
package audit

import (
	"strconv"

	"github.com/erazemk/najdeno/internal/model"
)

// Actions.
const (
	ActionCreatedItem = "CREATED_ITEM"
	ActionUpdatedItem = "UPDATED_ITEM"
	ActionMatchLinked = "MATCH_LINKED"
)

// Target models.
const (
	TargetFoundItem = "FoundItem"
	TargetClaim     = "ClaimRequest"
	TargetTicket    = "LostItemTicket"
)

// Event is a state change that must leave an audit entry.
type Event struct {
	ActorID     *int64
	Action      string
	TargetModel string
	TargetID    int64
	Changes     map[string]any
}

// Entry converts the event into a storable audit entry.
func (e Event) Entry() model.AuditEntry {
	return model.AuditEntry{
		ActorID:     e.ActorID,
		Action:      e.Action,
		TargetModel: e.TargetModel,
		TargetID:    strconv.FormatInt(e.TargetID, 10),
		Changes:     e.Changes,
	}
}

// ClaimAction returns the action code for a claim moving into status, e.g. CLAIM_APPROVED.
func ClaimAction(status model.ClaimStatus) string {
	return "CLAIM_" + string(status)
}

// FoundItemSaved is emitted whenever a found item is created or updated. The
// actor is whoever registered the item, which may be nobody.
func FoundItemSaved(item *model.FoundItem, created bool) Event {
	action := ActionUpdatedItem
	if created {
		action = ActionCreatedItem
	}
	return Event{
		ActorID:     item.RegisteredBy,
		Action:      action,
		TargetModel: TargetFoundItem,
		TargetID:    item.ID,
		Changes:     Snapshot(foundItemFields(item)),
	}
}

// ClaimReviewed is emitted when an existing claim is updated. Claim creation
// is not audited.
func ClaimReviewed(c *model.Claim) Event {
	return Event{
		ActorID:     c.ReviewedBy,
		Action:      ClaimAction(c.Status),
		TargetModel: TargetClaim,
		TargetID:    c.ID,
		Changes: map[string]any{
			"status": string(c.Status),
			"item":   c.ItemName,
		},
	}
}

// TicketUpdated returns the events implied by saving an existing ticket. Only
// tickets saved in MATCH_FOUND are audited, attributed to the ticket owner.
func TicketUpdated(t *model.LostTicket) []Event {
	if t.Status != model.TicketStatusMatchFound {
		return nil
	}

	matched := "None"
	if t.MatchedItemID != nil {
		matched = strconv.FormatInt(*t.MatchedItemID, 10)
	}
	owner := t.OwnerID
	return []Event{{
		ActorID:     &owner,
		Action:      ActionMatchLinked,
		TargetModel: TargetTicket,
		TargetID:    t.ID,
		Changes: map[string]any{
			"status":          string(t.Status),
			"matched_item_id": matched,
		},
	}}
}

func foundItemFields(item *model.FoundItem) map[string]any {
	return map[string]any{
		"id":            item.ID,
		"category":      item.Category,
		"name":          item.Name,
		"description":   item.Description,
		"color":         item.Color,
		"date_found":    item.DateFound,
		"location":      item.Location,
		"status":        item.Status,
		"registered_by": item.RegisteredBy,
		"hand_in_id":    item.HandInID,
	}
}
