package model

import (
	"fmt"
	"time"
)

// LostTicket is a student's record of a missing item.
type LostTicket struct {
	ID            int64        `json:"id"`
	OwnerID       int64        `json:"owner_id"`
	Category      Category     `json:"category"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Color         string       `json:"color,omitempty"`
	DateLost      time.Time    `json:"date_lost"`
	Location      string       `json:"location"`
	Status        TicketStatus `json:"status"`
	MatchedItemID *int64       `json:"matched_item_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TicketStatus is the lifecycle state of a lost ticket.
type TicketStatus string

// Ticket statuses.
const (
	TicketStatusSearching    TicketStatus = "SEARCHING"
	TicketStatusMatchFound   TicketStatus = "MATCH_FOUND"
	TicketStatusClaimPending TicketStatus = "CLAIM_PENDING"
	TicketStatusClosed       TicketStatus = "CLOSED"
)

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusSearching, TicketStatusMatchFound, TicketStatusClaimPending, TicketStatusClosed:
		return true
	}
	return false
}

// Linked reports whether a ticket in this status must reference a matched item.
func (s TicketStatus) Linked() bool {
	return s.Valid() && s != TicketStatusSearching
}

// Open reports whether a claim submission may attach itself to a ticket in this status.
func (s TicketStatus) Open() bool {
	return s == TicketStatusSearching || s == TicketStatusMatchFound
}

// ParseTicketStatus converts s to a TicketStatus.
func ParseTicketStatus(s string) (TicketStatus, error) {
	st := TicketStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown ticket status %q", s)
	}
	return st, nil
}
