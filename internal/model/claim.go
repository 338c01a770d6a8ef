package model

import (
	"fmt"
	"time"
)

// Claim is a student's assertion of ownership over a found item.
type Claim struct {
	ID              int64       `json:"id"`
	TicketID        *int64      `json:"ticket_id,omitempty"`
	FoundItemID     int64       `json:"found_item_id"`
	ClaimantID      int64       `json:"claimant_id"`
	Proof           string      `json:"proof"`
	Status          ClaimStatus `json:"status"`
	ReviewedBy      *int64      `json:"reviewed_by,omitempty"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
}

// ClaimStatus is the adjudication state of a claim.
type ClaimStatus string

// Claim statuses.
const (
	ClaimStatusPending   ClaimStatus = "PENDING"
	ClaimStatusApproved  ClaimStatus = "APPROVED"
	ClaimStatusRejected  ClaimStatus = "REJECTED"
	ClaimStatusCompleted ClaimStatus = "COMPLETED"
)

// Valid reports whether s is a known claim status.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusPending, ClaimStatusApproved, ClaimStatusRejected, ClaimStatusCompleted:
		return true
	}
	return false
}

// ParseClaimStatus converts s to a ClaimStatus.
func ParseClaimStatus(s string) (ClaimStatus, error) {
	st := ClaimStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown claim status %q", s)
	}
	return st, nil
}
