package model

import "time"

// AuditEntry is one append-only record of a state-changing action.
type AuditEntry struct {
	ID          int64          `json:"id"`
	ActorID     *int64         `json:"actor_id,omitempty"`
	Action      string         `json:"action"`
	TargetModel string         `json:"target_model"`
	TargetID    string         `json:"target_id"`
	Timestamp   time.Time      `json:"timestamp"`
	Changes     map[string]any `json:"changes"`

	// Joined fields (not always populated).
	ActorName string `json:"actor_name,omitempty"`
}
