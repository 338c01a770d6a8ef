package model

import "time"

// HandInReport is an unauthenticated submission describing an item being turned in.
type HandInReport struct {
	ID            int64      `json:"id"`
	ReferenceCode string     `json:"reference_code"`
	FinderName    string     `json:"finder_name,omitempty"`
	FinderContact string     `json:"finder_contact,omitempty"`
	Category      Category   `json:"category"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Color         string     `json:"color"`
	Location      string     `json:"location"`
	ReportedAt    time.Time  `json:"reported_at"`
	Received      bool       `json:"received"`
	ReceivedAt    *time.Time `json:"received_at,omitempty"`
}
