package model

import "testing"

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	for _, bad := range []string{"", "electronics", "FOOD"} {
		if _, err := ParseCategory(bad); err == nil {
			t.Errorf("ParseCategory(%q): expected error", bad)
		}
	}
}

func TestTicketStatusLinked(t *testing.T) {
	tests := []struct {
		status TicketStatus
		linked bool
		open   bool
	}{
		{TicketStatusSearching, false, true},
		{TicketStatusMatchFound, true, true},
		{TicketStatusClaimPending, true, false},
		{TicketStatusClosed, true, false},
		{"BOGUS", false, false},
	}

	for _, tt := range tests {
		if got := tt.status.Linked(); got != tt.linked {
			t.Errorf("%s.Linked() = %v, want %v", tt.status, got, tt.linked)
		}
		if got := tt.status.Open(); got != tt.open {
			t.Errorf("%s.Open() = %v, want %v", tt.status, got, tt.open)
		}
	}
}

func TestParseStatuses(t *testing.T) {
	if _, err := ParseItemStatus("CLAIMED"); err != nil {
		t.Errorf("ParseItemStatus: %v", err)
	}
	if _, err := ParseItemStatus("LOST"); err == nil {
		t.Error("expected error for unknown item status")
	}
	if _, err := ParseClaimStatus("PENDING"); err != nil {
		t.Errorf("ParseClaimStatus: %v", err)
	}
	if _, err := ParseClaimStatus("pending"); err == nil {
		t.Error("expected error for lower-case claim status")
	}
	if _, err := ParseTicketStatus("CLOSED"); err != nil {
		t.Errorf("ParseTicketStatus: %v", err)
	}
	if _, err := ParseRole("STUDENT"); err != nil {
		t.Errorf("ParseRole: %v", err)
	}
	if _, err := ParseRole("manager"); err == nil {
		t.Error("expected error for unknown role")
	}
}
