package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     Role
		minimum  Role
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleStaff, true},
		{RoleAdmin, RoleStudent, true},
		{RoleStaff, RoleAdmin, false},
		{RoleStaff, RoleStaff, true},
		{RoleStaff, RoleStudent, true},
		{RoleStudent, RoleAdmin, false},
		{RoleStudent, RoleStaff, false},
		{RoleStudent, RoleStudent, true},
		// Unknown roles fail-closed.
		{"unknown", RoleStudent, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleStudent, false},
		{"staff", RoleStudent, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestRoleIsStaff(t *testing.T) {
	if !RoleAdmin.IsStaff() || !RoleStaff.IsStaff() {
		t.Error("expected admin and staff to pass the staff gate")
	}
	if RoleStudent.IsStaff() {
		t.Error("expected student to fail the staff gate")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
