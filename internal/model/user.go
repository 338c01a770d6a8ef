package model

import (
	"fmt"
	"time"
)

// User represents an authenticated portal account.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	StudentID    string     `json:"student_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Role is the capability level of a user.
type Role string

// Roles.
const (
	RoleAdmin   Role = "ADMIN"
	RoleStaff   Role = "STAFF"
	RoleStudent Role = "STUDENT"
)

var roleLevels = map[Role]int{
	RoleAdmin:   3,
	RoleStaff:   2,
	RoleStudent: 1,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// IsStaff reports whether r may run staff workflows (matching, adjudication).
func (r Role) IsStaff() bool {
	return RoleAtLeast(r, RoleStaff)
}

// ParseRole converts s to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum Role) bool {
	have, ok := roleLevels[role]
	if !ok {
		return false
	}
	need, ok := roleLevels[minimum]
	if !ok {
		return false
	}
	return have >= need
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
