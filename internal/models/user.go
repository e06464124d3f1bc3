package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Manager is a strict superset of admin privileges.
const (
	RoleRequester = "requester"
	RoleAdmin     = "admin"
	RoleManager   = "manager"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize in JSON
	Role         string    `json:"role" db:"role"`
	Department   *string   `json:"department,omitempty" db:"department"`
	AvatarURL    *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleRequester || role == RoleAdmin || role == RoleManager
}

// RoleAtLeast reports whether role carries at least the privileges of min.
// requester < admin < manager.
func RoleAtLeast(role, min string) bool {
	rank := map[string]int{
		RoleRequester: 0,
		RoleAdmin:     1,
		RoleManager:   2,
	}
	r, ok := rank[role]
	m, ok2 := rank[min]
	if !ok || !ok2 {
		return false
	}
	return r >= m
}
