package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus values. Transitions are one-directional; nothing returns to
// pending.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusApproved   RequestStatus = "approved"
	StatusDenied     RequestStatus = "denied"
	StatusFulfilled  RequestStatus = "fulfilled"
	StatusOutOfStock RequestStatus = "out_of_stock"
)

// ValidStatus reports whether s is a known request status.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusFulfilled, StatusOutOfStock:
		return true
	}
	return false
}

// Request priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Requester is a denormalized snapshot of the submitting user taken at
// request time. It does not track later profile edits.
type Requester struct {
	ID    uuid.UUID `json:"id" db:"requester_id"`
	Name  string    `json:"name" db:"requester_name"`
	Email string    `json:"email" db:"requester_email"`
}

// RequestItem is one line of a request. ItemName is a snapshot of the item
// name at submission time and does not track renames.
type RequestItem struct {
	ItemID   uuid.UUID `json:"item_id" db:"item_id"`
	ItemName string    `json:"item_name" db:"item_name"`
	Quantity int       `json:"quantity" db:"quantity"`
}

// PickupDetails is attached when a request is fulfilled.
type PickupDetails struct {
	Location  string     `json:"location" db:"pickup_location"`
	Time      *time.Time `json:"time,omitempty" db:"pickup_time"`
	Delivered bool       `json:"delivered" db:"pickup_delivered"`
}

type Request struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	ProjectName   string         `json:"project_name" db:"project_name"`
	Requester     Requester      `json:"requester"`
	Items         []RequestItem  `json:"items"`
	Reason        string         `json:"reason" db:"reason"`
	Priority      string         `json:"priority" db:"priority"`
	DueDate       *time.Time     `json:"due_date,omitempty" db:"due_date"`
	Status        RequestStatus  `json:"status" db:"status"`
	PickupDetails *PickupDetails `json:"pickup_details,omitempty"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// RequestSearchFilter holds filter criteria for request list queries.
type RequestSearchFilter struct {
	Status      *RequestStatus `json:"status,omitempty"`
	RequesterID *uuid.UUID     `json:"requester_id,omitempty"`
	Priority    *string        `json:"priority,omitempty"`
	Limit       int            `json:"limit,omitempty"`
	Offset      int            `json:"offset,omitempty"`
}
