package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is assigned to items created without a category and to
// items whose category record is deleted.
const DefaultCategory = "Uncategorized"

type Item struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Description       string    `json:"description" db:"description"`
	Category          string    `json:"category" db:"category"`
	TotalStock        int       `json:"total_stock" db:"total_stock"`
	AvailableStock    int       `json:"available_stock" db:"available_stock"`
	ReservedStock     int       `json:"reserved_stock" db:"reserved_stock"`
	LowStockThreshold int       `json:"low_stock_threshold" db:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// LowStock reports whether the item is at or below its replenishment trigger.
func (i *Item) LowStock() bool {
	return i.AvailableStock <= i.LowStockThreshold
}

// ItemSearchFilter holds search and filter criteria for item queries.
type ItemSearchFilter struct {
	Query     string  `json:"query,omitempty"`    // Name/description substring search
	Category  *string `json:"category,omitempty"` // Category label filter
	LowStock  bool    `json:"low_stock,omitempty"`
	SortBy    string  `json:"sort_by,omitempty"`    // name, available_stock, updated_at
	SortOrder string  `json:"sort_order,omitempty"` // asc, desc
	Limit     int     `json:"limit,omitempty"`
	Offset    int     `json:"offset,omitempty"`
}
