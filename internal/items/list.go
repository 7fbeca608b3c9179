package item

import (
	"github.com/rvellora/stockline-backend/pkg/pagination"
)

// ItemListFilters describes the single-field filter supported by the list
// endpoint. Field names are column names; unknown fields are rejected.
type ItemListFilters struct {
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// ListItemsInput captures the inputs needed to paginate/filter the inventory.
type ListItemsInput struct {
	Filters    ItemListFilters
	Pagination pagination.Params
}

// ItemListResult is a single page of inventory summaries.
type ItemListResult struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}
