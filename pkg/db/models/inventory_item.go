package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rvellora/stockline-backend/pkg/enums"
)

// InventoryItem is the canonical SKU record tracked by the dashboard.
//
// SKU is the external-matching key. The column is not unique at the database
// level (legacy data contains blanks and duplicates); lookup paths take the
// first match in creation order.
type InventoryItem struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductName   string    `gorm:"column:product_name;not null"`
	LocalName     string    `gorm:"column:local_name;not null;default:''"`
	SKU           string    `gorm:"column:sku;not null;default:'';index"`
	SellableStock int       `gorm:"column:sellable_stock;not null;default:0"`
	UnusableStock int       `gorm:"column:unusable_stock;not null;default:0"`
	HoldStock     int       `gorm:"column:hold_stock;not null;default:0"`
	Design        string    `gorm:"column:design;not null;default:''"`
	Color         string    `gorm:"column:color;not null;default:''"`
	Supplier      string    `gorm:"column:supplier;not null;default:''"`
	ReorderLevel  int       `gorm:"column:reorder_level;not null;default:5"`
	// Version is the optimistic-concurrency token; stock writes bump it and
	// fail on mismatch instead of silently overwriting.
	Version   int       `gorm:"column:version;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalStock is the derived sum of all stock categories; never persisted.
func (i InventoryItem) TotalStock() int {
	return i.SellableStock + i.UnusableStock + i.HoldStock
}

// Status classifies the record against its reorder level.
func (i InventoryItem) Status() enums.StockStatus {
	total := i.TotalStock()
	switch {
	case total <= i.ReorderLevel:
		return enums.StockStatusCritical
	case total <= 2*i.ReorderLevel:
		return enums.StockStatusLow
	default:
		return enums.StockStatusHealthy
	}
}
