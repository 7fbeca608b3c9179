package item

import (
	"time"

	"github.com/google/uuid"

	"github.com/rvellora/stockline-backend/pkg/db/models"
)

// ItemDTO represents the inventory record payload returned to clients.
type ItemDTO struct {
	ID            uuid.UUID `json:"id"`
	ProductName   string    `json:"product_name"`
	LocalName     string    `json:"local_name,omitempty"`
	SKU           string    `json:"sku,omitempty"`
	SellableStock int       `json:"sellable_stock"`
	UnusableStock int       `json:"unusable_stock"`
	HoldStock     int       `json:"hold_stock"`
	TotalStock    int       `json:"total_stock"`
	Design        string    `json:"design,omitempty"`
	Color         string    `json:"color,omitempty"`
	Supplier      string    `json:"supplier,omitempty"`
	ReorderLevel  int       `json:"reorder_level"`
	Status        string    `json:"status"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewItemDTO builds a DTO from the persisted model, deriving total and status.
func NewItemDTO(item *models.InventoryItem) *ItemDTO {
	return &ItemDTO{
		ID:            item.ID,
		ProductName:   item.ProductName,
		LocalName:     item.LocalName,
		SKU:           item.SKU,
		SellableStock: item.SellableStock,
		UnusableStock: item.UnusableStock,
		HoldStock:     item.HoldStock,
		TotalStock:    item.TotalStock(),
		Design:        item.Design,
		Color:         item.Color,
		Supplier:      item.Supplier,
		ReorderLevel:  item.ReorderLevel,
		Status:        item.Status().String(),
		Version:       item.Version,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}
