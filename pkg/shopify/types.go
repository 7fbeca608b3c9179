package shopify

import "time"

// Product mirrors the storefront admin products.json payload. Only the fields
// the reconciliation engine reads are mapped.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	ProductType string    `json:"product_type"`
	Variants    []Variant `json:"variants"`
}

// Variant carries the per-SKU stock quantity and the inventory-item handle
// needed for inventory_levels writes.
type Variant struct {
	ID                int64  `json:"id"`
	SKU               string `json:"sku"`
	InventoryItemID   int64  `json:"inventory_item_id"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// Order is a storefront order with the line items that sold.
type Order struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	LineItems []LineItem `json:"line_items"`
}

// LineItem identifies what sold and how many units.
type LineItem struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Location is a storefront stock location.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type productsResponse struct {
	Products []Product `json:"products"`
}

type ordersResponse struct {
	Orders []Order `json:"orders"`
}

type locationsResponse struct {
	Locations []Location `json:"locations"`
}

type inventorySetRequest struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int   `json:"available"`
}
