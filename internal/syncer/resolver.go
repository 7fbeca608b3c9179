package syncer

import (
	"strings"

	"github.com/rvellora/stockline-backend/pkg/db/models"
	"github.com/rvellora/stockline-backend/pkg/enums"
)

// Match is the tagged outcome of resolving an order line item against the
// local inventory.
type Match struct {
	MatchedBy enums.MatchKind
	Item      *models.InventoryItem
}

// Resolve finds the local record for a sold line item. SKU exact match wins;
// blank SKUs never match. The fallback scans for the first record whose
// product name appears inside the line-item name, case-insensitively (line
// item names usually carry variant suffixes, e.g. "Red Saree - Small").
// First match in list order wins both stages.
func Resolve(items []models.InventoryItem, sku, name string) Match {
	sku = strings.TrimSpace(sku)
	if sku != "" {
		for i := range items {
			if items[i].SKU != "" && items[i].SKU == sku {
				return Match{MatchedBy: enums.MatchKindSKU, Item: &items[i]}
			}
		}
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle != "" {
		for i := range items {
			productName := strings.ToLower(strings.TrimSpace(items[i].ProductName))
			if productName != "" && strings.Contains(needle, productName) {
				return Match{MatchedBy: enums.MatchKindName, Item: &items[i]}
			}
		}
	}

	return Match{MatchedBy: enums.MatchKindNone}
}
