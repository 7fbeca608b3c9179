package syncer

import (
	"testing"

	"github.com/google/uuid"

	"github.com/rvellora/stockline-backend/pkg/db/models"
	"github.com/rvellora/stockline-backend/pkg/enums"
)

func testInventory() []models.InventoryItem {
	return []models.InventoryItem{
		{ID: uuid.New(), ProductName: "Red Saree", SKU: "RS-1", SellableStock: 12},
		{ID: uuid.New(), ProductName: "Red Saree Deluxe", SKU: "RS-2", SellableStock: 3},
		{ID: uuid.New(), ProductName: "Blue Saree", SKU: "", SellableStock: 7},
	}
}

func TestResolveSKUExactMatchWins(t *testing.T) {
	items := testInventory()

	match := Resolve(items, "RS-2", "Red Saree")
	if match.MatchedBy != enums.MatchKindSKU {
		t.Fatalf("expected sku match, got %s", match.MatchedBy)
	}
	if match.Item.SKU != "RS-2" {
		t.Fatalf("expected RS-2, got %s", match.Item.SKU)
	}
}

func TestResolveBlankSKUNeverMatches(t *testing.T) {
	items := testInventory()

	// the third record has a blank SKU; a blank line-item SKU must not hit it
	match := Resolve(items, "  ", "Blue Saree - Large")
	if match.MatchedBy != enums.MatchKindName {
		t.Fatalf("expected name fallback, got %s", match.MatchedBy)
	}
	if match.Item.ProductName != "Blue Saree" {
		t.Fatalf("expected Blue Saree, got %s", match.Item.ProductName)
	}
}

func TestResolveNameFallbackFirstMatch(t *testing.T) {
	items := testInventory()

	// "red saree deluxe - small" contains both "Red Saree" and
	// "Red Saree Deluxe"; list order decides
	match := Resolve(items, "NO-SUCH-SKU", "Red Saree Deluxe - Small")
	if match.MatchedBy != enums.MatchKindName {
		t.Fatalf("expected name match, got %s", match.MatchedBy)
	}
	if match.Item.SKU != "RS-1" {
		t.Fatalf("expected first match in list order (RS-1), got %s", match.Item.SKU)
	}
}

func TestResolveNone(t *testing.T) {
	items := testInventory()

	match := Resolve(items, "ZZ-9", "Green Kurta")
	if match.MatchedBy != enums.MatchKindNone {
		t.Fatalf("expected no match, got %s", match.MatchedBy)
	}
	if match.Item != nil {
		t.Fatal("expected nil item for no match")
	}
}
