package item

import (
	"strings"
	"testing"

	"github.com/rvellora/stockline-backend/pkg/db/models"
)

func TestMarshalCSVHeaderAndOrder(t *testing.T) {
	payload, err := marshalCSV([]models.InventoryItem{
		{
			ProductName:   "Red Saree",
			LocalName:     "Sivappu Pattu",
			SKU:           "RS-1",
			SellableStock: 12,
			UnusableStock: 1,
			HoldStock:     2,
			Design:        "Kanchipuram",
			Color:         "Red",
			ReorderLevel:  5,
			Supplier:      "Madurai Mills",
		},
	})
	if err != nil {
		t.Fatalf("marshal csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "productName,localName,sku,sellableStock,unusableStock,holdStock,design,color,reorderLevel,supplier" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "Red Saree,Sivappu Pattu,RS-1,12,1,2,Kanchipuram,Red,5,Madurai Mills" {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}

func TestUnmarshalCSVDefaultsAndHeader(t *testing.T) {
	doc := strings.Join([]string{
		"productName,localName,sku,sellableStock,unusableStock,holdStock,design,color,reorderLevel,supplier",
		"Blue Saree,,BS-2,8,not-a-number,,Mysore,Blue,,Chennai Co",
		",,,,,,,,,",
		"Bare Name",
	}, "\n")

	rows, err := unmarshalCSV(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unmarshal csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (header + blank skipped), got %d", len(rows))
	}

	first := rows[0]
	if first.ProductName != "Blue Saree" || first.SKU != "BS-2" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.SellableStock != 8 {
		t.Fatalf("expected sellable 8, got %d", first.SellableStock)
	}
	if first.UnusableStock != 0 {
		t.Fatalf("expected bad numeric cell to fall back to 0, got %d", first.UnusableStock)
	}
	if first.ReorderLevel != defaultReorderLevel {
		t.Fatalf("expected blank reorder level to default to %d, got %d", defaultReorderLevel, first.ReorderLevel)
	}

	second := rows[1]
	if second.ProductName != "Bare Name" {
		t.Fatalf("expected short row to be padded, got %+v", second)
	}
	if second.ReorderLevel != defaultReorderLevel {
		t.Fatalf("expected padded reorder level default, got %d", second.ReorderLevel)
	}
}
