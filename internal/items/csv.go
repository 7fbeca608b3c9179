package item

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	pkgerrors "github.com/rvellora/stockline-backend/pkg/errors"

	"github.com/rvellora/stockline-backend/pkg/db/models"
)

// csvHeader fixes the column order for both export and import. The names are
// the ones the dashboard's spreadsheet templates have always used.
var csvHeader = []string{
	"productName",
	"localName",
	"sku",
	"sellableStock",
	"unusableStock",
	"holdStock",
	"design",
	"color",
	"reorderLevel",
	"supplier",
}

const defaultReorderLevel = 5

// marshalCSV renders the inventory as an RFC 4180 document with a header row.
func marshalCSV(items []models.InventoryItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i := range items {
		item := &items[i]
		record := []string{
			item.ProductName,
			item.LocalName,
			item.SKU,
			strconv.Itoa(item.SellableStock),
			strconv.Itoa(item.UnusableStock),
			strconv.Itoa(item.HoldStock),
			item.Design,
			item.Color,
			strconv.Itoa(item.ReorderLevel),
			item.Supplier,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// unmarshalCSV parses rows in csvHeader order. A leading header row is
// skipped when present. Numeric cells that fail to parse fall back to zero
// (reorderLevel to its default), matching how operators paste half-filled
// spreadsheets.
func unmarshalCSV(r io.Reader) ([]models.InventoryItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse csv")
	}

	items := make([]models.InventoryItem, 0, len(records))
	for i, record := range records {
		if i == 0 && isHeaderRow(record) {
			continue
		}
		if isBlankRow(record) {
			continue
		}
		if len(record) < len(csvHeader) {
			padded := make([]string, len(csvHeader))
			copy(padded, record)
			record = padded
		}

		items = append(items, models.InventoryItem{
			ProductName:   strings.TrimSpace(record[0]),
			LocalName:     strings.TrimSpace(record[1]),
			SKU:           strings.TrimSpace(record[2]),
			SellableStock: atoiDefault(record[3], 0),
			UnusableStock: atoiDefault(record[4], 0),
			HoldStock:     atoiDefault(record[5], 0),
			Design:        strings.TrimSpace(record[6]),
			Color:         strings.TrimSpace(record[7]),
			ReorderLevel:  atoiDefault(record[8], defaultReorderLevel),
			Supplier:      strings.TrimSpace(record[9]),
		})
	}
	return items, nil
}

func isHeaderRow(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), csvHeader[0])
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func atoiDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
