package item

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/rvellora/stockline-backend/pkg/db/models"
	pkgerrors "github.com/rvellora/stockline-backend/pkg/errors"
	"github.com/rvellora/stockline-backend/pkg/logger"
)

// Service exposes inventory record management operations.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDTO, error)
	ListItems(ctx context.Context, input ListItemsInput) (*ItemListResult, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// CreateItemInput holds the validated payload to create an inventory record.
type CreateItemInput struct {
	ProductName   string
	LocalName     string
	SKU           string
	SellableStock int
	UnusableStock int
	HoldStock     int
	Design        string
	Color         string
	Supplier      string
	ReorderLevel  *int
}

// UpdateItemInput holds optional mutation values for an inventory record.
type UpdateItemInput struct {
	ProductName   *string
	LocalName     *string
	SKU           *string
	SellableStock *int
	UnusableStock *int
	HoldStock     *int
	Design        *string
	Color         *string
	Supplier      *string
	ReorderLevel  *int
}

// ImportResult summarizes a CSV bulk insert.
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Failures []string `json:"failures,omitempty"`
}

// service implements the inventory service.
type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService constructs an inventory service instance.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// CreateItem validates and inserts a new inventory record.
func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	if strings.TrimSpace(input.ProductName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name is required")
	}
	if err := validateStockCounts(input.SellableStock, input.UnusableStock, input.HoldStock); err != nil {
		return nil, err
	}

	reorderLevel := defaultReorderLevel
	if input.ReorderLevel != nil {
		if *input.ReorderLevel < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reorder_level cannot be negative")
		}
		reorderLevel = *input.ReorderLevel
	}

	record := &models.InventoryItem{
		ProductName:   strings.TrimSpace(input.ProductName),
		LocalName:     strings.TrimSpace(input.LocalName),
		SKU:           strings.TrimSpace(input.SKU),
		SellableStock: input.SellableStock,
		UnusableStock: input.UnusableStock,
		HoldStock:     input.HoldStock,
		Design:        strings.TrimSpace(input.Design),
		Color:         strings.TrimSpace(input.Color),
		Supplier:      strings.TrimSpace(input.Supplier),
		ReorderLevel:  reorderLevel,
	}

	created, err := s.repo.CreateItem(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert inventory item")
	}
	return NewItemDTO(created), nil
}

// UpdateItem applies a partial update and bumps the version so concurrent
// reconciliation writes against the stale row fail instead of clobbering it.
func (s *service) UpdateItem(ctx context.Context, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	record, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	applyUpdateToItem(record, input)
	if err := validateStockCounts(record.SellableStock, record.UnusableStock, record.HoldStock); err != nil {
		return nil, err
	}
	if record.ReorderLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reorder_level cannot be negative")
	}
	if strings.TrimSpace(record.ProductName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name is required")
	}

	record.Version++
	updated, err := s.repo.SaveItem(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update inventory item")
	}
	return NewItemDTO(updated), nil
}

// DeleteItem removes an inventory record.
func (s *service) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.loadItem(ctx, itemID); err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete inventory item")
	}
	return nil
}

// GetItem fetches a single inventory record.
func (s *service) GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDTO, error) {
	record, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return NewItemDTO(record), nil
}

// ListItems pages the inventory with the optional single-field filter.
func (s *service) ListItems(ctx context.Context, input ListItemsInput) (*ItemListResult, error) {
	if input.Filters.Field != "" && strings.TrimSpace(input.Filters.Value) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "filter value is required when field is set")
	}
	result, err := s.repo.ListItemSummaries(ctx, itemListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory items")
	}
	return result, nil
}

// ExportCSV renders the full inventory as a CSV document.
func (s *service) ExportCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory items")
	}
	payload, err := marshalCSV(rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render csv")
	}
	return payload, nil
}

// ImportCSV bulk-inserts parsed rows. Row failures are isolated: one bad row
// never aborts the rest of the file.
func (s *service) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, err := unmarshalCSV(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	var rowErrs error
	for i := range rows {
		row := rows[i]
		if strings.TrimSpace(row.ProductName) == "" {
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("row %d: product name is empty", i+1))
			continue
		}
		if _, err := s.repo.CreateItem(ctx, &row); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("row %d: %v", i+1, err))
			rowErrs = multierr.Append(rowErrs, err)
			continue
		}
		result.Imported++
	}

	if rowErrs != nil {
		s.logg.Warn(ctx, fmt.Sprintf("csv import completed with %d failed rows: %v", result.Failed, rowErrs))
	}
	return result, nil
}

func (s *service) loadItem(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	record, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	return record, nil
}

func validateStockCounts(sellable, unusable, hold int) error {
	if sellable < 0 || unusable < 0 || hold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock counts cannot be negative")
	}
	return nil
}

func applyUpdateToItem(record *models.InventoryItem, input UpdateItemInput) {
	if input.ProductName != nil {
		record.ProductName = strings.TrimSpace(*input.ProductName)
	}
	if input.LocalName != nil {
		record.LocalName = strings.TrimSpace(*input.LocalName)
	}
	if input.SKU != nil {
		record.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.SellableStock != nil {
		record.SellableStock = *input.SellableStock
	}
	if input.UnusableStock != nil {
		record.UnusableStock = *input.UnusableStock
	}
	if input.HoldStock != nil {
		record.HoldStock = *input.HoldStock
	}
	if input.Design != nil {
		record.Design = strings.TrimSpace(*input.Design)
	}
	if input.Color != nil {
		record.Color = strings.TrimSpace(*input.Color)
	}
	if input.Supplier != nil {
		record.Supplier = strings.TrimSpace(*input.Supplier)
	}
	if input.ReorderLevel != nil {
		record.ReorderLevel = *input.ReorderLevel
	}
}
