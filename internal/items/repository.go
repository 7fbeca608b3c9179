package item

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvellora/stockline-backend/pkg/db/models"
	pkgerrors "github.com/rvellora/stockline-backend/pkg/errors"
	"github.com/rvellora/stockline-backend/pkg/pagination"
)

// ItemRepository defines CRUD operations for inventory records.
type ItemRepository interface {
	CreateItem(context.Context, *models.InventoryItem) (*models.InventoryItem, error)
	SaveItem(context.Context, *models.InventoryItem) (*models.InventoryItem, error)
	DeleteItem(context.Context, uuid.UUID) error
	FindByID(context.Context, uuid.UUID) (*models.InventoryItem, error)
}

// StockWriter exposes the version-checked stock write used by reconciliation.
type StockWriter interface {
	UpdateStock(ctx context.Context, id uuid.UUID, version int, sellableStock int) error
}

// filterColumns whitelists the single-field list filter. Pattern filters use a
// case-insensitive substring match, the rest are exact.
var filterColumns = map[string]bool{
	"product_name": true, // pattern
	"local_name":   true, // pattern
	"sku":          false,
	"design":       false,
	"color":        false,
	"supplier":     false,
}

// Repository wires together all inventory persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateItem inserts a new inventory row.
func (r *Repository) CreateItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// SaveItem overwrites an existing inventory row.
func (r *Repository) SaveItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an inventory row by ID.
func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryItem{}).Error
}

// FindByID loads a single inventory row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBySKU returns the oldest row carrying the SKU. Blank SKUs never match:
// legacy rows without one would otherwise all collide on the empty string.
func (r *Repository) FindBySKU(ctx context.Context, sku string) (*models.InventoryItem, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("created_at ASC").
		First(&item).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SearchByName returns the oldest row whose product name contains the query,
// case-insensitively.
func (r *Repository) SearchByName(ctx context.Context, query string) (*models.InventoryItem, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("LOWER(product_name) LIKE ?", pattern).
		Order("created_at ASC").
		First(&item).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListAll returns every inventory row in creation order. The reconciliation
// resolver depends on this ordering for first-match-wins semantics.
func (r *Repository) ListAll(ctx context.Context) ([]models.InventoryItem, error) {
	var rows []models.InventoryItem
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateStock writes the sellable quantity guarded by the version column.
// A stale version (or a concurrently deleted row) affects zero rows and
// surfaces as a conflict instead of silently overwriting.
func (r *Repository) UpdateStock(ctx context.Context, id uuid.UUID, version int, sellableStock int) error {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"sellable_stock": sellableStock,
			"version":        gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error,
			fmt.Sprintf("db: update stock (item_id=%s)", id))
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "stock row changed since read").
			WithDetails(map[string]any{"item_id": id.String(), "expected_version": version})
	}
	return nil
}

type itemListQuery struct {
	Pagination pagination.Params
	Filters    ItemListFilters
}

// ListItemSummaries pages the inventory newest-created first with an optional
// single-field filter.
func (r *Repository) ListItemSummaries(ctx context.Context, query itemListQuery) (*ItemListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.InventoryItem{})

	if field := strings.TrimSpace(query.Filters.Field); field != "" {
		isPattern, ok := filterColumns[field]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unsupported filter field %q", field))
		}
		if isPattern {
			pattern := "%" + strings.ToLower(strings.TrimSpace(query.Filters.Value)) + "%"
			qb = qb.Where(fmt.Sprintf("LOWER(%s) LIKE ?", field), pattern)
		} else {
			qb = qb.Where(fmt.Sprintf("%s = ?", field), query.Filters.Value)
		}
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var records []models.InventoryItem
	if err := qb.Find(&records).Error; err != nil {
		return nil, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > pageSize {
		resultRows = records[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	summaries := make([]ItemDTO, 0, len(resultRows))
	for _, record := range resultRows {
		summaries = append(summaries, *NewItemDTO(&record))
	}

	return &ItemListResult{
		Items:      summaries,
		NextCursor: nextCursor,
	}, nil
}
