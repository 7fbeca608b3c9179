package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rvellora/stockline-backend/api/responses"
	"github.com/rvellora/stockline-backend/api/validators"
	itemsvc "github.com/rvellora/stockline-backend/internal/items"
	pkgerrors "github.com/rvellora/stockline-backend/pkg/errors"
	"github.com/rvellora/stockline-backend/pkg/logger"
	"github.com/rvellora/stockline-backend/pkg/pagination"
)

// maxImportBytes caps the CSV upload size to keep bulk imports bounded.
const maxImportBytes = 5 << 20

// ListItems handles paginated, optionally filtered inventory listings.
func ListItems(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := itemsvc.ListItemsInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
			Filters: itemsvc.ItemListFilters{
				Field: strings.TrimSpace(r.URL.Query().Get("filter_field")),
				Value: strings.TrimSpace(r.URL.Query().Get("filter_value")),
			},
		}

		result, err := svc.ListItems(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// CreateItem handles manual inventory record creation.
func CreateItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), payload.toCreateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// GetItem fetches a single inventory record by id.
func GetItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// UpdateItem applies a partial update to an inventory record.
func UpdateItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), itemID, payload.toUpdateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// DeleteItem removes an inventory record.
func DeleteItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ExportItemsCSV streams the full inventory as a CSV attachment.
func ExportItemsCSV(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		payload, err := svc.ExportCSV(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := "inventory-" + time.Now().UTC().Format("20060102") + ".csv"
		responses.WriteCSV(w, filename, payload)
	}
}

// ImportItemsCSV bulk-creates inventory records from an uploaded CSV body.
func ImportItemsCSV(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		body := http.MaxBytesReader(w, r.Body, maxImportBytes)
		defer body.Close()

		result, err := svc.ImportCSV(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createItemRequest struct {
	ProductName   string `json:"product_name" validate:"required"`
	LocalName     string `json:"local_name,omitempty"`
	SKU           string `json:"sku,omitempty"`
	SellableStock int    `json:"sellable_stock" validate:"omitempty,min=0"`
	UnusableStock int    `json:"unusable_stock" validate:"omitempty,min=0"`
	HoldStock     int    `json:"hold_stock" validate:"omitempty,min=0"`
	Design        string `json:"design,omitempty"`
	Color         string `json:"color,omitempty"`
	Supplier      string `json:"supplier,omitempty"`
	ReorderLevel  *int   `json:"reorder_level,omitempty" validate:"omitempty,min=0"`
}

func (r createItemRequest) toCreateInput() itemsvc.CreateItemInput {
	return itemsvc.CreateItemInput{
		ProductName:   strings.TrimSpace(r.ProductName),
		LocalName:     strings.TrimSpace(r.LocalName),
		SKU:           strings.TrimSpace(r.SKU),
		SellableStock: r.SellableStock,
		UnusableStock: r.UnusableStock,
		HoldStock:     r.HoldStock,
		Design:        strings.TrimSpace(r.Design),
		Color:         strings.TrimSpace(r.Color),
		Supplier:      strings.TrimSpace(r.Supplier),
		ReorderLevel:  r.ReorderLevel,
	}
}

type updateItemRequest struct {
	ProductName   *string `json:"product_name,omitempty"`
	LocalName     *string `json:"local_name,omitempty"`
	SKU           *string `json:"sku,omitempty"`
	SellableStock *int    `json:"sellable_stock,omitempty" validate:"omitempty,min=0"`
	UnusableStock *int    `json:"unusable_stock,omitempty" validate:"omitempty,min=0"`
	HoldStock     *int    `json:"hold_stock,omitempty" validate:"omitempty,min=0"`
	Design        *string `json:"design,omitempty"`
	Color         *string `json:"color,omitempty"`
	Supplier      *string `json:"supplier,omitempty"`
	ReorderLevel  *int    `json:"reorder_level,omitempty" validate:"omitempty,min=0"`
}

func (r updateItemRequest) toUpdateInput() itemsvc.UpdateItemInput {
	return itemsvc.UpdateItemInput{
		ProductName:   r.ProductName,
		LocalName:     r.LocalName,
		SKU:           r.SKU,
		SellableStock: r.SellableStock,
		UnusableStock: r.UnusableStock,
		HoldStock:     r.HoldStock,
		Design:        r.Design,
		Color:         r.Color,
		Supplier:      r.Supplier,
		ReorderLevel:  r.ReorderLevel,
	}
}

func parseItemID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "itemId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	itemID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
	}
	return itemID, nil
}
