package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	itemsvc "github.com/rvellora/stockline-backend/internal/items"
	pkgerrors "github.com/rvellora/stockline-backend/pkg/errors"
	"github.com/rvellora/stockline-backend/pkg/logger"
	"github.com/rvellora/stockline-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type stubItemService struct {
	created   *itemsvc.CreateItemInput
	updated   *itemsvc.UpdateItemInput
	updatedID uuid.UUID
	deleted   []uuid.UUID
	listInput *itemsvc.ListItemsInput

	getErr    error
	createErr error

	exportPayload []byte
	importResult  *itemsvc.ImportResult
}

func (s *stubItemService) CreateItem(ctx context.Context, input itemsvc.CreateItemInput) (*itemsvc.ItemDTO, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &input
	return &itemsvc.ItemDTO{ID: uuid.New(), ProductName: input.ProductName, SKU: input.SKU}, nil
}

func (s *stubItemService) UpdateItem(ctx context.Context, itemID uuid.UUID, input itemsvc.UpdateItemInput) (*itemsvc.ItemDTO, error) {
	s.updated = &input
	s.updatedID = itemID
	return &itemsvc.ItemDTO{ID: itemID}, nil
}

func (s *stubItemService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	s.deleted = append(s.deleted, itemID)
	return nil
}

func (s *stubItemService) GetItem(ctx context.Context, itemID uuid.UUID) (*itemsvc.ItemDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &itemsvc.ItemDTO{ID: itemID, ProductName: "Red Saree"}, nil
}

func (s *stubItemService) ListItems(ctx context.Context, input itemsvc.ListItemsInput) (*itemsvc.ItemListResult, error) {
	s.listInput = &input
	return &itemsvc.ItemListResult{Items: []itemsvc.ItemDTO{{ProductName: "Red Saree"}}}, nil
}

func (s *stubItemService) ExportCSV(ctx context.Context) ([]byte, error) {
	return s.exportPayload, nil
}

func (s *stubItemService) ImportCSV(ctx context.Context, r io.Reader) (*itemsvc.ImportResult, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	if s.importResult != nil {
		return s.importResult, nil
	}
	return &itemsvc.ImportResult{}, nil
}

func withItemID(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("itemId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCreateItem(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		stub := &stubItemService{}
		body := `{"product_name":"  Red Saree  ","sku":"RS-1","sellable_stock":12}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateItem(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.created == nil {
			t.Fatalf("expected CreateItem to be invoked")
		}
		if stub.created.ProductName != "Red Saree" {
			t.Fatalf("expected trimmed name, got %q", stub.created.ProductName)
		}
		if stub.created.SellableStock != 12 {
			t.Fatalf("unexpected stock %d", stub.created.SellableStock)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{"sku":"RS-1"}`))
		rec := httptest.NewRecorder()
		CreateItem(&stubItemService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("negative stock", func(t *testing.T) {
		body := `{"product_name":"Red Saree","sellable_stock":-1}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateItem(&stubItemService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		CreateItem(nil, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestGetItem(t *testing.T) {
	logg := testLogger()
	itemID := uuid.New()

	t.Run("success", func(t *testing.T) {
		req := withItemID(httptest.NewRequest(http.MethodGet, "/api/v1/items/"+itemID.String(), nil), itemID.String())
		rec := httptest.NewRecorder()
		GetItem(&stubItemService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		req := withItemID(httptest.NewRequest(http.MethodGet, "/api/v1/items/nope", nil), "nope")
		rec := httptest.NewRecorder()
		GetItem(&stubItemService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		stub := &stubItemService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")}
		req := withItemID(httptest.NewRequest(http.MethodGet, "/api/v1/items/"+itemID.String(), nil), itemID.String())
		rec := httptest.NewRecorder()
		GetItem(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestUpdateItemPartialBody(t *testing.T) {
	logg := testLogger()
	itemID := uuid.New()
	stub := &stubItemService{}

	body := `{"sellable_stock":7}`
	req := withItemID(httptest.NewRequest(http.MethodPatch, "/api/v1/items/"+itemID.String(), strings.NewReader(body)), itemID.String())
	rec := httptest.NewRecorder()
	UpdateItem(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.updatedID != itemID {
		t.Fatalf("expected id %s, got %s", itemID, stub.updatedID)
	}
	if stub.updated.SellableStock == nil || *stub.updated.SellableStock != 7 {
		t.Fatalf("expected sellable stock pointer 7, got %+v", stub.updated)
	}
	if stub.updated.ProductName != nil {
		t.Fatalf("untouched fields must stay nil")
	}
}

func TestDeleteItem(t *testing.T) {
	logg := testLogger()
	itemID := uuid.New()
	stub := &stubItemService{}

	req := withItemID(httptest.NewRequest(http.MethodDelete, "/api/v1/items/"+itemID.String(), nil), itemID.String())
	rec := httptest.NewRecorder()
	DeleteItem(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(stub.deleted) != 1 || stub.deleted[0] != itemID {
		t.Fatalf("expected DeleteItem(%s), got %v", itemID, stub.deleted)
	}
}

func TestListItemsQueryParams(t *testing.T) {
	logg := testLogger()
	stub := &stubItemService{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items?limit=10&cursor=abc&filter_field=supplier&filter_value=mills", nil)
	rec := httptest.NewRecorder()
	ListItems(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.listInput.Pagination.Limit != 10 || stub.listInput.Pagination.Cursor != "abc" {
		t.Fatalf("unexpected pagination %+v", stub.listInput.Pagination)
	}
	if stub.listInput.Filters.Field != "supplier" || stub.listInput.Filters.Value != "mills" {
		t.Fatalf("unexpected filters %+v", stub.listInput.Filters)
	}
}

func TestListItemsRejectsBadLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items?limit=0", nil)
	rec := httptest.NewRecorder()
	ListItems(&stubItemService{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExportItemsCSV(t *testing.T) {
	stub := &stubItemService{exportPayload: []byte("productName,localName\nRed Saree,\n")}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/export", nil)
	rec := httptest.NewRecorder()
	ExportItemsCSV(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("expected attachment disposition")
	}
	if rec.Body.String() != string(stub.exportPayload) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestImportItemsCSV(t *testing.T) {
	stub := &stubItemService{importResult: &itemsvc.ImportResult{Imported: 2, Failed: 1, Failures: []string{"row 3: product name is required"}}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/import", strings.NewReader("productName\nRed Saree\nBlue Saree\n\n"))
	rec := httptest.NewRecorder()
	ImportItemsCSV(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["imported"].(float64) != 2 || data["failed"].(float64) != 1 {
		t.Fatalf("unexpected result %v", data)
	}
}
