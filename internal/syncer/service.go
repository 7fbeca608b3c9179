package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/rvellora/stockline-backend/pkg/db/models"
	"github.com/rvellora/stockline-backend/pkg/enums"
	pkgerrors "github.com/rvellora/stockline-backend/pkg/errors"
	"github.com/rvellora/stockline-backend/pkg/logger"
	"github.com/rvellora/stockline-backend/pkg/metrics"
	"github.com/rvellora/stockline-backend/pkg/shopify"
)

const (
	defaultLookback = 7 * 24 * time.Hour

	// synthesizedSKUPrefix keys catalog products whose first variant carries
	// no SKU; the product ID is the only stable handle left.
	synthesizedSKUPrefix = "shopify-"

	// defaultDesignLabel fills the design column for imported products with
	// no product type.
	defaultDesignLabel = "General"
)

// storefrontClient is the slice of pkg/shopify the engine depends on.
type storefrontClient interface {
	CheckConnection() bool
	ListProducts(ctx context.Context, pageLimit int) ([]shopify.Product, error)
	ListOrders(ctx context.Context, since time.Time, pageLimit int) ([]shopify.Order, error)
	ListLocations(ctx context.Context) ([]shopify.Location, error)
	SetInventoryLevel(ctx context.Context, locationID, inventoryItemID int64, quantity int) error
}

// itemStore is the slice of the inventory repository the engine depends on.
type itemStore interface {
	ListAll(ctx context.Context) ([]models.InventoryItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindBySKU(ctx context.Context, sku string) (*models.InventoryItem, error)
	CreateItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	SaveItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	UpdateStock(ctx context.Context, id uuid.UUID, version int, sellableStock int) error
}

// Service exposes the reconciliation engine operations.
type Service interface {
	Status(ctx context.Context) (*StatusDTO, error)
	ImportCatalog(ctx context.Context) (*ImportResult, error)
	ApplyOrders(ctx context.Context) (*ApplyResult, error)
	PushStock(ctx context.Context, itemID uuid.UUID) (*PushResult, error)
	BulkPushStock(ctx context.Context) (*BulkPushResult, error)
}

// StatusDTO reports connectivity and the last completed run.
type StatusDTO struct {
	ShopDomain   string     `json:"shop_domain,omitempty"`
	Connected    bool       `json:"connected"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
}

// ImportResult summarizes a catalog import run.
type ImportResult struct {
	Created      int        `json:"created"`
	Updated      int        `json:"updated"`
	Failed       int        `json:"failed"`
	Log          []string   `json:"log"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
}

// ApplyResult summarizes an order deduction run.
type ApplyResult struct {
	Processed    int        `json:"processed"`
	NotFound     int        `json:"not_found"`
	Log          []string   `json:"log"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
}

// PushResult summarizes a single outbound stock write.
type PushResult struct {
	ItemID   uuid.UUID `json:"item_id"`
	SKU      string    `json:"sku"`
	Quantity int       `json:"quantity"`
	Log      []string  `json:"log"`
}

// BulkPushResult summarizes an outbound bulk run.
type BulkPushResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Log       []string `json:"log"`
}

// ServiceParams configure the reconciliation engine.
type ServiceParams struct {
	Logger          *logger.Logger
	Storefront      storefrontClient
	Items           itemStore
	Lock            Lock
	State           StateStore
	Pacer           Pacer
	Metrics         *metrics.SyncMetrics
	ShopDomain      string
	PageLimit       int
	DefaultLookback time.Duration
}

type service struct {
	logg       *logger.Logger
	storefront storefrontClient
	items      itemStore
	lock       Lock
	state      StateStore
	pacer      Pacer
	metrics    *metrics.SyncMetrics
	shopDomain string
	pageLimit  int
	lookback   time.Duration
	now        func() time.Time
}

// NewService constructs the reconciliation engine.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Storefront == nil {
		return nil, fmt.Errorf("storefront client required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("item store required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	if params.State == nil {
		return nil, fmt.Errorf("state store required")
	}
	pacer := params.Pacer
	if pacer == nil {
		pacer = NewPacer(0)
	}
	lookback := params.DefaultLookback
	if lookback <= 0 {
		lookback = defaultLookback
	}
	return &service{
		logg:       params.Logger,
		storefront: params.Storefront,
		items:      params.Items,
		lock:       params.Lock,
		state:      params.State,
		pacer:      pacer,
		metrics:    params.Metrics,
		shopDomain: params.ShopDomain,
		pageLimit:  params.PageLimit,
		lookback:   lookback,
		now:        time.Now,
	}, nil
}

// Status never touches the storefront API; connectivity is a configuration
// check, not a network probe.
func (s *service) Status(ctx context.Context) (*StatusDTO, error) {
	state, err := s.state.Load(ctx, s.shopDomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sync state")
	}
	return &StatusDTO{
		ShopDomain:   s.shopDomain,
		Connected:    s.storefront.CheckConnection(),
		LastSyncTime: state.LastSyncTime,
	}, nil
}

// ImportCatalog pulls the full catalog and reconciles it into the local
// inventory: known SKUs get their sellable stock and product name
// overwritten, unknown SKUs become fresh records.
func (s *service) ImportCatalog(ctx context.Context) (*ImportResult, error) {
	var result *ImportResult
	err := s.withLockAndState(ctx, enums.SyncOperationImportCatalog, func(ctx context.Context, state SyncState) (SyncState, error) {
		res, newState, err := s.runImportCatalog(ctx, state)
		result = res
		return newState, err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) runImportCatalog(ctx context.Context, state SyncState) (*ImportResult, SyncState, error) {
	products, err := s.storefront.ListProducts(ctx, s.pageLimit)
	if err != nil {
		// hard abort: nothing has been written yet
		return nil, state, err
	}

	runLog := &RunLog{}
	result := &ImportResult{}

	for i := range products {
		product := products[i]
		if err := s.pacer.Wait(ctx); err != nil {
			return nil, state, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pacing interrupted")
		}
		if len(product.Variants) == 0 {
			result.Failed++
			runLog.Addf("skipped %q: product has no variants", product.Title)
			s.metrics.IncItem(enums.SyncOperationImportCatalog.String(), "failed")
			continue
		}

		// Only the first variant is represented locally; multi-variant
		// products lose their remaining variants on import.
		variant := product.Variants[0]
		sku := variant.SKU
		if sku == "" {
			sku = fmt.Sprintf("%s%d", synthesizedSKUPrefix, product.ID)
		}

		outcome, err := s.importOne(ctx, product, variant, sku, runLog)
		if err != nil {
			result.Failed++
			runLog.Addf("failed %q (sku %s): %v", product.Title, sku, err)
			s.metrics.IncItem(enums.SyncOperationImportCatalog.String(), "failed")
			continue
		}
		switch outcome {
		case "created":
			result.Created++
		case "updated":
			result.Updated++
		}
		s.metrics.IncItem(enums.SyncOperationImportCatalog.String(), outcome)
	}

	// the window advances even when individual products failed
	completedAt := s.now()
	state.LastSyncTime = &completedAt

	result.Log = runLog.Lines()
	result.LastSyncTime = state.LastSyncTime
	return result, state, nil
}

func (s *service) importOne(ctx context.Context, product shopify.Product, variant shopify.Variant, sku string, runLog *RunLog) (string, error) {
	existing, err := s.items.FindBySKU(ctx, sku)
	switch {
	case err == nil:
		existing.ProductName = product.Title
		existing.SellableStock = clampToZero(variant.InventoryQuantity)
		existing.Version++
		if _, err := s.items.SaveItem(ctx, existing); err != nil {
			return "", err
		}
		runLog.Addf("updated %q (sku %s): sellable stock set to %d", product.Title, sku, existing.SellableStock)
		return "updated", nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		design := product.ProductType
		if design == "" {
			design = defaultDesignLabel
		}
		record := &models.InventoryItem{
			ProductName:   product.Title,
			SKU:           sku,
			SellableStock: clampToZero(variant.InventoryQuantity),
			Design:        design,
			ReorderLevel:  5,
		}
		if _, err := s.items.CreateItem(ctx, record); err != nil {
			return "", err
		}
		runLog.Addf("created %q (sku %s) with sellable stock %d", product.Title, sku, record.SellableStock)
		return "created", nil

	default:
		return "", err
	}
}

// ApplyOrders deducts sold quantities from sellable stock for orders created
// since the last run (or the default lookback window on a first run).
func (s *service) ApplyOrders(ctx context.Context) (*ApplyResult, error) {
	var result *ApplyResult
	err := s.withLockAndState(ctx, enums.SyncOperationApplyOrders, func(ctx context.Context, state SyncState) (SyncState, error) {
		res, newState, err := s.runApplyOrders(ctx, state)
		result = res
		return newState, err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) runApplyOrders(ctx context.Context, state SyncState) (*ApplyResult, SyncState, error) {
	since := s.now().Add(-s.lookback)
	if state.LastSyncTime != nil {
		since = *state.LastSyncTime
	}

	orders, err := s.storefront.ListOrders(ctx, since, s.pageLimit)
	if err != nil {
		// hard abort: nothing has been written yet
		return nil, state, err
	}

	inventory, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, state, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory items")
	}

	runLog := &RunLog{}
	result := &ApplyResult{}

	for _, order := range orders {
		for _, line := range order.LineItems {
			s.applyLineItem(ctx, inventory, order, line, result, runLog)
		}
	}

	completedAt := s.now()
	state.LastSyncTime = &completedAt

	result.Log = runLog.Lines()
	result.LastSyncTime = state.LastSyncTime
	return result, state, nil
}

func (s *service) applyLineItem(ctx context.Context, inventory []models.InventoryItem, order shopify.Order, line shopify.LineItem, result *ApplyResult, runLog *RunLog) {
	match := Resolve(inventory, line.SKU, line.Name)
	if match.MatchedBy == enums.MatchKindNone {
		result.NotFound++
		runLog.Addf("order %s: no local match for %q (sku %q)", order.Name, line.Name, line.SKU)
		s.metrics.IncItem(enums.SyncOperationApplyOrders.String(), "not_found")
		return
	}

	item := match.Item
	// clamping hides oversell: a deduction below zero leaves no trace beyond
	// the log line
	newStock := clampToZero(item.SellableStock - line.Quantity)
	if err := s.items.UpdateStock(ctx, item.ID, item.Version, newStock); err != nil {
		runLog.Addf("order %s: failed to deduct %d from %q: %v", order.Name, line.Quantity, item.ProductName, err)
		s.metrics.IncItem(enums.SyncOperationApplyOrders.String(), "failed")
		return
	}

	// keep the in-memory snapshot coherent for later line items in this run
	item.SellableStock = newStock
	item.Version++

	result.Processed++
	runLog.Addf("order %s: deducted %d from %q (%s match), %d remaining",
		order.Name, line.Quantity, item.ProductName, match.MatchedBy, newStock)
	s.metrics.IncItem(enums.SyncOperationApplyOrders.String(), "processed")
}

// PushStock writes one item's sellable stock to the storefront. Nothing is
// mutated locally and SyncState does not move: a push is not a sync.
func (s *service) PushStock(ctx context.Context, itemID uuid.UUID) (*PushResult, error) {
	var result *PushResult
	err := s.withLock(ctx, enums.SyncOperationPushStock, func(ctx context.Context) error {
		item, err := s.loadPushableItem(ctx, itemID)
		if err != nil {
			return err
		}

		products, err := s.storefront.ListProducts(ctx, s.pageLimit)
		if err != nil {
			return err
		}
		locationID, err := s.resolveLocation(ctx)
		if err != nil {
			return err
		}

		runLog := &RunLog{}
		if err := s.pushOne(ctx, item, products, locationID, runLog); err != nil {
			return err
		}
		result = &PushResult{
			ItemID:   item.ID,
			SKU:      item.SKU,
			Quantity: item.SellableStock,
			Log:      runLog.Lines(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BulkPushStock pushes every SKU-carrying item sequentially. One failed push
// never stops the rest; the catalog and location are resolved once up front.
func (s *service) BulkPushStock(ctx context.Context) (*BulkPushResult, error) {
	var result *BulkPushResult
	err := s.withLock(ctx, enums.SyncOperationPushStock, func(ctx context.Context) error {
		inventory, err := s.items.ListAll(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory items")
		}
		products, err := s.storefront.ListProducts(ctx, s.pageLimit)
		if err != nil {
			return err
		}
		locationID, err := s.resolveLocation(ctx)
		if err != nil {
			return err
		}

		runLog := &RunLog{}
		result = &BulkPushResult{}
		var pushErrs error

		for i := range inventory {
			item := &inventory[i]
			if item.SKU == "" {
				result.Skipped++
				runLog.Addf("skipped %q: no sku", item.ProductName)
				continue
			}
			if err := s.pacer.Wait(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pacing interrupted")
			}
			if err := s.pushOne(ctx, item, products, locationID, runLog); err != nil {
				result.Failed++
				runLog.Addf("failed %q (sku %s): %v", item.ProductName, item.SKU, err)
				s.metrics.IncItem(enums.SyncOperationPushStock.String(), "failed")
				pushErrs = multierr.Append(pushErrs, err)
				continue
			}
			result.Succeeded++
			s.metrics.IncItem(enums.SyncOperationPushStock.String(), "pushed")
		}

		if pushErrs != nil {
			s.logg.Warn(ctx, fmt.Sprintf("bulk push completed with %d failures: %v", result.Failed, pushErrs))
		}
		result.Log = runLog.Lines()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) loadPushableItem(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	if item.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item has no sku to match against the storefront")
	}
	return item, nil
}

func (s *service) pushOne(ctx context.Context, item *models.InventoryItem, products []shopify.Product, locationID int64, runLog *RunLog) error {
	inventoryItemID, ok := findInventoryItemID(products, item.SKU)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("sku %q not found in storefront catalog", item.SKU))
	}
	if err := s.storefront.SetInventoryLevel(ctx, locationID, inventoryItemID, item.SellableStock); err != nil {
		return err
	}
	runLog.Addf("pushed %q (sku %s): storefront stock set to %d", item.ProductName, item.SKU, item.SellableStock)
	return nil
}

func (s *service) resolveLocation(ctx context.Context) (int64, error) {
	locations, err := s.storefront.ListLocations(ctx)
	if err != nil {
		return 0, err
	}
	if len(locations) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "storefront has no stock locations")
	}
	// single-location shops are the norm; the first location wins
	return locations[0].ID, nil
}

// withLock serializes engine runs per shop via the redis mutex.
func (s *service) withLock(ctx context.Context, op enums.SyncOperation, fn func(ctx context.Context) error) error {
	ctx = s.logg.WithShop(ctx, s.shopDomain)
	ctx = s.logg.WithField(ctx, "operation", op.String())

	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		s.metrics.IncRunFailure(op.String())
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire sync lock")
	}
	if !locked {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "sync already in progress for this shop")
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "failed to release sync lock", relErr)
		}
	}()

	start := s.now()
	s.logg.Info(ctx, "sync run starting")
	runErr := fn(ctx)
	s.metrics.ObserveDuration(op.String(), time.Since(start))
	if runErr != nil {
		s.metrics.IncRunFailure(op.String())
		s.logg.Error(ctx, "sync run failed", runErr)
		return runErr
	}
	s.logg.Info(ctx, "sync run complete")
	return nil
}

// withLockAndState additionally threads SyncState through the run and
// persists whatever the run hands back.
func (s *service) withLockAndState(ctx context.Context, op enums.SyncOperation, fn func(ctx context.Context, state SyncState) (SyncState, error)) error {
	return s.withLock(ctx, op, func(ctx context.Context) error {
		state, err := s.state.Load(ctx, s.shopDomain)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sync state")
		}

		newState, err := fn(ctx, state)
		if err != nil {
			return err
		}

		if err := s.state.Save(ctx, s.shopDomain, newState); err != nil {
			// per-item writes are already committed; losing the timestamp
			// only widens the next order window
			s.logg.Error(ctx, "failed to persist sync state", err)
		}
		return nil
	})
}

func findInventoryItemID(products []shopify.Product, sku string) (int64, bool) {
	for _, product := range products {
		for _, variant := range product.Variants {
			if variant.SKU == sku {
				return variant.InventoryItemID, true
			}
		}
	}
	return 0, false
}

func clampToZero(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
