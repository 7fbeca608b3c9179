package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rvellora/stockline-backend/pkg/config"
	pkgerrors "github.com/rvellora/stockline-backend/pkg/errors"
	"github.com/rvellora/stockline-backend/pkg/logger"
)

const (
	accessTokenHeader     = "X-Shopify-Access-Token"
	defaultAPIVersion     = "2025-01"
	responseBodyReadLimit = 1 << 20
	defaultRequestTimeout = 15 * time.Second

	// maxCatalogPages is a hard stop against a broken Link-header loop.
	maxCatalogPages = 40
)

// nextLinkPattern extracts the rel="next" target from a Link header.
var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// Client talks to the storefront admin REST API. A client built from empty
// credentials is valid but disconnected: every call fails with an
// authentication error and CheckConnection reports false.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	apiVersion  string
	logger      *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the derived admin base URL (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = strings.TrimSuffix(trimmed, "/")
		}
	}
}

// NewClient builds the storefront client from configuration.
func NewClient(cfg config.ShopifyConfig, logg *logger.Logger, opts ...Option) *Client {
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = defaultAPIVersion
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: defaultRequestTimeout},
		accessToken: strings.TrimSpace(cfg.AccessToken),
		apiVersion:  version,
		logger:      logg,
	}
	if domain := strings.TrimSpace(cfg.StoreDomain); domain != "" {
		client.baseURL = "https://" + domain
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client
}

// CheckConnection reports whether credentials are configured. It does not
// issue a network call.
func (c *Client) CheckConnection() bool {
	return c != nil && c.baseURL != "" && c.accessToken != ""
}

// ListProducts fetches the full catalog, following rel="next" page links.
func (c *Client) ListProducts(ctx context.Context, pageLimit int) ([]Product, error) {
	if err := c.ensureConfigured(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(normalizePageLimit(pageLimit)))
	next := c.endpoint("products.json") + "?" + query.Encode()

	var products []Product
	for page := 0; next != "" && page < maxCatalogPages; page++ {
		var body productsResponse
		header, err := c.get(ctx, next, "list_products", &body)
		if err != nil {
			return nil, err
		}
		products = append(products, body.Products...)
		next = nextPageURL(header)
	}

	c.log(ctx, "response", "list_products", map[string]any{"count": len(products)})
	return products, nil
}

// ListOrders fetches orders created at or after since, any status.
func (c *Client) ListOrders(ctx context.Context, since time.Time, pageLimit int) ([]Order, error) {
	if err := c.ensureConfigured(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("status", "any")
	query.Set("created_at_min", since.UTC().Format(time.RFC3339))
	query.Set("limit", strconv.Itoa(normalizePageLimit(pageLimit)))
	next := c.endpoint("orders.json") + "?" + query.Encode()

	var orders []Order
	for page := 0; next != "" && page < maxCatalogPages; page++ {
		var body ordersResponse
		header, err := c.get(ctx, next, "list_orders", &body)
		if err != nil {
			return nil, err
		}
		orders = append(orders, body.Orders...)
		next = nextPageURL(header)
	}

	c.log(ctx, "response", "list_orders", map[string]any{"count": len(orders)})
	return orders, nil
}

// ListLocations fetches the stock locations for the shop.
func (c *Client) ListLocations(ctx context.Context) ([]Location, error) {
	if err := c.ensureConfigured(); err != nil {
		return nil, err
	}

	var body locationsResponse
	if _, err := c.get(ctx, c.endpoint("locations.json"), "list_locations", &body); err != nil {
		return nil, err
	}
	return body.Locations, nil
}

// SetInventoryLevel overwrites the available quantity for an inventory item
// at the given location.
func (c *Client) SetInventoryLevel(ctx context.Context, locationID, inventoryItemID int64, quantity int) error {
	if err := c.ensureConfigured(); err != nil {
		return err
	}

	payload, err := json.Marshal(inventorySetRequest{
		LocationID:      locationID,
		InventoryItemID: inventoryItemID,
		Available:       quantity,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal inventory set request")
	}

	c.log(ctx, "request", "set_inventory_level", map[string]any{
		"location_id":       locationID,
		"inventory_item_id": inventoryItemID,
		"available":         quantity,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("inventory_levels/set.json"), bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build inventory set request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute inventory set request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(ctx, resp, "set_inventory_level")
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
	return nil
}

func (c *Client) get(ctx context.Context, rawURL, op string, dest any) (http.Header, error) {
	c.log(ctx, "request", op, map[string]any{"url": rawURL})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("build %s request", op))
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", op))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(ctx, resp, op)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("read %s response", op))
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", op))
	}
	return resp.Header, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set(accessTokenHeader, c.accessToken)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.baseURL, c.apiVersion, path)
}

func (c *Client) ensureConfigured() error {
	if c == nil || !c.CheckConnection() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "storefront credentials not configured")
	}
	return nil
}

// statusError maps a non-2xx response to the error taxonomy with the raw
// payload attached as details.
func (c *Client) statusError(ctx context.Context, resp *http.Response, op string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	payload := strings.TrimSpace(string(raw))

	c.log(ctx, "error", op, map[string]any{
		"status": resp.StatusCode,
		"error":  payload,
	})

	err := pkgerrors.New(codeForStatus(resp.StatusCode), fmt.Sprintf("storefront %s failed with status %d", op, resp.StatusCode))
	if payload != "" {
		err = err.WithDetails(map[string]any{"response": payload})
	}
	return err
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeDependency
	}
}

func nextPageURL(header http.Header) string {
	link := header.Get("Link")
	if link == "" {
		return ""
	}
	match := nextLinkPattern.FindStringSubmatch(link)
	if len(match) != 2 {
		return ""
	}
	return match[1]
}

func normalizePageLimit(limit int) int {
	if limit <= 0 || limit > 250 {
		return 250
	}
	return limit
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Warn(ctx, fmt.Sprintf("storefront %s failed", op))
	default:
		c.logger.Info(ctx, fmt.Sprintf("storefront %s", phase))
	}
}
