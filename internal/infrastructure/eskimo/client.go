package eskimo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/config"
)

// Client is the resty-backed implementation of the sync.Gateway port. All
// remote endpoints are POST with JSON bodies; list endpoints take the paging
// body, single-entity endpoints an identifier body. Status-only write-backs
// use a shorter timeout than data pulls.
type Client struct {
	http       *resty.Client
	statusHTTP *resty.Client
	session    *SessionProvider
	logger     *zap.Logger
}

var _ sync.Gateway = (*Client)(nil)

// NewClient creates a gateway client against the configured remote
func NewClient(cfg config.EskimoConfig, session *SessionProvider, logger *zap.Logger) *Client {
	std := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetHeader("Content-Type", "application/json")

	status := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.StatusTimeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:       std,
		statusHTTP: status,
		session:    session,
		logger:     logger.Named("eskimo.client"),
	}
}

// doPost performs an authenticated POST, decoding the response into out when
// out is non-nil. A 401 invalidates the cached token and retries once with a
// fresh one.
func (c *Client) doPost(ctx context.Context, client *resty.Client, path string, body, out any) (*resty.Response, error) {
	resp, err := c.attempt(ctx, client, path, body, out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		c.session.Invalidate(ctx)
		resp, err = c.attempt(ctx, client, path, body, out)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: remote rejected token for %s", sync.ErrAuth, path)
		}
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %s returned %d", sync.ErrConnect, path, resp.StatusCode())
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, client *resty.Client, path string, body, out any) (*resty.Response, error) {
	token, err := c.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	req := client.R().
		SetContext(ctx).
		SetAuthToken(token)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Post(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", sync.ErrConnect, path, err)
	}
	return resp, nil
}

// fetchOne runs a single-entity POST and maps 404/empty bodies to ErrNoData
func (c *Client) fetchOne(ctx context.Context, path string, body, out any) error {
	resp, err := c.doPost(ctx, c.http, path, body, out)
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound || len(resp.Body()) == 0 {
		return fmt.Errorf("%w: %s", sync.ErrNoData, path)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s returned %d", sync.ErrNoData, path, resp.StatusCode())
	}
	return nil
}

// fetchList runs a list POST. A 404 or empty body means an empty window, not
// an error.
func (c *Client) fetchList(ctx context.Context, path string, body, out any) error {
	resp, err := c.doPost(ctx, c.http, path, body, out)
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s returned %d", sync.ErrNoData, path, resp.StatusCode())
	}
	return nil
}

// writeStatus runs a status-only write-back and returns the raw HTTP status
func (c *Client) writeStatus(ctx context.Context, path string, body any) (int, error) {
	resp, err := c.doPost(ctx, c.statusHTTP, path, body, nil)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// Categories pulls a page of product categories
func (c *Client) Categories(ctx context.Context, req sync.BatchRequest) ([]sync.RemoteCategory, error) {
	var out []sync.RemoteCategory
	if err := c.fetchList(ctx, "/api/Categories/All", newRecordsRequest(req), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoryByID fetches a single category
func (c *Client) CategoryByID(ctx context.Context, id sync.Ident) (*sync.RemoteCategory, error) {
	var out sync.RemoteCategory
	if err := c.fetchOne(ctx, "/api/Categories/SpecificID", categoryIDRequest{EskimoCategoryID: id.String()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChildCategories pulls the direct children of a category
func (c *Client) ChildCategories(ctx context.Context, parentID sync.Ident) ([]sync.RemoteCategory, error) {
	var out []sync.RemoteCategory
	if err := c.fetchList(ctx, "/api/Categories/ChildCategories", categoryIDRequest{EskimoCategoryID: parentID.String()}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCategoryCartIDs writes a batch of category identifier mappings back
func (c *Client) UpdateCategoryCartIDs(ctx context.Context, mappings []sync.IdentifierMapping) (int, error) {
	return c.writeStatus(ctx, "/api/Categories/UpdateCartIDs", mappings)
}

// ---------------------------------------------------------------------------
// Products and SKUs
// ---------------------------------------------------------------------------

// Products pulls a page of products
func (c *Client) Products(ctx context.Context, req sync.BatchRequest) ([]sync.RemoteProduct, error) {
	var out []sync.RemoteProduct
	if err := c.fetchList(ctx, "/api/Products/All", newRecordsRequest(req), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductByID fetches a single product with its SKUs embedded
func (c *Client) ProductByID(ctx context.Context, id sync.Ident) (*sync.RemoteProduct, error) {
	var out sync.RemoteProduct
	if err := c.fetchOne(ctx, "/api/Products/SpecificID", idRequest{EskimoIdentifier: id.String()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProductCartIDs writes a batch of product identifier mappings back
func (c *Client) UpdateProductCartIDs(ctx context.Context, mappings []sync.IdentifierMapping) (int, error) {
	return c.writeStatus(ctx, "/api/Products/UpdateCartIDs", mappings)
}

// Skus pulls a page of SKUs
func (c *Client) Skus(ctx context.Context, req sync.BatchRequest) ([]sync.RemoteSku, error) {
	var out []sync.RemoteSku
	if err := c.fetchList(ctx, "/api/SKUs/All", newRecordsRequest(req), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SkuByCode fetches a single SKU by its plain SKU code
func (c *Client) SkuByCode(ctx context.Context, code string) (*sync.RemoteSku, error) {
	var out sync.RemoteSku
	if err := c.fetchOne(ctx, "/api/SKUs/SpecificSKUCode", skuCodeRequest{SkuCode: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SkusByProduct fetches the SKUs belonging to one product identifier
func (c *Client) SkusByProduct(ctx context.Context, productID sync.Ident) ([]sync.RemoteSku, error) {
	var out []sync.RemoteSku
	if err := c.fetchList(ctx, "/api/SKUs/SpecificIdentifier", idRequest{EskimoIdentifier: productID.String()}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Customers
// ---------------------------------------------------------------------------

// CustomerByID fetches a single customer by remote ID
func (c *Client) CustomerByID(ctx context.Context, id string) (*sync.RemoteCustomer, error) {
	var out sync.RemoteCustomer
	if err := c.fetchOne(ctx, "/api/Customers/SpecificID", customerIDRequest{CustomerID: id}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchCustomers looks customers up by the search criteria
func (c *Client) SearchCustomers(ctx context.Context, q sync.CustomerSearch) ([]sync.RemoteCustomer, error) {
	var out []sync.RemoteCustomer
	if err := c.fetchList(ctx, "/api/Customers/Search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertCustomer creates a customer remotely
func (c *Client) InsertCustomer(ctx context.Context, cust sync.RemoteCustomer) (*sync.RemoteCustomer, error) {
	var out sync.RemoteCustomer
	if err := c.fetchOne(ctx, "/api/Customers/Insert", cust, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCustomer updates a customer remotely
func (c *Client) UpdateCustomer(ctx context.Context, cust sync.RemoteCustomer) (*sync.RemoteCustomer, error) {
	var out sync.RemoteCustomer
	if err := c.fetchOne(ctx, "/api/Customers/Update", cust, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// InsertOrder exports an order payload and returns the remote HTTP status
func (c *Client) InsertOrder(ctx context.Context, o sync.OrderInsert) (int, error) {
	return c.writeStatus(ctx, "/api/Orders/Insert", o)
}

// SearchOrders looks orders up remotely
func (c *Client) SearchOrders(ctx context.Context, q sync.OrderSearch) ([]sync.RemoteOrder, error) {
	var out []sync.RemoteOrder
	if err := c.fetchList(ctx, "/api/Orders/Search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WebsiteOrder fetches a previously exported order by external identifier
func (c *Client) WebsiteOrder(ctx context.Context, externalID string) (*sync.RemoteOrder, error) {
	var out sync.RemoteOrder
	if err := c.fetchOne(ctx, "/api/Orders/WebsiteOrder", externalIDRequest{ExternalIdentifier: externalID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------------------------------------------------------------------------
// Reference data
// ---------------------------------------------------------------------------

// FulfilmentMethods lists the delivery methods configured remotely
func (c *Client) FulfilmentMethods(ctx context.Context) ([]sync.FulfilmentMethod, error) {
	var out []sync.FulfilmentMethod
	if err := c.fetchList(ctx, "/api/FulfilmentMethods/All", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TaxCodes lists the remote tax codes
func (c *Client) TaxCodes(ctx context.Context) ([]sync.TaxCode, error) {
	var out []sync.TaxCode
	if err := c.fetchList(ctx, "/api/TaxCodes/All", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Shops lists the remote shops/tills
func (c *Client) Shops(ctx context.Context) ([]sync.Shop, error) {
	var out []sync.Shop
	if err := c.fetchList(ctx, "/api/Shops/All", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
