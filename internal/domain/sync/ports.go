package sync

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// Gateway is the outbound port to the remote EPOS system. List operations
// return an empty slice when the remote has nothing in the requested window;
// single-entity operations return an error wrapping ErrNoData instead.
// Status-only writes return the remote HTTP status code, 200 meaning applied.
type Gateway interface {
	// Categories pulls a page of product categories
	Categories(ctx context.Context, req BatchRequest) ([]RemoteCategory, error)
	// CategoryByID fetches a single category by its composite identifier
	CategoryByID(ctx context.Context, id Ident) (*RemoteCategory, error)
	// ChildCategories pulls the direct children of a category
	ChildCategories(ctx context.Context, parentID Ident) ([]RemoteCategory, error)
	// UpdateCategoryCartIDs writes a batch of category identifier mappings back
	// to the remote system
	UpdateCategoryCartIDs(ctx context.Context, mappings []IdentifierMapping) (int, error)

	// Products pulls a page of products, optionally filtered by the cursor's
	// modified-since watermark
	Products(ctx context.Context, req BatchRequest) ([]RemoteProduct, error)
	// ProductByID fetches a single product with its SKUs embedded
	ProductByID(ctx context.Context, id Ident) (*RemoteProduct, error)
	// UpdateProductCartIDs writes a batch of product identifier mappings back
	// to the remote system
	UpdateProductCartIDs(ctx context.Context, mappings []IdentifierMapping) (int, error)

	// Skus pulls a page of SKUs, optionally filtered by the cursor's watermark
	Skus(ctx context.Context, req BatchRequest) ([]RemoteSku, error)
	// SkuByCode fetches a single SKU by its plain SKU code
	SkuByCode(ctx context.Context, code string) (*RemoteSku, error)
	// SkusByProduct fetches the SKUs belonging to one product identifier
	SkusByProduct(ctx context.Context, productID Ident) ([]RemoteSku, error)

	// CustomerByID fetches a single customer by remote ID
	CustomerByID(ctx context.Context, id string) (*RemoteCustomer, error)
	// SearchCustomers looks customers up by the search criteria, usually email
	SearchCustomers(ctx context.Context, q CustomerSearch) ([]RemoteCustomer, error)
	// InsertCustomer creates a customer remotely and returns the created record
	InsertCustomer(ctx context.Context, c RemoteCustomer) (*RemoteCustomer, error)
	// UpdateCustomer updates a customer remotely and returns the updated record
	UpdateCustomer(ctx context.Context, c RemoteCustomer) (*RemoteCustomer, error)

	// InsertOrder exports an order payload to the remote system
	InsertOrder(ctx context.Context, o OrderInsert) (int, error)
	// SearchOrders looks orders up remotely, usually by external identifier
	SearchOrders(ctx context.Context, q OrderSearch) ([]RemoteOrder, error)
	// WebsiteOrder fetches a previously exported order by external identifier
	WebsiteOrder(ctx context.Context, externalID string) (*RemoteOrder, error)

	// FulfilmentMethods lists the delivery methods configured remotely
	FulfilmentMethods(ctx context.Context) ([]FulfilmentMethod, error)
	// TaxCodes lists the remote tax codes
	TaxCodes(ctx context.Context) ([]TaxCode, error)
	// Shops lists the remote shops/tills
	Shops(ctx context.Context) ([]Shop, error)
}

// TokenCache stores the remote bearer token between calls so each sync pass
// does not re-authenticate.
type TokenCache interface {
	// Get returns the cached token, or "" when absent or expired
	Get(ctx context.Context) (string, error)
	// Set stores the token with the given lifetime
	Set(ctx context.Context, token string, ttl time.Duration) error
	// Clear drops the cached token, forcing re-authentication
	Clear(ctx context.Context) error
}

// Lease guards sync runs so at most one is in flight at a time. Acquire
// returns false, not an error, when another run holds the lease.
type Lease interface {
	// Acquire attempts to take the lease for the named operation
	Acquire(ctx context.Context, operation string, ttl time.Duration) (bool, error)
	// Release frees the lease for the named operation
	Release(ctx context.Context, operation string) error
}
