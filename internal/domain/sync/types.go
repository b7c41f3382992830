package sync

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Remote payloads
//
// Typed DTOs for the remote EPOS wire format, decoded once at the client
// boundary. Field tags follow the remote system's underscored PascalCase.
// ---------------------------------------------------------------------------

// RemoteCategory is a category record as returned by the remote system
type RemoteCategory struct {
	ID               Ident  `json:"Eskimo_Category_ID"`
	ParentID         Ident  `json:"ParentID"`
	WebID            string `json:"Web_ID"`
	ShortDescription string `json:"ShortDescription"`
	LongDescription  string `json:"LongDescription"`
}

// Reconciled reports whether the remote side already holds a cart ID
func (c *RemoteCategory) Reconciled() bool {
	return WebIDReconciled(c.WebID)
}

// IsChild reports whether the category references a parent
func (c *RemoteCategory) IsChild() bool {
	return !c.ParentID.IsZero()
}

// RemoteProduct is a product record as returned by the remote system
type RemoteProduct struct {
	ID               Ident           `json:"Eskimo_Identifier"`
	WebID            string          `json:"Web_ID"`
	Title            string          `json:"Title"`
	ShortDescription string          `json:"ShortDescription"`
	LongDescription  string          `json:"LongDescription"`
	CategoryID       Ident           `json:"Eskimo_Category_ID"`
	WebCategoryID    string          `json:"Web_Category_ID"`
	FromPrice        decimal.Decimal `json:"From_Price"`
	LastModified     *time.Time      `json:"Last_Modified,omitempty"`
	SKUs             []RemoteSku     `json:"SKUs,omitempty"`
}

// Reconciled reports whether the remote side already holds a cart ID
func (p *RemoteProduct) Reconciled() bool {
	return WebIDReconciled(p.WebID)
}

// CartCategoryConfirmed reports whether the product's category has a confirmed
// cart mapping. Products in unmapped categories cannot be imported.
func (p *RemoteProduct) CartCategoryConfirmed() bool {
	return WebIDReconciled(p.WebCategoryID)
}

// RemoteSku is a SKU record as returned by the remote system
type RemoteSku struct {
	Code         string          `json:"sku_code"`
	ProductID    Ident           `json:"eskimo_product_identifier"`
	Colour       string          `json:"ColourName"`
	Size         string          `json:"Size"`
	UnitPrice    decimal.Decimal `json:"UnitPrice"`
	SellPrice    decimal.Decimal `json:"SellPrice"`
	StockAmount  int             `json:"StockAmount"`
	TaxCodeID    string          `json:"TaxCodeID"`
	LastModified *time.Time      `json:"Last_Modified,omitempty"`
}

// ProductAggregate is a remote product plus its SKUs. The SKU count decides
// the local product type: exactly one SKU yields a simple product, two or
// more yield a variable product with one variant per SKU.
type ProductAggregate struct {
	Product RemoteProduct
	SKUs    []RemoteSku
}

// IsVariable reports whether the aggregate maps to a variable product
func (a *ProductAggregate) IsVariable() bool {
	return len(a.SKUs) >= 2
}

// TotalStock returns the summed stock across all SKUs
func (a *ProductAggregate) TotalStock() int {
	total := 0
	for _, s := range a.SKUs {
		total += s.StockAmount
	}
	return total
}

// ImportPath names the field subset a targeted product re-import refreshes.
// PathAll rebuilds the whole product; the narrow paths let a high-frequency
// stock or price pass leave unrelated fields alone. PathAdjust is the
// stock-adjustment pass, which refreshes quantities only.
type ImportPath string

const (
	PathAll      ImportPath = "all"
	PathStock    ImportPath = "stock"
	PathPrice    ImportPath = "price"
	PathTax      ImportPath = "tax"
	PathCategory ImportPath = "category"
	PathAdjust   ImportPath = "adjust"
)

// IsValid checks if the import path is valid
func (p ImportPath) IsValid() bool {
	switch p {
	case PathAll, PathStock, PathPrice, PathTax, PathCategory, PathAdjust:
		return true
	default:
		return false
	}
}

// TouchesStock reports whether the path refreshes stock quantities
func (p ImportPath) TouchesStock() bool {
	return p == PathAll || p == PathStock || p == PathAdjust
}

// TouchesPrice reports whether the path refreshes pricing
func (p ImportPath) TouchesPrice() bool {
	return p == PathAll || p == PathPrice
}

// TouchesTax reports whether the path refreshes tax classes
func (p ImportPath) TouchesTax() bool {
	return p == PathAll || p == PathTax
}

// RemoteCustomer is a customer record as returned by the remote system
type RemoteCustomer struct {
	ID        string `json:"ID"`
	WebID     string `json:"Web_ID"`
	Email     string `json:"EmailAddress"`
	Title     string `json:"TitleID"`
	FirstName string `json:"Forename"`
	Surname   string `json:"Surname"`
	Company   string `json:"CompanyName"`
	Phone     string `json:"Telephone"`
	Mobile    string `json:"Mobile"`
	Address   RemoteAddress
}

// RemoteAddress is an address block on a remote customer or order
type RemoteAddress struct {
	Line1    string `json:"AddressLine1"`
	Line2    string `json:"AddressLine2"`
	Line3    string `json:"AddressLine3"`
	City     string `json:"City"`
	PostCode string `json:"PostCode"`
	Country  string `json:"CountryCode"`
}

// CustomerSearch is the body for POST /Customers/Search
type CustomerSearch struct {
	Email string `json:"EmailAddress,omitempty"`
}

// ---------------------------------------------------------------------------
// Order export payloads
// ---------------------------------------------------------------------------

// OrderType distinguishes sale inserts from return inserts
type OrderType int

const (
	// OrderTypeSale is a standard web sale export
	OrderTypeSale OrderType = 2
	// OrderTypeReturn is a refund/return export
	OrderTypeReturn OrderType = 5
)

// OrderInsert is the payload for POST /Orders/Insert. It is derived fresh
// from a local order at export time, never stored.
type OrderInsert struct {
	OrderType          OrderType        `json:"OrderType"`
	ExternalIdentifier string           `json:"ExternalIdentifier"`
	CustomerID         string           `json:"eskimo_customer_id"`
	OrderDate          time.Time        `json:"OrderDate"`
	InvoiceAmount      decimal.Decimal  `json:"InvoiceAmount"`
	AmountPaid         decimal.Decimal  `json:"AmountPaid"`
	InvoiceAddress     *RemoteAddressed `json:"InvoiceAddress"`
	DeliveryAddress    *RemoteAddressed `json:"DeliveryAddress,omitempty"`
	Items              []OrderItem      `json:"OrderedItems"`
}

// RemoteAddressed is a named address block on an order payload
type RemoteAddressed struct {
	Name string `json:"Name"`
	RemoteAddress
}

// Equal reports whether two address blocks denote the same destination.
// Equality is judged on name and first address line only, matching the
// remote system's address-deduplication rule.
func (a *RemoteAddressed) Equal(b *RemoteAddressed) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name && a.Line1 == b.Line1
}

// OrderItem is a line item on an order insert payload
type OrderItem struct {
	SkuCode    string          `json:"sku_code"`
	Qty        int             `json:"qty_purchased"`
	UnitPrice  decimal.Decimal `json:"item_unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
	TaxCodeID  string          `json:"item_tax_code,omitempty"`
	WebOrderID string          `json:"web_order_id,omitempty"`
}

// OrderSearch is the body for POST /Orders/Search
type OrderSearch struct {
	ExternalIdentifier string     `json:"ExternalIdentifier,omitempty"`
	From               *time.Time `json:"FromDate,omitempty"`
	To                 *time.Time `json:"ToDate,omitempty"`
}

// RemoteOrder is an order record as returned by the remote system
type RemoteOrder struct {
	ID                 string          `json:"ID"`
	ExternalIdentifier string          `json:"ExternalIdentifier"`
	CustomerID         string          `json:"eskimo_customer_id"`
	OrderDate          time.Time       `json:"OrderDate"`
	InvoiceAmount      decimal.Decimal `json:"InvoiceAmount"`
	Items              []OrderItem     `json:"OrderedItems"`
}

// FulfilmentMethod is a delivery method exposed by the remote system
type FulfilmentMethod struct {
	ID          int    `json:"ID"`
	Description string `json:"Description"`
}

// TaxCode is a remote tax code record
type TaxCode struct {
	ID          string          `json:"ID"`
	Description string          `json:"Description"`
	Rate        decimal.Decimal `json:"Rate"`
}

// Shop is a remote shop/till record
type Shop struct {
	ID   string `json:"ID"`
	Name string `json:"Name"`
}

// ---------------------------------------------------------------------------
// Sync results
// ---------------------------------------------------------------------------

// Status represents the outcome of a sync pass
type Status string

const (
	// StatusSuccess indicates every item was applied or legitimately skipped
	StatusSuccess Status = "SUCCESS"
	// StatusPartial indicates some items were applied and some failed
	StatusPartial Status = "PARTIAL"
	// StatusFailed indicates no item could be applied
	StatusFailed Status = "FAILED"
)

// Failure records a single item that could not be processed
type Failure struct {
	// ItemID is the identifier of the failed item
	ItemID string `json:"item_id"`
	// Reason is the logged reason the item was skipped
	Reason string `json:"reason"`
}

// Result summarizes a sync pass. Skipped counts already-reconciled items;
// they are not failures.
type Result struct {
	Status        Status    `json:"status"`
	TotalCount    int       `json:"total_count"`
	ImportedCount int       `json:"imported_count"`
	SkippedCount  int       `json:"skipped_count"`
	FailedCount   int       `json:"failed_count"`
	Failures      []Failure `json:"failures,omitempty"`
	SyncedAt      time.Time `json:"synced_at"`
}

// Finalize sets the overall status from the counters
func (r *Result) Finalize(now time.Time) {
	r.SyncedAt = now
	switch {
	case r.FailedCount == 0:
		r.Status = StatusSuccess
	case r.ImportedCount > 0 || r.SkippedCount > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusFailed
	}
}

// Fail records a per-item failure
func (r *Result) Fail(itemID, reason string) {
	r.FailedCount++
	r.Failures = append(r.Failures, Failure{ItemID: itemID, Reason: reason})
}
