package sync

import (
	"fmt"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// EskimoIdent
// ---------------------------------------------------------------------------

// IdentDelimiter separates the segments of a composite Eskimo identifier.
const IdentDelimiter = "|"

// ProductCategoryMarker is the category-type segment that marks a category as
// belonging to the product namespace. Categories outside this namespace are
// never imported into the cart.
const ProductCategoryMarker = "PRODUCTS"

// identPattern matches the characters the remote system uses in identifier
// segments. Trigger routes validate against this before the engine runs.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9|_\- ]+$`)

// Ident is a composite string identifier minted by the remote EPOS system.
// Products and SKUs use `{numericId}|{styleRef}|{tradeId}` (a trailing empty
// segment is allowed); categories use `{numericId}|{catType}`. It is the join
// key for reconciliation and is always compared exact-match, never by prefix.
type Ident string

// NewProductIdent builds a product/SKU identifier from its segments.
func NewProductIdent(numericID, styleRef, tradeID string) Ident {
	return Ident(numericID + IdentDelimiter + styleRef + IdentDelimiter + tradeID)
}

// NewCategoryIdent builds a category identifier from its segments.
func NewCategoryIdent(numericID, catType string) Ident {
	return Ident(numericID + IdentDelimiter + catType)
}

// ParseIdent validates the raw identifier string and returns it as an Ident.
func ParseIdent(raw string) (Ident, error) {
	if raw == "" || !identPattern.MatchString(raw) {
		return "", fmt.Errorf("%w: malformed identifier %q", ErrValidation, raw)
	}
	return Ident(raw), nil
}

// String returns the string representation of the identifier
func (i Ident) String() string {
	return string(i)
}

// IsZero returns true if the identifier is empty
func (i Ident) IsZero() bool {
	return i == ""
}

// Segments returns the delimiter-separated segments of the identifier
func (i Ident) Segments() []string {
	return strings.Split(string(i), IdentDelimiter)
}

// NumericID returns the leading numeric segment
func (i Ident) NumericID() string {
	return i.Segments()[0]
}

// CatType returns the category-type segment of a category identifier, or the
// empty string for a single-segment identifier.
func (i Ident) CatType() string {
	segs := i.Segments()
	if len(segs) < 2 {
		return ""
	}
	return segs[1]
}

// InProductNamespace returns true if a category identifier belongs to the
// product-category namespace and is therefore eligible for cart import.
func (i Ident) InProductNamespace() bool {
	return strings.EqualFold(i.CatType(), ProductCategoryMarker)
}

// ---------------------------------------------------------------------------
// WebID
// ---------------------------------------------------------------------------

// WebIDReconciled reports whether a Web_ID value marks the remote entity as
// already reconciled. The remote system stores "0" as well as "" for
// never-imported entities; both mean "not reconciled".
func WebIDReconciled(webID string) bool {
	return webID != "" && webID != "0"
}

// IdentifierMapping is an (EskimoIdent, WebID) pair queued for write-back to
// the remote system. It lives in memory only: created during an import or
// export pass, flushed in bounded batches, then discarded.
type IdentifierMapping struct {
	EskimoID Ident  `json:"eskimo_identifier"`
	WebID    string `json:"web_id"`
}
