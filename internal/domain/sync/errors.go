package sync

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error Taxonomy
// ---------------------------------------------------------------------------

var (
	// ErrAuth indicates the session provider could not obtain or validate a
	// bearer token. Fatal for the current call; recoverable on the next
	// invocation once settings are fixed.
	ErrAuth = errors.New("sync: authentication failed")
	// ErrConnect indicates a network or timeout failure against the remote system
	ErrConnect = errors.New("sync: could not connect to remote system")
	// ErrNoData indicates a successful transport with an empty or invalid body
	ErrNoData = errors.New("sync: could not retrieve data")
	// ErrValidation indicates a bad caller-supplied parameter, rejected before
	// any remote call is made
	ErrValidation = errors.New("sync: invalid parameter")
	// ErrReconciliation indicates a business-rule failure for a single item.
	// Always per-item; it never aborts the enclosing batch.
	ErrReconciliation = errors.New("sync: reconciliation failed")
)

// Reconciliation failures. All wrap ErrReconciliation so callers can match
// the family with errors.Is.
var (
	ErrAlreadyImported    = fmt.Errorf("%w: entity already imported", ErrReconciliation)
	ErrAlreadyExported    = fmt.Errorf("%w: order already carries a remote reference", ErrReconciliation)
	ErrMissingTitle       = fmt.Errorf("%w: product title is required", ErrReconciliation)
	ErrCategoryNotMapped  = fmt.Errorf("%w: category has no confirmed cart mapping", ErrReconciliation)
	ErrNoSkus             = fmt.Errorf("%w: product has no associated SKUs", ErrReconciliation)
	ErrDuplicateSku       = fmt.Errorf("%w: duplicate SKU code", ErrReconciliation)
	ErrCustomerNotMapped  = fmt.Errorf("%w: customer has no remote mapping", ErrReconciliation)
	ErrOrderNotExportable = fmt.Errorf("%w: order status is not exportable", ErrReconciliation)
	ErrNoReturns          = fmt.Errorf("%w: no returns to process", ErrReconciliation)
)
