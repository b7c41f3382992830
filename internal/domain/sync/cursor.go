package sync

import (
	"fmt"
	"strconv"
	"time"
)

// ---------------------------------------------------------------------------
// BatchRequest
// ---------------------------------------------------------------------------

// Per-endpoint record-count ceilings. The remote API clamps these server-side;
// clamping client-side keeps the cursor arithmetic honest.
const (
	MaxCategoryRecords = 250
	MaxProductRecords  = 2500
	MaxSkuRecords      = 1000
	MaxCustomerRecords = 100
	MaxOrderRecords    = 25
)

// DefaultRecordCount is used when the caller does not specify a page size.
const DefaultRecordCount = 25

// BatchRequest is the position/count cursor (optionally plus a time watermark)
// used to pull large remote datasets page by page. Construct it with
// NewBatchRequest so defaults and clamps are applied exactly once.
type BatchRequest struct {
	// Start is the 1-based record position of the page
	Start int
	// Count is the page size, clamped to the endpoint maximum
	Count int
	// Since restricts the pull to entities modified/created after this point.
	// Computed once at the start of a pull, never per page.
	Since *time.Time
}

// NewBatchRequest builds a validated cursor. Start defaults to 1, Count to
// DefaultRecordCount; Count is clamped to maxCount.
func NewBatchRequest(start, count, maxCount int) (BatchRequest, error) {
	if start < 0 {
		return BatchRequest{}, fmt.Errorf("%w: start position %d", ErrValidation, start)
	}
	if count < 0 {
		return BatchRequest{}, fmt.Errorf("%w: record count %d", ErrValidation, count)
	}
	if start == 0 {
		start = 1
	}
	if count == 0 {
		count = DefaultRecordCount
	}
	if maxCount > 0 && count > maxCount {
		count = maxCount
	}
	return BatchRequest{Start: start, Count: count}, nil
}

// WithSince returns a copy of the request carrying the watermark
func (r BatchRequest) WithSince(t time.Time) BatchRequest {
	r.Since = &t
	return r
}

// Advance moves the cursor to the next page. The step is the declared Count,
// not the actual returned count, so pagination is strictly sequential.
func (r BatchRequest) Advance() BatchRequest {
	r.Start += r.Count
	return r
}

// ---------------------------------------------------------------------------
// Modified-since watermarks
// ---------------------------------------------------------------------------

// Watermark units accepted by the modified-since trigger routes.
const (
	UnitSeconds   = "seconds"
	UnitMinutes   = "minutes"
	UnitHours     = "hours"
	UnitDays      = "days"
	UnitWeeks     = "weeks"
	UnitMonths    = "months"
	UnitTimestamp = "timestamp"
)

// Watermark computes the TimeStampFrom for a modified-since pull from a
// relative offset (amount in the given unit before now) or, for
// UnitTimestamp, from an absolute unix timestamp carried in amount.
func Watermark(unit string, amount int64, now time.Time) (time.Time, error) {
	if amount < 0 {
		return time.Time{}, fmt.Errorf("%w: watermark amount %d", ErrValidation, amount)
	}
	switch unit {
	case UnitSeconds:
		return now.Add(-time.Duration(amount) * time.Second), nil
	case UnitMinutes:
		return now.Add(-time.Duration(amount) * time.Minute), nil
	case UnitHours:
		return now.Add(-time.Duration(amount) * time.Hour), nil
	case UnitDays:
		return now.AddDate(0, 0, -int(amount)), nil
	case UnitWeeks:
		return now.AddDate(0, 0, -7*int(amount)), nil
	case UnitMonths:
		return now.AddDate(0, -int(amount), 0), nil
	case UnitTimestamp:
		return time.Unix(amount, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: watermark unit %q", ErrValidation, unit)
	}
}

// ValidUnit reports whether the route token names a supported watermark unit
func ValidUnit(unit string) bool {
	switch unit {
	case UnitSeconds, UnitMinutes, UnitHours, UnitDays, UnitWeeks, UnitMonths, UnitTimestamp:
		return true
	default:
		return false
	}
}

// ParseWatermarkAmount parses the amount path token for a watermark route
func ParseWatermarkAmount(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: watermark amount %q", ErrValidation, raw)
	}
	return n, nil
}
