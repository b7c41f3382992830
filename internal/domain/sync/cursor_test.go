package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatchRequest(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		req, err := NewBatchRequest(0, 0, MaxCategoryRecords)
		require.NoError(t, err)
		assert.Equal(t, 1, req.Start)
		assert.Equal(t, DefaultRecordCount, req.Count)
	})

	t.Run("clamps to endpoint maximum", func(t *testing.T) {
		req, err := NewBatchRequest(1, 5000, MaxProductRecords)
		require.NoError(t, err)
		assert.Equal(t, MaxProductRecords, req.Count)
	})

	t.Run("rejects negative values", func(t *testing.T) {
		_, err := NewBatchRequest(-1, 10, 100)
		assert.ErrorIs(t, err, ErrValidation)
		_, err = NewBatchRequest(1, -10, 100)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestBatchRequestAdvance(t *testing.T) {
	req, err := NewBatchRequest(1, 25, MaxOrderRecords)
	require.NoError(t, err)

	req = req.Advance()
	assert.Equal(t, 26, req.Start)
	req = req.Advance()
	assert.Equal(t, 51, req.Start)
	assert.Equal(t, 25, req.Count)
}

func TestWatermark(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("relative units", func(t *testing.T) {
		got, err := Watermark(UnitHours, 3, now)
		require.NoError(t, err)
		assert.Equal(t, now.Add(-3*time.Hour), got)

		got, err = Watermark(UnitDays, 2, now)
		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, -2), got)

		got, err = Watermark(UnitWeeks, 1, now)
		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, -7), got)
	})

	t.Run("absolute timestamp", func(t *testing.T) {
		got, err := Watermark(UnitTimestamp, now.Unix(), time.Now())
		require.NoError(t, err)
		assert.True(t, got.Equal(now))
	})

	t.Run("rejects unknown unit", func(t *testing.T) {
		_, err := Watermark("fortnights", 1, now)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := Watermark(UnitHours, -1, now)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestParseWatermarkAmount(t *testing.T) {
	n, err := ParseWatermarkAmount("36")
	require.NoError(t, err)
	assert.Equal(t, int64(36), n)

	_, err = ParseWatermarkAmount("abc")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ParseWatermarkAmount("-2")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResultFinalize(t *testing.T) {
	now := time.Now()

	t.Run("all applied", func(t *testing.T) {
		r := Result{TotalCount: 3, ImportedCount: 2, SkippedCount: 1}
		r.Finalize(now)
		assert.Equal(t, StatusSuccess, r.Status)
	})

	t.Run("mixed outcome", func(t *testing.T) {
		r := Result{TotalCount: 3, ImportedCount: 2}
		r.Fail("9|PRODUCTS", "missing title")
		r.Finalize(now)
		assert.Equal(t, StatusPartial, r.Status)
		require.Len(t, r.Failures, 1)
		assert.Equal(t, "9|PRODUCTS", r.Failures[0].ItemID)
	})

	t.Run("nothing applied", func(t *testing.T) {
		r := Result{TotalCount: 1}
		r.Fail("9|PRODUCTS", "missing title")
		r.Finalize(now)
		assert.Equal(t, StatusFailed, r.Status)
	})
}
