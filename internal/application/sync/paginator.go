package sync

import (
	"context"

	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// collectPages walks a remote list endpoint page by page. The cursor always
// advances by the declared Count, and the walk stops only when the remote
// returns an empty page: a short page still triggers one more probe, so the
// tail of a window is never silently dropped.
func collectPages[T any](ctx context.Context, first syncdomain.BatchRequest, fetch func(context.Context, syncdomain.BatchRequest) ([]T, error), visit func([]T) error) error {
	req := first
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := fetch(ctx, req)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		if err := visit(page); err != nil {
			return err
		}
		req = req.Advance()
	}
}
