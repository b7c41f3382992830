package sync

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// reconciler flushes queued identifier mappings back to the remote system in
// bounded batches, pausing between batches so the remote is never hammered.
// A failed batch is recorded and skipped; later batches still run, and a
// re-run of the import closes any gap because unreconciled entities are
// pulled again.
type reconciler struct {
	batchSize int
	delay     time.Duration
	sleep     func(context.Context, time.Duration) error
	logger    *zap.Logger
}

func newReconciler(batchSize int, delay time.Duration, logger *zap.Logger) *reconciler {
	if batchSize <= 0 {
		batchSize = syncdomain.DefaultRecordCount
	}
	return &reconciler{
		batchSize: batchSize,
		delay:     delay,
		sleep:     sleepCtx,
		logger:    logger,
	}
}

// sleepCtx pauses for d or until the context is cancelled
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// mappingPageSize is the repository page size used when rebuilding the full
// mapping set for a push or reset pass.
const mappingPageSize = 500

// resetWebID is the Web_ID value the remote treats as "not reconciled"
const resetWebID = "0"

// mappingWebID returns the Web_ID to write back: the local ID for a push,
// the reset marker for a reset.
func mappingWebID(localID string, reset bool) string {
	if reset {
		return resetWebID
	}
	return localID
}

// collectMappings pages through a local store rebuilding the identifier
// mappings to write back.
func collectMappings(ctx context.Context, page func(ctx context.Context, offset, limit int) ([]syncdomain.IdentifierMapping, int64, error)) ([]syncdomain.IdentifierMapping, error) {
	var out []syncdomain.IdentifierMapping
	offset := 0
	for {
		batch, total, err := page(ctx, offset, mappingPageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		offset += mappingPageSize
		if len(batch) == 0 || int64(offset) >= total {
			break
		}
	}
	return out, nil
}

// flush writes all queued mappings through write, recording per-mapping
// failures on result.
func (r *reconciler) flush(ctx context.Context, mappings []syncdomain.IdentifierMapping, write func(context.Context, []syncdomain.IdentifierMapping) (int, error), result *syncdomain.Result) error {
	for start := 0; start < len(mappings); start += r.batchSize {
		if start > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				return err
			}
		}

		end := start + r.batchSize
		if end > len(mappings) {
			end = len(mappings)
		}
		batch := mappings[start:end]

		status, err := write(ctx, batch)
		if err == nil && status == http.StatusOK {
			r.logger.Debug("identifier write-back applied", zap.Int("batch_size", len(batch)))
			continue
		}

		reason := "write-back rejected"
		if err != nil {
			reason = err.Error()
		}
		r.logger.Warn("identifier write-back failed",
			zap.Int("batch_size", len(batch)),
			zap.Int("status", status),
			zap.Error(err),
		)
		for _, m := range batch {
			result.Fail(m.EskimoID.String(), reason)
		}
	}
	return nil
}
