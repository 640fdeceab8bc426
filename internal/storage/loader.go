package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CopyFn is a backend's bulk insert. It receives rows aligned with columns
// and returns how many were written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains in, groups rows into batches of batchSize and hands each
// non-empty batch to copyFn. It returns the total reported by copyFn and the
// first error; on cancellation it returns ctx.Err().
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
	log *zap.Logger,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("storage: batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("storage: copyFn must not be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var (
		total   int64
		batches int
		batch   = make([][]any, 0, batchSize)
		start   = time.Now()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			log.Error("storage: batch copy failed", zap.Int64("copied", n), zap.Int64("total", total), zap.Error(err))
			return err
		}
		batches++
		log.Debug("storage: batch copied",
			zap.Int("batch", batches),
			zap.Int64("rows", n),
			zap.Int64("total", total),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				log.Info("storage: load complete", zap.Int("batches", batches), zap.Int64("rows", total))
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
