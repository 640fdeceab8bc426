package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mfonekpo/springer-capital/internal/domain"
)

// DefaultBatchSize is used by WriteReport when batchSize is not positive.
const DefaultBatchSize = 500

// WriteReport streams every report row into repo in batches.
func WriteReport(ctx context.Context, repo Repository, rep domain.Report, batchSize int, log *zap.Logger) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any, batchSize)
	go func() {
		defer close(in)
		for _, r := range rep.Rows {
			select {
			case in <- r.Values():
			case <-ctx.Done():
				return
			}
		}
	}()

	n, err := LoadBatches(ctx, domain.ReportColumns, in, batchSize, repo.CopyFrom, log)
	if err != nil {
		return n, fmt.Errorf("storage: write report: %w", err)
	}
	return n, nil
}
