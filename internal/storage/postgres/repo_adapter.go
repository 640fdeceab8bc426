package postgres

import (
	"context"

	"github.com/mfonekpo/springer-capital/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo adds Close to *Repository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table, Columns: cfg.Columns})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("postgres", BuildCreateTableSQL)
}
