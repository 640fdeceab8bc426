// Package source holds the named input tables of one run. It loads them from a
// datasource.Catalog, keeps them addressable by name, and binds them into the
// typed domain.Inputs the engine consumes.
package source

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mfonekpo/springer-capital/internal/datasource"
	pcsv "github.com/mfonekpo/springer-capital/internal/parser/csv"
	"github.com/mfonekpo/springer-capital/pkg/records"
)

// Registry is a set of named tables. Asking for a table that was never added
// returns an empty table rather than an error.
type Registry struct {
	tables map[string]records.Table
}

// NewRegistry returns a registry holding tables. Later duplicates of a name
// replace earlier ones.
func NewRegistry(tables ...records.Table) *Registry {
	r := &Registry{tables: make(map[string]records.Table, len(tables))}
	for _, t := range tables {
		r.Add(t)
	}
	return r
}

// Add registers t under t.Name.
func (r *Registry) Add(t records.Table) {
	r.tables[t.Name] = t
}

// Get returns the table called name, or an empty table with that name.
func (r *Registry) Get(name string) records.Table {
	if t, ok := r.tables[name]; ok {
		return t
	}
	return records.Table{Name: name}
}

// Names returns the registered table names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.tables))
	for n := range r.tables {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Tables returns every table in name order.
func (r *Registry) Tables() []records.Table {
	names := r.Names()
	out := make([]records.Table, len(names))
	for i, n := range names {
		out[i] = r.tables[n]
	}
	return out
}

// LoadOptions tunes Load.
type LoadOptions struct {
	Parser pcsv.Options
	// Workers bounds concurrent file reads; zero means 4.
	Workers int
}

// LoadStats reports what Load read.
type LoadStats struct {
	Files       int
	Failed      []string
	ParseErrors int
}

// Load reads every CSV object of cat into a registry. Objects are read
// concurrently; an object that cannot be opened or parsed is logged and
// skipped so the remaining tables still load. Listing failures are returned.
func Load(ctx context.Context, cat datasource.Catalog, opt LoadOptions, log *zap.Logger) (*Registry, LoadStats, error) {
	if log == nil {
		log = zap.NewNop()
	}
	objs, err := cat.List(ctx)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("source: list: %w", err)
	}
	if len(objs) == 0 {
		log.Warn("source: no CSV files found")
		return NewRegistry(), LoadStats{}, nil
	}

	workers := opt.Workers
	if workers <= 0 {
		workers = 4
	}

	type result struct {
		table   records.Table
		skipped int
		err     error
	}
	results := make([]result, len(objs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, obj := range objs {
		g.Go(func() error {
			tbl, skipped, err := readOne(gctx, cat, obj, opt.Parser, log)
			results[i] = result{table: tbl, skipped: skipped, err: err}
			// Per-file failures are soft; only cancellation stops the group.
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, LoadStats{}, err
	}

	reg := NewRegistry()
	st := LoadStats{}
	for i, res := range results {
		if res.err != nil {
			log.Error("source: failed to load file", zap.String("key", objs[i].Key), zap.Error(res.err))
			st.Failed = append(st.Failed, objs[i].Key)
			continue
		}
		st.Files++
		st.ParseErrors += res.skipped
		reg.Add(res.table)
		log.Info("source: loaded file",
			zap.String("table", res.table.Name),
			zap.Int("rows", res.table.Len()),
			zap.Int("columns", len(res.table.Columns)),
			zap.Int("skipped", res.skipped),
		)
	}
	return reg, st, nil
}

func readOne(ctx context.Context, cat datasource.Catalog, obj datasource.Object, opt pcsv.Options, log *zap.Logger) (records.Table, int, error) {
	rc, err := cat.Open(ctx, obj.Key)
	if err != nil {
		return records.Table{}, 0, err
	}
	defer rc.Close()

	return pcsv.NewParser(opt, log).Parse(obj.Name, rc)
}
