// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mfonekpo/springer-capital/internal/datasource"
)

// ErrNotDir is returned when the configured path exists but is not a directory.
var ErrNotDir = errors.New("not a directory")

// Dir is a datasource.Catalog over the *.csv files of one local directory.
type Dir struct{ path string }

// NewDir returns a catalog bound to the provided directory.
func NewDir(path string) *Dir { return &Dir{path: path} }

var _ datasource.Catalog = (*Dir)(nil)

// List returns the directory's CSV files sorted by name. A missing path or a
// path that is not a directory is an error; a directory without CSV files
// yields an empty list.
func (d *Dir) List(ctx context.Context) ([]datasource.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fi, err := os.Stat(d.path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", d.path, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s: %w", d.path, ErrNotDir)
	}
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", d.path, err)
	}

	var out []datasource.Object
	for _, e := range entries {
		if e.IsDir() || !datasource.IsCSV(e.Name()) {
			continue
		}
		out = append(out, datasource.Object{
			Key:  filepath.Join(d.path, e.Name()),
			Name: datasource.StemOf(e.Name()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Open opens the file at key for reading.
//
// Behavior:
//   - If the context is already canceled or its deadline exceeded at the time
//     of the call, Open returns the context error immediately without touching
//     the filesystem.
//   - Filesystem errors are wrapped with the path while still permitting
//     errors.Is checks (e.g., errors.Is(err, os.ErrNotExist)).
func (d *Dir) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(key)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	adviseSequential(f)
	return f, nil
}
