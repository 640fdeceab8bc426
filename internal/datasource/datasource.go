// Package datasource defines where raw CSV inputs come from. A Catalog lists
// the objects of one input set (a directory, a bucket prefix) and opens them
// by key.
package datasource

import (
	"context"
	"io"
	"path"
	"strings"
)

// Object is one listed input.
type Object struct {
	// Key is the backend-specific locator passed back to Open.
	Key string
	// Name is the table name derived from the key: the base name without its
	// extension ("data/user_logs.csv" -> "user_logs").
	Name string
}

// Catalog lists and opens the inputs of one run.
type Catalog interface {
	// List returns the CSV objects available, sorted by key.
	List(ctx context.Context) ([]Object, error)
	// Open opens one object for reading.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// StemOf returns the file name of key without directory or extension.
func StemOf(key string) string {
	base := path.Base(strings.ReplaceAll(key, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// IsCSV reports whether key names a .csv object (case-insensitive).
func IsCSV(key string) bool {
	return strings.EqualFold(path.Ext(key), ".csv")
}
