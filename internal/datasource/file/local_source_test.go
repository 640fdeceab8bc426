package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestDirList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "user_referrals.csv", "a\n1\n")
	writeFile(t, dir, "lead_log.CSV", "a\n1\n")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	objs, err := NewDir(dir).List(context.Background())
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "lead_log", objs[0].Name)
	assert.Equal(t, "user_referrals", objs[1].Name)
}

// TestDirList_Errors covers the missing path, not-a-directory, and
// pre-canceled context cases.
func TestDirList_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "x.csv", "a\n")

	_, err := NewDir(filepath.Join(dir, "missing")).List(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewDir(filepath.Join(dir, "x.csv")).List(context.Background())
	assert.ErrorIs(t, err, ErrNotDir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewDir(dir).List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirList_NoCSV(t *testing.T) {
	t.Parallel()

	objs, err := NewDir(t.TempDir()).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestDirOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "hello\nworld")
	d := NewDir(dir)

	rc, err := d.Open(context.Background(), filepath.Join(dir, "data.csv"))
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", string(b))

	_, err = d.Open(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "open ")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Open(ctx, filepath.Join(dir, "data.csv"))
	assert.ErrorIs(t, err, context.Canceled)
}
