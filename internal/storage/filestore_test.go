package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return store
}

func TestNewFileStore_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	_, err := NewFileStore(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStoredName(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, "1700000000123-kan_tahlili_ocak.pdf", store.StoredName("kan  tahlili\tocak.pdf"))
	assert.Equal(t, "1700000000123-x.png", store.StoredName("../../etc/x.png"))
}

func TestSaveStatRemove(t *testing.T) {
	store := newTestStore(t)

	f, err := store.Save("report.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), f.Size)
	assert.Equal(t, filepath.Join(store.Root(), f.Name), f.Path)

	_, err = store.Stat(f.Name)
	require.NoError(t, err)

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, f.Name, files[0].Name)

	require.NoError(t, store.Remove(f.Name))
	assert.ErrorIs(t, store.Remove(f.Name), ErrNotExist)

	_, err = store.Stat(f.Name)
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestPathRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"../secret", "a/b.pdf", "..", ""} {
		_, err := store.Path(name)
		assert.Error(t, err, name)
	}
}

func TestSaveSameMillisecond(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Save("scan.png", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := store.Save("scan.png", strings.NewReader("b"))
	require.NoError(t, err)

	assert.Equal(t, "1700000000123-scan.png", a.Name)
	assert.Equal(t, "1700000000124-scan.png", b.Name)
}
