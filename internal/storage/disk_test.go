package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiskStore_SaveAndRemove(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root)
	ctx := context.Background()

	data := []byte("fake image bytes")
	relPath, err := store.Save(ctx, "attendance-photos", "Selfie.PNG", data)
	assert.NoError(t, err)

	assert.True(t, strings.HasPrefix(relPath, "attendance-photos/"))
	assert.True(t, strings.HasSuffix(relPath, ".png"), "extension is kept and lowercased, got %s", relPath)
	assert.NotContains(t, relPath, "Selfie", "original filename must not survive")

	onDisk, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	assert.NoError(t, err)
	assert.Equal(t, data, onDisk)

	assert.NoError(t, store.Remove(ctx, relPath))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(relPath)))
	assert.True(t, os.IsNotExist(err))

	// removing again is a no-op, not an error
	assert.NoError(t, store.Remove(ctx, relPath))
}

func TestDiskStore_SaveGeneratesUniqueNames(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	first, err := store.Save(ctx, "attendance-photos", "same.jpg", []byte("a"))
	assert.NoError(t, err)
	second, err := store.Save(ctx, "attendance-photos", "same.jpg", []byte("b"))
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDiskStore_RemoveStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root)
	ctx := context.Background()

	outside := filepath.Join(filepath.Dir(root), "outside.txt")
	assert.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

	assert.NoError(t, store.Remove(ctx, "../outside.txt"))

	_, err := os.Stat(outside)
	assert.NoError(t, err, "traversal must not escape the storage root")
}

func TestDiskStore_FilenameWithoutExtension(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	relPath, err := store.Save(context.Background(), "attendance-photos", "noext", []byte("x"))
	assert.NoError(t, err)
	assert.NotContains(t, filepath.Base(relPath), ".")
}
