package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weighin/weighin-go/session"
)

func tempSessionFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

func TestFileStorageRoundTrip(t *testing.T) {
	storage := session.NewFileStorage(tempSessionFile(t))
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, testSession()))

	loaded, present, err := storage.Load(ctx)
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, testSession(), loaded)
}

func TestFileStorageMissingFile(t *testing.T) {
	storage := session.NewFileStorage(tempSessionFile(t))

	_, present, err := storage.Load(context.Background())
	require.NoError(t, err)
	require.False(t, present)
}

func TestFileStorageCorruptFile(t *testing.T) {
	path := tempSessionFile(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := session.NewFileStorage(path).Load(context.Background())
	require.Error(t, err)
}

func TestFileStorageDelete(t *testing.T) {
	path := tempSessionFile(t)
	storage := session.NewFileStorage(path)
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, testSession()))
	require.NoError(t, storage.Delete(ctx))

	_, present, err := storage.Load(ctx)
	require.NoError(t, err)
	require.False(t, present)

	// Deleting again is a no-op.
	require.NoError(t, storage.Delete(ctx))
}

func TestFileStorageCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	storage := session.NewFileStorage(path)

	require.NoError(t, storage.Save(context.Background(), testSession()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
