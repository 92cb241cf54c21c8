package finalize_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packetarc/finalize"
)

func TestLocalFS_List(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part-a"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part-b"), []byte("b"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	paths, err := finalize.LocalFS{}.List(context.Background(), dir)
	require.NoError(t, err)

	// Directories are skipped; returned paths are directly usable.
	require.ElementsMatch(t, []string{
		filepath.Join(dir, "part-a"),
		filepath.Join(dir, "part-b"),
	}, paths)
}

func TestLocalFS_ListMissingDir(t *testing.T) {
	_, err := finalize.LocalFS{}.List(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLocalFS_Delete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part-a")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	fsys := finalize.LocalFS{}
	require.NoError(t, fsys.Delete(context.Background(), path))
	require.NoFileExists(t, path)

	// Deleting an absent path is not an error.
	require.NoError(t, fsys.Delete(context.Background(), path))
}

func TestLocalFS_WriteVisibleOnlyAfterClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "final.pcap")

	fsys := finalize.LocalFS{}
	wc, err := fsys.OpenWrite(context.Background(), path)
	require.NoError(t, err)

	_, err = wc.Write([]byte("payload"))
	require.NoError(t, err)

	// Nothing at the final path until Close.
	require.NoFileExists(t, path)
	require.NoError(t, wc.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLocalFS_ReadBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part-a")

	fsys := finalize.LocalFS{}
	wc, err := fsys.OpenWrite(context.Background(), path)
	require.NoError(t, err)
	_, err = wc.Write([]byte("roundtrip"))
	require.NoError(t, err)
	require.NoError(t, wc.Close())

	rc, err := fsys.OpenRead(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, []byte("roundtrip"), data)
}

func TestLocalFS_ConcurrentWritersSamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "final.pcap")

	fsys := finalize.LocalFS{}

	// Two in-flight writers to the same path use distinct temp files;
	// the last Close wins without corrupting the other.
	w1, err := fsys.OpenWrite(context.Background(), path)
	require.NoError(t, err)
	w2, err := fsys.OpenWrite(context.Background(), path)
	require.NoError(t, err)

	_, err = w1.Write([]byte("first"))
	require.NoError(t, err)
	_, err = w2.Write([]byte("second"))
	require.NoError(t, err)

	require.NoError(t, w1.Close())
	require.NoError(t, w2.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), data)
}
