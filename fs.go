package finalize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FS is the minimal filesystem contract the finalizer needs from a
// local or remote store: non-recursive listing, idempotent delete, and
// streaming read/write.
//
// [LocalFS] implements FS on the local disk; the s3fs package
// implements it on an S3-compatible object store.
type FS interface {
	// List returns the paths of the entries directly under dir,
	// without recursing. The returned paths are usable with the other
	// methods as-is.
	List(ctx context.Context, dir string) ([]string, error)

	// Delete removes the object at path. Deleting a path that does not
	// exist is not an error.
	Delete(ctx context.Context, path string) error

	// OpenRead opens the object at path for sequential reading.
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)

	// OpenWrite opens the object at path for writing. The object must
	// not become visible at path until Close returns nil.
	OpenWrite(ctx context.Context, path string) (io.WriteCloser, error)
}

// LocalFS implements FS on the local disk. Writes go to a uniquely
// named temporary sibling file and are renamed into place on Close, so
// readers never observe a half-written output.
type LocalFS struct{}

var _ FS = LocalFS{}

// List returns the regular files directly under dir.
func (LocalFS) List(_ context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// Delete removes path. A path that is already absent is not an error.
func (LocalFS) Delete(_ context.Context, path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// OpenRead opens path for reading.
func (LocalFS) OpenRead(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// OpenWrite creates the parent directory if needed and opens a
// temporary file next to path; the temp file is renamed to path when
// the returned writer is closed cleanly.
func (LocalFS) OpenWrite(_ context.Context, path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	file, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}
	return &renameOnClose{file: file, tmp: tmp, final: path}, nil
}

// renameOnClose moves the temp file into place only when every write
// and the final close succeeded. Any earlier write failure sticks: the
// temp file is removed on Close instead of renamed, so a half-written
// output is never published at the final path.
type renameOnClose struct {
	file  *os.File
	tmp   string
	final string
	err   error
}

func (r *renameOnClose) Write(p []byte) (int, error) {
	n, err := r.file.Write(p)
	if err != nil && r.err == nil {
		r.err = err
	}
	return n, err
}

func (r *renameOnClose) Close() error {
	closeErr := r.file.Close()
	if r.err != nil || closeErr != nil {
		_ = os.Remove(r.tmp)
		if r.err != nil {
			return r.err
		}
		return closeErr
	}
	return os.Rename(r.tmp, r.final)
}
