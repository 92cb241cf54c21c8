// Package s3fs implements the finalizer's filesystem contract on an
// S3-compatible object store. Paths are object keys within a single
// bucket; List treats "/" as the directory separator and does not
// recurse.
package s3fs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/packetarc/finalize"
)

// Config carries the connection settings for an S3-compatible
// endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// FS lists, reads, writes, and deletes objects in one bucket.
type FS struct {
	client *minio.Client
	bucket string
}

var _ finalize.FS = (*FS)(nil)

// New builds an FS for the configured endpoint and bucket. No network
// call is made until the FS is used.
func New(cfg Config) (*FS, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3fs: endpoint %s: %w", cfg.Endpoint, err)
	}
	return &FS{client: client, bucket: cfg.Bucket}, nil
}

// List returns the keys of the objects directly under dir. Sub-prefix
// entries are skipped; listing never recurses.
func (f *FS) List(ctx context.Context, dir string) ([]string, error) {
	prefix := strings.TrimSuffix(dir, "/") + "/"

	var keys []string
	for obj := range f.client.ListObjects(ctx, f.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("s3fs: list %s: %w", dir, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Delete removes the object at key. A key that does not exist is not
// an error, matching the cleanup contract.
func (f *FS) Delete(ctx context.Context, key string) error {
	err := f.client.RemoveObject(ctx, f.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("s3fs: delete %s: %w", key, err)
	}
	return nil
}

// OpenRead streams the object at key. Missing objects are reported
// here rather than on the first Read.
func (f *FS) OpenRead(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := f.client.GetObject(ctx, f.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3fs: open %s: %w", key, err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("s3fs: open %s: %w", key, err)
	}
	return obj, nil
}

// OpenWrite uploads to key as the returned writer is filled. The
// object becomes visible only once Close returns nil; a failed upload
// leaves nothing behind at key.
func (f *FS) OpenWrite(ctx context.Context, key string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	u := &upload{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := f.client.PutObject(ctx, f.bucket, key, pr, -1, minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
		// Unblock the writer if the upload died mid-stream.
		_ = pr.CloseWithError(err)
		u.done <- err
	}()

	return u, nil
}

// upload adapts a streaming PutObject to io.WriteCloser. Close flushes
// the pipe and waits for the upload result.
type upload struct {
	pw   *io.PipeWriter
	done chan error
}

func (u *upload) Write(p []byte) (int, error) { return u.pw.Write(p) }

func (u *upload) Close() error {
	if err := u.pw.Close(); err != nil {
		return err
	}
	return <-u.done
}
