package finalize

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"path"
	"slices"
)

// recordLenSize is the big-endian uint32 length prefix on every
// interim record.
const recordLenSize = 4

// maxRecordLen bounds a single interim record. A corrupt length prefix
// fails with a stream error instead of attempting an enormous
// allocation.
const maxRecordLen = 64 << 20

// InterimResultSet is the unordered union of binary records across the
// interim files a distributed job left under one directory. It is
// built once per finalization attempt by [Discover], consumed in a
// single forward pass via Records, and released with Cleanup.
type InterimResultSet struct {
	fsys  FS
	files []string
}

// Discover lists dir non-recursively and builds the interim result
// set. Entries whose base name matches sentinel are deleted on the
// spot and excluded from the set; the remaining files are sorted by
// name ascending so partition assignment is deterministic across runs
// over identical interim content.
//
// An empty directory, or one holding only the sentinel, yields an
// empty set rather than an error.
func Discover(ctx context.Context, fsys FS, dir, sentinel string) (*InterimResultSet, error) {
	names, err := fsys.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	files := make([]string, 0, len(names))
	for _, name := range names {
		if path.Base(name) == sentinel {
			if err := fsys.Delete(ctx, name); err != nil {
				return nil, fmt.Errorf("delete sentinel %s: %w", name, err)
			}
			continue
		}
		files = append(files, name)
	}
	slices.Sort(files)

	return &InterimResultSet{fsys: fsys, files: files}, nil
}

// Len returns the number of interim files in the set.
func (s *InterimResultSet) Len() int { return len(s.files) }

// Files returns the interim file paths in their sorted order.
func (s *InterimResultSet) Files() []string { return slices.Clone(s.files) }

// Records returns a lazy, single-pass sequence of the binary records
// across all files in the set, in file order. Files are opened one at
// a time and records are pulled on demand; the set is never buffered
// whole.
func (s *InterimResultSet) Records(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for _, file := range s.files {
			if !s.yieldFile(ctx, file, yield) {
				return
			}
		}
	}
}

// yieldFile streams one interim file. It reports false when the
// consumer stopped the sequence.
func (s *InterimResultSet) yieldFile(ctx context.Context, file string, yield func([]byte, error) bool) bool {
	rc, err := s.fsys.OpenRead(ctx, file)
	if err != nil {
		return yield(nil, fmt.Errorf("open %s: %w", file, err))
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	for {
		rec, err := readRecord(br)
		if errors.Is(err, io.EOF) {
			return true
		}
		if err != nil {
			return yield(nil, fmt.Errorf("read %s: %w", file, err))
		}
		if !yield(rec, nil) {
			return false
		}
	}
}

// Cleanup deletes the interim files discovered for this set. It may be
// called more than once; calls after the first are no-ops. Deleting an
// already-absent file is not an error per the FS contract.
//
// Callers are expected to log a cleanup failure rather than escalate
// it: the outcome of a finalization run is decided by the write stage,
// never by cleanup.
func (s *InterimResultSet) Cleanup(ctx context.Context) error {
	files := s.files
	s.files = nil

	var errs []error
	for _, file := range files {
		if err := s.fsys.Delete(ctx, file); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", file, err))
		}
	}
	return errors.Join(errs...)
}

// readRecord reads one length-prefixed record. A clean EOF at a record
// boundary returns io.EOF; a truncated prefix or body is an error.
func readRecord(r io.Reader) ([]byte, error) {
	var lenBuf [recordLenSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("record length: %w", err)
	}

	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxRecordLen {
		return nil, fmt.Errorf("record length %d exceeds %d", n, maxRecordLen)
	}

	rec := make([]byte, n)
	if _, err := io.ReadFull(r, rec); err != nil {
		return nil, fmt.Errorf("record body: %w", err)
	}
	return rec, nil
}

// WriteRecords frames records with the interim length prefix and
// writes them to w. Producers use this to emit interim files the
// finalizer can stream back; record contents are opaque.
func WriteRecords(w io.Writer, records [][]byte) error {
	bw := bufio.NewWriter(w)

	var lenBuf [recordLenSize]byte
	for _, rec := range records {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(rec)))
		if _, err := bw.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := bw.Write(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}
