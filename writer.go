package finalize

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// assignment pairs one partition's records with its output path. Paths
// are unique per run because Job.OutputPath is injective over the
// partition index, so no two workers ever write the same destination.
type assignment struct {
	path    string
	records [][]byte
}

// writeParallel runs the write stage: a producer streams partitions
// off the interim set while a pool of workers drains the work queue
// and writes them out. The pool lives for exactly one call.
//
// On the first failure the group context is cancelled: no further
// partitions are dispatched, and workers finish the write they are in
// rather than being interrupted mid-file. Written paths are collected
// under a lock and sorted ascending before return, so the result does
// not depend on worker completion order.
func (f *Finalizer) writeParallel(ctx context.Context, interim *InterimResultSet, perFile, workers int, stats *Stats) ([]string, error) {
	group, ctx := errgroup.WithContext(ctx)

	work := make(chan assignment, workers)

	group.Go(func() error {
		defer close(work)

		for part, err := range Partitions(interim.Records(ctx), perFile) {
			if err != nil {
				return &Error{Stage: StageRead, Err: err}
			}

			stats.incRecords(int64(len(part.Records)))
			stats.incPartitions(1)

			select {
			case work <- assignment{path: f.job.OutputPath(part.Index), records: part.Records}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var (
		mu    sync.Mutex
		paths []string
	)

	reportEvery := int64(f.resolveReportInterval())
	for range workers {
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case a, ok := <-work:
					if !ok {
						return nil
					}

					// Empty groups produce no file and no result path.
					if len(a.records) == 0 {
						continue
					}

					if err := f.job.WritePartition(ctx, a.records, a.path); err != nil {
						return &Error{Stage: StageWrite, Err: fmt.Errorf("write %s: %w", a.path, err)}
					}

					mu.Lock()
					paths = append(paths, a.path)
					mu.Unlock()

					// Report progress when crossing a reportEvery threshold.
					written := stats.incWritten(1)
					if f.progress != nil && written/reportEvery > (written-1)/reportEvery {
						f.progress.OnProgress(ctx, stats)
					}
				}
			}
		})
	}

	if err := group.Wait(); err != nil {
		// Normalize cancellation noise from the pool so callers only
		// ever see the stage taxonomy.
		var ferr *Error
		if !errors.As(err, &ferr) {
			err = &Error{Stage: StageWrite, Err: err}
		}
		return nil, err
	}

	slices.Sort(paths)
	return paths, nil
}
