package finalize

import (
	"context"
	"log/slog"
)

// Job defines the two decisions a finalization target owns: where each
// partition lands, and how a partition's records are serialized there.
// This is the only required interface to implement.
//
// Optional interfaces are auto-detected from the same value:
// [RecordsPerFile], [WorkerBudget], [SentinelName], [ReportInterval],
// [ProgressReporter].
type Job interface {
	// OutputPath returns the destination for the given 1-based
	// partition index. It must be injective: distinct indices map to
	// distinct paths.
	OutputPath(partition int) string

	// WritePartition serializes one partition's records into their
	// final container at path. Records are opaque byte slices and must
	// be written in the order given.
	WritePartition(ctx context.Context, records [][]byte, path string) error
}

// Finalizer consolidates the interim result files of a completed
// distributed job into a small number of final, size-capped output
// files, then removes the interim artifacts.
type Finalizer struct {
	fsys FS
	dir  string
	job  Job

	logger *slog.Logger

	// Configuration overrides (nil means use interface value or default)
	recordsPerFile *int
	workerBudget   *string
	sentinel       *string
	reportInterval *int

	// Optional capabilities (detected from job interfaces)
	recordsPerFileIface RecordsPerFile
	workerBudgetIface   WorkerBudget
	sentinelIface       SentinelName
	reportIntervalIface ReportInterval
	progress            ProgressReporter
}

// New creates a Finalizer for the interim results under dir on fsys.
// The job must implement [Job]; optional interfaces are auto-detected.
func New(fsys FS, dir string, job Job) *Finalizer {
	f := &Finalizer{
		fsys:   fsys,
		dir:    dir,
		job:    job,
		logger: slog.Default(),
	}

	// Auto-detect optional interfaces
	if v, ok := job.(RecordsPerFile); ok {
		f.recordsPerFileIface = v
	}
	if v, ok := job.(WorkerBudget); ok {
		f.workerBudgetIface = v
	}
	if v, ok := job.(SentinelName); ok {
		f.sentinelIface = v
	}
	if v, ok := job.(ReportInterval); ok {
		f.reportIntervalIface = v
	}
	if v, ok := job.(ProgressReporter); ok {
		f.progress = v
	}

	return f
}

// WithRecordsPerFile overrides the maximum records per output file.
// Priority: this method > RecordsPerFile interface > DefaultRecordsPerFile.
// Values less than 1 are ignored.
func (f *Finalizer) WithRecordsPerFile(n int) *Finalizer {
	if n >= 1 {
		f.recordsPerFile = &n
	}
	return f
}

// WithWorkerBudget overrides the worker budget string for the write
// stage; see [ParseWorkerBudget] for the accepted forms.
// Priority: this method > WorkerBudget interface > DefaultWorkerBudget.
func (f *Finalizer) WithWorkerBudget(budget string) *Finalizer {
	f.workerBudget = &budget
	return f
}

// WithSentinel overrides the completion-marker file name.
// Priority: this method > SentinelName interface > DefaultSentinel.
func (f *Finalizer) WithSentinel(name string) *Finalizer {
	f.sentinel = &name
	return f
}

// WithReportInterval overrides how often to report progress (in output
// files written).
// Priority: this method > ReportInterval interface > DefaultReportInterval.
// Values less than 1 are ignored.
func (f *Finalizer) WithReportInterval(n int) *Finalizer {
	if n >= 1 {
		f.reportInterval = &n
	}
	return f
}

// WithLogger overrides the logger used for run lifecycle and cleanup
// messages. The default is slog.Default().
func (f *Finalizer) WithLogger(logger *slog.Logger) *Finalizer {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// Run executes one finalization attempt and returns the final output
// locations, sorted ascending by path.
//
// Run is binary at the job level: it returns either a complete *Pages
// or a single *Error (configuration errors surface as *BudgetError).
// An empty interim result set is a success and yields an empty Pages.
// On a write failure, files written by other workers may remain; the
// caller must treat the attempt as not completed and retry from
// scratch. The interim files are cleaned up after the write stage
// regardless of its outcome; cleanup failures are logged and never
// change the result.
func (f *Finalizer) Run(ctx context.Context) (*Pages, error) {
	workers, err := ParseWorkerBudget(f.resolveWorkerBudget())
	if err != nil {
		return nil, err
	}
	perFile := f.resolveRecordsPerFile()

	f.logger.InfoContext(ctx, "finalizer starting",
		"dir", f.dir,
		"records_per_file", perFile,
		"workers", workers,
	)

	interim, err := Discover(ctx, f.fsys, f.dir, f.resolveSentinel())
	if err != nil {
		return nil, &Error{Stage: StageRead, Err: err}
	}

	if interim.Len() == 0 {
		f.logger.InfoContext(ctx, "no interim results to finalize", "dir", f.dir)
		return newPages(nil), nil
	}

	stats := &Stats{}
	paths, err := f.writeStage(ctx, interim, perFile, workers, stats)
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "finalizer done", "files", len(paths), "stats", stats)
	return newPages(paths), nil
}

// writeStage runs the parallel write with the interim set scoped to
// it: cleanup is deferred at entry so it runs on every exit path —
// success, write error, or panic. A cleanup failure is logged and
// never masks the write outcome.
func (f *Finalizer) writeStage(ctx context.Context, interim *InterimResultSet, perFile, workers int, stats *Stats) ([]string, error) {
	interimFiles := interim.Len()
	defer func() {
		if err := interim.Cleanup(ctx); err != nil {
			f.logger.WarnContext(ctx, "unable to clean up interim files", "dir", f.dir, "error", err)
			return
		}
		stats.incCleaned(int64(interimFiles))
	}()

	return f.writeParallel(ctx, interim, perFile, workers, stats)
}
