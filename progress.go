package finalize

import "context"

// ReportInterval controls how often progress is reported, measured in
// output files written. This interface can be implemented
// independently of ProgressReporter when you want to set the interval
// via the job struct rather than the builder.
//
// The value can be overridden at runtime via WithReportInterval, which
// takes precedence over this interface. If neither is set,
// DefaultReportInterval (100 files) is used.
//
// This interface is embedded in ProgressReporter, so implementing
// ProgressReporter automatically satisfies ReportInterval.
//
// Example:
//
//	func (j *MyJob) ReportInterval() int { return 50 }
type ReportInterval interface {
	// ReportInterval returns how often to call OnProgress (in output
	// files written).
	ReportInterval() int
}

// ProgressReporter receives periodic progress updates while the write
// stage runs. Implement this interface when you want to log
// throughput or update an external dashboard during a long
// finalization.
//
// OnProgress is called each time the cumulative written-file count
// crosses a ReportInterval boundary. It runs on a write worker
// goroutine, so avoid blocking I/O inside it.
//
// The Stats snapshot passed to OnProgress is safe to read
// concurrently.
//
// Example:
//
//	func (j *MyJob) ReportInterval() int { return 50 }
//
//	func (j *MyJob) OnProgress(ctx context.Context, stats *finalize.Stats) {
//	    slog.InfoContext(ctx, "finalizing", "stats", stats)
//	}
type ProgressReporter interface {
	ReportInterval

	// OnProgress is called periodically during the write stage.
	OnProgress(ctx context.Context, stats *Stats)
}
