package finalize

// Default configuration values.
const (
	// DefaultRecordsPerFile caps each output file at 10,000 records.
	DefaultRecordsPerFile = 10000

	// DefaultWorkerBudget runs the write stage on a single worker.
	DefaultWorkerBudget = "1"

	// DefaultSentinel is the completion marker a distributed job drops
	// next to its interim output.
	DefaultSentinel = "_SUCCESS"

	// DefaultReportInterval reports progress every 100 output files.
	DefaultReportInterval = 100
)

// RecordsPerFile caps the number of records written to one output
// file. Implement this interface to set the cap from the job struct
// rather than the finalizer builder.
//
// The value can be overridden at runtime via WithRecordsPerFile, which
// takes precedence. If neither is set, DefaultRecordsPerFile (10,000)
// is used.
//
// Tuning guidance:
//   - Fewer records per file means more, smaller output files and more
//     parallelism in the write stage
//   - Consumers that open every output file benefit from larger caps
//
// Example:
//
//	func (j *MyJob) RecordsPerFile() int { return 50000 }
type RecordsPerFile interface {
	// RecordsPerFile returns the maximum records per output file.
	RecordsPerFile() int
}

// WorkerBudget sets write-stage parallelism from the job struct. The
// string is either an absolute count ("8") or a multiple of the
// host's processing units ("2C"); see [ParseWorkerBudget].
//
// The value can be overridden at runtime via WithWorkerBudget, which
// takes precedence. If neither is set, DefaultWorkerBudget ("1") is
// used.
//
// Example:
//
//	func (j *MyJob) WorkerBudget() string { return "2C" }
type WorkerBudget interface {
	// WorkerBudget returns the worker budget string for the write stage.
	WorkerBudget() string
}

// SentinelName overrides the completion-marker file name that is
// deleted and excluded during interim discovery. Most producers write
// _SUCCESS; implement this only when yours does not.
//
// Example:
//
//	func (j *MyJob) SentinelName() string { return ".done" }
type SentinelName interface {
	// SentinelName returns the completion-marker file name.
	SentinelName() string
}

// resolveRecordsPerFile returns the effective records-per-file cap.
// Priority: WithRecordsPerFile > RecordsPerFile interface > DefaultRecordsPerFile.
func (f *Finalizer) resolveRecordsPerFile() int {
	if f.recordsPerFile != nil {
		return *f.recordsPerFile
	}
	if f.recordsPerFileIface != nil {
		// Values less than 1 are ignored, same as the builder.
		if n := f.recordsPerFileIface.RecordsPerFile(); n >= 1 {
			return n
		}
	}
	return DefaultRecordsPerFile
}

// resolveWorkerBudget returns the effective worker budget string.
// Priority: WithWorkerBudget > WorkerBudget interface > DefaultWorkerBudget.
func (f *Finalizer) resolveWorkerBudget() string {
	if f.workerBudget != nil {
		return *f.workerBudget
	}
	if f.workerBudgetIface != nil {
		return f.workerBudgetIface.WorkerBudget()
	}
	return DefaultWorkerBudget
}

// resolveSentinel returns the effective sentinel file name.
// Priority: WithSentinel > SentinelName interface > DefaultSentinel.
func (f *Finalizer) resolveSentinel() string {
	if f.sentinel != nil {
		return *f.sentinel
	}
	if f.sentinelIface != nil {
		return f.sentinelIface.SentinelName()
	}
	return DefaultSentinel
}

// resolveReportInterval returns the effective report interval.
// Priority: WithReportInterval > ReportInterval interface > DefaultReportInterval.
func (f *Finalizer) resolveReportInterval() int {
	if f.reportInterval != nil {
		return *f.reportInterval
	}
	if f.reportIntervalIface != nil {
		// Values less than 1 are ignored, same as the builder.
		if n := f.reportIntervalIface.ReportInterval(); n >= 1 {
			return n
		}
	}
	return DefaultReportInterval
}
