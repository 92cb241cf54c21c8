// Package finalize consolidates the interim output of a completed
// distributed packet-capture job into a small number of final,
// size-capped output files.
//
// A distributed job leaves its results as many small interim files
// under one directory, plus a completion sentinel. The finalizer
// discovers those files (deleting the sentinel as it goes), streams
// their binary records lazily in sorted-file order, partitions the
// stream into fixed-size groups, writes each group concurrently under
// a bounded worker pool using the job's container format, and deletes
// the interim files once the write stage concludes — whether it
// succeeded or not. The output locations come back sorted by name, so
// two runs over the same interim content always report the same
// result.
//
// # Quick Start
//
// Implement the required Job interface:
//
//	type PcapJob struct {
//	    fsys finalize.FS
//	    base string
//	}
//
//	func (j *PcapJob) OutputPath(partition int) string {
//	    return fmt.Sprintf("%s/pcap-data-%03d.pcap", j.base, partition)
//	}
//
//	func (j *PcapJob) WritePartition(ctx context.Context, records [][]byte, path string) error {
//	    return pcap.WriteTo(ctx, j.fsys, path, records)
//	}
//
//	// Run the finalizer
//	pages, err := finalize.New(fsys, "/jobs/42/interim", job).Run(ctx)
//
// # Interface-Based Design
//
// The finalizer auto-detects optional interfaces on the job. Just
// implement what you need:
//
//	// Cap output files at 50,000 records each
//	func (j *PcapJob) RecordsPerFile() int { return 50000 }
//
//	// Write with two workers per processing unit
//	func (j *PcapJob) WorkerBudget() string { return "2C" }
//
//	// The producing job marks completion with ".done", not "_SUCCESS"
//	func (j *PcapJob) SentinelName() string { return ".done" }
//
//	// Log progress every 50 output files
//	func (j *PcapJob) ReportInterval() int { return 50 }
//	func (j *PcapJob) OnProgress(ctx context.Context, stats *finalize.Stats) {
//	    slog.InfoContext(ctx, "finalizing", "stats", stats)
//	}
//
// # Configuration
//
// Every knob follows the same pattern: a WithXxx builder method and a
// matching Xxx interface. The builder always takes priority:
//
//	pages, err := finalize.New(fsys, dir, job).
//	    WithRecordsPerFile(10000). // records per output file
//	    WithWorkerBudget("4").     // absolute count, or "<n>C" per unit
//	    WithSentinel("_SUCCESS").  // completion marker name
//	    WithLogger(logger).        // defaults to slog.Default()
//	    Run(ctx)
//
// Configuration priority (highest to lowest):
//  1. WithXxx() method overrides
//  2. Interface implementations
//  3. Default values
//
// # Filesystems
//
// All I/O goes through the small FS contract: non-recursive List,
// idempotent Delete, and streaming OpenRead/OpenWrite. LocalFS covers
// local disk; the s3fs subpackage covers S3-compatible object stores.
// Any store that can satisfy those four methods can host interim and
// final results.
//
// # Interim Record Format
//
// Interim files frame each record with a big-endian uint32 length
// prefix. Producers emit them with WriteRecords; record contents are
// opaque to the finalizer and are never parsed, deduplicated, or
// reordered beyond stable partition assignment.
//
// # Error Handling
//
// Run is binary: it returns either the complete, sorted result or a
// single error. A malformed worker budget surfaces as *BudgetError
// naming the raw value. Discovery, streaming, and write failures
// surface as *Error with the failing Stage; inspect them with
// errors.As. Interim cleanup always runs after the write stage, and a
// cleanup failure is only ever logged — it neither masks a write error
// nor fails a successful run. A failed run may leave partial output
// files behind; retry finalization from scratch rather than resuming.
package finalize
