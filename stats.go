package finalize

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
)

// Stats provides finalization run statistics with thread-safe access.
// Counter fields use atomic operations for safe concurrent access from
// write workers.
type Stats struct {
	records    atomic.Int64
	partitions atomic.Int64
	written    atomic.Int64
	cleaned    atomic.Int64
}

// Records returns the number of interim records streamed.
func (s *Stats) Records() int64 { return s.records.Load() }

// Partitions returns the number of partitions formed.
func (s *Stats) Partitions() int64 { return s.partitions.Load() }

// Written returns the number of output files written.
func (s *Stats) Written() int64 { return s.written.Load() }

// Cleaned returns the number of interim files deleted during cleanup.
func (s *Stats) Cleaned() int64 { return s.cleaned.Load() }

// LogValue implements slog.LogValuer for structured logging.
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("records", s.Records()),
		slog.Int64("partitions", s.Partitions()),
		slog.Int64("written", s.Written()),
		slog.Int64("cleaned", s.Cleaned()),
	)
}

// statsJSON is the JSON representation for marshaling Stats.
type statsJSON struct {
	Records    int64 `json:"records"`
	Partitions int64 `json:"partitions"`
	Written    int64 `json:"written"`
	Cleaned    int64 `json:"cleaned"`
}

// MarshalJSON implements json.Marshaler for Stats serialization.
func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		Records:    s.records.Load(),
		Partitions: s.partitions.Load(),
		Written:    s.written.Load(),
		Cleaned:    s.cleaned.Load(),
	})
}

// Internal increment methods. These return the new value after
// incrementing, which is essential for race-free progress tracking
// across concurrent workers.
func (s *Stats) incRecords(n int64) int64    { return s.records.Add(n) }
func (s *Stats) incPartitions(n int64) int64 { return s.partitions.Add(n) }
func (s *Stats) incWritten(n int64) int64    { return s.written.Add(n) }
func (s *Stats) incCleaned(n int64) int64    { return s.cleaned.Add(n) }
