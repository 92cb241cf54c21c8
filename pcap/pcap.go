// Package pcap writes the libpcap container that finalized
// packet-capture results are delivered in: one global header followed
// by the records of a single partition.
//
// Records are opaque to this package. Each one is expected to already
// carry its per-packet header; nothing is inspected, reordered, or
// rewritten. A reader that finds the global header intact but the
// body short sees a detectably corrupt file, never a silently valid
// truncation.
package pcap

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/packetarc/finalize"
)

// Global header fields (libpcap 2.4, microsecond timestamps,
// big-endian byte order).
const (
	Magic            = 0xa1b2c3d4
	VersionMajor     = 2
	VersionMinor     = 4
	SnapLen          = 65535
	LinkTypeEthernet = 1

	// HeaderLen is the size of the global header in bytes.
	HeaderLen = 24
)

// ErrNoRecords is returned when asked to write an empty partition.
// The finalizer never creates output files for empty groups.
var ErrNoRecords = errors.New("pcap: no records to write")

// Write writes the global header to w, then each record verbatim in
// the order given.
func Write(w io.Writer, records [][]byte) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	var hdr [HeaderLen]byte
	binary.BigEndian.PutUint32(hdr[0:4], Magic)
	binary.BigEndian.PutUint16(hdr[4:6], VersionMajor)
	binary.BigEndian.PutUint16(hdr[6:8], VersionMinor)
	// thiszone (8:12) and sigfigs (12:16) stay zero.
	binary.BigEndian.PutUint32(hdr[16:20], SnapLen)
	binary.BigEndian.PutUint32(hdr[20:24], LinkTypeEthernet)

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("pcap: global header: %w", err)
	}

	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("pcap: record: %w", err)
		}
	}
	return nil
}

// WriteTo serializes records into a pcap container at path on fsys.
// The file only becomes visible once the write completed cleanly, per
// the FS contract.
//
// It is shaped to slot straight into a finalization job:
//
//	func (j *PcapJob) WritePartition(ctx context.Context, records [][]byte, path string) error {
//	    return pcap.WriteTo(ctx, j.fsys, path, records)
//	}
func WriteTo(ctx context.Context, fsys finalize.FS, path string, records [][]byte) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	wc, err := fsys.OpenWrite(ctx, path)
	if err != nil {
		return err
	}

	if err := Write(wc, records); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}
