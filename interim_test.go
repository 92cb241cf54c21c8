package finalize_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packetarc/finalize"
)

func TestDiscover(t *testing.T) {
	fsys := newMemFS()
	putInterim(t, fsys, "/interim/part-b", makeRecords("b", 2))
	putInterim(t, fsys, "/interim/part-a", makeRecords("a", 2))
	putInterim(t, fsys, "/interim/part-c", makeRecords("c", 2))
	fsys.put("/interim/_SUCCESS", nil)
	fsys.put("/other/part-z", nil) // different directory, never listed

	set, err := finalize.Discover(context.Background(), fsys, "/interim", "_SUCCESS")
	require.NoError(t, err)

	// Files come back sorted; the sentinel is deleted, not included.
	require.Equal(t, 3, set.Len())
	require.Equal(t, []string{"/interim/part-a", "/interim/part-b", "/interim/part-c"}, set.Files())
	require.False(t, fsys.exists("/interim/_SUCCESS"))
	require.True(t, fsys.exists("/other/part-z"))
}

func TestDiscover_SentinelOnly(t *testing.T) {
	fsys := newMemFS()
	fsys.put("/interim/_SUCCESS", nil)

	set, err := finalize.Discover(context.Background(), fsys, "/interim", "_SUCCESS")
	require.NoError(t, err)
	require.Zero(t, set.Len())
	require.False(t, fsys.exists("/interim/_SUCCESS"))
}

func TestDiscover_CustomSentinel(t *testing.T) {
	fsys := newMemFS()
	putInterim(t, fsys, "/interim/_SUCCESS", makeRecords("a", 1))
	fsys.put("/interim/.done", nil)

	set, err := finalize.Discover(context.Background(), fsys, "/interim", ".done")
	require.NoError(t, err)

	// With a custom sentinel, a file named _SUCCESS is just data.
	require.Equal(t, []string{"/interim/_SUCCESS"}, set.Files())
	require.False(t, fsys.exists("/interim/.done"))
}

func TestInterimResultSet_Records(t *testing.T) {
	fsys := newMemFS()
	recordsA := makeRecords("a", 3)
	recordsB := makeRecords("b", 2)
	putInterim(t, fsys, "/interim/a", recordsA)
	putInterim(t, fsys, "/interim/b", recordsB)

	set, err := finalize.Discover(context.Background(), fsys, "/interim", "_SUCCESS")
	require.NoError(t, err)

	var got [][]byte
	for rec, err := range set.Records(context.Background()) {
		require.NoError(t, err)
		got = append(got, rec)
	}
	require.Equal(t, append(append([][]byte{}, recordsA...), recordsB...), got)
}

func TestInterimResultSet_RecordsTruncated(t *testing.T) {
	fsys := newMemFS()

	var buf bytes.Buffer
	require.NoError(t, finalize.WriteRecords(&buf, makeRecords("a", 3)))
	framed := buf.Bytes()
	fsys.put("/interim/a", framed[:len(framed)-2]) // cut the last record short

	set, err := finalize.Discover(context.Background(), fsys, "/interim", "_SUCCESS")
	require.NoError(t, err)

	var got [][]byte
	var streamErr error
	for rec, err := range set.Records(context.Background()) {
		if err != nil {
			streamErr = err
			break
		}
		got = append(got, rec)
	}

	require.Len(t, got, 2)
	require.ErrorContains(t, streamErr, "/interim/a")
	require.ErrorContains(t, streamErr, "record body")
}

func TestInterimResultSet_CorruptLengthPrefix(t *testing.T) {
	fsys := newMemFS()

	var buf bytes.Buffer
	require.NoError(t, finalize.WriteRecords(&buf, makeRecords("a", 1)))
	// A corrupt prefix claiming a 4 GiB record must fail as a stream
	// error, not be trusted as an allocation size.
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})
	buf.WriteString("short")
	fsys.put("/interim/a", buf.Bytes())

	set, err := finalize.Discover(context.Background(), fsys, "/interim", "_SUCCESS")
	require.NoError(t, err)

	var got [][]byte
	var streamErr error
	for rec, err := range set.Records(context.Background()) {
		if err != nil {
			streamErr = err
			break
		}
		got = append(got, rec)
	}

	require.Len(t, got, 1)
	require.ErrorContains(t, streamErr, "/interim/a")
	require.ErrorContains(t, streamErr, "record length")
}

func TestInterimResultSet_EmptyFile(t *testing.T) {
	fsys := newMemFS()
	fsys.put("/interim/empty", nil)
	putInterim(t, fsys, "/interim/full", makeRecords("a", 2))

	set, err := finalize.Discover(context.Background(), fsys, "/interim", "_SUCCESS")
	require.NoError(t, err)

	// A zero-byte interim file contributes no records and no error.
	var count int
	for _, err := range set.Records(context.Background()) {
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 2, count)
}

func TestInterimResultSet_CleanupIdempotent(t *testing.T) {
	fsys := newMemFS()
	putInterim(t, fsys, "/interim/a", makeRecords("a", 1))
	putInterim(t, fsys, "/interim/b", makeRecords("b", 1))

	set, err := finalize.Discover(context.Background(), fsys, "/interim", "_SUCCESS")
	require.NoError(t, err)

	require.NoError(t, set.Cleanup(context.Background()))
	require.False(t, fsys.exists("/interim/a"))
	require.False(t, fsys.exists("/interim/b"))
	require.Len(t, fsys.deleteLog, 2)

	// Second call is a no-op, not a re-delete.
	require.NoError(t, set.Cleanup(context.Background()))
	require.Len(t, fsys.deleteLog, 2)
	require.Zero(t, set.Len())
}

func TestInterimResultSet_CleanupReportsAllFailures(t *testing.T) {
	fsys := newMemFS()
	putInterim(t, fsys, "/interim/a", makeRecords("a", 1))
	putInterim(t, fsys, "/interim/b", makeRecords("b", 1))
	putInterim(t, fsys, "/interim/c", makeRecords("c", 1))
	fsys.deleteErr["/interim/a"] = context.DeadlineExceeded
	fsys.deleteErr["/interim/c"] = context.DeadlineExceeded

	set, err := finalize.Discover(context.Background(), fsys, "/interim", "_SUCCESS")
	require.NoError(t, err)

	// One pass attempts every file and joins the failures.
	err = set.Cleanup(context.Background())
	require.ErrorContains(t, err, "/interim/a")
	require.ErrorContains(t, err, "/interim/c")
	require.False(t, fsys.exists("/interim/b"))
}

func TestWriteRecords_ZeroLengthRecord(t *testing.T) {
	fsys := newMemFS()
	records := [][]byte{[]byte("one"), {}, []byte("three")}
	putInterim(t, fsys, "/interim/a", records)

	set, err := finalize.Discover(context.Background(), fsys, "/interim", "_SUCCESS")
	require.NoError(t, err)

	var got [][]byte
	for rec, err := range set.Records(context.Background()) {
		require.NoError(t, err)
		got = append(got, rec)
	}
	require.Len(t, got, 3)
	require.Equal(t, []byte("one"), got[0])
	require.Empty(t, got[1])
	require.Equal(t, []byte("three"), got[2])
}
