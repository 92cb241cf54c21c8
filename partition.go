package finalize

import "iter"

// Partition is one fixed-size group of records destined for a single
// output file. Index is 1-based and assigned in stream order, so the
// same interim content always produces the same partitions.
type Partition struct {
	Index   int
	Records [][]byte
}

// Partitions splits a record stream into consecutive groups of at most
// perFile records, preserving stream order within each group. Only the
// final group may be short; no group is ever empty, and an empty
// stream yields no groups. Each group is yielded as soon as it fills,
// so at most one group is held here at a time.
//
// A stream error is yielded in place of a group and ends the sequence.
// Records accumulated ahead of the error are discarded: a failed run
// is retried from scratch, never resumed.
//
// perFile values less than 1 yield no groups.
func Partitions(records iter.Seq2[[]byte, error], perFile int) iter.Seq2[Partition, error] {
	return func(yield func(Partition, error) bool) {
		if perFile < 1 {
			return
		}

		group := make([][]byte, 0, perFile)
		index := 1
		for rec, err := range records {
			if err != nil {
				yield(Partition{}, err)
				return
			}

			group = append(group, rec)
			if len(group) == perFile {
				if !yield(Partition{Index: index, Records: group}, nil) {
					return
				}
				index++
				group = make([][]byte, 0, perFile)
			}
		}

		if len(group) > 0 {
			yield(Partition{Index: index, Records: group}, nil)
		}
	}
}
