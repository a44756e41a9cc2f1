package harness

// Share is one worker's contiguous slice of a region or operation budget.
type Share struct {
	Index  int    `json:"index"`
	Offset uint64 `json:"offset"`
	Len    uint64 `json:"len"`
}

// End returns the exclusive end of the share.
func (s Share) End() uint64 {
	return s.Offset + s.Len
}

// Partition splits total into workers disjoint, contiguous shares of
// total/workers each. Share i starts at i*(total/workers); the remainder of
// the integer division is dropped rather than given to any worker.
func Partition(total uint64, workers int) ([]Share, error) {
	if workers < 1 {
		return nil, ErrInvalidThreads
	}

	size := total / uint64(workers)
	shares := make([]Share, workers)

	for i := range shares {
		shares[i] = Share{
			Index:  i,
			Offset: uint64(i) * size,
			Len:    size,
		}
	}

	return shares, nil
}

// Replicate gives every worker the whole budget. Arithmetic workers share no
// memory, so each one runs the full per-worker operation count.
func Replicate(total uint64, workers int) ([]Share, error) {
	if workers < 1 {
		return nil, ErrInvalidThreads
	}

	shares := make([]Share, workers)
	for i := range shares {
		shares[i] = Share{Index: i, Len: total}
	}

	return shares, nil
}
