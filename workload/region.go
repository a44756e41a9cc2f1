package workload

import (
	"errors"
	"fmt"
	"math"
)

// Region is one contiguous allocation shared by every worker of a memory
// sweep. It is never resized; workers only touch disjoint slices of it.
type Region struct {
	buf  []byte
	free func([]byte) error
}

// NewRegion allocates a region of size bytes.
func NewRegion(size uint64) (*Region, error) {
	if size == 0 {
		return nil, errors.New("region size must be positive")
	}

	if size > math.MaxInt {
		return nil, fmt.Errorf("region size %d exceeds address space", size)
	}

	buf, free, err := allocate(int(size))
	if err != nil {
		return nil, fmt.Errorf("allocate %d byte region: %w", size, err)
	}

	return &Region{buf: buf, free: free}, nil
}

// Len returns the region size in bytes.
func (r *Region) Len() uint64 {
	return uint64(len(r.buf))
}

// Slice returns n bytes starting at off. The slice capacity ends at off+n so
// appends cannot spill into a neighbouring worker's range.
func (r *Region) Slice(off, n uint64) []byte {
	return r.buf[off : off+n : off+n]
}

// Close releases the region. It is safe to call more than once.
func (r *Region) Close() error {
	if r.buf == nil {
		return nil
	}

	buf := r.buf
	r.buf = nil

	if r.free == nil {
		return nil
	}

	return r.free(buf)
}
