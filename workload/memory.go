package workload

import "unsafe"

// Pattern is the word stored by every write kernel.
const Pattern uint64 = 0x0101010101010101

// MemKernel touches buf lane by lane and returns the number of bytes it
// processed. Read kernels return the folded sum of every loaded word as sink.
type MemKernel func(buf []byte) (done, sink uint64)

// Write returns the store kernel for the lane width.
func Write(l LaneWidth) MemKernel {
	switch l {
	case Lane128:
		return write128
	case Lane256:
		return write256
	default:
		return writeScalar
	}
}

// Read returns the load kernel for the lane width.
func Read(l LaneWidth) MemKernel {
	switch l {
	case Lane128:
		return read128
	case Lane256:
		return read256
	default:
		return readScalar
	}
}

// Touched returns how many bytes of buf a kernel of the given lane width
// processes: the word-aligned prefix is skipped and the tail shorter than one
// lane is left alone.
func Touched(buf []byte, l LaneWidth) uint64 {
	return uint64(len(wordView(buf, l))) * 8
}

func wordView(buf []byte, l LaneWidth) []uint64 {
	if len(buf) == 0 {
		return nil
	}

	p := unsafe.Pointer(unsafe.SliceData(buf))
	skip := int((8 - uintptr(p)%8) % 8)

	if skip >= len(buf) {
		return nil
	}

	laneBytes := int(l.Bytes())
	n := (len(buf) - skip) / laneBytes * (laneBytes / 8)

	if n == 0 {
		return nil
	}

	return unsafe.Slice((*uint64)(unsafe.Add(p, skip)), n)
}

func writeScalar(buf []byte) (uint64, uint64) {
	w := wordView(buf, Scalar)
	for i := range w {
		w[i] = Pattern
	}

	return uint64(len(w)) * 8, 0
}

func write128(buf []byte) (uint64, uint64) {
	w := wordView(buf, Lane128)
	v := [2]uint64{Pattern, Pattern}

	for i := 0; i+2 <= len(w); i += 2 {
		*(*[2]uint64)(w[i : i+2]) = v
	}

	return uint64(len(w)) * 8, 0
}

func write256(buf []byte) (uint64, uint64) {
	w := wordView(buf, Lane256)
	v := [4]uint64{Pattern, Pattern, Pattern, Pattern}

	for i := 0; i+4 <= len(w); i += 4 {
		*(*[4]uint64)(w[i : i+4]) = v
	}

	return uint64(len(w)) * 8, 0
}

func readScalar(buf []byte) (uint64, uint64) {
	w := wordView(buf, Scalar)

	var sum uint64
	for _, v := range w {
		sum += v
	}

	return uint64(len(w)) * 8, sum
}

func read128(buf []byte) (uint64, uint64) {
	w := wordView(buf, Lane128)

	var acc [2]uint64
	for i := 0; i+2 <= len(w); i += 2 {
		v := *(*[2]uint64)(w[i : i+2])
		acc[0] += v[0]
		acc[1] += v[1]
	}

	return uint64(len(w)) * 8, acc[0] + acc[1]
}

func read256(buf []byte) (uint64, uint64) {
	w := wordView(buf, Lane256)

	var acc [4]uint64
	for i := 0; i+4 <= len(w); i += 4 {
		v := *(*[4]uint64)(w[i : i+4])
		acc[0] += v[0]
		acc[1] += v[1]
		acc[2] += v[2]
		acc[3] += v[3]
	}

	return uint64(len(w)) * 8, acc[0] + acc[1] + acc[2] + acc[3]
}
