package workload

import "math"

// Kernel runs ops scalar-equivalent additions and returns how many were
// actually performed together with the folded accumulator.
type Kernel func(ops uint64) (done, sink uint64)

type number interface {
	~float32 | ~float64 | ~int8 | ~int32 | ~int64
}

// Arithmetic returns the accumulation kernel for the element type and lane
// width. ops is divided by ElementsPerLane so every width performs the same
// number of primitive adds; the remainder is dropped.
//
// Every lane is its own register: float and int64 lanes are independent
// locals, int32 and int8 lanes are packed into uint64 words and advanced with
// a carry-masked add.
func Arithmetic(e ElementType, l LaneWidth) Kernel {
	switch e {
	case Float64:
		return independent[float64](ElementsPerLane(e, l))
	case Float32:
		return independent[float32](ElementsPerLane(e, l))
	case Int64:
		return independent[int64](ElementsPerLane(e, l))
	case Int32:
		switch l {
		case Lane128:
			return int32x4
		case Lane256:
			return int32x8
		default:
			return add1[int32]
		}
	default:
		switch l {
		case Lane128:
			return int8x16
		case Lane256:
			return int8x32
		default:
			return add1[int8]
		}
	}
}

func independent[T number](lanes uint64) Kernel {
	switch lanes {
	case 2:
		return add2[T]
	case 4:
		return add4[T]
	case 8:
		return add8[T]
	default:
		return add1[T]
	}
}

func add1[T number](ops uint64) (uint64, uint64) {
	var a0 T
	for i := uint64(0); i < ops; i++ {
		a0++
	}

	return ops, fold(a0)
}

func add2[T number](ops uint64) (uint64, uint64) {
	var a0, a1 T

	iters := ops / 2
	for i := uint64(0); i < iters; i++ {
		a0++
		a1++
	}

	return iters * 2, fold(a0) + fold(a1)
}

func add4[T number](ops uint64) (uint64, uint64) {
	var a0, a1, a2, a3 T

	iters := ops / 4
	for i := uint64(0); i < iters; i++ {
		a0++
		a1++
		a2++
		a3++
	}

	return iters * 4, fold(a0) + fold(a1) + fold(a2) + fold(a3)
}

func add8[T number](ops uint64) (uint64, uint64) {
	var a0, a1, a2, a3, a4, a5, a6, a7 T

	iters := ops / 8
	for i := uint64(0); i < iters; i++ {
		a0++
		a1++
		a2++
		a3++
		a4++
		a5++
		a6++
		a7++
	}

	return iters * 8,
		fold(a0) + fold(a1) + fold(a2) + fold(a3) +
			fold(a4) + fold(a5) + fold(a6) + fold(a7)
}

// Packed lane layouts: the top bit of every lane, and a one in every lane.
const (
	high8  uint64 = 0x8080808080808080
	ones8  uint64 = 0x0101010101010101
	high32 uint64 = 0x8000000080000000
	ones32 uint64 = 0x0000000100000001
)

// packedInc adds ones to every lane of w. Clearing the top bit of each lane
// first keeps carries inside the lane; xoring it back restores the wrapped
// sum.
func packedInc(w, high, ones uint64) uint64 {
	return ((w &^ high) + ones) ^ (w & high)
}

func int32x4(ops uint64) (uint64, uint64) {
	var w0, w1 uint64

	iters := ops / 4
	for i := uint64(0); i < iters; i++ {
		w0 = packedInc(w0, high32, ones32)
		w1 = packedInc(w1, high32, ones32)
	}

	return iters * 4, w0 + w1
}

func int32x8(ops uint64) (uint64, uint64) {
	var w0, w1, w2, w3 uint64

	iters := ops / 8
	for i := uint64(0); i < iters; i++ {
		w0 = packedInc(w0, high32, ones32)
		w1 = packedInc(w1, high32, ones32)
		w2 = packedInc(w2, high32, ones32)
		w3 = packedInc(w3, high32, ones32)
	}

	return iters * 8, w0 + w1 + w2 + w3
}

func int8x16(ops uint64) (uint64, uint64) {
	var w0, w1 uint64

	iters := ops / 16
	for i := uint64(0); i < iters; i++ {
		w0 = packedInc(w0, high8, ones8)
		w1 = packedInc(w1, high8, ones8)
	}

	return iters * 16, w0 + w1
}

func int8x32(ops uint64) (uint64, uint64) {
	var w0, w1, w2, w3 uint64

	iters := ops / 32
	for i := uint64(0); i < iters; i++ {
		w0 = packedInc(w0, high8, ones8)
		w1 = packedInc(w1, high8, ones8)
		w2 = packedInc(w2, high8, ones8)
		w3 = packedInc(w3, high8, ones8)
	}

	return iters * 32, w0 + w1 + w2 + w3
}

func fold[T number](v T) uint64 {
	return math.Float64bits(float64(v))
}
