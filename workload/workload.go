// Package workload provides the timed units of work run by every benchmark
// worker: lane-wide arithmetic accumulation and full-lane memory reads and
// writes over a shared region.
package workload

import (
	"fmt"
	"strings"
)

// LaneWidth is the number of bits moved or added per loop iteration.
type LaneWidth int

// Supported lane widths.
const (
	Scalar  LaneWidth = 64
	Lane128 LaneWidth = 128
	Lane256 LaneWidth = 256
)

// Lanes lists every lane width in sweep order.
func Lanes() []LaneWidth {
	return []LaneWidth{Scalar, Lane128, Lane256}
}

// Bytes returns the lane size in bytes.
func (l LaneWidth) Bytes() uint64 {
	return uint64(l) / 8
}

func (l LaneWidth) String() string {
	switch l {
	case Scalar:
		return "scalar"
	case Lane128:
		return "128-bit"
	case Lane256:
		return "256-bit"
	default:
		return fmt.Sprintf("lane(%d)", int(l))
	}
}

// ElementType is the arithmetic lane element.
type ElementType int

// Supported element types.
const (
	Float64 ElementType = iota
	Float32
	Int64
	Int32
	Int8
)

// Elements lists every element type in sweep order.
func Elements() []ElementType {
	return []ElementType{Float64, Float32, Int64, Int32, Int8}
}

// Size returns the element size in bytes.
func (e ElementType) Size() uint64 {
	switch e {
	case Float64, Int64:
		return 8
	case Float32, Int32:
		return 4
	case Int8:
		return 1
	default:
		return 0
	}
}

func (e ElementType) String() string {
	switch e {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int64:
		return "int64"
	case Int32:
		return "int32"
	case Int8:
		return "int8"
	default:
		return fmt.Sprintf("element(%d)", int(e))
	}
}

// ParseElement returns the element type named s.
func ParseElement(s string) (ElementType, error) {
	for _, e := range Elements() {
		if strings.EqualFold(e.String(), s) {
			return e, nil
		}
	}

	return 0, fmt.Errorf("unknown element type %q", s)
}

// ElementsPerLane returns how many elements one lane-wide add covers.
// Scalar lanes always hold exactly one element.
func ElementsPerLane(e ElementType, l LaneWidth) uint64 {
	if l == Scalar || e.Size() == 0 {
		return 1
	}

	return l.Bytes() / e.Size()
}

// ParseLane returns the lane width named s.
func ParseLane(s string) (LaneWidth, error) {
	for _, l := range Lanes() {
		if strings.EqualFold(l.String(), s) {
			return l, nil
		}
	}

	return 0, fmt.Errorf("unknown lane width %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l LaneWidth) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *LaneWidth) UnmarshalText(text []byte) error {
	v, err := ParseLane(string(text))
	if err != nil {
		return err
	}

	*l = v

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (e ElementType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *ElementType) UnmarshalText(text []byte) error {
	v, err := ParseElement(string(text))
	if err != nil {
		return err
	}

	*e = v

	return nil
}
