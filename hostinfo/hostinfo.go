// Package hostinfo describes the machine a sweep runs on: CPU identity,
// cache sizes, SIMD features and the hardware concurrency that bounds the
// thread-count sweep.
package hostinfo

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sys/cpu"

	"github.com/weiihann/corescale/workload"
)

// Info is captured once at startup.
type Info struct {
	Brand         string   `json:"brand"`
	Vendor        string   `json:"vendor"`
	Arch          string   `json:"arch"`
	PhysicalCores int      `json:"physical_cores"`
	LogicalCores  int      `json:"logical_cores"`
	Threads       int      `json:"threads"`
	L1DataBytes   int      `json:"l1d_bytes"`
	L2Bytes       int      `json:"l2_bytes"`
	L3Bytes       int      `json:"l3_bytes"`
	Features      []string `json:"features"`
}

// Detect probes the current machine.
func Detect() Info {
	return Info{
		Brand:         cpuid.CPU.BrandName,
		Vendor:        cpuid.CPU.VendorString,
		Arch:          runtime.GOARCH,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		Threads:       runtime.NumCPU(),
		L1DataBytes:   cpuid.CPU.Cache.L1D,
		L2Bytes:       cpuid.CPU.Cache.L2,
		L3Bytes:       cpuid.CPU.Cache.L3,
		Features:      simdFeatures(),
	}
}

// LargestCache returns the size of the outermost known cache level, or 0.
func (i Info) LargestCache() int {
	for _, c := range []int{i.L3Bytes, i.L2Bytes, i.L1DataBytes} {
		if c > 0 {
			return c
		}
	}

	return 0
}

// cacheMultiple is how many times the largest cache a streaming region must
// span before hits stop dominating its bandwidth.
const cacheMultiple = 4

// CacheResident reports whether a region of size bytes is small enough that
// a large share of it stays cached between passes. It is false when no cache
// size is known.
func (i Info) CacheResident(size uint64) bool {
	c := i.LargestCache()
	if c <= 0 {
		return false
	}

	return size < cacheMultiple*uint64(c)
}

// ISA returns the instruction-set label used for a lane width on this
// architecture.
func (i Info) ISA(l workload.LaneWidth) string {
	return isaLabel(i.Arch, l)
}

func isaLabel(arch string, l workload.LaneWidth) string {
	switch arch {
	case "amd64", "386":
		switch l {
		case workload.Lane128:
			return "SSE"
		case workload.Lane256:
			return "AVX"
		default:
			return "x86"
		}
	case "arm64":
		switch l {
		case workload.Lane128:
			return "NEON"
		case workload.Lane256:
			return "NEONx2"
		default:
			return "arm64"
		}
	default:
		return l.String()
	}
}

func simdFeatures() []string {
	var out []string

	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE2, "SSE2")
		add(cpu.X86.HasSSE41, "SSE4.1")
		add(cpu.X86.HasSSE42, "SSE4.2")
		add(cpu.X86.HasAVX, "AVX")
		add(cpu.X86.HasAVX2, "AVX2")
		add(cpu.X86.HasFMA, "FMA")
		add(cpu.X86.HasAVX512F, "AVX512F")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "ASIMD")
		add(cpu.ARM64.HasFPHP, "FPHP")
		add(cpu.ARM64.HasSVE, "SVE")
	}

	return out
}
