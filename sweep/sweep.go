// Package sweep runs the fixed benchmark matrix: every element type and lane
// width across thread counts 1..N for arithmetic throughput, and every lane
// width across the same thread counts for memory bandwidth.
package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weiihann/corescale/harness"
	"github.com/weiihann/corescale/workload"
)

// Fixed measurement constants.
const (
	DefaultOps        uint64 = 1_000_000_000
	DefaultRegionSize uint64 = 1 << 30
	DefaultTrials            = 5

	GiB = 1 << 30
)

// Matrix is the declared set of configurations a sweep enumerates.
type Matrix struct {
	Elements []workload.ElementType
	Lanes    []workload.LaneWidth
	Threads  []int
}

// DefaultMatrix covers every element type and lane width for thread counts
// 1..maxThreads.
func DefaultMatrix(maxThreads int) Matrix {
	return Matrix{
		Elements: workload.Elements(),
		Lanes:    workload.Lanes(),
		Threads:  ThreadCounts(maxThreads),
	}
}

// ThreadCounts returns 1..n. A non-positive n yields just the single-thread
// case.
func ThreadCounts(n int) []int {
	n = max(n, 1)

	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}

	return out
}

// ComputeFactory builds the timed worker for an arithmetic configuration.
type ComputeFactory func(e workload.ElementType, l workload.LaneWidth) harness.Worker

// MemoryFactory builds the timed worker that reads or writes its share of
// region.
type MemoryFactory func(region *workload.Region, l workload.LaneWidth, write bool) harness.Worker

// Sweep enumerates a Matrix through a harness.Runner.
type Sweep struct {
	Runner     *harness.Runner
	Logger     *slog.Logger
	Arithmetic ComputeFactory
	Memory     MemoryFactory
}

// New creates a Sweep backed by the real workload kernels.
func New(logger *slog.Logger) *Sweep {
	return &Sweep{
		Runner:     harness.NewRunner(logger),
		Logger:     logger.With(slog.String("component", "sweep")),
		Arithmetic: ArithmeticWorker,
		Memory:     MemoryWorker,
	}
}

// ArithmeticWorker times the accumulation kernel over the share length.
func ArithmeticWorker(e workload.ElementType, l workload.LaneWidth) harness.Worker {
	kernel := workload.Arithmetic(e, l)

	return harness.Timed(func(s harness.Share) (uint64, uint64) {
		return kernel(s.Len)
	})
}

// MemoryWorker times a read or write kernel over the worker's slice of
// region.
func MemoryWorker(region *workload.Region, l workload.LaneWidth, write bool) harness.Worker {
	kernel := workload.Read(l)
	if write {
		kernel = workload.Write(l)
	}

	return harness.Timed(func(s harness.Share) (uint64, uint64) {
		return kernel(region.Slice(s.Offset, s.Len))
	})
}

// RunCompute measures ops additions per worker for every element type, lane
// width and thread count in m.
func (s *Sweep) RunCompute(
	ctx context.Context,
	m Matrix,
	ops uint64,
) ([]harness.Aggregate, error) {
	results := make([]harness.Aggregate, 0,
		len(m.Elements)*len(m.Lanes)*len(m.Threads))

	for _, e := range m.Elements {
		for _, l := range m.Lanes {
			w := s.Arithmetic(e, l)

			for _, t := range m.Threads {
				agg, err := s.Runner.Run(ctx, harness.Config{
					Work:    ops,
					Threads: t,
					Lane:    l,
					Element: e,
				}, w)
				if err != nil {
					return nil, fmt.Errorf("compute %s/%s: %w", e, l, err)
				}

				results = append(results, *agg)
			}
		}
	}

	s.Logger.InfoContext(ctx, "compute sweep complete",
		slog.Int("configurations", len(results)),
	)

	return results, nil
}
