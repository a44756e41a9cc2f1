package sweep

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/onsi/gomega"

	"github.com/weiihann/corescale/harness"
	"github.com/weiihann/corescale/workload"
)

func newTestSweep() *Sweep {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func constant(elapsed time.Duration) harness.Worker {
	return harness.WorkerFunc(func(s harness.Share) harness.WorkerResult {
		return harness.WorkerResult{Worker: s.Index, Elapsed: elapsed, Work: s.Len}
	})
}

func TestThreadCounts(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(ThreadCounts(4)).To(gomega.Equal([]int{1, 2, 3, 4}))
	g.Expect(ThreadCounts(1)).To(gomega.Equal([]int{1}))
	g.Expect(ThreadCounts(0)).To(gomega.Equal([]int{1}))
}

func TestDefaultMatrix(t *testing.T) {
	g := gomega.NewWithT(t)

	m := DefaultMatrix(8)
	g.Expect(m.Elements).To(gomega.HaveLen(5))
	g.Expect(m.Lanes).To(gomega.HaveLen(3))
	g.Expect(m.Threads).To(gomega.HaveLen(8))
}

func TestRunComputeEnumeratesMatrix(t *testing.T) {
	g := gomega.NewWithT(t)

	s := newTestSweep()

	var built []string

	s.Arithmetic = func(e workload.ElementType, l workload.LaneWidth) harness.Worker {
		built = append(built, e.String()+"/"+l.String())

		return constant(time.Second)
	}

	m := Matrix{
		Elements: []workload.ElementType{workload.Float64, workload.Int8},
		Lanes:    []workload.LaneWidth{workload.Scalar, workload.Lane256},
		Threads:  []int{1, 2, 4},
	}

	results, err := s.RunCompute(context.Background(), m, DefaultOps)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(results).To(gomega.HaveLen(12))
	g.Expect(built).To(gomega.Equal([]string{
		"float64/scalar", "float64/256-bit", "int8/scalar", "int8/256-bit",
	}))

	for i, agg := range results {
		threads := m.Threads[i%len(m.Threads)]

		g.Expect(agg.Config.Threads).To(gomega.Equal(threads))
		g.Expect(agg.SingleRate).To(gomega.Equal(1e9))
		g.Expect(agg.MultiRate).To(gomega.Equal(float64(threads) * 1e9))
		g.Expect(agg.ScalingRatio).To(gomega.Equal(float64(threads)))
	}
}

func TestGiBps(t *testing.T) {
	g := gomega.NewWithT(t)

	half := uint64(GiB / 2)
	round := harness.Round{Results: []harness.WorkerResult{
		{Worker: 0, Elapsed: 500 * time.Millisecond, Work: half},
		{Worker: 1, Elapsed: 500 * time.Millisecond, Work: half},
	}}

	g.Expect(GiBps(round)).To(gomega.Equal(2.0))
}

// recorder is a memory factory that reports fixed read and write times and
// remembers every share it was handed.
type recorder struct {
	mu     sync.Mutex
	shares map[bool][]harness.Share
	read   []time.Duration
	write  time.Duration
	reads  int
}

func (r *recorder) factory(_ *workload.Region, _ workload.LaneWidth, write bool) harness.Worker {
	r.mu.Lock()

	elapsed := r.write
	if !write {
		elapsed = r.read[r.reads%len(r.read)]
		r.reads++
	}
	r.mu.Unlock()

	return harness.WorkerFunc(func(s harness.Share) harness.WorkerResult {
		r.mu.Lock()
		r.shares[write] = append(r.shares[write], s)
		r.mu.Unlock()

		return harness.WorkerResult{Worker: s.Index, Elapsed: elapsed, Work: s.Len}
	})
}

func newRegion(t *testing.T, size uint64) *workload.Region {
	t.Helper()

	region, err := workload.NewRegion(size)
	if err != nil {
		t.Fatalf("NewRegion failed: %v", err)
	}

	t.Cleanup(func() { region.Close() })

	return region
}

func TestRunMemoryDisjointShares(t *testing.T) {
	g := gomega.NewWithT(t)

	rec := &recorder{
		shares: map[bool][]harness.Share{},
		read:   []time.Duration{500 * time.Millisecond},
		write:  time.Second,
	}

	s := newTestSweep()
	s.Memory = rec.factory

	rows, err := s.RunMemory(context.Background(), newRegion(t, 4096),
		[]workload.LaneWidth{workload.Scalar}, []int{4}, 1)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(rows).To(gomega.HaveLen(1))

	want := [][2]uint64{{0, 1024}, {1024, 2048}, {2048, 3072}, {3072, 4096}}

	for _, write := range []bool{true, false} {
		shares := rec.shares[write]
		sort.Slice(shares, func(i, j int) bool { return shares[i].Offset < shares[j].Offset })

		g.Expect(shares).To(gomega.HaveLen(4))

		for i, sh := range shares {
			g.Expect([2]uint64{sh.Offset, sh.End()}).To(gomega.Equal(want[i]))
		}
	}

	g.Expect(rows[0].Ratio).To(gomega.Equal(2.0))
}

func TestRunMemoryAveragesTrials(t *testing.T) {
	g := gomega.NewWithT(t)

	rec := &recorder{
		shares: map[bool][]harness.Share{},
		read:   []time.Duration{500 * time.Millisecond, 250 * time.Millisecond},
		write:  time.Second,
	}

	s := newTestSweep()
	s.Memory = rec.factory

	rows, err := s.RunMemory(context.Background(), newRegion(t, 4096),
		[]workload.LaneWidth{workload.Lane128}, []int{1, 2}, 2)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(rows).To(gomega.HaveLen(2))

	fast := 4096 / 0.25 / GiB
	slow := 4096 / 0.5 / GiB
	write := 4096 / 1.0 / GiB

	for _, row := range rows {
		g.Expect(row.Trials).To(gomega.Equal(2))
		g.Expect(row.ReadGiBps).To(gomega.BeNumerically("~", (slow+fast)/2, 1e-12))
		g.Expect(row.WriteGiBps).To(gomega.BeNumerically("~", write, 1e-12))
		g.Expect(row.ReadScaling).To(gomega.BeNumerically("~", 1.0, 1e-9))
	}

	g.Expect(rows[0].Threads).To(gomega.Equal(1))
	g.Expect(rows[1].Threads).To(gomega.Equal(2))
}

func TestRunMemoryRealKernels(t *testing.T) {
	g := gomega.NewWithT(t)

	region := newRegion(t, 1<<16)

	rows, err := newTestSweep().RunMemory(context.Background(), region,
		workload.Lanes(), []int{1, 2, 3}, 1)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(rows).To(gomega.HaveLen(9))

	for _, row := range rows {
		g.Expect(row.ReadGiBps).To(gomega.BeNumerically(">=", 0))
		g.Expect(row.WriteGiBps).To(gomega.BeNumerically(">=", 0))
	}

	// The scalar write of the first round covered the whole region.
	done, sink := workload.Read(workload.Scalar)(region.Slice(0, region.Len()))
	g.Expect(done).To(gomega.Equal(region.Len()))
	g.Expect(sink).To(gomega.Equal(workload.Pattern * (region.Len() / 8)))
}

func TestFillReadScaling(t *testing.T) {
	g := gomega.NewWithT(t)

	rows := []Bandwidth{
		{Threads: 1, Lane: workload.Scalar, ReadGiBps: 10},
		{Threads: 1, Lane: workload.Lane256, ReadGiBps: 20},
		{Threads: 2, Lane: workload.Scalar, ReadGiBps: 18},
		{Threads: 2, Lane: workload.Lane256, ReadGiBps: 30},
	}

	fillReadScaling(rows)

	g.Expect(rows[0].ReadScaling).To(gomega.Equal(1.0))
	g.Expect(rows[1].ReadScaling).To(gomega.Equal(1.0))
	g.Expect(rows[2].ReadScaling).To(gomega.Equal(1.8))
	g.Expect(rows[3].ReadScaling).To(gomega.Equal(1.5))
}

func TestFillReadScalingUsesOneThreadRow(t *testing.T) {
	g := gomega.NewWithT(t)

	rows := []Bandwidth{
		{Threads: 4, Lane: workload.Scalar, ReadGiBps: 30},
		{Threads: 2, Lane: workload.Scalar, ReadGiBps: 18},
		{Threads: 1, Lane: workload.Scalar, ReadGiBps: 10},
		{Threads: 2, Lane: workload.Lane128, ReadGiBps: 12},
	}

	fillReadScaling(rows)

	g.Expect(rows[0].ReadScaling).To(gomega.Equal(3.0))
	g.Expect(rows[1].ReadScaling).To(gomega.Equal(1.8))
	g.Expect(rows[2].ReadScaling).To(gomega.Equal(1.0))
	g.Expect(rows[3].ReadScaling).To(gomega.BeZero())
}

func TestMemoryConfigSplitsRegion(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := MemoryConfig(4096, 3, workload.Lane256)
	g.Expect(cfg.Split).To(gomega.BeTrue())

	shares, err := cfg.Shares()
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(shares).To(gomega.HaveLen(3))

	for _, sh := range shares {
		g.Expect(sh.Len).To(gomega.Equal(uint64(1344)))
		g.Expect(sh.Offset % workload.Lane256.Bytes()).To(gomega.BeZero())
	}
}

func TestRunMemoryLaneAlignedShares(t *testing.T) {
	g := gomega.NewWithT(t)

	rec := &recorder{
		shares: map[bool][]harness.Share{},
		read:   []time.Duration{time.Second},
		write:  time.Second,
	}

	s := newTestSweep()
	s.Memory = rec.factory

	_, err := s.RunMemory(context.Background(), newRegion(t, 4096),
		[]workload.LaneWidth{workload.Lane256}, []int{3}, 1)
	g.Expect(err).NotTo(gomega.HaveOccurred())

	for _, write := range []bool{true, false} {
		shares := rec.shares[write]
		sort.Slice(shares, func(i, j int) bool { return shares[i].Offset < shares[j].Offset })

		g.Expect(shares).To(gomega.HaveLen(3))
		g.Expect(shares[2].End()).To(gomega.Equal(uint64(4032)))

		for _, sh := range shares {
			g.Expect(sh.Len % workload.Lane256.Bytes()).To(gomega.BeZero())
		}
	}
}
