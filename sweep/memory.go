package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weiihann/corescale/harness"
	"github.com/weiihann/corescale/workload"
)

// Bandwidth is one row of the memory sweep. Bandwidths are GiB/s averaged
// over Trials rounds.
type Bandwidth struct {
	Threads     int                `json:"threads"`
	Lane        workload.LaneWidth `json:"lane"`
	Trials      int                `json:"trials"`
	ReadGiBps   float64            `json:"read_gibps"`
	WriteGiBps  float64            `json:"write_gibps"`
	Ratio       float64            `json:"read_write_ratio"`
	ReadScaling float64            `json:"read_scaling"`
}

// GiBps converts a round's byte rate to GiB/s.
func GiBps(round harness.Round) float64 {
	return round.Rate() / GiB
}

// RunMemory measures write then read bandwidth over region for every lane
// and thread count. Each round is a split harness.Config over the region's
// bytes, so every thread count reuses the same region cut into disjoint
// lane-aligned shares.
func (s *Sweep) RunMemory(
	ctx context.Context,
	region *workload.Region,
	lanes []workload.LaneWidth,
	threads []int,
	trials int,
) ([]Bandwidth, error) {
	trials = max(trials, 1)
	rows := make([]Bandwidth, 0, len(threads)*len(lanes))

	for _, t := range threads {
		reads := make([]float64, len(lanes))
		writes := make([]float64, len(lanes))

		for trial := 0; trial < trials; trial++ {
			for i, l := range lanes {
				cfg := MemoryConfig(region.Len(), t, l)

				wr, err := s.Runner.Measure(ctx, cfg, s.Memory(region, l, true))
				if err != nil {
					return nil, fmt.Errorf("write %s: %w", cfg, err)
				}

				rd, err := s.Runner.Measure(ctx, cfg, s.Memory(region, l, false))
				if err != nil {
					return nil, fmt.Errorf("read %s: %w", cfg, err)
				}

				writes[i] += GiBps(wr)
				reads[i] += GiBps(rd)
			}
		}

		for i, l := range lanes {
			row := Bandwidth{
				Threads:    t,
				Lane:       l,
				Trials:     trials,
				ReadGiBps:  reads[i] / float64(trials),
				WriteGiBps: writes[i] / float64(trials),
			}
			row.Ratio = harness.Scaling(row.WriteGiBps, row.ReadGiBps)
			rows = append(rows, row)
		}

		s.Logger.InfoContext(ctx, "memory thread count measured",
			slog.Int("threads", t),
			slog.Int("trials", trials),
		)
	}

	fillReadScaling(rows)

	return rows, nil
}

// MemoryConfig is the split config of one bandwidth round: size bytes
// shared by threads workers. Elements are bytes, so wide lanes floor each
// share to whole lanes.
func MemoryConfig(size uint64, threads int, l workload.LaneWidth) harness.Config {
	return harness.Config{
		Work:    size,
		Threads: threads,
		Lane:    l,
		Element: workload.Int8,
		Split:   true,
	}
}

// fillReadScaling sets each row's read scaling against the one-thread row
// of the same lane, wherever it appears. Lanes without a one-thread row
// keep a zero scaling.
func fillReadScaling(rows []Bandwidth) {
	base := make(map[workload.LaneWidth]float64)

	for _, r := range rows {
		if r.Threads == 1 {
			base[r.Lane] = r.ReadGiBps
		}
	}

	for i := range rows {
		rows[i].ReadScaling = harness.Scaling(base[rows[i].Lane], rows[i].ReadGiBps)
	}
}
