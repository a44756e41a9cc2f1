package harness

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// published receives the folded sink of every round so the compiler must
// treat each worker's accumulator as live.
var published atomic.Uint64

// Published returns the sink of the most recent round.
func Published() uint64 {
	return published.Load()
}

// Runner launches rounds of workers and aggregates their timings.
type Runner struct {
	Logger *slog.Logger
}

// NewRunner creates a Runner that logs through logger.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		Logger: logger.With(slog.String("component", "harness")),
	}
}

// RunRound starts one fresh goroutine per share, each locked to its own OS
// thread, and returns once every worker has finished. There is no pool and
// no early exit: the round ends with its slowest worker. A panicking worker
// aborts the round.
//
// ctx is only consulted before the round starts.
func (r *Runner) RunRound(
	ctx context.Context,
	shares []Share,
	w Worker,
) (Round, error) {
	if len(shares) == 0 {
		return Round{}, ErrInvalidThreads
	}

	if err := ctx.Err(); err != nil {
		return Round{}, err
	}

	results := make([]WorkerResult, len(shares))

	var g errgroup.Group

	for i, s := range shares {
		i, s := i, s
		g.Go(func() (err error) {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("worker %d: %v", s.Index, p)
				}
			}()

			results[i] = w.Work(s)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Round{}, fmt.Errorf("round of %d: %w", len(shares), err)
	}

	round := Round{Results: results}
	published.Store(round.Sink())

	r.Logger.DebugContext(ctx, "round finished",
		slog.Int("threads", round.Threads()),
		slog.Uint64("work", round.TotalWork()),
		slog.Duration("max_elapsed", round.MaxElapsed()),
	)

	return round, nil
}

// Measure runs a single round of cfg.Threads workers over cfg.Shares.
func (r *Runner) Measure(ctx context.Context, cfg Config, w Worker) (Round, error) {
	shares, err := cfg.Shares()
	if err != nil {
		return Round{}, err
	}

	round, err := r.RunRound(ctx, shares, w)
	if err != nil {
		return Round{}, fmt.Errorf("measure %s: %w", cfg, err)
	}

	return round, nil
}

// Run measures cfg: a single-worker baseline round followed by a round of
// cfg.Threads workers. The multi-worker rate is the total work divided by
// the slowest worker's elapsed time.
func (r *Runner) Run(ctx context.Context, cfg Config, w Worker) (*Aggregate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	work := cfg.Effective()

	baseline, err := Replicate(work, 1)
	if err != nil {
		return nil, err
	}

	single, err := r.RunRound(ctx, baseline, w)
	if err != nil {
		return nil, fmt.Errorf("baseline %s: %w", cfg, err)
	}

	multi, err := r.Measure(ctx, cfg, w)
	if err != nil {
		return nil, err
	}

	agg := &Aggregate{
		Config:     cfg,
		SingleRate: single.Rate(),
		MultiRate:  multi.Rate(),
	}
	agg.ScalingRatio = Scaling(agg.SingleRate, agg.MultiRate)
	agg.Efficiency = agg.ScalingRatio / float64(cfg.Threads)

	r.Logger.InfoContext(ctx, "configuration measured",
		slog.String("element", cfg.Element.String()),
		slog.String("lane", cfg.Lane.String()),
		slog.Int("threads", cfg.Threads),
		slog.Float64("single_rate", agg.SingleRate),
		slog.Float64("multi_rate", agg.MultiRate),
		slog.Float64("scaling", agg.ScalingRatio),
	)

	return agg, nil
}
