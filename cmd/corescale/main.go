// Package main provides the CLI entry point for corescale, a CPU and memory
// throughput scaling benchmark.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/weiihann/corescale/hostinfo"
	"github.com/weiihann/corescale/report"
	"github.com/weiihann/corescale/sweep"
	"github.com/weiihann/corescale/workload"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	// Interrupts take effect between rounds, never inside one.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(logger, level, os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("corescale failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

type globalFlags struct {
	maxThreads int
	outputJSON bool
	verbose    bool
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar, out io.Writer) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "corescale",
		Short: "CPU and memory throughput scaling benchmark",
		Long: `Corescale measures arithmetic throughput and memory bandwidth for scalar,
128-bit and 256-bit lanes on 1..N concurrent workers, and reports how close the
machine comes to linear scaling.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if flags.verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.IntVar(&flags.maxThreads, "max-threads", 0,
		"Upper bound of the thread sweep (0 = hardware concurrency)")
	pf.BoolVar(&flags.outputJSON, "json", false,
		"Output results as JSON instead of tables")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false,
		"Log every measurement round")

	root.AddCommand(
		newComputeCmd(logger, &flags, out),
		newMemoryCmd(logger, &flags, out),
		newInfoCmd(&flags, out),
	)

	return root
}

func newComputeCmd(logger *slog.Logger, flags *globalFlags, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "compute",
		Short: "Measure arithmetic throughput scaling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompute(cmd.Context(), logger, flags, out)
		},
	}
}

func newMemoryCmd(logger *slog.Logger, flags *globalFlags, out io.Writer) *cobra.Command {
	var trials int

	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Measure memory read and write bandwidth scaling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMemory(cmd.Context(), logger, flags, trials, out)
		},
	}

	cmd.Flags().IntVar(&trials, "trials", sweep.DefaultTrials,
		"Rounds averaged per thread count and lane width")

	return cmd
}

func newInfoCmd(flags *globalFlags, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the detected CPU, caches and SIMD features",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			info := hostinfo.Detect()
			if flags.outputJSON {
				return report.GenerateJSON(out, info)
			}

			report.Host(out, info)

			return nil
		},
	}
}

func sweepThreads(info hostinfo.Info, flags *globalFlags) int {
	if flags.maxThreads > 0 {
		return flags.maxThreads
	}

	return info.Threads
}

func runCompute(
	ctx context.Context,
	logger *slog.Logger,
	flags *globalFlags,
	out io.Writer,
) error {
	info := hostinfo.Detect()
	matrix := sweep.DefaultMatrix(sweepThreads(info, flags))

	logger.InfoContext(ctx, "starting compute sweep",
		slog.String("cpu", info.Brand),
		slog.Int("max_threads", len(matrix.Threads)),
		slog.Uint64("ops_per_worker", sweep.DefaultOps),
	)

	results, err := sweep.New(logger).RunCompute(ctx, matrix, sweep.DefaultOps)
	if err != nil {
		return fmt.Errorf("compute sweep: %w", err)
	}

	if flags.outputJSON {
		return report.GenerateJSON(out, results)
	}

	report.Host(out, info)

	return report.Compute(out, info, results)
}

func runMemory(
	ctx context.Context,
	logger *slog.Logger,
	flags *globalFlags,
	trials int,
	out io.Writer,
) error {
	info := hostinfo.Detect()
	threads := sweep.ThreadCounts(sweepThreads(info, flags))

	if info.CacheResident(sweep.DefaultRegionSize) {
		logger.WarnContext(ctx, "region is near cache size, bandwidth will partly reflect cache",
			slog.Int("cache_bytes", info.LargestCache()),
			slog.Uint64("region_bytes", sweep.DefaultRegionSize),
		)
	}

	region, err := workload.NewRegion(sweep.DefaultRegionSize)
	if err != nil {
		return fmt.Errorf("allocate region: %w", err)
	}
	defer region.Close()

	logger.InfoContext(ctx, "starting memory sweep",
		slog.String("cpu", info.Brand),
		slog.Uint64("region_bytes", region.Len()),
		slog.Int("max_threads", len(threads)),
		slog.Int("trials", trials),
	)

	rows, err := sweep.New(logger).RunMemory(ctx, region, workload.Lanes(), threads, trials)
	if err != nil {
		return fmt.Errorf("memory sweep: %w", err)
	}

	if flags.outputJSON {
		return report.GenerateJSON(out, rows)
	}

	report.Host(out, info)

	return report.Memory(out, info, region.Len(), rows)
}
