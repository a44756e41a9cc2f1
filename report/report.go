// Package report formats sweep results into markdown tables or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/weiihann/corescale/harness"
	"github.com/weiihann/corescale/hostinfo"
	"github.com/weiihann/corescale/sweep"
)

// Host writes the machine description that heads every report.
func Host(w io.Writer, info hostinfo.Info) {
	brand := info.Brand
	if brand == "" {
		brand = "unknown"
	}

	fmt.Fprintln(w, "## Host")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "CPU: %s (%s)\n", brand, info.Arch)
	fmt.Fprintf(w, "Cores: %d physical, %d logical, %d usable threads\n",
		info.PhysicalCores, info.LogicalCores, info.Threads)
	fmt.Fprintf(w, "Cache: L1d %s, L2 %s, L3 %s\n",
		formatCache(info.L1DataBytes),
		formatCache(info.L2Bytes),
		formatCache(info.L3Bytes),
	)

	features := "none"
	if len(info.Features) > 0 {
		features = strings.Join(info.Features, ", ")
	}

	fmt.Fprintf(w, "SIMD: %s\n", features)
	fmt.Fprintln(w)
}

// Compute writes the arithmetic throughput table.
func Compute(w io.Writer, info hostinfo.Info, results []harness.Aggregate) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "## Arithmetic Throughput")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s operations per worker\n", formatOps(results[0].Config.Work))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| ISA | Type | Threads | Single | Multi "+
		"| Scaling | Efficiency |")
	fmt.Fprintln(w, "|-----|------|---------|--------|-------"+
		"|---------|------------|")

	for _, r := range results {
		fmt.Fprintf(w, "| %s | %s | %d | %s | %s | %.2fx | %.0f%% |\n",
			info.ISA(r.Config.Lane),
			r.Config.Element,
			r.Config.Threads,
			formatGOPS(r.SingleRate),
			formatGOPS(r.MultiRate),
			r.ScalingRatio,
			r.Efficiency*100,
		)
	}

	return nil
}

// Memory writes the bandwidth table for a region of regionBytes.
func Memory(w io.Writer, info hostinfo.Info, regionBytes uint64, rows []sweep.Bandwidth) error {
	if len(rows) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "## Memory Bandwidth")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s region, %d trials per row\n",
		formatBytes(regionBytes), rows[0].Trials)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Threads | ISA | Read | Write | Read/Write | Read Scaling |")
	fmt.Fprintln(w, "|---------|-----|------|-------|------------|--------------|")

	for _, r := range rows {
		fmt.Fprintf(w, "| %d | %s | %s | %s | %.2fx | %.2fx |\n",
			r.Threads,
			info.ISA(r.Lane),
			formatGiBps(r.ReadGiBps),
			formatGiBps(r.WriteGiBps),
			r.Ratio,
			r.ReadScaling,
		)
	}

	return nil
}

// GenerateJSON writes v as indented JSON to w.
func GenerateJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func formatGOPS(rate float64) string {
	return fmt.Sprintf("%.2f GOP/s", rate/1e9)
}

func formatGiBps(gibps float64) string {
	return fmt.Sprintf("%.2f GiB/s", gibps)
}

func formatOps(ops uint64) string {
	switch {
	case ops >= 1e9 && ops%1e9 == 0:
		return fmt.Sprintf("%dG", ops/1e9)
	case ops >= 1e6 && ops%1e6 == 0:
		return fmt.Sprintf("%dM", ops/1e6)
	default:
		return fmt.Sprintf("%d", ops)
	}
}

func formatCache(b int) string {
	if b <= 0 {
		return "?"
	}

	return formatBytes(uint64(b))
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
