// Package harness runs one unit of work across concurrently executing
// workers, times each worker in isolation, and reduces the per-worker times
// into group throughput and scaling figures.
package harness

import "time"

// WorkerResult holds the outcome of one worker in a round.
type WorkerResult struct {
	Worker  int           `json:"worker"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Work    uint64        `json:"work"`
	// Sink is the worker's private copy of its final accumulator.
	Sink uint64 `json:"sink"`
}

// Seconds returns the elapsed time in seconds.
func (w WorkerResult) Seconds() float64 {
	return w.Elapsed.Seconds()
}

// Round is the set of worker results from one concurrent execution.
type Round struct {
	Results []WorkerResult `json:"results"`
}

// Threads returns the number of workers in the round.
func (r Round) Threads() int {
	return len(r.Results)
}

// MaxElapsed returns the elapsed time of the slowest worker. The round
// cannot have finished sooner than this.
func (r Round) MaxElapsed() time.Duration {
	var longest time.Duration
	for _, w := range r.Results {
		if w.Elapsed > longest {
			longest = w.Elapsed
		}
	}

	return longest
}

// TotalWork returns the operations or bytes processed by all workers.
func (r Round) TotalWork() uint64 {
	var total uint64
	for _, w := range r.Results {
		total += w.Work
	}

	return total
}

// Rate returns the round throughput: total work divided by the slowest
// worker's elapsed seconds. A round with no measurable time has rate 0.
func (r Round) Rate() float64 {
	seconds := r.MaxElapsed().Seconds()
	if seconds <= 0 {
		return 0
	}

	return float64(r.TotalWork()) / seconds
}

// Sink folds the private sink slots of every worker.
func (r Round) Sink() uint64 {
	var sum uint64
	for _, w := range r.Results {
		sum += w.Sink
	}

	return sum
}

// Aggregate is the measured result for one Config.
type Aggregate struct {
	Config       Config  `json:"config"`
	SingleRate   float64 `json:"single_rate"`
	MultiRate    float64 `json:"multi_rate"`
	ScalingRatio float64 `json:"scaling_ratio"`
	Efficiency   float64 `json:"efficiency"`
}
