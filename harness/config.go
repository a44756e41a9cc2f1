package harness

import (
	"errors"
	"fmt"

	"github.com/weiihann/corescale/workload"
)

// ErrInvalidThreads is returned when a round is requested with fewer than
// one worker.
var ErrInvalidThreads = errors.New("thread count must be at least 1")

// Config describes one benchmark case. It is built per case and consumed by
// exactly one Runner.Run call.
type Config struct {
	// Work is the operation count each worker runs, or the total shared
	// among workers when Split is set.
	Work    uint64               `json:"work"`
	Threads int                  `json:"threads"`
	Lane    workload.LaneWidth   `json:"lane"`
	Element workload.ElementType `json:"element"`
	Split   bool                 `json:"split"`
}

// Validate reports whether the config can be run.
func (c Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreads, c.Threads)
	}

	return nil
}

// Granule is the unit Work is floored to: one lane of elements, times the
// thread count for split configs so every share is lane aligned.
func (c Config) Granule() uint64 {
	g := workload.ElementsPerLane(c.Element, c.Lane)
	if c.Split && c.Threads > 0 {
		g *= uint64(c.Threads)
	}

	return g
}

// Effective returns Work floored to a multiple of Granule. The dropped tail
// is never executed or counted.
func (c Config) Effective() uint64 {
	g := c.Granule()

	return c.Work / g * g
}

// Shares lays out one round of the config: Effective split into Threads
// lane-aligned disjoint ranges when Split, otherwise Threads copies of the
// full count.
func (c Config) Shares() ([]Share, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.Split {
		return Partition(c.Effective(), c.Threads)
	}

	return Replicate(c.Effective(), c.Threads)
}

func (c Config) String() string {
	return fmt.Sprintf("%s/%s/%dT", c.Element, c.Lane, c.Threads)
}
