package harness

import "time"

// Unit runs the work for one share and returns the amount actually done and
// the final accumulator.
type Unit func(s Share) (done, sink uint64)

// Worker executes one share and reports how long it took.
type Worker interface {
	Work(s Share) WorkerResult
}

// WorkerFunc adapts a function to the Worker interface.
type WorkerFunc func(s Share) WorkerResult

// Work calls f(s).
func (f WorkerFunc) Work(s Share) WorkerResult {
	return f(s)
}

// Timed wraps u so that exactly one invocation is bracketed by two
// monotonic clock samples. Nothing else runs inside the timed window.
func Timed(u Unit) Worker {
	return WorkerFunc(func(s Share) WorkerResult {
		start := time.Now()
		done, sink := u(s)
		elapsed := time.Since(start)

		return WorkerResult{
			Worker:  s.Index,
			Elapsed: elapsed,
			Work:    done,
			Sink:    sink,
		}
	})
}
