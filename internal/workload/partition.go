// Package workload builds the non-overlapping interval partitions used by
// the benchmark CLI to drive a RangeLock under concurrent load, plus an
// errgroup-based worker pool (RunAcquireRelease), mirroring the scalability
// harness's range generation and per-thread slicing.
package workload

import (
	"math/rand"
	"time"
)

// Interval is a plain [Start, End) pair, independent of the root package so
// this package never needs to import it.
type Interval struct {
	Start, End uint64
}

// NonOverlapping returns count disjoint, shuffled intervals of the given
// size, spaced one apart: a one-unit gap separates neighbours, so they
// neither overlap nor touch.
func NonOverlapping(count int, size uint64) []Interval {
	ranges := make([]Interval, count)
	k := uint64(1)
	for i := range count {
		ranges[i] = Interval{Start: k, End: k + size}
		k += size + 1
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(ranges), func(i, j int) {
		ranges[i], ranges[j] = ranges[j], ranges[i]
	})
	return ranges
}

// Partition splits ranges into numWorkers contiguous, roughly equal slices.
// The final slice absorbs any remainder, so every interval is assigned to
// exactly one worker.
func Partition(ranges []Interval, numWorkers int) [][]Interval {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	perWorker := len(ranges) / numWorkers
	out := make([][]Interval, numWorkers)
	for i := range numWorkers {
		start := i * perWorker
		end := start + perWorker
		if i == numWorkers-1 {
			end = len(ranges)
		}
		out[i] = ranges[start:end]
	}
	return out
}
