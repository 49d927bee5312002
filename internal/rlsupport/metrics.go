package rlsupport

import (
	"math/bits"
	"runtime"
	"sync/atomic"
)

type metricShard struct {
	casRetries   atomic.Int64
	casSuccesses atomic.Int64
	overlaps     atomic.Int64
	misuses      atomic.Int64
	length       atomic.Int64
	// Pad to cache line size to prevent false sharing.
	_ [24]byte
}

// Metrics is a sharded set of diagnostic counters. Counters are diagnostic
// only (spec: "elementsCount uses relaxed ordering"); they are read by
// benchmarks and CLI reporting, never consulted for correctness.
type Metrics struct {
	shards []metricShard
	mask   uint32
	rng    *RNG
}

// NewMetrics returns a Metrics sharded across GOMAXPROCS shards.
func NewMetrics(rng *RNG) *Metrics {
	shardCount := nextPowerOfTwo(runtime.GOMAXPROCS(0))
	return &Metrics{
		shards: make([]metricShard, shardCount),
		mask:   uint32(shardCount - 1),
		rng:    rng,
	}
}

func nextPowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(v-1))
}

func (m *Metrics) shard() *metricShard {
	if len(m.shards) == 1 || m.rng == nil {
		return &m.shards[0]
	}
	idx := uint32(m.rng.next64()) & m.mask
	return &m.shards[idx]
}

func (m *Metrics) IncCASRetry()   { m.shard().casRetries.Add(1) }
func (m *Metrics) IncCASSuccess() { m.shard().casSuccesses.Add(1) }
func (m *Metrics) IncOverlap()    { m.shard().overlaps.Add(1) }
func (m *Metrics) IncMisuse()     { m.shard().misuses.Add(1) }
func (m *Metrics) AddLen(d int64) { m.shard().length.Add(d) }

// Len returns the current diagnostic element count across all shards.
func (m *Metrics) Len() int64 {
	var total int64
	for i := range m.shards {
		total += m.shards[i].length.Load()
	}
	return total
}

// Snapshot reports the accumulated counters across all shards.
func (m *Metrics) Snapshot() (casRetries, casSuccesses, overlaps, misuses int64) {
	for i := range m.shards {
		casRetries += m.shards[i].casRetries.Load()
		casSuccesses += m.shards[i].casSuccesses.Load()
		overlaps += m.shards[i].overlaps.Load()
		misuses += m.shards[i].misuses.Load()
	}
	return
}
