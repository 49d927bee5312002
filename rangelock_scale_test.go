package rangelock

import (
	"os"
	"runtime/pprof"
	"sync"
	"testing"

	"github.com/metailurini/rangelock/internal/workload"
	"github.com/stretchr/testify/require"
)

// TestDisjointPartitioningAtScale runs concrete scenario 3 of the testable
// properties: one million disjoint, shuffled [k, k+256) intervals split
// across 16 goroutines. Every TryLock must succeed, size() must reach
// 1,000,000, and releasing every slice must return size() to 0. It is gated
// behind -short because a full run moves a million nodes through every
// variant, not because the property is optional.
func TestDisjointPartitioningAtScale(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping scale test in -short mode")
	}

	t.Cleanup(func() {
		if t.Failed() {
			pprof.Lookup("goroutine").WriteTo(os.Stderr, 2)
		}
	})

	const n = 1_000_000
	const numWorkers = 16

	ranges := workload.NonOverlapping(n, 256)
	partitions := workload.Partition(ranges, numWorkers)

	for _, v := range allVariants {
		v := v
		t.Run(v.String(), func(t *testing.T) {
			l := New(v, WithMaxLevel(16))

			var wg sync.WaitGroup
			for _, slice := range partitions {
				slice := slice
				wg.Add(1)
				go func() {
					defer wg.Done()
					for _, iv := range slice {
						require.True(t, l.TryLock(iv.Start, iv.End))
					}
				}()
			}
			wg.Wait()
			require.Equal(t, n, l.Size())

			for _, slice := range partitions {
				slice := slice
				wg.Add(1)
				go func() {
					defer wg.Done()
					for _, iv := range slice {
						require.True(t, l.ReleaseLock(iv.Start, iv.End))
					}
				}()
			}
			wg.Wait()
			require.Equal(t, 0, l.Size())
		})
	}
}
