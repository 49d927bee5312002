package workload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNonOverlappingHasDistinctNonEmptyIntervals(t *testing.T) {
	ranges := NonOverlapping(1000, 256)
	require.Len(t, ranges, 1000)

	byStart := make(map[uint64]Interval, len(ranges))
	for _, iv := range ranges {
		require.Greater(t, iv.End, iv.Start)
		byStart[iv.Start] = iv
	}
	require.Len(t, byStart, 1000)
}

func TestPartitionCoversEveryInterval(t *testing.T) {
	ranges := NonOverlapping(103, 8)
	parts := Partition(ranges, 8)
	require.Len(t, parts, 8)

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	require.Equal(t, len(ranges), total)
}

type fakeLock struct{}

func (fakeLock) TryLock(start, end uint64) bool     { return true }
func (fakeLock) ReleaseLock(start, end uint64) bool { return true }

func TestRunAcquireReleaseCountsEveryInterval(t *testing.T) {
	ranges := NonOverlapping(64, 16)
	parts := Partition(ranges, 4)

	results, err := RunAcquireRelease(context.Background(), fakeLock{}, parts, 32)
	require.NoError(t, err)

	total := 0
	for _, r := range results {
		total += r.Acquired
	}
	require.Equal(t, len(ranges), total)
}
