package workload

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Locker is the subset of rangelock.RangeLock the harness needs. It is
// declared locally so this package never imports the root package.
type Locker interface {
	TryLock(start, end uint64) bool
	ReleaseLock(start, end uint64) bool
}

// Result summarises one worker's pass over its interval slice.
type Result struct {
	Acquired int
	Rejected int
}

// RunAcquireRelease spawns one goroutine per slice of partitioned intervals,
// each acquiring then immediately releasing every interval in its slice and
// touching a private byte buffer in between — the Go equivalent of the
// original harness's shared-memory memset, without needing raw mmap since
// each worker's buffer is private and never contended.
func RunAcquireRelease(ctx context.Context, l Locker, partitions [][]Interval, touchSize int) ([]Result, error) {
	results := make([]Result, len(partitions))
	g, ctx := errgroup.WithContext(ctx)

	for i, slice := range partitions {
		i, slice := i, slice
		g.Go(func() error {
			buf := make([]byte, touchSize)
			var r Result
			for _, iv := range slice {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if !l.TryLock(iv.Start, iv.End) {
					r.Rejected++
					continue
				}
				for j := range buf {
					buf[j] = 1
				}
				l.ReleaseLock(iv.Start, iv.End)
				r.Acquired++
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
