package main

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/metailurini/rangelock/internal/workload"
)

var latencyIntervals int

func newLatencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latency",
		Short: "Run a fixed-size workload and report per-operation latency percentiles",
		RunE:  runLatency,
	}
	cmd.Flags().IntVar(&latencyIntervals, "intervals", 100_000, "number of disjoint intervals to acquire and release")
	return cmd
}

func runLatency(cmd *cobra.Command, args []string) error {
	l, err := newLock(variantFlag, maxLevel)
	if err != nil {
		return err
	}

	ranges := workload.NonOverlapping(latencyIntervals, 256)
	partitions := workload.Partition(ranges, threadsFlag)

	samples := make([][]time.Duration, len(partitions))
	var wg sync.WaitGroup
	start := time.Now()
	for i, part := range partitions {
		i, part := i, part
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]time.Duration, 0, len(part))
			for _, iv := range part {
				opStart := time.Now()
				if l.TryLock(iv.Start, iv.End) {
					l.ReleaseLock(iv.Start, iv.End)
				}
				local = append(local, time.Since(opStart))
			}
			samples[i] = local
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	var all []time.Duration
	for _, s := range samples {
		all = append(all, s...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	fmt.Printf("variant=%s threads=%d intervals=%d elapsed=%s\n", variantFlag, threadsFlag, latencyIntervals, elapsed)
	if len(all) > 0 {
		fmt.Printf("latency: p50=%s p95=%s p99=%s\n",
			percentile(all, 0.50), percentile(all, 0.95), percentile(all, 0.99))
	}
	if reportStats {
		reportMetrics(l)
	}
	return nil
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
