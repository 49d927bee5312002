package main

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/metailurini/rangelock/internal/workload"
)

var throughputWindow time.Duration

func newThroughputCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "throughput",
		Short: "Hammer disjoint intervals for a fixed time window and report ops/sec",
		RunE:  runThroughput,
	}
	cmd.Flags().DurationVar(&throughputWindow, "window", 2*time.Second, "duration of the measurement window")
	return cmd
}

func runThroughput(cmd *cobra.Command, args []string) error {
	l, err := newLock(variantFlag, maxLevel)
	if err != nil {
		return err
	}

	ranges := workload.NonOverlapping(threadsFlag*4096, 256)
	partitions := workload.Partition(ranges, threadsFlag)

	var stop atomic.Bool
	var ops atomic.Int64
	var wg sync.WaitGroup

	for _, part := range partitions {
		part := part
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx := 0
			for !stop.Load() {
				iv := part[idx%len(part)]
				if l.TryLock(iv.Start, iv.End) {
					l.ReleaseLock(iv.Start, iv.End)
					ops.Add(1)
				}
				idx++
			}
		}()
	}

	time.Sleep(throughputWindow)
	stop.Store(true)
	wg.Wait()

	total := ops.Load()
	fmt.Printf("variant=%s threads=%d window=%s ops=%d ops/sec=%.0f\n",
		variantFlag, threadsFlag, throughputWindow, total, float64(total)/throughputWindow.Seconds())
	if reportStats {
		reportMetrics(l)
	}
	return nil
}
