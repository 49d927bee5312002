// Command rangelockbench drives one RangeLock variant under a configurable
// number of goroutines and reports either per-operation latency or sustained
// throughput, mirroring the scalability harness the variants were ported
// from.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	variantFlag string
	threadsFlag int
	maxLevel    int
	reportStats bool
)

func main() {
	root := &cobra.Command{
		Use:   "rangelockbench",
		Short: "Benchmark the rangelock variants",
	}
	root.PersistentFlags().StringVar(&variantFlag, "variant", "v0", "range lock variant: v0, v1, v2, v3")
	root.PersistentFlags().IntVar(&threadsFlag, "threads", 8, "number of concurrent goroutines")
	root.PersistentFlags().IntVar(&maxLevel, "max-level", 10, "skip list MAX_LEVEL (v0, v1, v3 only)")
	root.PersistentFlags().BoolVar(&reportStats, "report-metrics", false, "print sharded diagnostic counters after the run")

	root.AddCommand(newLatencyCmd(), newThroughputCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
