package main

import (
	"fmt"

	"github.com/metailurini/rangelock"
	"github.com/metailurini/rangelock/internal/rlsupport"
)

func resolveVariant(name string) (rangelock.Variant, error) {
	switch name {
	case "v0":
		return rangelock.V0, nil
	case "v1":
		return rangelock.V1, nil
	case "v2":
		return rangelock.V2, nil
	case "v3":
		return rangelock.V3, nil
	default:
		return 0, fmt.Errorf("unknown variant %q: want v0, v1, v2, or v3", name)
	}
}

func newLock(variant string, levels int) (rangelock.RangeLock, error) {
	v, err := resolveVariant(variant)
	if err != nil {
		return nil, err
	}
	return rangelock.New(v, rangelock.WithMaxLevel(levels)), nil
}

// metricsReporter is satisfied by every variant's concrete Lock type, even
// though it is not part of the rangelock.RangeLock interface itself — the
// CLI type-asserts down to it purely to print diagnostics.
type metricsReporter interface {
	Metrics() *rlsupport.Metrics
}

func reportMetrics(l rangelock.RangeLock) {
	reporter, ok := l.(metricsReporter)
	if !ok {
		return
	}
	m := reporter.Metrics()
	casRetries, casSuccesses, overlaps, misuses := m.Snapshot()
	fmt.Printf("metrics: cas_retries=%d cas_successes=%d overlaps=%d misuses=%d length=%d\n",
		casRetries, casSuccesses, overlaps, misuses, m.Len())
}

