// Package rangelock provides a concurrent set of non-overlapping half-open
// intervals [start, end) over the uint64 domain, with four interchangeable
// implementations that each demonstrate a different concurrency discipline:
// a lock-free skip list (V0), an optimistic lazy skip list (V1), a
// lock-free sorted list (V2), and a coarse-grained skip list (V3).
//
// Acquisition inserts an interval; release removes it. TryLock fails
// (returns false) if the requested interval overlaps any interval currently
// held. The lock enforces no fairness, no range upgrades or downgrades, no
// interval coalescing, and detects no deadlocks — callers acquire at most
// one range at a time or order acquisitions externally.
package rangelock

import (
	"log/slog"

	"github.com/metailurini/rangelock/v0"
	"github.com/metailurini/rangelock/v1"
	"github.com/metailurini/rangelock/v2"
	"github.com/metailurini/rangelock/v3"
)

// Variant selects which concurrency discipline backs a RangeLock.
type Variant int

const (
	// V0 is the lock-free skip list: per-level AtomicMarkableReference,
	// CAS-based insertion, logical-then-physical deletion.
	V0 Variant = iota
	// V1 is the optimistic (lazy) skip list: per-node mutex, fullyLinked
	// and marked flags, validation after locking predecessors.
	V1
	// V2 is the lock-free sorted list: a single-level Harris list with
	// the mark bit carried on the node's own outgoing pointer.
	V2
	// V3 is the coarse-grained skip list: one process-wide mutex.
	V3
)

func (v Variant) String() string {
	switch v {
	case V0:
		return "v0"
	case V1:
		return "v1"
	case V2:
		return "v2"
	case V3:
		return "v3"
	default:
		return "unknown"
	}
}

// RangeLock is the capability set every variant implements: try to acquire
// an interval, release one, report the current element count, and dump a
// diagnostic text rendering of the live set. Variants are selected through
// New, not through a shared base type — there is no inheritance here, only
// four independent implementations of this interface.
type RangeLock interface {
	TryLock(start, end uint64) bool
	ReleaseLock(start, end uint64) bool
	Size() int
	Display() string
}

// config holds construction-time parameters. There is no runtime
// reconfiguration: MaxLevel and Logger are fixed for the lifetime of the
// RangeLock.
type config struct {
	maxLevel int
	logger   *slog.Logger
}

// Option configures a RangeLock at construction time.
type Option func(*config)

// WithMaxLevel overrides the skip list's compile-time MAX_LEVEL parameter
// (valid range 1..=16). It has no effect on V2, which has no levels.
func WithMaxLevel(level int) Option {
	return func(c *config) { c.maxLevel = level }
}

// WithLogger overrides the logger used to report misuse (e.g. releasing an
// interval that is not held). The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func defaultMaxLevel(variant Variant) int {
	if variant == V3 {
		return 3
	}
	return 10
}

// New constructs a RangeLock backed by the given variant.
func New(variant Variant, opts ...Option) RangeLock {
	cfg := config{
		maxLevel: defaultMaxLevel(variant),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch variant {
	case V0:
		return v0.New(cfg.maxLevel, cfg.logger)
	case V1:
		return v1.New(cfg.maxLevel, cfg.logger)
	case V2:
		return v2.New(cfg.logger)
	case V3:
		return v3.New(cfg.maxLevel, cfg.logger)
	default:
		panic("rangelock: unknown variant")
	}
}
