package v3

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/metailurini/rangelock/internal/rlsupport"
)

// Lock is the coarse-grained skip-list range lock: every TryLock and
// ReleaseLock holds a single mutex for the duration of the call. It exists
// as the baseline the lock-free variants are measured against.
type Lock struct {
	mu         sync.Mutex
	maxLevel   int
	head, tail *node
	rng        *rlsupport.RNG
	metrics    *rlsupport.Metrics
	logger     *slog.Logger
	count      atomic.Int64
}

// New returns an empty Lock with the given MAX_LEVEL.
func New(maxLevel int, logger *slog.Logger) *Lock {
	head, tail := newSentinels(maxLevel)
	if logger == nil {
		logger = slog.Default()
	}
	rng := rlsupport.NewRNG()
	return &Lock{
		maxLevel: maxLevel,
		head:     head,
		tail:     tail,
		rng:      rng,
		metrics:  rlsupport.NewMetrics(rng),
		logger:   logger,
	}
}

// findNodes descends from maxLevel to 0 advancing while curr.end <= start,
// filling preds with the per-level predecessor of where [start, end) would
// be inserted. It returns the level-0 predecessor and successor along with
// whether [start, end) overlaps the successor or fails to clear the
// predecessor. Intervals are half-open, so touching neighbours do not
// overlap.
func (l *Lock) findNodes(start, end uint64, preds []*node) (pred, curr *node, overlaps bool) {
	pred = l.head
	for level := l.maxLevel; level >= 0; level-- {
		curr = pred.forward[level]
		for curr.end <= start {
			pred = curr
			curr = pred.forward[level]
		}
		preds[level] = pred
	}
	overlaps = !(start >= pred.end && end <= curr.start)
	return pred, curr, overlaps
}

// TryLock inserts [start, end) into the set. It returns false if the
// interval overlaps one already present.
func (l *Lock) TryLock(start, end uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	preds := make([]*node, l.maxLevel+1)
	_, _, overlaps := l.findNodes(start, end, preds)
	if overlaps {
		l.metrics.IncOverlap()
		return false
	}

	level := l.rng.Level(l.maxLevel)
	q := newNode(start, end, level)
	for k := 0; k <= level; k++ {
		p := preds[k]
		q.forward[k] = p.forward[k]
		p.forward[k] = q
	}

	l.metrics.AddLen(1)
	l.count.Add(1)
	return true
}

// ReleaseLock removes [start, end) from the set. Unlike the original, which
// looks a victim up by start alone and decrements its counter unconditionally
// — a latent bug if start doesn't uniquely identify a held interval — this
// port also checks end and reports misuse rather than corrupting the count.
func (l *Lock) ReleaseLock(start, end uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	preds := make([]*node, l.maxLevel+1)
	pred := l.head
	for level := l.maxLevel; level >= 0; level-- {
		succ := pred.forward[level]
		for succ != l.tail && succ.start < start {
			pred = succ
			succ = pred.forward[level]
		}
		preds[level] = pred
	}

	curr := preds[0].forward[0]
	if curr == l.tail || curr.start != start || curr.end != end {
		l.logger.Warn("rangelock/v3: release of interval not held", "start", start, "end", end)
		l.metrics.IncMisuse()
		return false
	}

	for level := 0; level <= l.maxLevel; level++ {
		p := preds[level]
		if p.forward[level] != curr {
			break
		}
		p.forward[level] = curr.forward[level]
	}

	l.metrics.AddLen(-1)
	l.count.Add(-1)
	return true
}

// Size returns the number of intervals currently held.
func (l *Lock) Size() int {
	return int(l.count.Load())
}

// Metrics exposes the sharded diagnostic counters for benchmark reporting.
func (l *Lock) Metrics() *rlsupport.Metrics {
	return l.metrics
}

// Display renders the live set level by level, head to tail, for
// diagnostics. It is not meant for production logging.
func (l *Lock) Display() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	b.WriteString("v3 range lock\n")

	var live []*node
	for n := l.head.forward[0]; n != l.tail; n = n.forward[0] {
		live = append(live, n)
	}

	for level := l.maxLevel; level >= 0; level-- {
		b.WriteString(fmt.Sprintf("level %2d: head", level))
		for _, n := range live {
			if level <= n.level {
				fmt.Fprintf(&b, " -> [%d,%d)", n.start, n.end)
			} else {
				b.WriteString(" ----------")
			}
		}
		b.WriteString(" -> tail\n")
	}
	return b.String()
}
