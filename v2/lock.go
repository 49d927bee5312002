package v2

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/metailurini/rangelock/internal/rlsupport"
)

// Lock is the single-level lock-free sorted-list range lock. It has no
// levels to skip, so every traversal is O(n) in the number of held
// intervals; it trades v0's logarithmic search for a far smaller node and a
// simpler insert/delete path.
type Lock struct {
	head    *rlsupport.AtomicMarkableReference[node]
	rng     *rlsupport.RNG
	metrics *rlsupport.Metrics
	logger  *slog.Logger
	count   atomic.Int64
}

// New returns an empty Lock.
func New(logger *slog.Logger) *Lock {
	if logger == nil {
		logger = slog.Default()
	}
	rng := rlsupport.NewRNG()
	return &Lock{
		head:    &rlsupport.AtomicMarkableReference[node]{},
		rng:     rng,
		metrics: rlsupport.NewMetrics(rng),
		logger:  logger,
	}
}

// insert splices newNode into the list in start order, helping unlink any
// logically-deleted node it passes over. It returns false if newNode
// overlaps a node already present.
func (l *Lock) insert(newNode *node) bool {
retry:
	for {
		prev := l.head
		for {
			cur, prevMarked := prev.Get()
			if prevMarked {
				continue retry
			}
			if cur != nil {
				next, curMarked := cur.next.Get()
				if curMarked {
					prev.CompareAndSet(cur, next, false, false)
					continue
				}
			}
			switch compare(cur, newNode) {
			case -1:
				prev = &cur.next
			case 0:
				return false
			default:
				newNode.next.Store(cur, false)
				if prev.CompareAndSet(cur, newNode, false, false) {
					return true
				}
			}
		}
	}
}

// findExact walks the list for the node whose interval is exactly
// [start, end), helping unlink logically-deleted nodes along the way. The
// list is kept in ascending, non-overlapping start order, so the search can
// stop as soon as it passes where a match would have to be.
func (l *Lock) findExact(start, end uint64) *node {
retry:
	for {
		prev := l.head
		for {
			cur, prevMarked := prev.Get()
			if prevMarked {
				continue retry
			}
			if cur == nil {
				return nil
			}
			next, curMarked := cur.next.Get()
			if curMarked {
				prev.CompareAndSet(cur, next, false, false)
				continue
			}
			if cur.start == start && cur.end == end {
				return cur
			}
			if cur.start >= end {
				return nil
			}
			prev = &cur.next
		}
	}
}

// TryLock inserts [start, end) into the set. It returns false if the
// interval overlaps one already present.
func (l *Lock) TryLock(start, end uint64) bool {
	if !l.insert(newNode(start, end)) {
		l.metrics.IncOverlap()
		return false
	}
	l.metrics.AddLen(1)
	l.count.Add(1)
	return true
}

// ReleaseLock removes [start, end) from the set. It returns false, with a
// logged warning, if the interval is not held or was concurrently released.
func (l *Lock) ReleaseLock(start, end uint64) bool {
	victim := l.findExact(start, end)
	if victim == nil {
		l.logger.Warn("rangelock/v2: release of interval not held", "start", start, "end", end)
		l.metrics.IncMisuse()
		return false
	}

	cur, marked := victim.next.Get()
	if marked {
		l.logger.Warn("rangelock/v2: concurrent release of same interval", "start", start, "end", end)
		l.metrics.IncMisuse()
		return false
	}
	if !victim.next.CompareAndSet(cur, cur, false, true) {
		l.logger.Warn("rangelock/v2: concurrent release of same interval", "start", start, "end", end)
		l.metrics.IncMisuse()
		return false
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

// Display renders the live list head to tail for diagnostics. It is not
// meant for production logging.
func (l *Lock) Display() string {
	var b strings.Builder
	b.WriteString("v2 range lock: head")
	cur := l.head.Reference()
	for cur != nil {
		next, marked := cur.next.Get()
		if marked {
			b.WriteString(" -> [X]")
		} else {
			fmt.Fprintf(&b, " -> [%d,%d)", cur.start, cur.end)
		}
		cur = next
	}
	b.WriteString(" -> nil\n")
	return b.String()
}
