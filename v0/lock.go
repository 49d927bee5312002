package v0

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/metailurini/rangelock/internal/rlsupport"
)

// Lock is the lock-free skip-list range lock. Every mutation is either a
// CAS or a helping CAS on a markable reference; the only mutexes are the
// small per-reference ones inside rlsupport.AtomicMarkableReference, each
// held for a single load or CAS. A failed CAS always corresponds to another
// goroutine's successful one.
type Lock struct {
	maxLevel   int
	head, tail *node
	rng        *rlsupport.RNG
	metrics    *rlsupport.Metrics
	logger     *slog.Logger
	count      atomic.Int64
}

// New returns an empty Lock with the given MAX_LEVEL (1..=16).
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

// findInsert descends from maxLevel to 0 chasing forward pointers, helping
// by CASing past logically-deleted nodes. It returns true iff the interval
// [start, end) cannot be inserted without overlapping something already in
// the set. Intervals are half-open, so a neighbour that only touches the
// candidate does not count as an overlap. The predicate is knowingly
// imprecise: it only compares the candidate against its immediate level-0
// neighbours, not against every predecessor's End, so it assumes
// pre-disjoint caller input exactly as the original does.
func (l *Lock) findInsert(start, end uint64, preds, succs []*node) bool {
retry:
	for {
		pred := l.head
		var curr *node
		for level := l.maxLevel; level >= 0; level-- {
			curr = pred.next[level].Reference()
			for start > curr.start {
				succ, marked := curr.next[level].Get()
				for marked {
					if !pred.next[level].CompareAndSet(curr, succ, false, false) {
						continue retry
					}
					curr = pred.next[level].Reference()
					succ, marked = curr.next[level].Get()
				}
				if start >= curr.start {
					pred = curr
					curr = succ
				} else {
					break
				}
			}
			preds[level] = pred
			succs[level] = curr
		}
		return !(start >= pred.end && end <= curr.start)
	}
}

// findExact locates the node whose interval exactly matches [start, end),
// helping along the way. It returns false if no such node is reachable.
func (l *Lock) findExact(start, end uint64, preds, succs []*node) bool {
retry:
	for {
		pred := l.head
		var curr *node
		for level := l.maxLevel; level >= 0; level-- {
			curr = pred.next[level].Reference()
			for start >= curr.start {
				succ, marked := curr.next[level].Get()
				for marked {
					if !pred.next[level].CompareAndSet(curr, succ, false, false) {
						continue retry
					}
					curr = pred.next[level].Reference()
					succ, marked = curr.next[level].Get()
				}
				if start >= curr.end {
					pred = curr
					curr = succ
				} else {
					break
				}
			}
			preds[level] = pred
			succs[level] = curr
		}
		return curr.start == start && curr.end == end
	}
}

// findDelete re-runs the same traversal purely for its helping side
// effects, physically unlinking the node just marked by ReleaseLock at
// every level a concurrent search happens to cross.
func (l *Lock) findDelete(start, end uint64) {
	preds := make([]*node, l.maxLevel+1)
	succs := make([]*node, l.maxLevel+1)
	l.findExact(start, end, preds, succs)
}

// TryLock inserts [start, end) into the set. It returns false if the
// interval overlaps one already present.
func (l *Lock) TryLock(start, end uint64) bool {
	topLevel := l.rng.Level(l.maxLevel)
	preds := make([]*node, l.maxLevel+1)
	succs := make([]*node, l.maxLevel+1)

	for {
		if l.findInsert(start, end, preds, succs) {
			l.metrics.IncOverlap()
			return false
		}

		newNode := newNode(start, end, topLevel)
		for level := 0; level <= topLevel; level++ {
			newNode.next[level].Store(succs[level], false)
		}

		pred, succ := preds[0], succs[0]
		if !pred.next[0].CompareAndSet(succ, newNode, false, false) {
			l.metrics.IncCASRetry()
			continue
		}

		for level := 1; level <= topLevel; level++ {
			for {
				pred, succ = preds[level], succs[level]
				if pred.next[level].CompareAndSet(succ, newNode, false, false) {
					break
				}
				l.metrics.IncCASRetry()
				l.findInsert(start, end, preds, succs)
			}
		}

		l.metrics.IncCASSuccess()
		l.metrics.AddLen(1)
		l.count.Add(1)
		return true
	}
}

// ReleaseLock removes [start, end) from the set. It linearises at the
// level-0 mark CAS. It returns false, with a logged warning, if the
// interval is not held or was already released by a concurrent caller.
func (l *Lock) ReleaseLock(start, end uint64) bool {
	preds := make([]*node, l.maxLevel+1)
	succs := make([]*node, l.maxLevel+1)

	if !l.findExact(start, end, preds, succs) {
		l.logger.Warn("rangelock/v0: release of interval not held", "start", start, "end", end)
		l.metrics.IncMisuse()
		return false
	}

	victim := succs[0]
	for level := victim.topLevel; level >= 1; level-- {
		succ, marked := victim.next[level].Get()
		for !marked {
			victim.next[level].AttemptMark(succ, true)
			succ, marked = victim.next[level].Get()
		}
	}

	succ, _ := victim.next[0].Get()
	for {
		if victim.next[0].CompareAndSet(succ, succ, false, true) {
			if afterMarkHook != nil {
				afterMarkHook(victim)
			}
			l.findDelete(start, end)
			l.metrics.AddLen(-1)
			l.count.Add(-1)
			return true
		}
		newSucc, marked := victim.next[0].Get()
		if marked {
			l.logger.Warn("rangelock/v0: concurrent release of same interval", "start", start, "end", end)
			l.metrics.IncMisuse()
			return false
		}
		succ = newSucc
	}
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
	var b strings.Builder
	b.WriteString("v0 range lock\n")

	var live []*node
	for n := l.head.next[0].Reference(); n != l.tail; {
		_, marked := n.next[0].Get()
		if !marked {
			live = append(live, n)
		}
		n = n.next[0].Reference()
	}

	for level := l.maxLevel; level >= 0; level-- {
		b.WriteString(fmt.Sprintf("level %2d: head", level))
		for _, n := range live {
			if level <= n.topLevel {
				fmt.Fprintf(&b, " -> [%d,%d)", n.start, n.end)
			} else {
				b.WriteString(" ----------")
			}
		}
		b.WriteString(" -> tail\n")
	}
	return b.String()
}
