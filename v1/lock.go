package v1

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/metailurini/rangelock/internal/rlsupport"
)

// Lock is the optimistic (lazy) skip-list range lock. Reads traverse the
// list without ever taking a lock; writers lock only the predecessors they
// are about to mutate, validate under those locks, and retry from scratch on
// a failed validation.
type Lock struct {
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

// findInsert descends from maxLevel to 0, advancing while start >= curr.end,
// and returns the level at which it first finds a node whose interval could
// overlap [start, end) — or -1 if none does. Callers still must validate
// under lock, since the unmarked/fullyLinked state observed here is stale by
// the time the predecessor locks are acquired.
func (l *Lock) findInsert(start, end uint64, preds, succs []*node) int {
	levelFound := -1
	pred := l.head
	for level := l.maxLevel; level >= 0; level-- {
		curr := pred.next[level].Load()
		for start >= curr.end {
			pred = curr
			curr = pred.next[level].Load()
		}
		if levelFound == -1 && end > curr.start {
			levelFound = level
		}
		preds[level] = pred
		succs[level] = curr
	}
	return levelFound
}

// findExact descends looking for the node whose interval is exactly
// [start, end), returning the level at which it is first encountered, or -1.
func (l *Lock) findExact(start, end uint64, preds, succs []*node) int {
	levelFound := -1
	pred := l.head
	for level := l.maxLevel; level >= 0; level-- {
		curr := pred.next[level].Load()
		for start > curr.start {
			pred = curr
			curr = pred.next[level].Load()
		}
		if levelFound == -1 && curr.start == start && curr.end == end {
			levelFound = level
		}
		preds[level] = pred
		succs[level] = curr
	}
	return levelFound
}

// TryLock inserts [start, end) into the set. It returns false if the
// interval overlaps one already present.
func (l *Lock) TryLock(start, end uint64) bool {
	topLevel := l.rng.Level(l.maxLevel)
	preds := make([]*node, l.maxLevel+1)
	succs := make([]*node, l.maxLevel+1)

	for {
		levelFound := l.findInsert(start, end, preds, succs)
		if levelFound != -1 {
			found := succs[levelFound]
			if !found.marked {
				for !found.fullyLinked {
					// spin until the concurrent inserter finishes splicing.
				}
				l.metrics.IncOverlap()
				return false
			}
			l.metrics.IncCASRetry()
			continue
		}

		locker := newNodeLocker()
		valid := true
		for level := 0; valid && level <= topLevel; level++ {
			pred, succ := preds[level], succs[level]
			locker.trackAndLock(pred)
			valid = !pred.marked && !succ.marked && pred.next[level].Load() == succ
		}
		if !valid {
			locker.unlockAll()
			l.metrics.IncCASRetry()
			continue
		}

		newNode := newNode(start, end, topLevel)
		for level := 0; level <= topLevel; level++ {
			newNode.next[level].Store(succs[level])
		}
		for level := 0; level <= topLevel; level++ {
			preds[level].next[level].Store(newNode)
		}
		newNode.fullyLinked = true
		locker.unlockAll()

		l.metrics.IncCASSuccess()
		l.metrics.AddLen(1)
		l.count.Add(1)
		return true
	}
}

// ReleaseLock removes [start, end) from the set. It returns false, with a
// logged warning, if the interval is not held or was concurrently released.
func (l *Lock) ReleaseLock(start, end uint64) bool {
	var victim *node
	isMarked := false
	topLevel := -1
	preds := make([]*node, l.maxLevel+1)
	succs := make([]*node, l.maxLevel+1)

	for {
		locker := newNodeLocker()
		levelFound := l.findExact(start, end, preds, succs)
		if levelFound == -1 {
			locker.unlockAll()
			l.logger.Warn("rangelock/v1: release of interval not held", "start", start, "end", end)
			l.metrics.IncMisuse()
			return false
		}
		victim = succs[levelFound]

		if isMarked || (victim.topLevel == levelFound && !victim.marked) {
			if !isMarked {
				topLevel = victim.topLevel
				locker.trackAndLock(victim)
				if victim.marked {
					locker.unlockAll()
					l.logger.Warn("rangelock/v1: concurrent release of same interval", "start", start, "end", end)
					l.metrics.IncMisuse()
					return false
				}
				victim.marked = true
				isMarked = true
			}

			valid := true
			for level := 0; valid && level <= topLevel; level++ {
				pred := preds[level]
				locker.trackAndLock(pred)
				valid = !pred.marked && pred.next[level].Load() == victim
			}
			if !valid {
				locker.unlockAll()
				l.metrics.IncCASRetry()
				continue
			}

			for level := topLevel; level >= 0; level-- {
				preds[level].next[level].Store(victim.next[level].Load())
			}
			locker.unlockAll()
			l.metrics.AddLen(-1)
			l.count.Add(-1)
			return true
		}

		locker.unlockAll()
		l.logger.Warn("rangelock/v1: concurrent release of same interval", "start", start, "end", end)
		l.metrics.IncMisuse()
		return false
	}
}

// SearchLock is a debug probe reporting whether [start, end) is currently
// held and fully linked, without mutating anything. It exists for tests and
// diagnostics, not production call sites.
func (l *Lock) SearchLock(start, end uint64) bool {
	preds := make([]*node, l.maxLevel+1)
	succs := make([]*node, l.maxLevel+1)
	levelFound := l.findExact(start, end, preds, succs)
	return levelFound != -1 && succs[levelFound].fullyLinked && !succs[levelFound].marked
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
	b.WriteString("v1 range lock\n")

	var live []*node
	for n := l.head.next[0].Load(); n != l.tail; n = n.next[0].Load() {
		if n.fullyLinked && !n.marked {
			live = append(live, n)
		}
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
