// Package v1 implements the optimistic (lazy) skip-list range lock: a
// per-node mutex, fullyLinked/marked flags, and validation performed after
// predecessor locks are held, in the style of Herlihy & Shavit's lazy skip
// list. Readers never block; writers take predecessor locks bottom-up and
// always release them, via a small locker helper, before retrying.
package v1

import (
	"sync"
	"sync/atomic"
)

type node struct {
	start, end  uint64
	topLevel    int
	next        []atomic.Pointer[node]
	marked      bool
	fullyLinked bool
	mu          sync.Mutex
}

func newNode(start, end uint64, topLevel int) *node {
	return &node{
		start:    start,
		end:      end,
		topLevel: topLevel,
		next:     make([]atomic.Pointer[node], topLevel+1),
	}
}

func (n *node) lock()   { n.mu.Lock() }
func (n *node) unlock() { n.mu.Unlock() }

func newSentinels(maxLevel int) (head, tail *node) {
	const maxValue = ^uint64(0)
	tail = newNode(maxValue, maxValue, maxLevel)
	tail.fullyLinked = true
	head = newNode(0, 0, maxLevel)
	head.fullyLinked = true
	for i := range head.next {
		head.next[i].Store(tail)
	}
	return head, tail
}

// nodeLocker tracks which predecessor nodes a goroutine has locked during
// one tryLock/releaseLock attempt, locking each at most once and unlocking
// all of them, in reverse order, when unlockAll is called on each exit path.
// It mirrors the original's Node_V1Locker/ScopeGuard pairing as a single
// helper.
type nodeLocker struct {
	locked []*node
}

func newNodeLocker() *nodeLocker {
	return &nodeLocker{}
}

func (l *nodeLocker) trackAndLock(n *node) {
	for _, tracked := range l.locked {
		if tracked == n {
			return
		}
	}
	n.lock()
	l.locked = append(l.locked, n)
}

func (l *nodeLocker) unlockAll() {
	for i := len(l.locked) - 1; i >= 0; i-- {
		l.locked[i].unlock()
	}
	l.locked = nil
}
