// Package v0 implements the lock-free skip-list range lock: per-level
// markable references, CAS-based insertion, and logical-then-physical
// deletion in the Harris-Michael style. No node is ever protected by a
// node-wide mutex; every mutation is a CAS on one markable reference, and a
// failed CAS always means some other goroutine made progress instead.
package v0

import "github.com/metailurini/rangelock/internal/rlsupport"

// node carries an interval and one markable reference per participation
// level. The mark bit on next[k], once set, is never cleared — only the
// pointer it guards may still advance as helpers splice the marked node out.
type node struct {
	start, end uint64
	topLevel   int
	next       []*rlsupport.AtomicMarkableReference[node]
}

func newNode(start, end uint64, topLevel int) *node {
	n := &node{start: start, end: end, topLevel: topLevel}
	n.next = make([]*rlsupport.AtomicMarkableReference[node], topLevel+1)
	for i := range n.next {
		n.next[i] = &rlsupport.AtomicMarkableReference[node]{}
	}
	return n
}

func newSentinels(maxLevel int) (head, tail *node) {
	const maxValue = ^uint64(0)
	tail = newNode(maxValue, maxValue, maxLevel)
	head = newNode(0, 0, maxLevel)
	for i := range head.next {
		head.next[i].Store(tail, false)
	}
	return head, tail
}
