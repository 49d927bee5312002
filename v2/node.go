// Package v2 implements the single-level lock-free sorted-list range lock:
// one CAS-linked list ordered by interval start, logical deletion carried on
// a node's own outgoing pointer (no per-level structure, unlike v0). The
// original packs the deletion mark into the pointer's low bit; here it lives
// alongside the pointer in an AtomicMarkableReference, for the same
// garbage-collector-safety reason v0 uses one per level.
package v2

import "github.com/metailurini/rangelock/internal/rlsupport"

type node struct {
	start, end uint64
	next       rlsupport.AtomicMarkableReference[node]
}

func newNode(start, end uint64) *node {
	return &node{start: start, end: end}
}

// compare orders cur against candidate the way the original's free function
// does: nil (end of list) always "follows" candidate, so insertion there
// always succeeds.
func compare(cur, candidate *node) int {
	if cur == nil {
		return 1
	}
	if cur.start >= candidate.end {
		return 1
	}
	if candidate.start >= cur.end {
		return -1
	}
	return 0
}
