// Package rlsupport holds the low-level building blocks shared by every
// range-lock variant: the markable-reference primitive, a per-instance
// random level generator, and sharded diagnostic counters. None of it
// depends on any variant package, so variants can import it freely.
package rlsupport

import "sync"

// AtomicMarkableReference bundles a pointer to T with a one-bit logical
// deletion mark, updated together. Go cannot pack a pointer and a bit into
// a single tagged word the way the original's uintptr-based packing does
// without hiding the pointer from the garbage collector, so the pair is
// instead guarded by a small per-reference mutex. The mutex is always
// node-local and uncontended in the common case, so it costs little next to
// the CAS loops built on top of it.
type AtomicMarkableReference[T any] struct {
	mu   sync.Mutex
	ref  *T
	mark bool
}

// Store unconditionally publishes ref and mark together.
func (a *AtomicMarkableReference[T]) Store(ref *T, mark bool) {
	a.mu.Lock()
	a.ref, a.mark = ref, mark
	a.mu.Unlock()
}

// CompareAndSet atomically replaces (expectedRef, expectedMark) with
// (newRef, newMark), returning whether the swap happened.
func (a *AtomicMarkableReference[T]) CompareAndSet(expectedRef, newRef *T, expectedMark, newMark bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ref != expectedRef || a.mark != expectedMark {
		return false
	}
	a.ref, a.mark = newRef, newMark
	return true
}

// AttemptMark sets the mark to newMark iff the current reference equals
// expectedRef and the current mark differs from newMark. The reference
// itself is left untouched.
func (a *AtomicMarkableReference[T]) AttemptMark(expectedRef *T, newMark bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ref != expectedRef || a.mark == newMark {
		return false
	}
	a.mark = newMark
	return true
}

// Get returns the current reference and mark.
func (a *AtomicMarkableReference[T]) Get() (ref *T, mark bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ref, a.mark
}

// Reference returns the current reference, discarding the mark.
func (a *AtomicMarkableReference[T]) Reference() *T {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ref
}
