package rangelock

import "math"

// MinInterval and MaxInterval are the sentinel keys. Callers must stay
// strictly inside (MinInterval, MaxInterval): Start >= MinInterval+1,
// End <= MaxInterval-1.
const (
	MinInterval uint64 = 0
	MaxInterval uint64 = math.MaxUint64
)

// Interval is a half-open range [Start, End) over the uint64 domain. It is
// exported for callers and tests that want to reason about the lock's
// contract independently of any one variant's internal node representation;
// the variant packages themselves work directly with Start/End uint64 pairs,
// mirroring the original's Node<T> fields.
type Interval struct {
	Start uint64
	End   uint64
}

// Overlaps reports whether a and b, both half-open, share any point.
// Touching intervals ([10,20) and [20,30)) do not overlap.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}
