package rangelock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverlapsTouchingIsFalse(t *testing.T) {
	a := Interval{Start: 10, End: 20}
	b := Interval{Start: 20, End: 30}
	require.False(t, a.Overlaps(b))
	require.False(t, b.Overlaps(a))
}

func TestOverlapsPartial(t *testing.T) {
	a := Interval{Start: 10, End: 20}
	b := Interval{Start: 15, End: 25}
	require.True(t, a.Overlaps(b))
	require.True(t, b.Overlaps(a))
}

func TestOverlapsContainment(t *testing.T) {
	a := Interval{Start: 0, End: 100}
	b := Interval{Start: 40, End: 60}
	require.True(t, a.Overlaps(b))
	require.True(t, b.Overlaps(a))
}

func TestOverlapsDisjoint(t *testing.T) {
	a := Interval{Start: 0, End: 10}
	b := Interval{Start: 50, End: 60}
	require.False(t, a.Overlaps(b))
}

func TestOverlapsSelf(t *testing.T) {
	a := Interval{Start: 10, End: 20}
	require.True(t, a.Overlaps(a))
}
