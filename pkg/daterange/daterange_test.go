package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlapsTouchingEndpoints(t *testing.T) {
	a := New(date(2025, 9, 1), date(2025, 12, 15))
	b := New(date(2025, 12, 15), date(2026, 1, 10))

	require.True(t, a.Overlaps(b))
	require.True(t, b.Overlaps(a))
}

func TestOverlapsDisjoint(t *testing.T) {
	a := New(date(2025, 9, 1), date(2025, 12, 15))
	b := New(date(2025, 12, 16), date(2026, 1, 10))

	require.False(t, a.Overlaps(b))
	require.False(t, b.Overlaps(a))
}

func TestOverlapsNested(t *testing.T) {
	outer := New(date(2025, 1, 1), date(2025, 12, 31))
	inner := New(date(2025, 3, 1), date(2025, 6, 1))

	require.True(t, outer.Overlaps(inner))
	require.True(t, inner.Overlaps(outer))
}

func TestContains(t *testing.T) {
	term := New(date(2025, 9, 1), date(2025, 12, 15))

	require.True(t, term.Contains(New(date(2025, 9, 1), date(2025, 12, 15))))
	require.True(t, term.Contains(New(date(2025, 10, 1), date(2025, 11, 1))))
	require.False(t, term.Contains(New(date(2025, 9, 1), date(2025, 12, 20))))
	require.False(t, term.Contains(New(date(2025, 8, 31), date(2025, 12, 1))))
}

func TestDurationDaysTruncates(t *testing.T) {
	require.Equal(t, 7, New(date(2025, 1, 1), date(2025, 1, 8)).DurationDays())
	require.Equal(t, 6, New(date(2025, 1, 1), date(2025, 1, 7)).DurationDays())

	// Partial days truncate, not round.
	start := date(2025, 1, 1)
	end := start.Add(7*24*time.Hour + 23*time.Hour)
	require.Equal(t, 7, New(start, end).DurationDays())
}

func TestValid(t *testing.T) {
	require.True(t, New(date(2025, 1, 1), date(2025, 1, 8)).Valid())
	require.False(t, New(date(2025, 1, 8), date(2025, 1, 1)).Valid())
	require.False(t, New(date(2025, 1, 1), date(2025, 1, 1)).Valid())
}
