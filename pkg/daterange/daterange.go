package daterange

import "time"

// Range is a closed date interval [Start, End].
type Range struct {
	Start time.Time
	End   time.Time
}

// New builds a range from two instants.
func New(start, end time.Time) Range {
	return Range{Start: start, End: end}
}

// Valid reports whether the range is well formed (Start strictly before End).
func (r Range) Valid() bool {
	return r.Start.Before(r.End)
}

// Overlaps reports whether two closed intervals share at least one instant.
// Touching endpoints count as overlap.
func (r Range) Overlaps(other Range) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

// Contains reports whether inner lies entirely within r.
func (r Range) Contains(inner Range) bool {
	return !r.Start.After(inner.Start) && !inner.End.After(r.End)
}

// DurationDays returns the whole number of days between Start and End,
// truncated toward zero.
func (r Range) DurationDays() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}
