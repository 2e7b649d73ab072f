package models

import "time"

// Interval is a half-open time range [Start, End) used for sprint scheduling.
type Interval struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Valid reports whether the interval spans a positive amount of time.
func (iv Interval) Valid() bool {
	return iv.End.After(iv.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
// Intervals that merely touch (one ends exactly where the other starts)
// do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	// other starts inside iv
	if !other.Start.Before(iv.Start) && other.Start.Before(iv.End) {
		return true
	}
	// other ends inside iv
	if other.End.After(iv.Start) && !other.End.After(iv.End) {
		return true
	}
	// other covers iv entirely
	if !other.Start.After(iv.Start) && !other.End.Before(iv.End) {
		return true
	}
	return false
}
