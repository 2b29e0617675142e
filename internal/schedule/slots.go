package schedule

import "time"

// IntervalKind distinguishes where a busy interval came from.
type IntervalKind string

const (
	KindBooking  IntervalKind = "booking"
	KindBlackout IntervalKind = "blackout"
)

// Interval is a half-open busy range [Start, End) in absolute time.
// Intervals are derived fresh from storage rows on every request and are
// never cached.
type Interval struct {
	Kind  IntervalKind
	Start time.Time
	End   time.Time
}

// CivilTime is a wall-clock slot start within a day.
type CivilTime struct {
	Hour   int
	Minute int
}

// Candidates emits the hourly candidate starts for one weekday: for each
// opening segment, starts on the hour from StartHour up to the last hour
// where the whole block still fits before EndHour. Closed days yield nil.
func Candidates(weekday int, hours OpeningHours, blockMinutes int) []CivilTime {
	if blockMinutes <= 0 {
		return nil
	}
	var out []CivilTime
	for _, seg := range hours.SegmentsFor(weekday) {
		latest := (seg.EndHour*60 - blockMinutes) / 60
		for hh := seg.StartHour; hh <= latest; hh++ {
			out = append(out, CivilTime{Hour: hh})
		}
	}
	return out
}

// Overlaps reports whether the half-open range [start, end) intersects b.
// Touching endpoints do not overlap, so back-to-back bookings are allowed.
func Overlaps(start, end time.Time, b Interval) bool {
	return start.Before(b.End) && end.After(b.Start)
}

// OverlapsAny reports whether [start, end) intersects any busy interval.
func OverlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b) {
			return true
		}
	}
	return false
}
