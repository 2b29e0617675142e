package schedule

// Segment is a half-open hour range within a single civil day. EndHour is
// exclusive: the last valid slot start leaves room for the whole block.
type Segment struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// OpeningHours maps ISO weekdays (Monday=1 .. Sunday=7) to the ordered
// opening segments of that day. Days absent from the map are closed.
type OpeningHours map[int][]Segment

// DefaultOpeningHours is the studio schedule: split weekday shifts,
// Saturday mornings, closed on Sunday.
func DefaultOpeningHours() OpeningHours {
	weekday := []Segment{{StartHour: 9, EndHour: 13}, {StartHour: 16, EndHour: 20}}
	return OpeningHours{
		1: weekday,
		2: weekday,
		3: weekday,
		4: weekday,
		5: weekday,
		6: {{StartHour: 10, EndHour: 14}},
	}
}

// SegmentsFor returns the opening segments for the given ISO weekday, or
// nil for closed days.
func (h OpeningHours) SegmentsFor(weekday int) []Segment {
	return h[weekday]
}
