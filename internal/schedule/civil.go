package schedule

import (
	"regexp"
	"strconv"
	"time"
)

// CivilMoment is a wall-clock date/time with no zone attached. It is only
// meaningful paired with a *time.Location.
type CivilMoment struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

var shortOffsetRe = regexp.MustCompile(`^([+-])(\d{1,2})(?::(\d{2}))?$`)

// ResolveLocation turns a zone spec into a *time.Location. IANA names are
// tried first ("Europe/Madrid"), then short textual offsets ("+01:00",
// "+1", "+0"). Anything unparseable falls back to UTC; callers rely on
// that fallback instead of an error.
func ResolveLocation(zone string) *time.Location {
	loc, _ := ResolveLocationOK(zone)
	return loc
}

// ResolveLocationOK is ResolveLocation with the fallback made explicit:
// ok is false only when zone could not be parsed and UTC was substituted.
// An empty spec and "+0" both resolve to UTC deliberately, with ok true.
func ResolveLocationOK(zone string) (*time.Location, bool) {
	if zone == "" {
		return time.UTC, true
	}
	if loc, err := time.LoadLocation(zone); err == nil {
		return loc, true
	}
	if secs, ok := parseShortOffset(zone); ok {
		if secs == 0 {
			return time.UTC, true
		}
		return time.FixedZone(zone, secs), true
	}
	return time.UTC, false
}

func parseShortOffset(s string) (int, bool) {
	m := shortOffsetRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(m[2])
	if err != nil || hours > 14 {
		return 0, false
	}
	minutes := 0
	if m[3] != "" {
		minutes, err = strconv.Atoi(m[3])
		if err != nil || minutes > 59 {
			return 0, false
		}
	}
	secs := hours*3600 + minutes*60
	if m[1] == "-" {
		secs = -secs
	}
	return secs, true
}

// CivilToInstant converts a wall-clock moment in loc to an absolute
// instant. The civil fields are first read as if they were UTC, the zone
// offset observed at that provisional instant is looked up, and then
// subtracted. That uses the offset in effect near the moment itself, so
// conversions stay correct across daylight-saving transitions.
func CivilToInstant(c CivilMoment, loc *time.Location) time.Time {
	provisional := time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, 0, 0, time.UTC)
	_, offset := provisional.In(loc).Zone()
	return provisional.Add(-time.Duration(offset) * time.Second)
}

// DateInZone formats the civil date of t in loc as YYYY-MM-DD.
func DateInZone(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// WeekdayInZone returns the ISO weekday (Monday=1 .. Sunday=7) of t's
// civil date in loc. Evaluated at local noon so results near midnight are
// not ambiguous.
func WeekdayInZone(t time.Time, loc *time.Location) int {
	lt := t.In(loc)
	noon := time.Date(lt.Year(), lt.Month(), lt.Day(), 12, 0, 0, 0, loc)
	wd := int(noon.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
