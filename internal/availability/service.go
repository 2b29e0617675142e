package availability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/casaondara/booking-platform/internal/observability/metrics"
	"github.com/casaondara/booking-platform/internal/schedule"
	"github.com/casaondara/booking-platform/pkg/logging"
)

var availabilityTracer = otel.Tracer("ondara.internal.availability")

// Window bounds accepted from callers.
const (
	MinWindowDays = 1
	MaxWindowDays = 30
)

// BusyLister is the read side the calculator needs from storage.
type BusyLister interface {
	ListBusyBetween(ctx context.Context, from, to time.Time) ([]schedule.Interval, error)
}

// Config carries the calculator settings.
type Config struct {
	Location          *time.Location
	Hours             schedule.OpeningHours
	BlockMinutes      int
	LeadTimeDays      int
	DefaultWindowDays int
}

// Slot is one offered start within a day.
type Slot struct {
	Label        string    `json:"label"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	BlockMinutes int       `json:"block_minutes"`
}

// Day groups the offered slots of one civil date. Slots is empty, not
// null, for closed or fully booked days.
type Day struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

// Window is the availability response.
type Window struct {
	Timezone     string `json:"timezone"`
	LeadTimeDays int    `json:"lead_time_days"`
	BlockMinutes int    `json:"block_minutes"`
	Days         []Day  `json:"days"`
}

// Service computes bookable slots from opening hours minus busy intervals.
// It holds no slot state of its own; every call reads storage fresh.
type Service struct {
	store  BusyLister
	cfg    Config
	logger *logging.Logger
	m      *metrics.BookingMetrics
	now    func() time.Time
}

// NewService constructs an availability calculator.
func NewService(store BusyLister, m *metrics.BookingMetrics, logger *logging.Logger, cfg Config) *Service {
	if store == nil {
		panic("availability: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Hours == nil {
		cfg.Hours = schedule.DefaultOpeningHours()
	}
	if cfg.BlockMinutes <= 0 {
		cfg.BlockMinutes = 120
	}
	if cfg.DefaultWindowDays <= 0 {
		cfg.DefaultWindowDays = 14
	}
	return &Service{store: store, cfg: cfg, logger: logger, m: m, now: time.Now}
}

// GetAvailability returns the offered slots for the next `days` civil
// dates, starting at the first date the lead time allows. days <= 0 means
// the configured default; out-of-range values are clamped.
func (s *Service) GetAvailability(ctx context.Context, days int) (*Window, error) {
	ctx, span := availabilityTracer.Start(ctx, "availability.window")
	defer span.End()

	if days <= 0 {
		days = s.cfg.DefaultWindowDays
	}
	if days < MinWindowDays {
		days = MinWindowDays
	}
	if days > MaxWindowDays {
		days = MaxWindowDays
	}
	span.SetAttributes(attribute.Int("ondara.window_days", days))

	loc := s.cfg.Location
	nowLocal := s.now().In(loc)
	earliest := schedule.CivilToInstant(schedule.CivilMoment{
		Year:  nowLocal.Year(),
		Month: int(nowLocal.Month()),
		Day:   nowLocal.Day(),
		Hour:  12,
	}, loc).Add(time.Duration(s.cfg.LeadTimeDays) * 24 * time.Hour)

	firstLocal := earliest.In(loc)
	firstY, firstM, firstD := firstLocal.Date()

	// One widened fetch spanning the whole window, local midnight to
	// local midnight after the last day.
	windowStart := schedule.CivilToInstant(schedule.CivilMoment{
		Year: firstY, Month: int(firstM), Day: firstD,
	}, loc)
	lastMidnight := time.Date(firstY, firstM, firstD+days, 0, 0, 0, 0, time.UTC)
	windowEnd := schedule.CivilToInstant(schedule.CivilMoment{
		Year: lastMidnight.Year(), Month: int(lastMidnight.Month()), Day: lastMidnight.Day(),
	}, loc)

	busy, err := s.store.ListBusyBetween(ctx, windowStart, windowEnd)
	if err != nil {
		span.RecordError(err)
		s.m.ObserveAvailability("error")
		return nil, fmt.Errorf("availability: busy fetch: %w", err)
	}

	out := &Window{
		Timezone:     loc.String(),
		LeadTimeDays: s.cfg.LeadTimeDays,
		BlockMinutes: s.cfg.BlockMinutes,
		Days:         make([]Day, 0, days),
	}
	block := time.Duration(s.cfg.BlockMinutes) * time.Minute
	for i := 0; i < days; i++ {
		// time.Date normalizes the day offset across month boundaries.
		civil := time.Date(firstY, firstM, firstD+i, 12, 0, 0, 0, time.UTC)
		y, m, d := civil.Date()

		weekday := schedule.WeekdayInZone(schedule.CivilToInstant(schedule.CivilMoment{
			Year: y, Month: int(m), Day: d, Hour: 12,
		}, loc), loc)

		day := Day{Date: civil.Format("2006-01-02"), Slots: []Slot{}}
		for _, c := range schedule.Candidates(weekday, s.cfg.Hours, s.cfg.BlockMinutes) {
			start := schedule.CivilToInstant(schedule.CivilMoment{
				Year: y, Month: int(m), Day: d, Hour: c.Hour, Minute: c.Minute,
			}, loc)
			if start.Before(earliest) {
				continue
			}
			end := start.Add(block)
			if schedule.OverlapsAny(start, end, busy) {
				continue
			}
			day.Slots = append(day.Slots, Slot{
				Label:        fmt.Sprintf("%02d:%02d", c.Hour, c.Minute),
				Start:        start,
				End:          end,
				BlockMinutes: s.cfg.BlockMinutes,
			})
		}
		out.Days = append(out.Days, day)
	}

	s.m.ObserveAvailability("ok")
	return out, nil
}
