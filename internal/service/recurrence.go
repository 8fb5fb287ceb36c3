package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"volunteerhub/internal/dto"
)

var (
	ErrRecurrenceUnbounded = errors.New("recurrence needs a count or an until date")
	ErrTooManyOccurrences  = errors.New("recurrence produces too many shifts")
	ErrRecurrenceEmpty     = errors.New("recurrence produces no shifts")
)

var weekdays = map[string]rrule.Weekday{
	"MO": rrule.MO, "TU": rrule.TU, "WE": rrule.WE, "TH": rrule.TH,
	"FR": rrule.FR, "SA": rrule.SA, "SU": rrule.SU,
}

// ExpandRecurrence start times of every occurrence of rec, beginning at
// first. Wall-clock time is kept across DST changes. until is an inclusive
// calendar date in loc.
func ExpandRecurrence(first time.Time, rec *dto.RecurrenceRequest, loc *time.Location, max int) ([]time.Time, error) {
	if rec.Count == 0 && rec.Until == "" {
		return nil, ErrRecurrenceUnbounded
	}
	if rec.Count > max {
		return nil, ErrTooManyOccurrences
	}

	opt := rrule.ROption{
		Dtstart:  first,
		Interval: rec.Interval,
		Count:    rec.Count,
	}
	switch rec.Freq {
	case "DAILY":
		opt.Freq = rrule.DAILY
	case "WEEKLY":
		opt.Freq = rrule.WEEKLY
	default:
		return nil, fmt.Errorf("unsupported recurrence frequency %q", rec.Freq)
	}
	if opt.Interval <= 0 {
		opt.Interval = 1
	}
	if rec.Until != "" {
		day, err := time.ParseInLocation(dateLayout, rec.Until, loc)
		if err != nil {
			return nil, ErrInvalidDate
		}
		opt.Until = day.AddDate(0, 0, 1).Add(-time.Second)
		if opt.Count == 0 {
			// one past the cap so overflow is detectable
			opt.Count = max + 1
		}
	}
	for _, wd := range rec.ByWeekday {
		opt.Byweekday = append(opt.Byweekday, weekdays[wd])
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("build recurrence: %w", err)
	}

	out := rule.All()
	if len(out) > max {
		return nil, ErrTooManyOccurrences
	}
	if len(out) == 0 {
		return nil, ErrRecurrenceEmpty
	}
	return out, nil
}
