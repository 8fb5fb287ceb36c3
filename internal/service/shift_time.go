package service

import (
	"errors"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

var (
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
	ErrInvalidClock     = errors.New("time must be HH:MM")
	ErrInvalidDateRange = errors.New("from must not be after to")
	ErrZeroLengthShift  = errors.New("start and end time must differ")
)

// ComposeShiftWindow combines a calendar date and two wall-clock times in
// loc. An end at or before the start rolls over to the next day, so
// 22:00-06:00 is an overnight shift.
func ComposeShiftWindow(date, startClock, endClock string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	sh, sm, err := parseClock(startClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := parseClock(endClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if sh == eh && sm == em {
		return time.Time{}, time.Time{}, ErrZeroLengthShift
	}

	y, m, d := day.Date()
	start := time.Date(y, m, d, sh, sm, 0, 0, loc)
	end := time.Date(y, m, d, eh, em, 0, 0, loc)
	if !end.After(start) {
		end = time.Date(y, m, d+1, eh, em, 0, 0, loc)
	}
	return start, end, nil
}

// SplitShiftWindow inverse of ComposeShiftWindow for form round-trips.
func SplitShiftWindow(start, end time.Time, loc *time.Location) (date, startClock, endClock string) {
	s := start.In(loc)
	return s.Format(dateLayout), s.Format(clockLayout), end.In(loc).Format(clockLayout)
}

func parseClock(v string) (int, int, error) {
	t, err := time.Parse(clockLayout, v)
	if err != nil {
		return 0, 0, ErrInvalidClock
	}
	return t.Hour(), t.Minute(), nil
}

// parseDateRange turns inclusive YYYY-MM-DD bounds into a half-open
// [from, to) interval in loc. Empty bounds stay nil.
func parseDateRange(from, to string, loc *time.Location) (*time.Time, *time.Time, error) {
	var f, t *time.Time
	if from != "" {
		v, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return nil, nil, ErrInvalidDate
		}
		f = &v
	}
	if to != "" {
		v, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return nil, nil, ErrInvalidDate
		}
		v = v.AddDate(0, 0, 1)
		t = &v
	}
	if f != nil && t != nil && !f.Before(*t) {
		return nil, nil, ErrInvalidDateRange
	}
	return f, t, nil
}

// startOfMonth midnight on the first of now's month in loc.
func startOfMonth(now time.Time, loc *time.Location) time.Time {
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, loc)
}
