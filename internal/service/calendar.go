package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"volunteerhub/internal/dto"
	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
)

const (
	calendarMaxEvents = 500
	calendarProductID = "-//VolunteerHub//Shifts//EN"
	icsMaxFileSize    = 5 * 1024 * 1024
	icsImportHorizon  = 366 * 24 * time.Hour
)

var ErrICSInvalid = errors.New("calendar file could not be parsed")

// ────────────────────── CalendarFeed ──────────────────────

// CalendarFeed upcoming confirmed shifts as an iCalendar document.
// Cancelled shifts stay in the feed with STATUS:CANCELLED so subscribed
// calendars drop them.
func (s *shiftService) CalendarFeed(ctx context.Context, volunteerID string) ([]byte, error) {
	now := s.now()
	signups, _, err := s.repo.Signup.ListByVolunteer(ctx, volunteerID, repository.ShiftFilter{
		Now:   now,
		From:  &now,
		Limit: calendarMaxEvents,
	})
	if err != nil {
		s.logger.Error("failed to load calendar shifts", zap.String("volunteer_id", volunteerID), zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Volunteer shifts")

	for _, su := range signups {
		shift := su.Shift
		if shift == nil {
			continue
		}
		ev := cal.AddEvent(shift.ShiftID + "@volunteerhub")
		ev.SetDtStampTime(now)
		ev.SetCreatedTime(su.SignedUpAt)
		ev.SetModifiedAt(shift.UpdatedAt)
		ev.SetStartAt(shift.StartTime)
		ev.SetEndAt(shift.EndTime)
		ev.SetSummary(shift.Title)
		if shift.Location != "" {
			ev.SetLocation(shift.Location)
		}
		if shift.Description != "" {
			ev.SetDescription(shift.Description)
		}
		if shift.Status == model.ShiftCancelled {
			ev.SetStatus(ics.ObjectStatusCancelled)
		} else {
			ev.SetStatus(ics.ObjectStatusConfirmed)
		}
	}

	return []byte(cal.Serialize()), nil
}

// ────────────────────── ImportICS ──────────────────────

// importedEvent one VEVENT expanded into concrete start times
type importedEvent struct {
	Summary     string
	Location    string
	Description string
	Starts      []time.Time
	Length      time.Duration
}

// ImportICS creates shifts from the VEVENTs of an uploaded calendar. Only
// occurrences inside the next year are imported; each recurring event
// becomes its own series.
func (s *shiftService) ImportICS(ctx context.Context, r io.Reader, req *dto.ImportShiftsRequest, callerID, callerRole string) (*dto.ImportShiftsResponse, error) {
	groupID := emptyToNil(req.GroupID)
	if err := s.authorizeGroup(ctx, groupID, callerID, callerRole); err != nil {
		return nil, err
	}

	now := s.now()
	events, skipped, err := parseICSEvents(io.LimitReader(r, icsMaxFileSize), now, now.Add(icsImportHorizon), s.cfg.MaxOccurrences, s.loc)
	if err != nil {
		return nil, err
	}

	var shifts []model.Shift
	for _, ev := range events {
		var seriesID *string
		if len(ev.Starts) > 1 {
			id := newSeriesID()
			seriesID = &id
		}
		for _, st := range ev.Starts {
			shift := model.Shift{
				Title:         ev.Summary,
				Description:   ev.Description,
				Location:      ev.Location,
				StartTime:     st,
				EndTime:       st.Add(ev.Length),
				MaxVolunteers: req.MaxVolunteers,
				Status:        model.ShiftOpen,
				GroupID:       groupID,
				SeriesID:      seriesID,
			}
			shift.Audit(callerID)
			shifts = append(shifts, shift)
		}
	}

	if len(shifts) > 0 {
		if err := s.repo.Shift.BatchCreate(ctx, shifts); err != nil {
			s.logger.Error("failed to import shifts", zap.Int("count", len(shifts)), zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("shifts imported from calendar",
		zap.Int("events", len(events)), zap.Int("shifts", len(shifts)), zap.Int("skipped", skipped))

	return &dto.ImportShiftsResponse{
		Events:  len(events),
		Created: len(shifts),
		Skipped: skipped,
	}, nil
}

// parseICSEvents returns the importable events and how many VEVENTs were
// skipped for missing fields or for having no occurrence in [from, to).
func parseICSEvents(r io.Reader, from, to time.Time, maxPerEvent int, loc *time.Location) ([]importedEvent, int, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrICSInvalid, err)
	}

	// occurrences rewritten by a RECURRENCE-ID event are dropped from their series;
	// the rewritten event is imported on its own
	overridden := make(map[string][]time.Time)
	for _, vevent := range cal.Events() {
		if rid := vevent.GetProperty(ics.ComponentProperty(ics.PropertyRecurrenceId)); rid != nil {
			if t, _, err := parseICSTime(rid, loc); err == nil {
				overridden[vevent.Id()] = append(overridden[vevent.Id()], t)
			}
		}
	}

	var events []importedEvent
	skipped := 0
	for _, vevent := range cal.Events() {
		if propValue(vevent, ics.ComponentPropertyStatus) == string(ics.ObjectStatusCancelled) {
			skipped++
			continue
		}
		var excluded []time.Time
		if vevent.GetProperty(ics.ComponentProperty(ics.PropertyRecurrenceId)) == nil {
			excluded = overridden[vevent.Id()]
		}
		ev, ok := parseVEvent(vevent, from, to, maxPerEvent, loc, excluded)
		if !ok {
			skipped++
			continue
		}
		events = append(events, ev)
	}
	return events, skipped, nil
}

func parseVEvent(vevent *ics.VEvent, from, to time.Time, maxPerEvent int, loc *time.Location, excluded []time.Time) (importedEvent, bool) {
	summary := propValue(vevent, ics.ComponentPropertySummary)
	if summary == "" {
		return importedEvent{}, false
	}
	start, err := vevent.GetStartAt()
	if err != nil {
		return importedEvent{}, false
	}
	end, err := vevent.GetEndAt()
	if err != nil || !end.After(start) {
		return importedEvent{}, false
	}
	start = start.In(loc)

	starts := []time.Time{start}
	if rule := propValue(vevent, ics.ComponentPropertyRrule); rule != "" {
		opt, err := rrule.StrToROption(rule)
		if err != nil {
			return importedEvent{}, false
		}
		opt.Dtstart = start
		rr, err := rrule.NewRRule(*opt)
		if err != nil {
			return importedEvent{}, false
		}
		set := &rrule.Set{}
		set.RRule(rr)
		for _, t := range append(exDates(vevent, start, loc), excluded...) {
			set.ExDate(t)
		}
		starts = set.Between(from, to, true)
	}

	kept := starts[:0]
	for _, st := range starts {
		if st.After(from) && st.Before(to) {
			kept = append(kept, st)
		}
	}
	if len(kept) == 0 {
		return importedEvent{}, false
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Before(kept[j]) })
	if len(kept) > maxPerEvent {
		kept = kept[:maxPerEvent]
	}

	return importedEvent{
		Summary:     truncate(summary, 200),
		Location:    truncate(propValue(vevent, ics.ComponentPropertyLocation), 200),
		Description: propValue(vevent, ics.ComponentPropertyDescription),
		Starts:      kept,
		Length:      end.Sub(start),
	}, true
}

// exDates every EXDATE of the event. A date-only value removes the
// occurrence starting on that day.
func exDates(vevent *ics.VEvent, start time.Time, loc *time.Location) []time.Time {
	var out []time.Time
	for i := range vevent.Properties {
		prop := &vevent.Properties[i]
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			one := *prop
			one.Value = strings.TrimSpace(v)
			t, dateOnly, err := parseICSTime(&one, loc)
			if err != nil {
				continue
			}
			if dateOnly {
				t = time.Date(t.Year(), t.Month(), t.Day(), start.Hour(), start.Minute(), start.Second(), 0, start.Location())
			}
			out = append(out, t)
		}
	}
	return out
}

// parseICSTime reads a DATE or DATE-TIME value, honouring TZID. Floating
// times are taken in loc.
func parseICSTime(prop *ics.IANAProperty, loc *time.Location) (time.Time, bool, error) {
	v := strings.TrimSpace(prop.Value)
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		return t.In(loc), false, err
	}
	in := loc
	if tzid := prop.ICalParameters[string(ics.ParameterTzid)]; len(tzid) > 0 {
		if l, err := time.LoadLocation(tzid[0]); err == nil {
			in = l
		}
	}
	if len(v) == len("20060102") {
		t, err := time.ParseInLocation("20060102", v, loc)
		return t, true, err
	}
	t, err := time.ParseInLocation("20060102T150405", v, in)
	return t.In(loc), false, err
}

func propValue(vevent *ics.VEvent, prop ics.ComponentProperty) string {
	p := vevent.GetProperty(prop)
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Value)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
