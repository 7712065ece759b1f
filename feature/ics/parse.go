package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// vevent is a VEVENT before recurrence expansion.
type vevent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Organizer   string

	Start  time.Time
	End    time.Time
	AllDay bool

	RRule      string
	ExDates    []time.Time
	RDates     []time.Time
	Recurrence *time.Time
	Cancelled  bool
}

// parseCalendar reads every VEVENT of an ICS payload.
// Events without UID or DTSTART are returned as skipped.
func parseCalendar(body []byte, loc *time.Location) ([]vevent, int, error) {
	if len(body) == 0 {
		return nil, 0, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("parsing ICS: %w", err)
	}

	var out []vevent
	skipped := 0
	for _, comp := range cal.Events() {
		ev, err := parseEvent(comp, loc)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, ev)
	}
	return out, skipped, nil
}

func parseEvent(ve *ical.VEvent, loc *time.Location) (vevent, error) {
	var out vevent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyOrganizer); p != nil {
		out.Organizer = strings.TrimPrefix(strings.TrimPrefix(p.Value, "mailto:"), "MAILTO:")
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		out.Cancelled = strings.EqualFold(p.Value, "CANCELLED")
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	start, allDay, err := propertyTime(dtStart, loc)
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}
	out.Start = start
	out.AllDay = allDay

	switch {
	case ve.GetProperty(ical.ComponentPropertyDtEnd) != nil:
		end, _, err := propertyTime(ve.GetProperty(ical.ComponentPropertyDtEnd), loc)
		if err != nil {
			return out, fmt.Errorf("DTEND: %w", err)
		}
		out.End = end
	case allDay:
		out.End = start.AddDate(0, 0, 1)
	default:
		out.End = start
	}
	if out.End.Before(out.Start) {
		out.End = out.Start
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RRule = p.Value
	}
	out.ExDates = propertyTimes(ve.GetProperties(ical.ComponentPropertyExdate), loc)
	out.RDates = propertyTimes(ve.GetProperties(ical.ComponentPropertyRdate), loc)

	if p := ve.GetProperty(ical.ComponentPropertyRecurrenceId); p != nil {
		if t, _, err := propertyTime(p, loc); err == nil {
			out.Recurrence = &t
		}
	}

	return out, nil
}

// propertyTime reads a DATE or DATE-TIME property.
// Dates map to midnight UTC. Floating times are read in loc.
func propertyTime(p *ical.IANAProperty, loc *time.Location) (time.Time, bool, error) {
	return parseValue(strings.TrimSpace(p.Value), tzid(p), isDate(p), loc)
}

// propertyTimes reads every comma separated value of repeated properties.
func propertyTimes(props []*ical.IANAProperty, loc *time.Location) []time.Time {
	var out []time.Time
	for _, p := range props {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, _, err := parseValue(part, tzid(p), isDate(p), loc); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

func parseValue(value, tz string, date bool, loc *time.Location) (time.Time, bool, error) {
	if date || !strings.Contains(value, "T") {
		t, err := time.Parse("20060102", value)
		return t, true, err
	}

	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse("20060102T150405Z", value)
		return t.UTC(), false, err
	}

	in := loc
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			in = l
		}
	}
	t, err := time.ParseInLocation("20060102T150405", value, in)
	return t, false, err
}

func tzid(p *ical.IANAProperty) string {
	if vs, ok := p.ICalParameters[string(ical.ParameterTzid)]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func isDate(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters[string(ical.ParameterValue)]; ok && len(vs) > 0 {
		return strings.EqualFold(vs[0], "DATE")
	}
	return false
}
