package ics

import (
	"fmt"
	"sort"
	"time"

	"calendar-mirror/core/reconcile"

	"github.com/teambition/rrule-go"
)

// maxOccurrences bounds the instances of a single series within the window.
// A larger series fails the fetch instead of being mirrored partially.
const maxOccurrences = 5000

// occurrence is one concrete instance of a VEVENT.
type occurrence struct {
	ID    string
	Event vevent
	Start time.Time
	End   time.Time
}

// expand turns parsed events into the instances overlapping [from, to].
// Recurring instances are identified by UID and original start so a moved
// occurrence keeps its identity.
func expand(events []vevent, from, to time.Time) ([]occurrence, []error) {
	bases := make(map[string][]vevent)
	overrides := make(map[string][]vevent)
	var uids []string

	for _, ev := range events {
		if ev.Recurrence != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
		} else {
			bases[ev.UID] = append(bases[ev.UID], ev)
		}
		if len(bases[ev.UID])+len(overrides[ev.UID]) == 1 {
			uids = append(uids, ev.UID)
		}
	}

	var out []occurrence
	var errs []error

	for _, uid := range uids {
		base := bases[uid]
		ov := overrides[uid]

		if len(base) == 0 {
			// Detached overrides of a series outside the feed.
			for _, o := range ov {
				out = appendIfVisible(out, occurrence{ID: instanceID(uid, *o.Recurrence), Event: o, Start: o.Start, End: o.End}, from, to)
			}
			continue
		}

		for _, ev := range base {
			if ev.RRule == "" && len(ev.RDates) == 0 {
				out = appendIfVisible(out, occurrence{ID: uid, Event: ev, Start: ev.Start, End: ev.End}, from, to)
				continue
			}

			occ, err := expandSeries(ev, ov, from, to)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, occ...)
		}
	}

	return out, errs
}

func expandSeries(ev vevent, overrides []vevent, from, to time.Time) ([]occurrence, error) {
	var set rrule.Set

	if ev.RRule != "" {
		r, err := rrule.StrToRRule(ev.RRule)
		if err != nil {
			return nil, fmt.Errorf("uid %s: invalid RRULE %q: %w", ev.UID, ev.RRule, err)
		}
		r.DTStart(ev.Start)
		set.RRule(r)
	} else {
		set.DTStart(ev.Start)
		set.RDate(ev.Start)
	}
	for _, rd := range ev.RDates {
		set.RDate(rd.In(ev.Start.Location()))
	}
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	duration := ev.End.Sub(ev.Start)
	starts := set.Between(from.Add(-duration).In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(starts) > maxOccurrences {
		return nil, fmt.Errorf("uid %s: %d occurrences in the window, more than %d", ev.UID, len(starts), maxOccurrences)
	}

	var out []occurrence
	for _, start := range starts {
		occ := occurrence{
			ID:    instanceID(ev.UID, start),
			Event: ev,
			Start: start,
			End:   start.Add(duration),
		}
		if o, ok := findOverride(overrides, start); ok {
			occ.Event = o
			occ.Start = o.Start
			occ.End = o.End
		}
		out = appendIfVisible(out, occ, from, to)
	}
	return out, nil
}

func findOverride(overrides []vevent, start time.Time) (vevent, bool) {
	for _, o := range overrides {
		if o.Recurrence != nil && o.Recurrence.Equal(start) {
			return o, true
		}
	}
	return vevent{}, false
}

func appendIfVisible(out []occurrence, occ occurrence, from, to time.Time) []occurrence {
	if occ.Event.Cancelled || occ.Start.After(to) {
		return out
	}
	if occ.End.After(from) || (occ.End.Equal(occ.Start) && !occ.Start.Before(from)) {
		return append(out, occ)
	}
	return out
}

func instanceID(uid string, start time.Time) string {
	return uid + "/" + start.UTC().Format(time.RFC3339)
}

// toSourceEvents converts occurrences into engine events ordered by start.
func toSourceEvents(occ []occurrence) []reconcile.SourceEvent {
	events := make([]reconcile.SourceEvent, 0, len(occ))
	for _, o := range occ {
		ev := reconcile.SourceEvent{
			ID:        o.ID,
			Title:     reconcile.NormalizeTitle(o.Event.Summary),
			Location:  o.Event.Location,
			Body:      o.Event.Description,
			Start:     o.Start.UTC(),
			End:       o.End.UTC(),
			AllDay:    o.Event.AllDay,
			Organizer: o.Event.Organizer,
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events
}
