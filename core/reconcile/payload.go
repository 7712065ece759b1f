package reconcile

import "time"

// BuildPayload converts a source event into the full mirror representation.
// All-day events use date-only boundaries; timed events use an RFC 3339 instant
// rendered in the configured timezone together with that zone's name.
func BuildPayload(ev SourceEvent, opts Options) Payload {
	p := Payload{
		Title:       ev.Title,
		Location:    ev.Location,
		Description: Truncate(ev.Body, opts.descriptionMaxLen()),
		SourceRef:   ev.ID,
	}

	if ev.AllDay {
		p.Start = EventTime{Date: ev.Start.UTC().Format(DateLayout)}
		p.End = EventTime{Date: ev.End.UTC().Format(DateLayout)}
		return p
	}

	loc := opts.Location()
	p.Start = EventTime{DateTime: ev.Start.In(loc).Format(time.RFC3339), TimeZone: loc.String()}
	p.End = EventTime{DateTime: ev.End.In(loc).Format(time.RFC3339), TimeZone: loc.String()}
	return p
}
