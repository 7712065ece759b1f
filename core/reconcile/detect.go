package reconcile

import "time"

// DetectChanges returns the fields that differ between a mirror event and its source,
// in the fixed order type, start, end, summary, location, description.
// An unreadable boundary on either side is always reported as a change.
func DetectChanges(mirror MirrorEvent, source SourceEvent, opts Options) []Field {
	var changes []Field

	mStart, mAllDay, startOK := ToInstant(mirror.Start)
	mEnd, _, endOK := ToInstant(mirror.End)

	if mAllDay != source.AllDay {
		changes = append(changes, FieldType)
	}

	tol := opts.tolerance()
	if !startOK || !instantsEqual(mStart, source.Start, tol) {
		changes = append(changes, FieldStart)
	}
	if !endOK || !instantsEqual(mEnd, source.End, tol) {
		changes = append(changes, FieldEnd)
	}

	if NormalizeText(mirror.Title) != NormalizeText(source.Title) {
		changes = append(changes, FieldSummary)
	}
	if NormalizeText(mirror.Location) != NormalizeText(source.Location) {
		changes = append(changes, FieldLocation)
	}

	body := Truncate(source.Body, opts.descriptionMaxLen())
	if NormalizeText(mirror.Description) != NormalizeText(body) {
		changes = append(changes, FieldDescription)
	}

	return changes
}

func instantsEqual(a, b time.Time, tolerance time.Duration) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
