package reconcile

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// ExternalMarker is the token mail gateways prepend to external subjects.
	ExternalMarker = "[MAIL EXTERNE]"
	// Untitled replaces empty titles.
	Untitled = "Untitled"
)

// localDateTimeLayout is accepted for instants written without an offset.
const localDateTimeLayout = "2006-01-02T15:04:05"

// NormalizeTitle removes every ExternalMarker occurrence and collapses whitespace.
// It never returns an empty string and NormalizeTitle(NormalizeTitle(x)) == NormalizeTitle(x),
// so a marker that only appears once whitespace is collapsed is removed as well.
func NormalizeTitle(raw string) string {
	title := NormalizeText(strings.ReplaceAll(raw, ExternalMarker, ""))
	for strings.Contains(title, ExternalMarker) {
		title = NormalizeText(strings.ReplaceAll(title, ExternalMarker, ""))
	}
	if title == "" {
		return Untitled
	}
	return title
}

// NormalizeText collapses whitespace runs to single spaces and trims the ends.
// It is used for equality checks only.
func NormalizeText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// ToInstant converts a mirror boundary to a UTC instant.
// Date-only values map to midnight UTC with allDay set. Values that cannot be read
// report ok=false and must be treated as "cannot compare".
func ToInstant(t EventTime) (instant time.Time, allDay bool, ok bool) {
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed.UTC(), false, true
		}
		loc := time.UTC
		if t.TimeZone != "" {
			if l, err := time.LoadLocation(t.TimeZone); err == nil {
				loc = l
			}
		}
		if parsed, err := time.ParseInLocation(localDateTimeLayout, t.DateTime, loc); err == nil {
			return parsed.UTC(), false, true
		}
		return time.Time{}, false, false
	}

	if t.Date != "" {
		if parsed, err := time.Parse(DateLayout, t.Date); err == nil {
			return parsed.UTC(), true, true
		}
	}

	return time.Time{}, false, false
}

// Truncate shortens s to at most max characters.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
