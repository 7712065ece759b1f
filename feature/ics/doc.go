// Package ics reads a published iCalendar feed as a mirror source.
//
// Recurring series are expanded over the requested window with RRULE, RDATE
// and EXDATE applied, and RECURRENCE-ID overrides replace the instance they
// target. Instances of a series are identified by UID and original start.
package ics
