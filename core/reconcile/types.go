package reconcile

import "time"

// DateLayout is the layout of date-only event boundaries.
const DateLayout = "2006-01-02"

// SourceEvent is one instance fetched from the source calendar for the query window.
// It is an immutable snapshot for the duration of one reconciliation pass.
type SourceEvent struct {
	// ID is the stable, opaque identifier of this source instance.
	ID string `json:"id"`

	// Title is the display title, already cleaned of provider-specific markers.
	Title string `json:"title"`

	// Location is the free-text location, possibly empty.
	Location string `json:"location"`

	// Body is the plain-text body, possibly empty.
	Body string `json:"body"`

	// Start is the UTC start instant.
	Start time.Time `json:"start"`

	// End is the UTC end instant. Start <= End always holds.
	End time.Time `json:"end"`

	// AllDay marks events that occupy whole calendar dates.
	AllDay bool `json:"all_day"`

	// Organizer is informational only and never used for matching.
	Organizer string `json:"organizer"`
}

// EventTime is a mirror-side event boundary.
// Exactly one of Date or DateTime is expected to be set; the choice carries the all-day flag.
type EventTime struct {
	// Date is a date-only value in DateLayout.
	Date string `json:"date,omitempty"`

	// DateTime is an RFC 3339 instant with offset.
	DateTime string `json:"date_time,omitempty"`

	// TimeZone is the IANA zone the instant was written with.
	TimeZone string `json:"time_zone,omitempty"`
}

// MirrorEvent is one instance fetched from the mirror calendar in the same window.
type MirrorEvent struct {
	// ID is the opaque identifier assigned by the mirror system.
	ID string `json:"id"`

	// SourceRef is the source identifier stored in the mirror's metadata slot.
	// Events created before metadata support leave it empty; see ReadSourceRef.
	SourceRef string `json:"source_ref"`

	// Title is the mirror event summary.
	Title string `json:"title"`

	// Location is the mirror event location.
	Location string `json:"location"`

	// Description is the visible description field.
	Description string `json:"description"`

	// Start is the native start representation.
	Start EventTime `json:"start"`

	// End is the native end representation.
	End EventTime `json:"end"`
}

// Payload is the full mirror representation of a source event, sent on create and update.
type Payload struct {
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
	// SourceRef is written to the mirror's metadata slot.
	SourceRef string `json:"source_ref"`
}

// Field names a comparable event attribute reported by DetectChanges.
type Field string

const (
	FieldType        Field = "type"
	FieldStart       Field = "start"
	FieldEnd         Field = "end"
	FieldSummary     Field = "summary"
	FieldLocation    Field = "location"
	FieldDescription Field = "description"
)

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCreate inserts a new mirror event for an unseen source event.
	ActionCreate ActionType = "create"
	// ActionUpdate republishes a changed source event onto its mirror event.
	ActionUpdate ActionType = "update"
	// ActionDelete removes a future mirror event whose source vanished.
	ActionDelete ActionType = "delete"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// MirrorID is the mirror event targeted by updates and deletes.
	MirrorID string `json:"mirror_id,omitempty"`

	// SourceRef is the source identifier the action concerns.
	SourceRef string `json:"source_ref"`

	// Title is used for logging and reports.
	Title string `json:"title"`

	// Start is the event start instant, used for logging and reports.
	Start time.Time `json:"start"`

	// Changes lists the changed fields of an update, in Field order.
	Changes []Field `json:"changes,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Source is the source snapshot to publish. Only set for create and update.
	Source *SourceEvent `json:"-"`
}

// Plan is the ordered list of actions derived for one pass.
// It is rebuilt from scratch every run and never persisted.
type Plan struct {
	// Actions holds creates and updates in source order, then deletes in index order.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	SourceEvents int `json:"source_events"`
	MirrorEvents int `json:"mirror_events"`
	// Indexed counts mirror events carrying a source reference.
	Indexed   int `json:"indexed"`
	Unchanged int `json:"unchanged"`
	Creates   int `json:"creates"`
	Updates   int `json:"updates"`
	Deletes   int `json:"deletes"`
	// ProtectedPast counts orphans left alone because they already started.
	ProtectedPast int `json:"protected_past"`
	// Unparseable counts orphans whose start could not be read.
	Unparseable int `json:"unparseable"`
	// DuplicateRefs counts mirror events shadowed by a later one with the same reference.
	DuplicateRefs int `json:"duplicate_refs"`
	// DuplicateSourceIDs counts repeated source ids ignored after their first occurrence.
	DuplicateSourceIDs int `json:"duplicate_source_ids"`
}

// Result holds the tallies of an executed (or simulated) plan.
type Result struct {
	// DryRun reports whether mutations were suppressed.
	DryRun bool `json:"dry_run"`

	Created int `json:"created"`
	Updated int `json:"updated"`

	// Deleted counts deletes actually applied. It stays zero in dry-run.
	Deleted int `json:"deleted"`

	// WouldDelete counts deletes skipped because of dry-run.
	WouldDelete int `json:"would_delete"`

	// DeleteFailed counts deletes that failed and were skipped.
	DeleteFailed int `json:"delete_failed"`

	// Failures describes every recovered delete failure.
	Failures []string `json:"failures,omitempty"`
}

// Counts returns the created, updated and deleted tallies.
// In dry-run the third value is the would-delete count.
func (r *Result) Counts() (created, updated, deleted int) {
	if r == nil {
		return 0, 0, 0
	}
	if r.DryRun {
		return r.Created, r.Updated, r.WouldDelete
	}
	return r.Created, r.Updated, r.Deleted
}

// Options is the explicit configuration passed to the engine.
type Options struct {
	// HorizonDays is the size of the fetch window starting now.
	HorizonDays int

	// DryRun suppresses every mutating call.
	DryRun bool

	// Tolerance is the maximum start/end drift still considered equal.
	// Zero means DefaultTolerance.
	Tolerance time.Duration

	// DescriptionMaxLen caps the body written to and compared against the mirror.
	// Zero means DefaultDescriptionMaxLen.
	DescriptionMaxLen int

	// Timezone is the IANA zone used for timed payloads and display.
	Timezone string

	// FailOnDuplicateRefs turns duplicate mirror references into a consistency error.
	FailOnDuplicateRefs bool

	// Now returns the current instant. Nil means time.Now.
	Now func() time.Time
}

const (
	// DefaultHorizonDays is the default fetch window.
	DefaultHorizonDays = 60
	// DefaultTolerance is the default start/end equality tolerance.
	DefaultTolerance = 60 * time.Second
	// DefaultDescriptionMaxLen is the default description cap, in characters.
	DefaultDescriptionMaxLen = 10000
)

func (o Options) tolerance() time.Duration {
	if o.Tolerance <= 0 {
		return DefaultTolerance
	}
	return o.Tolerance
}

func (o Options) descriptionMaxLen() int {
	if o.DescriptionMaxLen <= 0 {
		return DefaultDescriptionMaxLen
	}
	return o.DescriptionMaxLen
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now().UTC()
	}
	return o.Now().UTC()
}

// Location resolves Timezone, falling back to UTC when empty or unknown.
func (o Options) Location() *time.Location {
	if o.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
