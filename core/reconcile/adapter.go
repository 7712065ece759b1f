package reconcile

import (
	"context"
	"time"
)

// Source is the upstream calendar being mirrored.
type Source interface {
	// Name identifies the source in logs and reports (e.g., "exchange", "ics").
	Name() string

	// FetchEvents returns every source instance in [start, end], ordered by start ascending.
	// Recurring series must already be expanded into concrete instances.
	// A partial result must be reported as an error, never returned.
	FetchEvents(ctx context.Context, start, end time.Time) ([]SourceEvent, error)
}

// Mirror is the downstream calendar kept in sync with a Source.
type Mirror interface {
	// FetchEvents returns every mirror instance in [start, end]. Order is irrelevant.
	FetchEvents(ctx context.Context, start, end time.Time) ([]MirrorEvent, error)

	// CreateEvent inserts the payload and returns the new mirror id.
	CreateEvent(ctx context.Context, payload Payload) (string, error)

	// UpdateEvent replaces the mirror event with the full payload.
	UpdateEvent(ctx context.Context, mirrorID string, payload Payload) error

	// DeleteEvent removes the mirror event.
	DeleteEvent(ctx context.Context, mirrorID string) error
}
