package gcal

import (
	"context"
	"net/http"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// pageSize is the largest page the Events.List endpoint accepts.
const pageSize = 2500

// CalendarAPI is the subset of the Google Calendar API the mirror uses.
type CalendarAPI interface {
	ListEvents(ctx context.Context, calendarID, timeMin, timeMax, pageToken string) (*calendar.Events, error)
	InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// LowLevelAPI calls the Google Calendar service.
type LowLevelAPI struct {
	service *calendar.Service
}

// NewLowLevelAPI creates the calendar service over an authorized client.
func NewLowLevelAPI(ctx context.Context, client *http.Client) (*LowLevelAPI, error) {
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}
	return &LowLevelAPI{service: service}, nil
}

// ListEvents returns one page of expanded instances overlapping [timeMin, timeMax).
func (api *LowLevelAPI) ListEvents(ctx context.Context, calendarID, timeMin, timeMax, pageToken string) (*calendar.Events, error) {
	call := api.service.Events.List(calendarID).
		EventTypes("default").
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(timeMin).
		TimeMax(timeMax).
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

func (api *LowLevelAPI) InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	return api.service.Events.Insert(calendarID, event).Context(ctx).Do()
}

// UpdateEvent replaces the whole event.
func (api *LowLevelAPI) UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error) {
	return api.service.Events.Update(calendarID, eventID, event).Context(ctx).Do()
}

func (api *LowLevelAPI) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return api.service.Events.Delete(calendarID, eventID).Context(ctx).Do()
}
