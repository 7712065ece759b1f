package gcal

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"calendar-mirror/core/reconcile"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// fakeAPI is an in-memory CalendarAPI with overridable calls.
type fakeAPI struct {
	pages    map[string]*calendar.Events
	inserted []*calendar.Event
	updated  map[string]*calendar.Event

	listFn   func(pageToken string) (*calendar.Events, error)
	insertFn func(event *calendar.Event) (*calendar.Event, error)
	deleteFn func(eventID string) error
}

func (f *fakeAPI) ListEvents(_ context.Context, _, _, _, pageToken string) (*calendar.Events, error) {
	if f.listFn != nil {
		return f.listFn(pageToken)
	}
	return f.pages[pageToken], nil
}

func (f *fakeAPI) InsertEvent(_ context.Context, _ string, event *calendar.Event) (*calendar.Event, error) {
	if f.insertFn != nil {
		return f.insertFn(event)
	}
	f.inserted = append(f.inserted, event)
	created := *event
	created.Id = "new-1"
	return &created, nil
}

func (f *fakeAPI) UpdateEvent(_ context.Context, _, eventID string, event *calendar.Event) (*calendar.Event, error) {
	if f.updated == nil {
		f.updated = make(map[string]*calendar.Event)
	}
	f.updated[eventID] = event
	return event, nil
}

func (f *fakeAPI) DeleteEvent(_ context.Context, _, eventID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(eventID)
	}
	return nil
}

func newTestClient(api CalendarAPI) *Client {
	c := NewClient(Config{CalendarID: "mirror@example.com", MetadataKey: "exchange_uid", MaxRetries: 3}, api, nil)
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func TestClient_FetchEvents_Pages(t *testing.T) {
	api := &fakeAPI{pages: map[string]*calendar.Events{
		"": {
			Items: []*calendar.Event{{
				Id:          "g1",
				Summary:     "Standup",
				Description: "notes",
				Start:       &calendar.EventDateTime{DateTime: "2030-05-06T10:00:00+02:00", TimeZone: "Europe/Paris"},
				End:         &calendar.EventDateTime{DateTime: "2030-05-06T10:30:00+02:00", TimeZone: "Europe/Paris"},
				ExtendedProperties: &calendar.EventExtendedProperties{
					Private: map[string]string{"exchange_uid": "AAMk-1"},
				},
			}},
			NextPageToken: "p2",
		},
		"p2": {
			Items: []*calendar.Event{
				{Id: "g2", Summary: "Holiday", Start: &calendar.EventDateTime{Date: "2030-05-08"}, End: &calendar.EventDateTime{Date: "2030-05-09"}},
				{Id: "g3", Status: "cancelled"},
			},
		},
	}}

	events, err := newTestClient(api).FetchEvents(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "g1", events[0].ID)
	assert.Equal(t, "AAMk-1", events[0].SourceRef)
	assert.Equal(t, reconcile.EventTime{DateTime: "2030-05-06T10:00:00+02:00", TimeZone: "Europe/Paris"}, events[0].Start)

	assert.Equal(t, "g2", events[1].ID)
	assert.Empty(t, events[1].SourceRef)
	assert.Equal(t, reconcile.EventTime{Date: "2030-05-08"}, events[1].Start)
}

func TestClient_CreateEvent(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(api)

	id, err := c.CreateEvent(context.Background(), reconcile.Payload{
		Title:     "Holiday",
		Start:     reconcile.EventTime{Date: "2030-05-08"},
		End:       reconcile.EventTime{Date: "2030-05-09"},
		SourceRef: "AAMk-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", id)

	require.Len(t, api.inserted, 1)
	sent := api.inserted[0]
	assert.Equal(t, "2030-05-08", sent.Start.Date)
	assert.Empty(t, sent.Start.DateTime)
	assert.Equal(t, "AAMk-2", sent.ExtendedProperties.Private["exchange_uid"])
}

func TestClient_UpdateEvent(t *testing.T) {
	api := &fakeAPI{}
	err := newTestClient(api).UpdateEvent(context.Background(), "g1", reconcile.Payload{
		Title:     "Review",
		Start:     reconcile.EventTime{DateTime: "2030-01-10T10:00:00+01:00", TimeZone: "Europe/Paris"},
		End:       reconcile.EventTime{DateTime: "2030-01-10T11:00:00+01:00", TimeZone: "Europe/Paris"},
		SourceRef: "AAMk-3",
	})
	require.NoError(t, err)
	require.Contains(t, api.updated, "g1")
	assert.Equal(t, "Europe/Paris", api.updated["g1"].Start.TimeZone)
}

func TestClient_RetriesRateLimits(t *testing.T) {
	calls := 0
	api := &fakeAPI{insertFn: func(event *calendar.Event) (*calendar.Event, error) {
		calls++
		switch calls {
		case 1:
			return nil, &googleapi.Error{Code: http.StatusTooManyRequests}
		case 2:
			return nil, &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}}}
		}
		return &calendar.Event{Id: "ok"}, nil
	}}

	id, err := newTestClient(api).CreateEvent(context.Background(), reconcile.Payload{})
	require.NoError(t, err)
	assert.Equal(t, "ok", id)
	assert.Equal(t, 3, calls)
}

func TestClient_CreateEventNotRetriedOnServerError(t *testing.T) {
	// The event is stored before the 503 is returned.
	var stored []*calendar.Event
	api := &fakeAPI{insertFn: func(event *calendar.Event) (*calendar.Event, error) {
		stored = append(stored, event)
		return nil, &googleapi.Error{Code: http.StatusServiceUnavailable}
	}}

	_, err := newTestClient(api).CreateEvent(context.Background(), reconcile.Payload{SourceRef: "s1"})
	require.Error(t, err)
	assert.Len(t, stored, 1)
}

func TestClient_FetchEventsRetriesServerErrors(t *testing.T) {
	calls := 0
	api := &fakeAPI{listFn: func(string) (*calendar.Events, error) {
		calls++
		if calls == 1 {
			return nil, &googleapi.Error{Code: http.StatusServiceUnavailable}
		}
		return &calendar.Events{Items: []*calendar.Event{{Id: "g1"}}}, nil
	}}

	events, err := newTestClient(api).FetchEvents(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 2, calls)
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	api := &fakeAPI{insertFn: func(event *calendar.Event) (*calendar.Event, error) {
		calls++
		return nil, &googleapi.Error{Code: http.StatusTooManyRequests}
	}}

	_, err := newTestClient(api).CreateEvent(context.Background(), reconcile.Payload{})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestClient_DoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	api := &fakeAPI{deleteFn: func(string) error {
		calls++
		return &googleapi.Error{Code: http.StatusNotFound}
	}}

	err := newTestClient(api).DeleteEvent(context.Background(), "gone")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.ErrorContains(t, err, "already removed")
	assert.Equal(t, 1, calls)
}

func TestClient_AuthErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"Unauthorized", &googleapi.Error{Code: http.StatusUnauthorized}},
		{"Refresh failed", &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusBadRequest}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{listFn: func(string) (*calendar.Events, error) { return nil, tt.err }}
			_, err := newTestClient(api).FetchEvents(context.Background(), time.Now(), time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, reconcile.ErrAuthentication)
		})
	}

	api := &fakeAPI{listFn: func(string) (*calendar.Events, error) { return nil, errors.New("connection reset") }}
	_, err := newTestClient(api).FetchEvents(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, reconcile.ErrAuthentication)
}
