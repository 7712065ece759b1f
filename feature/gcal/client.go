package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"calendar-mirror/core/reconcile"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// Client is the Google Calendar mirror. It implements reconcile.Mirror.
type Client struct {
	cfg    Config
	api    CalendarAPI
	logger *zap.Logger

	// newBackOff builds the retry policy of one call.
	newBackOff func() backoff.BackOff
}

// NewClient creates a mirror client over api.
func NewClient(cfg Config, api CalendarAPI, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MetadataKey == "" {
		cfg.MetadataKey = "exchange_uid"
	}
	return &Client{
		cfg:        cfg,
		api:        api,
		logger:     logger,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// FetchEvents returns every live instance overlapping [start, end].
func (c *Client) FetchEvents(ctx context.Context, start, end time.Time) ([]reconcile.MirrorEvent, error) {
	timeMin := start.UTC().Format(time.RFC3339)
	timeMax := end.UTC().Format(time.RFC3339)

	var out []reconcile.MirrorEvent
	pageToken := ""
	for {
		var page *calendar.Events
		err := c.retry(ctx, isRetryable, func() error {
			var err error
			page, err = c.api.ListEvents(ctx, c.cfg.CalendarID, timeMin, timeMax, pageToken)
			return err
		})
		if err != nil {
			return nil, c.classify("listing events", err)
		}

		for _, item := range page.Items {
			if item == nil || item.Status == "cancelled" {
				continue
			}
			out = append(out, c.toMirrorEvent(item))
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.logger.Debug("Fetched Google events", zap.String("calendar", c.cfg.CalendarID), zap.Int("count", len(out)))
	return out, nil
}

// CreateEvent inserts the payload and returns the new event id.
// Insert is not idempotent: a 5xx may come after the event was stored, so only
// rate limit refusals are retried.
func (c *Client) CreateEvent(ctx context.Context, payload reconcile.Payload) (string, error) {
	var created *calendar.Event
	err := c.retry(ctx, isRateLimited, func() error {
		var err error
		created, err = c.api.InsertEvent(ctx, c.cfg.CalendarID, c.toGoogleEvent(payload))
		return err
	})
	if err != nil {
		return "", c.classify("inserting event", err)
	}
	return created.Id, nil
}

// UpdateEvent replaces the event with the payload.
func (c *Client) UpdateEvent(ctx context.Context, mirrorID string, payload reconcile.Payload) error {
	err := c.retry(ctx, isRetryable, func() error {
		_, err := c.api.UpdateEvent(ctx, c.cfg.CalendarID, mirrorID, c.toGoogleEvent(payload))
		return err
	})
	if err != nil {
		return c.classify("updating event", err)
	}
	return nil
}

// DeleteEvent removes the event. A missing event is reported as an error.
func (c *Client) DeleteEvent(ctx context.Context, mirrorID string) error {
	err := c.retry(ctx, isRetryable, func() error {
		return c.api.DeleteEvent(ctx, c.cfg.CalendarID, mirrorID)
	})
	if IsNotFound(err) {
		return fmt.Errorf("deleting event %s: already removed: %w", mirrorID, err)
	}
	if err != nil {
		return c.classify("deleting event", err)
	}
	return nil
}

func (c *Client) toMirrorEvent(item *calendar.Event) reconcile.MirrorEvent {
	ev := reconcile.MirrorEvent{
		ID:          item.Id,
		Title:       item.Summary,
		Location:    item.Location,
		Description: item.Description,
		Start:       eventTime(item.Start),
		End:         eventTime(item.End),
	}
	if item.ExtendedProperties != nil {
		ev.SourceRef = item.ExtendedProperties.Private[c.cfg.MetadataKey]
	}
	return ev
}

func (c *Client) toGoogleEvent(p reconcile.Payload) *calendar.Event {
	return &calendar.Event{
		Summary:     p.Title,
		Location:    p.Location,
		Description: p.Description,
		Start:       googleTime(p.Start),
		End:         googleTime(p.End),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{c.cfg.MetadataKey: p.SourceRef},
		},
	}
}

func eventTime(t *calendar.EventDateTime) reconcile.EventTime {
	if t == nil {
		return reconcile.EventTime{}
	}
	return reconcile.EventTime{Date: t.Date, DateTime: t.DateTime, TimeZone: t.TimeZone}
}

func googleTime(t reconcile.EventTime) *calendar.EventDateTime {
	if t.Date != "" {
		return &calendar.EventDateTime{Date: t.Date}
	}
	return &calendar.EventDateTime{DateTime: t.DateTime, TimeZone: t.TimeZone}
}

// retry runs op until it succeeds, fails with an error retryable rejects,
// or the retry budget is spent.
func (c *Client) retry(ctx context.Context, retryable func(error) bool, op func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		c.logger.Debug("Retrying Google call", zap.Int("attempt", attempt), zap.Error(err))
		return err
	}

	maxRetries := c.cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(maxRetries)), ctx)
	return backoff.Retry(operation, policy)
}

// classify tags credential failures so the engine reports them as such.
func (c *Client) classify(action string, err error) error {
	if isAuthError(err) {
		return fmt.Errorf("%w: %s: %w", reconcile.ErrAuthentication, action, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// isRetryable reports rate limiting and transient server errors.
func isRetryable(err error) bool {
	var ae *googleapi.Error
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Code >= 500 || isRateLimited(err)
}

// isRateLimited reports requests Google refused before processing them.
func isRateLimited(err error) bool {
	var ae *googleapi.Error
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.Code {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		for _, item := range ae.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	return false
}

func hasStatus(err error, code int) bool {
	var ae *googleapi.Error
	return errors.As(err, &ae) && ae.Code == code
}

// IsNotFound reports a missing event.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}
