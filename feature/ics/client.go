package ics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"calendar-mirror/core/reconcile"

	"go.uber.org/zap"
)

// Client reads a published ICS feed. It implements reconcile.Source.
type Client struct {
	cfg    Config
	loc    *time.Location
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a feed client. Floating times are read in loc.
func NewClient(cfg Config, loc *time.Location, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		loc:    loc,
		http:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger: logger,
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return "ics"
}

// FetchEvents downloads the feed and returns the instances in [start, end] ordered by start.
func (c *Client) FetchEvents(ctx context.Context, start, end time.Time) ([]reconcile.SourceEvent, error) {
	body, err := c.download(ctx)
	if err != nil {
		return nil, err
	}

	parsed, skipped, err := parseCalendar(body, c.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrFetch, err)
	}
	if skipped > 0 {
		c.logger.Warn("Skipped unreadable VEVENTs", zap.Int("count", skipped))
	}

	occ, errs := expand(parsed, start, end)
	if len(errs) > 0 {
		// A series that cannot be expanded would otherwise look deleted.
		return nil, fmt.Errorf("%w: %w", reconcile.ErrFetch, errs[0])
	}

	events := toSourceEvents(occ)
	c.logger.Debug("Expanded ICS feed", zap.Int("vevents", len(parsed)), zap.Int("instances", len(events)))
	return events, nil
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	url := c.cfg.URL
	if strings.HasPrefix(url, "webcal://") {
		url = "https://" + strings.TrimPrefix(url, "webcal://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ICS url: %w", reconcile.ErrConfiguration, err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading feed: %w", reconcile.ErrFetch, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: feed returned status %d", reconcile.ErrAuthentication, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: feed returned status %d", reconcile.ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading feed: %w", reconcile.ErrFetch, err)
	}
	return body, nil
}
