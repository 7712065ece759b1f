package exchange

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"calendar-mirror/core/reconcile"

	"github.com/Azure/go-ntlmssp"
	"go.uber.org/zap"
)

const (
	AuthNTLM  = "ntlm"
	AuthBasic = "basic"

	// getItemBatch bounds the ids sent in one GetItem call.
	getItemBatch = 50
)

// Client reads calendar occurrences through Exchange Web Services.
// It implements reconcile.Source.
type Client struct {
	cfg    Config
	loc    *time.Location
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates an EWS client. loc is the zone all-day dates are read in.
func NewClient(cfg Config, loc *time.Location, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 60
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: time.Duration(timeout) * time.Second}
	if !strings.EqualFold(cfg.Auth, AuthBasic) {
		httpClient.Transport = ntlmssp.Negotiator{RoundTripper: http.DefaultTransport.(*http.Transport).Clone()}
	}

	return &Client{cfg: cfg, loc: loc, http: httpClient, logger: logger}
}

// Name returns the source name.
func (c *Client) Name() string {
	return "exchange"
}

// FetchEvents returns every occurrence in [start, end] ordered by start.
func (c *Client) FetchEvents(ctx context.Context, start, end time.Time) ([]reconcile.SourceEvent, error) {
	req, err := findItemRequest(c.cfg.Email, start, end)
	if err != nil {
		return nil, fmt.Errorf("building FindItem request: %w", err)
	}

	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}

	items, complete, err := parseFindItem(resp)
	if err != nil {
		return nil, c.classify(err)
	}
	if !complete {
		return nil, fmt.Errorf("%w: calendar view truncated by the server", reconcile.ErrFetch)
	}

	bodies, err := c.fetchBodies(ctx, items)
	if err != nil {
		return nil, err
	}

	events := make([]reconcile.SourceEvent, 0, len(items))
	for _, item := range items {
		ev, ok := c.toEvent(item)
		if !ok {
			c.logger.Warn("Skipping occurrence without readable boundaries",
				zap.String("id", item.ID),
				zap.String("start", item.Start),
				zap.String("end", item.End),
			)
			continue
		}
		ev.Body = c.capBody(bodies[item.ID])
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})

	c.logger.Debug("Fetched Exchange occurrences", zap.Int("count", len(events)))
	return events, nil
}

func (c *Client) fetchBodies(ctx context.Context, items []calendarItem) (map[string]string, error) {
	bodies := make(map[string]string, len(items))

	var ids []string
	for _, item := range items {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}

	for i := 0; i < len(ids); i += getItemBatch {
		batch := ids[i:min(i+getItemBatch, len(ids))]

		req, err := getItemRequest(batch)
		if err != nil {
			return nil, fmt.Errorf("building GetItem request: %w", err)
		}
		resp, err := c.call(ctx, req)
		if err != nil {
			return nil, err
		}
		got, err := parseGetItem(resp)
		if err != nil {
			return nil, c.classify(err)
		}
		for id, body := range got {
			bodies[id] = body
		}
	}

	return bodies, nil
}

func (c *Client) toEvent(item calendarItem) (reconcile.SourceEvent, bool) {
	start, err := time.Parse(time.RFC3339, item.Start)
	if err != nil {
		return reconcile.SourceEvent{}, false
	}
	end, err := time.Parse(time.RFC3339, item.End)
	if err != nil {
		return reconcile.SourceEvent{}, false
	}

	ev := reconcile.SourceEvent{
		ID:        item.ID,
		Title:     reconcile.NormalizeTitle(item.Subject),
		Location:  item.Location,
		Organizer: item.Organizer,
		AllDay:    item.AllDay,
	}

	if item.AllDay {
		// The server reports all-day boundaries as midnight in the mailbox zone.
		ev.Start = dateOf(start.In(c.loc))
		ev.End = dateOf(end.In(c.loc))
		if !ev.End.After(ev.Start) {
			ev.End = ev.Start.AddDate(0, 0, 1)
		}
	} else {
		ev.Start = start.UTC()
		ev.End = end.UTC()
		if ev.End.Before(ev.Start) {
			ev.End = ev.Start
		}
	}

	return ev, ev.ID != ""
}

func (c *Client) capBody(body string) string {
	if c.cfg.MaxBodyChars > 0 {
		return reconcile.Truncate(body, c.cfg.MaxBodyChars)
	}
	return body
}

func (c *Client) call(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid EWS url: %w", reconcile.ErrConfiguration, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("Accept", "text/xml")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling EWS: %w", reconcile.ErrFetch, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading EWS response: %w", reconcile.ErrFetch, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: EWS rejected credentials for %s (%d)", reconcile.ErrAuthentication, c.cfg.Username, resp.StatusCode)
	case resp.StatusCode >= 300:
		// Faults come back as 500 with a SOAP body.
		if _, perr := parseResponse(data, "ResponseMessage"); perr != nil {
			return nil, c.classify(perr)
		}
		return nil, fmt.Errorf("%w: EWS returned status %d", reconcile.ErrFetch, resp.StatusCode)
	}

	return data, nil
}

// classify maps EWS response codes onto engine error categories.
func (c *Client) classify(err error) error {
	var re *responseError
	if errors.As(err, &re) {
		switch re.Code {
		case "ErrorAccessDenied", "ErrorNonExistentMailbox", "ErrorImpersonationDenied":
			return fmt.Errorf("%w: %w", reconcile.ErrAuthentication, err)
		}
	}
	return fmt.Errorf("%w: %w", reconcile.ErrFetch, err)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
