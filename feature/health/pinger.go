package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Signal is the kind of ping sent to the check URL.
type Signal string

const (
	SignalStart   Signal = "start"
	SignalSuccess Signal = "success"
	SignalFail    Signal = "fail"
)

// Pinger sends healthchecks.io style pings.
type Pinger struct {
	url  string
	http *http.Client
}

// NewPinger creates a pinger for cfg.URL.
func NewPinger(cfg Config) *Pinger {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Pinger{
		url:  strings.TrimRight(cfg.URL, "/"),
		http: &http.Client{Timeout: timeout, Transport: transport},
	}
}

// URL returns the endpoint of a signal. Success pings the bare check URL.
func (p *Pinger) URL(signal Signal) string {
	switch signal {
	case SignalStart, SignalFail:
		return p.url + "/" + string(signal)
	default:
		return p.url
	}
}

// Ping sends the signal. A non-empty message is posted as the request body.
func (p *Pinger) Ping(ctx context.Context, signal Signal, message string) error {
	method := http.MethodGet
	var body io.Reader
	if message != "" {
		method = http.MethodPost
		body = strings.NewReader(message)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.URL(signal), body)
	if err != nil {
		return fmt.Errorf("failed to build %s ping: %w", signal, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s ping failed: %w", signal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s ping returned status %d", signal, resp.StatusCode)
	}
	return nil
}
