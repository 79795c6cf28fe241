// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrDecode marks a response body that could not be parsed.
var ErrDecode = errors.New("decoding response")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned HTTP %d", e.URL, e.Code)
}

// DefaultBodyLimit caps how much of a response body is read.
const DefaultBodyLimit = 4 << 20

// Fetcher issues read-only GET requests with a per-call timeout, a
// descriptive User-Agent, and throttle retries.
type Fetcher struct {
	Client     *http.Client
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// GetJSON fetches rawURL and decodes the JSON body into v.
func (f Fetcher) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := f.get(ctx, rawURL, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// GetBody fetches rawURL and returns the body, read up to DefaultBodyLimit.
func (f Fetcher) GetBody(ctx context.Context, rawURL string) ([]byte, error) {
	return f.get(ctx, rawURL, "*/*")
}

func (f Fetcher) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept", accept)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := DoWithRetry(ctx, client, req, f.MaxRetries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: req.URL.Redacted(), Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, DefaultBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
