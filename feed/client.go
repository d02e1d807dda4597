// Package feed fetches the remote task list and caches the last good copy.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amonks/pv/task"
)

// DefaultURL is the remote task list used when none is configured.
const DefaultURL = "https://dummyjson.com/c/28e8-a101-22-11"

const maxBodySize = 4 << 20

var (
	// ErrStatus is returned when the endpoint answers with a non-2xx status.
	ErrStatus = errors.New("unexpected status")

	// ErrNotArray is returned when the response body is not a JSON array.
	ErrNotArray = fmt.Errorf("feed: %w", task.ErrNotArray)

	// ErrNoURL is returned by Fetch when the client has no endpoint.
	ErrNoURL = errors.New("feed url not configured")
)

// Fetcher returns the current remote tasks.
type Fetcher interface {
	Fetch(ctx context.Context) (task.List, error)
}

// Options configures a Client.
type Options struct {
	// URL is the endpoint to GET.
	URL string

	// Timeout bounds each request. Zero disables the timeout.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client

	// Now overrides the clock used for timestamp fallbacks.
	Now func() time.Time

	// ID overrides the fallback id source.
	ID func() int64
}

// Client fetches the remote task list over HTTP.
type Client struct {
	url     string
	timeout time.Duration
	client  *http.Client
	now     func() time.Time
	id      func() int64
}

// NewClient creates a client for opts.URL.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	id := opts.ID
	if id == nil {
		id = task.RandomID
	}
	return &Client{
		url:     opts.URL,
		timeout: opts.Timeout,
		client:  client,
		now:     now,
		id:      id,
	}
}

// URL returns the endpoint the client fetches.
func (c *Client) URL() string {
	return c.url
}

// Fetch issues one GET and decodes the response into tasks.
// Fields missing from an element fall back as described by task.Decode, with
// the fetch time standing in for missing timestamps.
func (c *Client) Fetch(ctx context.Context) (task.List, error) {
	if c.url == "" {
		return nil, ErrNoURL
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	fetchedAt := c.now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	tasks, err := task.DecodeList(body, task.Fallbacks{Now: fetchedAt, ID: c.id})
	if err != nil {
		return nil, ErrNotArray
	}
	return tasks, nil
}
