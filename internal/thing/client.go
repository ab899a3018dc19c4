// Package thing fetches WebThing descriptions from devices.
package thing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/martinsuchenak/thingprobe/internal/log"
	"github.com/martinsuchenak/thingprobe/internal/model"
	"github.com/martinsuchenak/thingprobe/pkg/device"
)

// DefaultTimeout bounds a single fetch when no timeout is configured
const DefaultTimeout = 30 * time.Second

var _ device.Fetcher = (*Client)(nil)

// HTTPClient is satisfied by *http.Client
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches the description served at a device's base URL
type Client struct {
	target  model.Target
	baseURL string
	http    HTTPClient
	timeout time.Duration
	diag    io.Writer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-fetch timeout. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDiagnostics sets where the progress lines printed before each request go
func WithDiagnostics(w io.Writer) Option {
	return func(c *Client) { c.diag = w }
}

// BaseURL assembles the root endpoint of a device. Host and port are used
// verbatim.
func BaseURL(host, port string) string {
	return "http://" + host + ":" + port + "/"
}

// NewClient creates a client for target
func NewClient(target model.Target, opts ...Option) *Client {
	c := &Client{
		target:  target,
		baseURL: BaseURL(target.Host, target.Port),
		timeout: DefaultTimeout,
		diag:    io.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Target returns the target the client was built for
func (c *Client) Target() model.Target {
	return c.target
}

// BaseURL returns the URL FetchBase requests
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchBase prints the two progress lines, then GETs the base URL. On 200 the
// body is parsed and returned. Any other status yields a *StatusError. Transport
// failures are returned wrapped and are never retried.
func (c *Client) FetchBase(ctx context.Context) (model.Description, error) {
	fmt.Fprintln(c.diag, "Getting thing description")
	fmt.Fprintln(c.diag, "Testing base")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", c.baseURL, err)
	}

	log.Debug("Fetching thing description", "url", c.baseURL)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	log.Debug("Thing description response", "url", c.baseURL, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: c.baseURL, StatusCode: resp.StatusCode}
	}

	desc, reason := decodeDescription(resp.Body)
	if reason != "" {
		return nil, &DecodeError{URL: c.baseURL, StatusCode: resp.StatusCode, Reason: reason}
	}
	return desc, nil
}

// NewRecord takes id and title out of a description. A missing key is an
// error; there is no default.
func NewRecord(desc model.Description) (model.Record, error) {
	id, ok := desc.Text("id")
	if !ok {
		return model.Record{}, &MissingFieldError{Field: "id"}
	}
	title, ok := desc.Text("title")
	if !ok {
		return model.Record{}, &MissingFieldError{Field: "title"}
	}
	return model.NewRecord(id, title), nil
}

// decodeDescription parses exactly one JSON object. The returned reason is
// empty on success.
func decodeDescription(r io.Reader) (model.Description, string) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var desc model.Description
	if err := dec.Decode(&desc); err != nil {
		return nil, err.Error()
	}
	if desc == nil {
		return nil, "body is null"
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, "trailing data after JSON object"
	}
	return desc, ""
}
