package fetch

import (
	"context"
	"io"
	"net/http"
	"time"
)

// ClientOptions configures the HTTP client.
type ClientOptions struct {
	// Timeout bounds each request end to end, including reading the body.
	// Default: 90s. Dataset mirrors can be slow, hence the generous value.
	Timeout time.Duration

	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 8
	MaxIdleConnsPerHost int
}

// DefaultClientOptions returns options with sensible defaults.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:             90 * time.Second,
		MaxIdleConnsPerHost: 8,
	}
}

// Client is an HTTP client for streaming dataset downloads. Redirects are
// followed; responses are never retried.
type Client struct {
	client *http.Client
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = 8
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
	}
}

// Get issues a GET request and returns the response body on a 2xx status.
// Any network failure or non-success status is reported as *TransferError.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransferError{URL: url, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransferError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &TransferError{URL: url, Status: resp.Status}
	}

	return resp.Body, nil
}
