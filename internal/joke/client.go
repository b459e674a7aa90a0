// Package joke fetches plain-text jokes over HTTP for the "/joke" command.
package joke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultURL answers a GET with one random joke.
	DefaultURL = "https://icanhazdadjoke.com/"
	// DefaultUserAgent identifies this service to the joke API, which asks
	// callers to send one.
	DefaultUserAgent = "roomchat (https://github.com/Tyrowin/roomchat)"

	maxJokeBytes = 4 << 10
)

// ErrEmptyJoke is returned when the API answers with an empty body.
var ErrEmptyJoke = errors.New("empty joke")

// Client requests jokes from an HTTP endpoint that returns text/plain.
type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// NewClient returns a Client for url, or DefaultURL when url is empty.
func NewClient(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		url:       url,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchJoke performs one request. It honours ctx for cancellation and
// deadlines and makes no retries.
func (c *Client) FetchJoke(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build joke request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request joke: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxJokeBytes))
		return "", fmt.Errorf("joke endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJokeBytes))
	if err != nil {
		return "", fmt.Errorf("read joke: %w", err)
	}

	joke := strings.TrimSpace(string(body))
	if joke == "" {
		return "", ErrEmptyJoke
	}
	return joke, nil
}
