// Package fetch wraps http.Client for the market board endpoints: a cookie
// session per source, browser-like headers and bounded retry on transient
// upstream failures.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultUserAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

type Options struct {
	Timeout    time.Duration
	UserAgent  string
	MaxRetries uint64
}

type Client struct {
	http       *http.Client
	userAgent  string
	maxRetries uint64
}

// NewClient builds a client with its own cookie jar. Boards hand out session
// cookies on the main page and refuse data requests without them, so every
// source gets a dedicated client.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
			Jar:     jar,
		},
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
	}
}

// EstablishSession primes the jar by loading the board's main page. The body
// is returned because some boards embed the commodity dropdown there.
func (c *Client) EstablishSession(ctx context.Context, pageURL string) (string, error) {
	body, err := c.Get(ctx, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("establish session: %w", err)
	}

	return body, nil
}

// Get fetches rawURL with params encoded into the query string.
func (c *Client) Get(ctx context.Context, rawURL string, params map[string]string) (string, error) {
	return c.fetch(ctx, func() (*http.Request, error) {
		u := rawURL
		if len(params) > 0 {
			u = rawURL + "?" + encodeParams(params)
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
}

// PostForm fetches rawURL with params form-encoded into the body.
func (c *Client) PostForm(ctx context.Context, rawURL string, params map[string]string) (string, error) {
	return c.fetch(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(encodeParams(params)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

// Do dispatches on the configured request method.
func (c *Client) Do(ctx context.Context, method, rawURL string, params map[string]string) (string, error) {
	if strings.EqualFold(method, http.MethodPost) {
		return c.PostForm(ctx, rawURL, params)
	}
	return c.Get(ctx, rawURL, params)
}

// fetch runs one request under retry. Network errors, 429 and 5xx retry with
// exponential backoff; other non-200 statuses fail immediately.
func (c *Client) fetch(ctx context.Context, build func() (*http.Request, error)) (string, error) {
	var body string

	err := backoff.Retry(func() error {
		req, err := build()
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body = string(data)
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
		default:
			return backoff.Permanent(fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status))
		}
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx))
	if err != nil {
		return "", err
	}

	return body, nil
}

// BuildURL joins a board's base URL with a path. Absolute paths pass through
// so a source can point individual endpoints at another host.
func BuildURL(base, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("build url: empty path")
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	if base == "" {
		return "", fmt.Errorf("build url: empty base for relative path %q", path)
	}

	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/"), nil
}

func encodeParams(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}
