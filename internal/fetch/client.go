package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"

// Client is a GET-only HTTP client with bounded retry. The external site is
// a best-effort dependency: transport errors and 5xx responses are retried
// with a linear backoff, 4xx responses are not.
type Client struct {
	HTTP      *http.Client
	Retries   int           // retries beyond the first attempt
	Backoff   time.Duration // sleep is Backoff * attempt number
	UserAgent string
}

func NewClient() *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: 20 * time.Second},
		Retries:   2,
		Backoff:   500 * time.Millisecond,
		UserAgent: defaultUserAgent,
	}
}

// Get fetches rawURL and returns the response body. referer may be empty.
func (c *Client) Get(ctx context.Context, rawURL, referer string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.Backoff):
			}
		}

		body, retryable, err := c.do(ctx, rawURL, referer)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, rawURL, referer string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", c.UserAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable = resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("get %s: status %d", rawURL, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return b, false, nil
}
