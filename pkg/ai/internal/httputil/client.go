// ABOUTME: JSON-over-HTTP client for the model API: intent classification and embedding calls
// ABOUTME: Retries 429/5xx with backoff or Retry-After, but never sleeps past the caller's deadline

package httputil

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	maxAttempts    = 3
	baseBackoff    = 250 * time.Millisecond
	maxBackoff     = 4 * time.Second
	maxErrorBody   = 4096
	defaultTimeout = 30 * time.Second
)

// StatusError is returned by PostJSON for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client sends requests relative to one API root with fixed headers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

// NewClient creates a client for baseURL. Proxies come from HTTP_PROXY/HTTPS_PROXY.
func NewClient(baseURL string, headers map[string]string) *Client {
	if headers == nil {
		headers = make(map[string]string)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				MaxIdleConnsPerHost:   16,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		baseURL: baseURL,
		headers: headers,
	}
}

// BaseURL returns the API root requests are sent under.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTimeout overrides the per-request timeout (default 30s, the openai.timeout default).
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// Do sends the request, retrying on 429 and 5xx up to maxAttempts times. The
// last response is returned unread when attempts run out, or earlier when the
// next wait would overrun ctx's deadline. A body that implements io.Seeker is
// rewound before each retry.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	seeker, _ := body.(io.Seeker)

	for attempt := 0; ; attempt++ {
		if attempt > 0 && seeker != nil {
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, fmt.Errorf("building %s %s: %w", method, path, err)
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		if !retryable(resp.StatusCode) || attempt == maxAttempts-1 {
			return resp, nil
		}

		wait := retryDelay(resp.Header.Get("Retry-After"), attempt)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			return resp, nil
		}
		resp.Body.Close()

		if err := sleep(ctx, wait); err != nil {
			return nil, fmt.Errorf("waiting to retry %s: %w", path, err)
		}
	}
}

// PostJSON marshals in, POSTs it with retries and decodes a 2xx body into out.
// Non-2xx responses yield a *StatusError carrying a bounded copy of the body.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// retryDelay honours a Retry-After given in seconds, else doubles baseBackoff
// per attempt. Both are capped at maxBackoff.
func retryDelay(retryAfter string, attempt int) time.Duration {
	d := baseBackoff << attempt
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		d = time.Duration(secs) * time.Second
	}
	return min(d, maxBackoff)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
