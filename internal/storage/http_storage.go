package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher returns the raw bytes behind an image reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

const (
	maxAttempts     = 3
	defaultMaxBytes = 10 * 1024 * 1024
)

// HTTPFetcher downloads images over HTTP(S) with a small retry loop: transport errors and
// 5xx responses are retried with linear backoff, 4xx responses fail immediately.
type HTTPFetcher struct {
	client   *http.Client
	backoff  time.Duration
	maxBytes int64
}

// NewHTTPFetcher creates a fetcher with the given overall per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		backoff:  time.Second,
		maxBytes: defaultMaxBytes,
	}
}

// WithBackoff sets the base delay; attempt n waits n times this value.
func (h *HTTPFetcher) WithBackoff(d time.Duration) *HTTPFetcher {
	h.backoff = d
	return h
}

// WithMaxBytes caps the accepted body size.
func (h *HTTPFetcher) WithMaxBytes(n int64) *HTTPFetcher {
	h.maxBytes = n
	return h
}

func (h *HTTPFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		data, retry, err := h.fetchOnce(ctx, imageURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", maxAttempts, lastErr)
}

// fetchOnce performs one request and reports whether a failure is worth retrying.
func (h *HTTPFetcher) fetchOnce(ctx context.Context, imageURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "CCCD-Inspector/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, false, fmt.Errorf("image exceeds %d bytes", h.maxBytes)
	}
	return data, false, nil
}
