package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// Valid minimal PNG data for a 1x1 transparent pixel.
var pngData = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(5 * time.Second).WithBackoff(10 * time.Millisecond)
}

func TestHTTPFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // status codes returned in sequence
		expectRetries int   // expected number of requests
		expectError   bool
		errorContains string
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{200},
			expectRetries: 1,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 200},
			expectRetries: 2,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{404},
			expectRetries: 1,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "4xx after 5xx - retry until 4xx then stop",
			responses:     []int{500, 404},
			expectRetries: 2,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectError:   true,
			errorContains: "server error: status code 503",
		},
		{
			name:          "Bad request - stop on first 4xx",
			responses:     []int{400},
			expectRetries: 1,
			expectError:   true,
			errorContains: "client error: status code 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestCount := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if requestCount >= len(tt.responses) {
					w.WriteHeader(500)
					w.Write([]byte("Unexpected request"))
					return
				}
				statusCode := tt.responses[requestCount]
				requestCount++
				if statusCode == 200 {
					w.Header().Set("Content-Type", "image/png")
					w.Write(pngData)
					return
				}
				w.WriteHeader(statusCode)
				w.Write([]byte(fmt.Sprintf("Error %d", statusCode)))
			}))
			defer server.Close()

			data, err := newTestFetcher().Fetch(context.Background(), server.URL)

			if requestCount != tt.expectRetries {
				t.Errorf("Expected %d requests, got %d", tt.expectRetries, requestCount)
			}
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				} else if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain '%s', got: %s", tt.errorContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error, got: %s", err.Error())
			}
			if !bytes.Equal(data, pngData) {
				t.Errorf("Expected %d body bytes, got %d", len(pngData), len(data))
			}
		})
	}
}

func TestHTTPFetcher_NetworkError_Retry(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount < 3 {
			// simulate a network error by dropping the connection
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, _ := hj.Hijack()
				conn.Close()
			}
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngData)
	}))
	defer server.Close()

	start := time.Now()
	_, err := newTestFetcher().Fetch(context.Background(), server.URL)
	duration := time.Since(start)

	if err != nil {
		t.Errorf("Expected success after retries, got error: %s", err.Error())
	}
	if requestCount != 3 {
		t.Errorf("Expected 3 requests, got %d", requestCount)
	}
	// backoff is linear: 10ms + 20ms
	if duration < 30*time.Millisecond {
		t.Errorf("Expected at least 30ms due to backoff, took %v", duration)
	}
}

func TestHTTPFetcher_CancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := NewHTTPFetcher(5 * time.Second).WithBackoff(time.Hour)
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := fetcher.Fetch(ctx, server.URL)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestHTTPFetcher_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngData)
	}))
	defer server.Close()

	_, err := newTestFetcher().WithMaxBytes(10).Fetch(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "exceeds 10 bytes") {
		t.Errorf("Expected size limit error, got %v", err)
	}
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	_, err := newTestFetcher().Fetch(context.Background(), "://bad")
	if err == nil || !strings.Contains(err.Error(), "invalid URL") {
		t.Errorf("Expected invalid URL error, got %v", err)
	}
}

func TestParseBlobRef(t *testing.T) {
	tests := []struct {
		name      string
		ref       string
		want      BlobRef
		expectErr bool
	}{
		{"simple", "azblob://cards/front.jpg", BlobRef{Container: "cards", Blob: "front.jpg"}, false},
		{"nested path", "azblob://cards/2024/01/back.png", BlobRef{Container: "cards", Blob: "2024/01/back.png"}, false},
		{"wrong scheme", "https://cards/front.jpg", BlobRef{}, true},
		{"missing blob", "azblob://cards", BlobRef{}, true},
		{"missing container", "azblob:///front.jpg", BlobRef{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBlobRef(tt.ref)
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error for %q, got %+v", tt.ref, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNewAzureBlobFetcher_BadKey(t *testing.T) {
	if _, err := NewAzureBlobFetcher("account", "not base64!"); err == nil {
		t.Errorf("Expected credential error for a non base64 key")
	}
}
