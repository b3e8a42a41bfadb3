package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"catfill/internal/errors"
	"catfill/internal/logger"
	"catfill/internal/version"
)

// DefaultTimeout is the standard timeout for sheet requests
const DefaultTimeout = 30 * time.Second

// DefaultBackoff is the wait before the first retry; later retries wait
// proportionally longer.
const DefaultBackoff = 500 * time.Millisecond

// RetryableClient provides HTTP operations with consistent timeout and retry behavior
type RetryableClient struct {
	client  *http.Client
	timeout time.Duration
	retries int
	backoff time.Duration
}

// NewRetryableClient creates a new HTTP client with timeout and retry configuration
func NewRetryableClient(timeout time.Duration, retries int) *RetryableClient {
	return &RetryableClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
		retries: retries,
		backoff: DefaultBackoff,
	}
}

// NewDefaultClient creates a client with standard timeout and retry settings
func NewDefaultClient() *RetryableClient {
	return NewRetryableClient(DefaultTimeout, 2)
}

// WithBackoff returns the client with a different base retry wait
func (c *RetryableClient) WithBackoff(d time.Duration) *RetryableClient {
	c.backoff = d
	return c
}

// DoWithRetry executes an HTTP request with retry logic for transient errors
func (c *RetryableClient) DoWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Set context with timeout if not already set
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout*time.Duration(c.retries+1))
		defer cancel()
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", version.UserAgent())
	}

	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		logger.HTTP(req.Method, req.URL.Redacted())
		start := time.Now()

		resp, err := c.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed (attempt %d/%d): %w", attempt+1, c.retries+1, err)
			if attempt < c.retries {
				if werr := c.wait(ctx, attempt); werr != nil {
					return nil, werr
				}
			}
			continue
		}
		logger.HTTPResponse(resp.StatusCode, time.Since(start))

		// Check if we should retry based on status code
		if shouldRetry(resp.StatusCode) && attempt < c.retries {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP request returned retryable status %d (attempt %d/%d)", resp.StatusCode, attempt+1, c.retries+1)
			if werr := c.wait(ctx, attempt); werr != nil {
				return nil, werr
			}
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

func (c *RetryableClient) wait(ctx context.Context, attempt int) error {
	t := time.NewTimer(time.Duration(attempt+1) * c.backoff)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DoJSONRequest executes a JSON request with retry logic and decodes the response
func (c *RetryableClient) DoJSONRequest(ctx context.Context, req *http.Request, result interface{}) error {
	resp, err := c.DoWithRetry(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read error body for debugging
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.NewHttpError(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Redacted(), err)
	}
	return nil
}

// GetJSON issues a GET to url and decodes the JSON body into result
func (c *RetryableClient) GetJSON(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.DoJSONRequest(ctx, req, result)
}

// shouldRetry determines if a status code indicates a retryable error
func shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, // 429
		http.StatusInternalServerError,           // 500
		http.StatusBadGateway,                    // 502
		http.StatusServiceUnavailable,            // 503
		http.StatusGatewayTimeout,                // 504
		http.StatusInsufficientStorage,           // 507
		http.StatusNetworkAuthenticationRequired: // 511
		return true
	default:
		return false
	}
}
