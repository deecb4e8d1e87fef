package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/trigg3rX/mining-cli/pkg/logging"
	"github.com/trigg3rX/mining-cli/pkg/retry"
)

// HTTPRetryConfig holds configuration for HTTP retry operations
type HTTPRetryConfig struct {
	RetryConfig     *retry.RetryConfig
	Timeout         time.Duration
	IdleConnTimeout time.Duration
	MaxResponseSize int64 // Maximum response size to read for error messages
	UserAgent       string
}

// DefaultHTTPRetryConfig returns default configuration for HTTP retry operations
func DefaultHTTPRetryConfig() *HTTPRetryConfig {
	return &HTTPRetryConfig{
		RetryConfig:     retry.DefaultRetryConfig(),
		Timeout:         10 * time.Second,
		IdleConnTimeout: 30 * time.Second,
		MaxResponseSize: 4096, // 4KB default max for error messages
		UserAgent:       "mining-cli",
	}
}

// Validate checks the HTTP configuration for reasonable values
func (c *HTTPRetryConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.IdleConnTimeout <= 0 {
		return fmt.Errorf("idleConnTimeout must be positive")
	}
	if c.MaxResponseSize < 0 {
		return fmt.Errorf("maxResponseSize must be >= 0")
	}
	if c.RetryConfig == nil {
		return fmt.Errorf("retry config is required")
	}
	return c.RetryConfig.Validate()
}

// HTTPError represents an HTTP-specific error with status code
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsRetryableStatus reports whether a status code points at a server side hiccup
func IsRetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

// HTTPClient is a wrapper around http.Client that includes retry logic
type HTTPClient struct {
	client     *http.Client
	HTTPConfig *HTTPRetryConfig
	logger     logging.Logger
}

var _ HTTPClientInterface = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTP client with retry capabilities
func NewHTTPClient(httpConfig *HTTPRetryConfig, logger logging.Logger) (*HTTPClient, error) {
	if httpConfig == nil {
		httpConfig = DefaultHTTPRetryConfig()
	}

	if err := httpConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid HTTP retry config: %w", err)
	}

	client := &http.Client{
		Timeout: httpConfig.Timeout,
		Transport: &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			IdleConnTimeout:   httpConfig.IdleConnTimeout,
			DisableKeepAlives: false,
			DialContext: (&net.Dialer{
				Timeout:   httpConfig.Timeout / 2,
				KeepAlive: httpConfig.IdleConnTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   httpConfig.Timeout / 2,
			ResponseHeaderTimeout: httpConfig.Timeout / 2,
			ExpectContinueTimeout: httpConfig.Timeout / 3,
		},
	}

	return &HTTPClient{
		client:     client,
		HTTPConfig: httpConfig,
		logger:     logger,
	}, nil
}

// Do performs a single attempt. Transport level failures come back wrapped in
// retry.Transient; any response, whatever its status, is returned to the caller.
func (c *HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	reqClone := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to get request body: %w", err)
		}
		reqClone.Body = body
	}
	if c.HTTPConfig.UserAgent != "" && reqClone.Header.Get("User-Agent") == "" {
		reqClone.Header.Set("User-Agent", c.HTTPConfig.UserAgent)
	}

	resp, err := c.client.Do(reqClone)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.Transient(fmt.Errorf("http request failed: %w", err))
	}
	return resp, nil
}

// DoWithRetry performs an HTTP request with retry logic using the retry package.
// 5xx and 429 responses are retried; other statuses are handed back as is.
// The caller is responsible for closing the response body.
func (c *HTTPClient) DoWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.GetBody == nil && req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading request body for retry: %w", err)
		}
		if err := req.Body.Close(); err != nil {
			c.logger.Warnf("Failed to close request body: %v", err)
		}
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bodyBytes)), nil
		}
	}

	operation := func() (*http.Response, error) {
		resp, err := c.Do(ctx, req)
		if err != nil {
			return nil, err
		}

		if IsRetryableStatus(resp.StatusCode) {
			bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, c.HTTPConfig.MaxResponseSize))
			if err := resp.Body.Close(); err != nil {
				c.logger.Warnf("Failed to close response body: %v", err)
			}
			return nil, retry.Transient(&HTTPError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("received retryable status code, body: %q", truncate(string(bodyBytes), 200)),
			})
		}

		return resp, nil
	}

	return retry.Retry(ctx, operation, c.HTTPConfig.RetryConfig, c.logger)
}

// Get performs a GET request with retry logic
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	return c.DoWithRetry(ctx, req)
}

// RetryConfig exposes the policy so callers can wrap their own multi-step operations
func (c *HTTPClient) RetryConfig() *retry.RetryConfig {
	return c.HTTPConfig.RetryConfig
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Close closes idle connections
func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}
