package http

import (
	"context"
	"net/http"

	"github.com/trigg3rX/mining-cli/pkg/retry"
)

// HTTPClientInterface defines the interface for HTTP operations
type HTTPClientInterface interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
	DoWithRetry(ctx context.Context, req *http.Request) (*http.Response, error)
	Get(ctx context.Context, url string) (*http.Response, error)
	RetryConfig() *retry.RetryConfig
	Close()
}
