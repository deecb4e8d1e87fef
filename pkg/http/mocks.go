package http

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/trigg3rX/mining-cli/pkg/retry"
)

// MockHTTPClient is a mock implementation of the HTTPClient interface
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

func (m *MockHTTPClient) DoWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

func (m *MockHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

func (m *MockHTTPClient) RetryConfig() *retry.RetryConfig {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*retry.RetryConfig)
}

func (m *MockHTTPClient) Close() {
	m.Called()
}

// MockResponseBuilder builds canned *http.Response values for mocks
type MockResponseBuilder struct {
	statusCode int
	body       string
	headers    map[string]string
}

func NewMockResponseBuilder() *MockResponseBuilder {
	return &MockResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *MockResponseBuilder) WithStatusCode(statusCode int) *MockResponseBuilder {
	b.statusCode = statusCode
	return b
}

func (b *MockResponseBuilder) WithBody(body string) *MockResponseBuilder {
	b.body = body
	return b
}

func (b *MockResponseBuilder) WithHeader(key, value string) *MockResponseBuilder {
	b.headers[key] = value
	return b
}

// Build creates the final mock response; an empty body defaults to "{}"
func (b *MockResponseBuilder) Build() *http.Response {
	body := b.body
	if body == "" {
		body = "{}"
	}

	headers := make(http.Header)
	for key, value := range b.headers {
		headers.Add(key, value)
	}

	return &http.Response{
		StatusCode: b.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     headers,
	}
}
