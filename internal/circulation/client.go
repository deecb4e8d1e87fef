package circulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	httppkg "github.com/trigg3rX/mining-cli/pkg/http"
	"github.com/trigg3rX/mining-cli/pkg/logging"
	"github.com/trigg3rX/mining-cli/pkg/retry"
)

const maxResponseSize = 64 * 1024

// ErrExcluded is returned by callers that refuse to act for an excluded address.
var ErrExcluded = errors.New("address is excluded from circulation")

// RemoteRejection is a well-formed error answer from the circulation server.
// It is never retried.
type RemoteRejection struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *RemoteRejection) Error() string {
	return fmt.Sprintf("circulation server rejected request (HTTP %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}

// Status is the exclusion status of an address.
type Status struct {
	IsExcluded bool `json:"isExcluded"`
}

type Client struct {
	baseURL    string
	httpClient httppkg.HTTPClientInterface
	logger     logging.Logger
}

func NewClient(baseURL string, httpClient httppkg.HTTPClientInterface, logger logging.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetStatus asks the circulation server whether address is excluded. Transport
// failures, unexpected statuses and malformed bodies are retried.
func (c *Client) GetStatus(ctx context.Context, address common.Address) (*Status, error) {
	url := fmt.Sprintf("%s/addresses/%s/exclusion", c.baseURL, strings.ToLower(address.Hex()))
	c.logger.Info("Getting circulation status", "address", address.Hex())

	return retry.Retry(ctx, func() (*Status, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create circulation request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, retry.Transient(fmt.Errorf("failed to read circulation response: %w", err))
		}
		return decodeStatus(resp.StatusCode, body)
	}, c.httpClient.RetryConfig(), c.logger)
}

// decodeStatus accepts either {"isExcluded": bool} or {"code": int, "message": string}.
func decodeStatus(statusCode int, body []byte) (*Status, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, retry.Transient(&httppkg.HTTPError{
			StatusCode: statusCode,
			Message:    fmt.Sprintf("malformed circulation response: %v", err),
		})
	}

	if raw, ok := fields["isExcluded"]; ok && statusCode < 300 {
		var status Status
		if err := json.Unmarshal(raw, &status.IsExcluded); err != nil {
			return nil, retry.Transient(fmt.Errorf("malformed isExcluded field: %w", err))
		}
		return &status, nil
	}

	_, hasCode := fields["code"]
	_, hasMessage := fields["message"]
	if hasCode && hasMessage {
		rejection := &RemoteRejection{StatusCode: statusCode}
		if err := json.Unmarshal(body, rejection); err == nil {
			return nil, rejection
		}
	}

	return nil, retry.Transient(&httppkg.HTTPError{
		StatusCode: statusCode,
		Message:    "unexpected circulation response",
	})
}
