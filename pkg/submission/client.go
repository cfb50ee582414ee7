package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/platinummonkey/signup/pkg/form"
)

// Response is the body of every POST /submit reply
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Data    *Result           `json:"data,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Client submits through the sign-up HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the API at baseURL. A nil httpClient gets a
// client with a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Submit implements Gateway
func (c *Client) Submit(ctx context.Context, values form.FormValues) (*Result, error) {
	body, err := json.Marshal(values)
	if err != nil {
		return nil, NewSubmissionError(fmt.Errorf("failed to encode form values: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", bytes.NewReader(body))
	if err != nil {
		return nil, NewSubmissionError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewSubmissionError(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, NewSubmissionError(fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err))
	}

	if resp.StatusCode != http.StatusOK || !out.Success {
		if out.Code == CodeEmailExists {
			msg := out.Error
			if msg == "" {
				msg = ConflictMessage
			}
			return nil, &ConflictError{Code: out.Code, Message: msg}
		}
		return nil, NewSubmissionError(fmt.Errorf("server returned status %d: %s", resp.StatusCode, out.Error))
	}

	if out.Data == nil {
		return nil, NewSubmissionError(fmt.Errorf("server response has no data"))
	}
	return out.Data, nil
}
