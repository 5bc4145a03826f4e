// Package advisory implements the HTTP client for the remote PCAF advisory
// chat backend. The backend is treated as opaque and fallible: any transport
// error or non-success status is returned to the caller, which decides how to
// fall back.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the advisory chat backend.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new advisory backend client. A single attempt is
// bounded by the client timeout; the caller treats a timeout like any other
// failure and moves to its next fallback path.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ChatRequest is the wire request for the chat endpoint.
type ChatRequest struct {
	Message   string      `json:"message"`
	AgentType string      `json:"agent_type"`
	Context   interface{} `json:"context,omitempty"`
}

// Source is one citation attached to a backend answer.
type Source struct {
	Title string `json:"title"`
}

// ChatResponse is the wire response from the chat endpoint.
type ChatResponse struct {
	ResponseText string   `json:"response_text"`
	Sources      []Source `json:"sources"`
}

// ErrorResponse is the backend's error envelope.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends a message to the advisory backend and returns its answer.
func (c *Client) Chat(ctx context.Context, message, agentType string, contextData interface{}) (*ChatResponse, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("advisory backend endpoint is not configured")
	}

	url := strings.TrimSuffix(c.endpoint, "/") + "/api/chat"
	request := ChatRequest{
		Message:   message,
		AgentType: agentType,
		Context:   contextData,
	}

	var response ChatResponse
	if err := c.doRequest(ctx, url, request, &response); err != nil {
		return nil, fmt.Errorf("advisory backend call failed: %w", err)
	}
	if response.ResponseText == "" {
		return nil, fmt.Errorf("advisory backend returned an empty response")
	}
	return &response, nil
}

// doRequest posts a JSON body and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error.Message != "" {
			return fmt.Errorf("backend returned %d: %s", resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
