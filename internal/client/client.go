// Package client provides an HTTP client for the recall server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/recall-go/internal/models"
)

// Client talks to a running recall server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. If baseURL is empty, uses the RECALL_SERVER_URL
// env var or defaults to localhost. Timeout can be configured via
// RECALL_CLIENT_TIMEOUT (default 2m: generation calls are slow).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("RECALL_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8585"
	}

	timeout := 2 * time.Minute
	if t := os.Getenv("RECALL_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type queryRequest struct {
	UserID string `json:"user_id"`
	Input  string `json:"input"`
}

type queryResponse struct {
	NaturalResponse string             `json:"natural_response"`
	Results         []models.Reference `json:"results"`
	Error           string             `json:"error"`
}

// Query sends one question scoped to a user and returns the parsed result.
func (c *Client) Query(ctx context.Context, userID, input string) (models.ParsedResult, error) {
	body, err := json.Marshal(queryRequest{UserID: userID, Input: input})
	if err != nil {
		return models.ParsedResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/query", bytes.NewReader(body))
	if err != nil {
		return models.ParsedResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.ParsedResult{}, fmt.Errorf("query server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ParsedResult{}, fmt.Errorf("read response: %w", err)
	}

	var parsed queryResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return models.ParsedResult{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != "" {
			return models.ParsedResult{}, fmt.Errorf("server: %s", parsed.Error)
		}
		return models.ParsedResult{}, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return models.ParsedResult{
		NaturalResponse: parsed.NaturalResponse,
		References:      parsed.Results,
	}, nil
}
