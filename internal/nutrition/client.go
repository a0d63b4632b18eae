package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Client calls a CalorieNinjas-compatible nutrition API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient returns a client without its own timeout; callers bound each
// request through the context.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

type nutritionResponse struct {
	Items []struct {
		Name     string          `json:"name"`
		Calories json.RawMessage `json:"calories"`
	} `json:"items"`
}

// Calories returns the summed calories of every item the API recognizes in
// query.
func (c *Client) Calories(ctx context.Context, query string) (float64, error) {
	endpoint := c.baseURL + "/v1/nutrition?" + url.Values{"query": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call nutrition api: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close nutrition response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("nutrition api returned status %d: %s", resp.StatusCode, errBody)
	}

	var body nutritionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode nutrition response: %w", err)
	}

	if len(body.Items) == 0 {
		return 0, errors.New("nutrition api returned no items")
	}

	// A null or missing calories value fails the whole lookup, the same as a
	// non-numeric one.
	var total float64
	for _, item := range body.Items {
		var kcal *float64
		if err := json.Unmarshal(item.Calories, &kcal); err != nil {
			return 0, fmt.Errorf("invalid calories for %q: %w", item.Name, err)
		}
		if kcal == nil {
			return 0, fmt.Errorf("no calories for %q", item.Name)
		}
		total += *kcal
	}
	return total, nil
}
