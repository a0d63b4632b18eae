package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vbonduro/mealcal/internal/domain"
)

// Client talks to a TheMealDB-compatible catalog API.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Meals []RawMeal `json:"meals"`
}

// Search returns every catalog meal whose name matches name, in catalog order.
func (c *Client) Search(ctx context.Context, name string) ([]Meal, error) {
	raws, err := c.get(ctx, "/search.php", url.Values{"s": {name}})
	if err != nil {
		return nil, err
	}

	meals := make([]Meal, 0, len(raws))
	for _, raw := range raws {
		meals = append(meals, ParseMeal(raw))
	}
	return meals, nil
}

// Lookup returns the catalog meal with the given id, or nil if there is none.
func (c *Client) Lookup(ctx context.Context, id string) (*Meal, error) {
	raws, err := c.get(ctx, "/lookup.php", url.Values{"i": {id}})
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, nil
	}

	meal := ParseMeal(raws[0])
	return &meal, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]RawMeal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call meal catalog: %w: %w", domain.ErrUpstream, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close meal catalog response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("meal catalog returned status %d: %s: %w", resp.StatusCode, errBody, domain.ErrUpstream)
	}

	var body searchResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode meal catalog response: %w: %w", domain.ErrUpstream, err)
	}

	return body.Meals, nil
}
