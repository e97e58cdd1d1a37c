package hnapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Item is the raw Hacker News item payload, shared by stories and comments.
type Item struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	By          string  `json:"by"`
	Time        int64   `json:"time"`
	Text        string  `json:"text"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Score       int     `json:"score"`
	Descendants int     `json:"descendants"`
	Kids        []int64 `json:"kids"`
	Deleted     bool    `json:"deleted"`
	Dead        bool    `json:"dead"`
}

// Client talks to the Hacker News Firebase API. The upstream is untrusted:
// callers are expected to treat any error as "no data for this node".
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a fixed per-call timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// TopStories fetches the ranked top story ids, truncated to limit.
func (c *Client) TopStories(ctx context.Context, limit int) ([]int64, error) {
	var ids []int64
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("failed to fetch top stories: %w", err)
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Item fetches a single story or comment by id. The API returns literal
// "null" for unknown ids, which surfaces here as an error.
func (c *Client) Item(ctx context.Context, id int64) (*Item, error) {
	var item *Item
	url := fmt.Sprintf("%s/item/%d.json", c.baseURL, id)
	if err := c.getJSON(ctx, url, &item); err != nil {
		return nil, fmt.Errorf("failed to fetch item %d: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d not found", id)
	}
	return item, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
