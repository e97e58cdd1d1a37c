package crawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.apify.com"

// ApifyClient drives the website-content-crawler actor: submit a run for a
// single page, then collect the run's dataset items. The delegate is slow
// (seconds to minutes) and occasionally returns an empty dataset.
type ApifyClient struct {
	token   string
	actor   string
	mode    string // cheerio yields rendered text, playwright yields markdown
	baseURL string
	http    *http.Client
}

// NewApifyClient creates a crawling delegate client with a fixed call timeout.
func NewApifyClient(token, actor, mode string, timeout time.Duration) *ApifyClient {
	return &ApifyClient{
		token:   token,
		actor:   actor,
		mode:    mode,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type runInput struct {
	StartURLs     []startURL `json:"startUrls"`
	MaxCrawlPages int        `json:"maxCrawlPages"`
	CrawlerType   string     `json:"crawlerType"`
}

type startURL struct {
	URL string `json:"url"`
}

type runResponse struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

type datasetItem struct {
	Text     string `json:"text"`
	Markdown string `json:"markdown"`
}

// Extract crawls a single page and returns its text content. An empty string
// with nil error means the delegate finished but produced nothing usable.
func (c *ApifyClient) Extract(ctx context.Context, pageURL string) (string, error) {
	datasetID, err := c.submitRun(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return c.fetchResults(ctx, datasetID)
}

// submitRun starts a synchronous single-page actor run and returns the
// handle of the dataset holding its results.
func (c *ApifyClient) submitRun(ctx context.Context, pageURL string) (string, error) {
	input := runInput{
		StartURLs:     []startURL{{URL: pageURL}},
		MaxCrawlPages: 1,
		CrawlerType:   c.mode,
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode run input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs?token=%s&waitForFinish=120",
		c.baseURL, url.PathEscape(c.actor), url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("run request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d submitting run", resp.StatusCode)
	}

	var run runResponse
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return "", fmt.Errorf("failed to decode run response: %w", err)
	}
	if run.Data.DefaultDatasetID == "" {
		return "", fmt.Errorf("run for %s returned no dataset", pageURL)
	}
	return run.Data.DefaultDatasetID, nil
}

// fetchResults downloads the dataset items for a finished run and picks the
// field matching the crawler mode.
func (c *ApifyClient) fetchResults(ctx context.Context, datasetID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?token=%s&format=json",
		c.baseURL, url.PathEscape(datasetID), url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build dataset request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("dataset request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching dataset", resp.StatusCode)
	}

	var items []datasetItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return "", fmt.Errorf("failed to decode dataset items: %w", err)
	}
	if len(items) == 0 {
		return "", nil
	}
	if c.mode == "playwright" && items[0].Markdown != "" {
		return items[0].Markdown, nil
	}
	return items[0].Text, nil
}
