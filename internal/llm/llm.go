package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"

	"skim/internal/categories"
	"skim/internal/core"
)

// maxPromptChars bounds how much article or comment text goes into a single
// prompt. Anything longer is truncated, not split.
const maxPromptChars = 15000

// Client wraps the Gemini API for every model-backed derivation: summaries,
// categories, scores, confidence and relevance. All numeric outputs use
// structured JSON responses so no free-text parsing is involved.
type Client struct {
	modelName string
	timeout   time.Duration
	gClient   *genai.Client
}

// NewClient creates a Gemini-backed client. The per-call timeout is applied
// on top of whatever deadline the caller's context carries.
func NewClient(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{modelName: modelName, timeout: timeout, gClient: gClient}, nil
}

// SummarizeArticle produces the 3-5 sentence article summary.
func (c *Client) SummarizeArticle(ctx context.Context, body string) (string, error) {
	prompt := fmt.Sprintf(articleSummaryPrompt, truncate(body, maxPromptChars))
	text, err := c.generateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to summarize article: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// SummarizeComments produces the discussion summary from a comment dump.
func (c *Client) SummarizeComments(ctx context.Context, commentDump string) (string, error) {
	prompt := fmt.Sprintf(commentsSummaryPrompt, truncate(commentDump, maxPromptChars))
	text, err := c.generateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to summarize comments: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Categorize assigns taxonomy slugs to an article body. Slugs the model
// invents are dropped; the result keeps the taxonomy's order-free set
// semantics as a plain slice.
func (c *Client) Categorize(ctx context.Context, body string, taxonomy []categories.Category) ([]string, error) {
	var catalog strings.Builder
	for _, cat := range taxonomy {
		fmt.Fprintf(&catalog, "(%s, %s)\n", cat.Slug, cat.Description)
	}

	prompt := fmt.Sprintf(categorizePrompt, catalog.String(), truncate(body, maxPromptChars))
	text, err := c.generateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to categorize article: %w", err)
	}

	known := make(map[string]bool, len(taxonomy))
	for _, cat := range taxonomy {
		known[cat.Slug] = true
	}

	var slugs []string
	seen := make(map[string]bool)
	for _, raw := range strings.Split(text, ",") {
		slug := strings.ToLower(strings.TrimSpace(raw))
		if slug == "" || !known[slug] || seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}
	return slugs, nil
}

// scoresResponse is the structured output shape for the base score pass.
type scoresResponse struct {
	Controversial float64 `json:"controversial"`
	Trustworthy   float64 `json:"trustworthy"`
	Sentiment     float64 `json:"sentiment"`
}

// ScoreArticle derives the three base scores jointly from the article body
// and its comment dump. All values are clamped to the score range.
func (c *Client) ScoreArticle(ctx context.Context, body, commentDump string) (core.Scores, error) {
	prompt := fmt.Sprintf(scoresPrompt, truncate(body, maxPromptChars), truncate(commentDump, maxPromptChars))
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"controversial": {Type: genai.TypeNumber},
			"trustworthy":   {Type: genai.TypeNumber},
			"sentiment":     {Type: genai.TypeNumber},
		},
		Required: []string{"controversial", "trustworthy", "sentiment"},
	}

	var parsed scoresResponse
	if err := c.generateJSON(ctx, prompt, schema, &parsed); err != nil {
		return core.Scores{}, fmt.Errorf("failed to score article: %w", err)
	}
	return core.Scores{
		Controversial: core.ClampScore(parsed.Controversial),
		Trustworthy:   core.ClampScore(parsed.Trustworthy),
		Sentiment:     core.ClampScore(parsed.Sentiment),
	}, nil
}

// ScoreConfidence rates how faithfully a generated summary reflects the
// article it was derived from.
func (c *Client) ScoreConfidence(ctx context.Context, body, summary string) (float64, error) {
	prompt := fmt.Sprintf(confidencePrompt, truncate(body, maxPromptChars), summary)
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"confidence": {Type: genai.TypeNumber},
		},
		Required: []string{"confidence"},
	}

	var parsed struct {
		Confidence float64 `json:"confidence"`
	}
	if err := c.generateJSON(ctx, prompt, schema, &parsed); err != nil {
		return 0, fmt.Errorf("failed to score confidence: %w", err)
	}
	return core.ClampScore(parsed.Confidence), nil
}

// ScoreRelevance rates an article summary against a subscriber's free-text
// interest description.
func (c *Client) ScoreRelevance(ctx context.Context, interests, summary string) (float64, error) {
	prompt := fmt.Sprintf(relevancePrompt, interests, summary)
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"relevance": {Type: genai.TypeNumber},
		},
		Required: []string{"relevance"},
	}

	var parsed struct {
		Relevance float64 `json:"relevance"`
	}
	if err := c.generateJSON(ctx, prompt, schema, &parsed); err != nil {
		return 0, fmt.Errorf("failed to score relevance: %w", err)
	}
	return core.ClampScore(parsed.Relevance), nil
}

// generateText runs a plain text completion.
func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, prompt, nil)
	if err != nil {
		return "", err
	}
	return resp, nil
}

// generateJSON runs a structured-output completion and decodes the JSON
// payload into out.
func (c *Client) generateJSON(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	text, err := c.generate(ctx, prompt, config)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to decode structured response: %w", err)
	}
	return nil
}

func (c *Client) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}
	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// truncate cuts s near n bytes, backing up to a rune boundary so the prompt
// never carries a split multi-byte character, and marks the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "... [truncated]"
}
