package analyze

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"skim/internal/categories"
	"skim/internal/core"
	"skim/internal/store"
)

// mockAnalyzer returns canned derivations and can be told to fail per method.
type mockAnalyzer struct {
	summary         string
	commentsSummary string
	slugs           []string
	scores          core.Scores
	confidence      float64

	failSummary    bool
	failScores     bool
	failConfidence bool

	confidenceCalls int
}

func (m *mockAnalyzer) SummarizeArticle(ctx context.Context, body string) (string, error) {
	if m.failSummary {
		return "", fmt.Errorf("model unavailable")
	}
	return m.summary, nil
}

func (m *mockAnalyzer) SummarizeComments(ctx context.Context, dump string) (string, error) {
	return m.commentsSummary, nil
}

func (m *mockAnalyzer) Categorize(ctx context.Context, body string, taxonomy []categories.Category) ([]string, error) {
	return m.slugs, nil
}

func (m *mockAnalyzer) ScoreArticle(ctx context.Context, body, dump string) (core.Scores, error) {
	if m.failScores {
		return core.Scores{}, fmt.Errorf("model unavailable")
	}
	return m.scores, nil
}

func (m *mockAnalyzer) ScoreConfidence(ctx context.Context, body, summary string) (float64, error) {
	m.confidenceCalls++
	if m.failConfidence {
		return 0, fmt.Errorf("model unavailable")
	}
	return m.confidence, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// seedCrawledItem inserts an item with a crawled body and returns its content id.
func seedCrawledItem(t *testing.T, st *store.Store, hnID int64) int64 {
	t.Helper()
	ctx := context.Background()
	item := core.Item{
		HNID:        hnID,
		Title:       fmt.Sprintf("Story %d", hnID),
		URL:         fmt.Sprintf("https://example.com/%d", hnID),
		SubmittedAt: time.Unix(1700000000, 0).UTC(),
	}
	if _, err := st.InsertItemWithContent(ctx, item, "[alice] at 2023-11-14 22:13:20:\nInteresting"); err != nil {
		t.Fatalf("failed to insert item: %v", err)
	}
	stored, _ := st.GetItemByHNID(ctx, hnID)
	content, _ := st.GetContent(ctx, stored.ID)
	if err := st.SetBody(ctx, content.ID, "the article body"); err != nil {
		t.Fatalf("failed to set body: %v", err)
	}
	return content.ID
}

func TestRunDerivesAllFieldsIncludingConfidence(t *testing.T) {
	st := newTestStore(t)
	contentID := seedCrawledItem(t, st, 1)

	ai := &mockAnalyzer{
		summary:         "an article summary",
		commentsSummary: "a discussion summary",
		slugs:           []string{"programming-languages"},
		scores:          core.Scores{Controversial: 1.0, Trustworthy: 4.0, Sentiment: 3.0},
		confidence:      4.2,
	}
	engine := NewEngine(st, ai, zerolog.Nop(), categories.Default())

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Summaries != 1 || report.Categories != 1 || report.Scores != 1 || report.Confidence != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	analysis, err := st.GetAnalysis(context.Background(), contentID)
	if err != nil || analysis == nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}
	if analysis.Summary != "an article summary" || analysis.CommentsSummary != "a discussion summary" {
		t.Fatalf("unexpected summaries: %+v", analysis)
	}
	if analysis.Scores == nil || analysis.Scores.Confidence == nil || *analysis.Scores.Confidence != 4.2 {
		t.Fatalf("expected confidence merged into scores: %+v", analysis.Scores)
	}

	// A second run finds nothing to do.
	report, err = engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if report.Summaries+report.Categories+report.Scores+report.Confidence != 0 {
		t.Fatalf("expected idle second run, got %+v", report)
	}
}

func TestRunSkipsConfidenceWithoutSummary(t *testing.T) {
	st := newTestStore(t)
	seedCrawledItem(t, st, 1)

	ai := &mockAnalyzer{
		failSummary: true,
		slugs:       []string{"programming-languages"},
		scores:      core.Scores{Controversial: 1, Trustworthy: 2, Sentiment: 3},
		confidence:  5.0,
	}
	engine := NewEngine(st, ai, zerolog.Nop(), categories.Default())

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Summaries != 0 || report.Categories != 1 || report.Scores != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Confidence != 0 || ai.confidenceCalls != 0 {
		t.Fatalf("confidence must not run without a summary: %+v", report)
	}

	// The summary model recovers; only the missing fields are derived and the
	// confidence pass now runs.
	ai.failSummary = false
	ai.summary = "late summary"
	report, err = engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if report.Summaries != 1 || report.Categories != 0 || report.Scores != 0 || report.Confidence != 1 {
		t.Fatalf("unexpected second report: %+v", report)
	}
}

func TestRunFailuresAreCountedNotFatal(t *testing.T) {
	st := newTestStore(t)
	seedCrawledItem(t, st, 1)
	seedCrawledItem(t, st, 2)

	ai := &mockAnalyzer{
		summary:    "summary",
		slugs:      []string{"programming-languages"},
		failScores: true,
	}
	engine := NewEngine(st, ai, zerolog.Nop(), categories.Default())

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Summaries != 2 || report.Categories != 2 || report.Scores != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Failed != 2 {
		t.Fatalf("expected 2 scoring failures counted, got %+v", report)
	}
}

func TestRunSavesEmptySummaryForCommentlessItems(t *testing.T) {
	st := newTestStore(t)

	ctx := context.Background()
	item := core.Item{HNID: 3, Title: "No comments", URL: "https://example.com/3",
		SubmittedAt: time.Unix(1700000000, 0).UTC()}
	if _, err := st.InsertItemWithContent(ctx, item, ""); err != nil {
		t.Fatalf("failed to insert item: %v", err)
	}
	stored, _ := st.GetItemByHNID(ctx, 3)
	content, _ := st.GetContent(ctx, stored.ID)
	if err := st.SetBody(ctx, content.ID, "body"); err != nil {
		t.Fatalf("failed to set body: %v", err)
	}

	ai := &mockAnalyzer{summary: "summary", commentsSummary: "should not be used"}
	engine := NewEngine(st, ai, zerolog.Nop(), categories.Default())

	if _, err := engine.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	analysis, _ := st.GetAnalysis(ctx, content.ID)
	if analysis.CommentsSummary != "" {
		t.Fatalf("expected empty comments summary, got %q", analysis.CommentsSummary)
	}
}
