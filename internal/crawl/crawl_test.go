package crawl

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"skim/internal/core"
	"skim/internal/store"
)

// mockCrawler returns canned text per URL and records calls.
type mockCrawler struct {
	mu      sync.Mutex
	results map[string]string
	errs    map[string]error
	calls   []string
}

func (m *mockCrawler) Extract(ctx context.Context, url string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()
	if err, ok := m.errs[url]; ok {
		return "", err
	}
	return m.results[url], nil
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

func insertItem(t *testing.T, st *store.Store, hnID int64, url string) {
	t.Helper()
	item := core.Item{
		HNID:          hnID,
		Title:         fmt.Sprintf("Story %d", hnID),
		URL:           url,
		SubmittedAt:   time.Unix(1700000000, 0).UTC(),
		DiscussionURL: fmt.Sprintf("https://news.ycombinator.com/item?id=%d", hnID),
	}
	if _, err := st.InsertItemWithContent(context.Background(), item, ""); err != nil {
		t.Fatalf("failed to insert item: %v", err)
	}
}

func TestRunFillsBodies(t *testing.T) {
	st := newTestStore(t)
	insertItem(t, st, 1, "https://example.com/a")
	insertItem(t, st, 2, "https://example.com/b")

	crawler := &mockCrawler{results: map[string]string{
		"https://example.com/a": "text a",
		"https://example.com/b": "text b",
	}}
	extractor := NewExtractor(st, crawler, zerolog.Nop(), 10, 3)

	report, err := extractor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Pending != 2 || report.Filled != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	// Everything crawled, nothing pending.
	report, err = extractor.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if report.Pending != 0 {
		t.Fatalf("expected no pending work, got %+v", report)
	}
}

func TestRunRecordsFailuresAndRetries(t *testing.T) {
	st := newTestStore(t)
	insertItem(t, st, 1, "https://example.com/flaky")

	crawler := &mockCrawler{errs: map[string]error{
		"https://example.com/flaky": fmt.Errorf("delegate timeout"),
	}}
	extractor := NewExtractor(st, crawler, zerolog.Nop(), 10, 3)
	ctx := context.Background()

	report, err := extractor.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed != 1 || report.Filled != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	// The delegate recovers; the row is still selectable and gets filled.
	crawler.errs = nil
	crawler.results = map[string]string{"https://example.com/flaky": "recovered text"}

	report, err = extractor.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if report.Pending != 1 || report.Filled != 1 {
		t.Fatalf("unexpected second report: %+v", report)
	}
}

func TestRunQuarantinesAfterMaxAttempts(t *testing.T) {
	st := newTestStore(t)
	insertItem(t, st, 1, "https://example.com/poison")

	crawler := &mockCrawler{errs: map[string]error{
		"https://example.com/poison": fmt.Errorf("delegate error"),
	}}
	extractor := NewExtractor(st, crawler, zerolog.Nop(), 10, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := extractor.Run(ctx); err != nil {
			t.Fatalf("Run %d failed: %v", i, err)
		}
	}

	report, err := extractor.Run(ctx)
	if err != nil {
		t.Fatalf("final Run failed: %v", err)
	}
	if report.Pending != 0 {
		t.Fatalf("expected poison row quarantined, got %+v", report)
	}
	if calls := len(crawler.calls); calls != 2 {
		t.Fatalf("expected 2 delegate calls, got %d", calls)
	}
}

func TestRunTreatsEmptyResultAsFailure(t *testing.T) {
	st := newTestStore(t)
	insertItem(t, st, 1, "https://example.com/empty")

	crawler := &mockCrawler{results: map[string]string{
		"https://example.com/empty": "",
	}}
	extractor := NewExtractor(st, crawler, zerolog.Nop(), 10, 3)

	report, err := extractor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed != 1 || report.Filled != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRunProcessesInBatches(t *testing.T) {
	st := newTestStore(t)
	for i := int64(1); i <= 5; i++ {
		insertItem(t, st, i, fmt.Sprintf("https://example.com/%d", i))
	}

	crawler := &mockCrawler{results: map[string]string{}}
	for i := 1; i <= 5; i++ {
		crawler.results[fmt.Sprintf("https://example.com/%d", i)] = fmt.Sprintf("text %d", i)
	}
	extractor := NewExtractor(st, crawler, zerolog.Nop(), 2, 3)

	report, err := extractor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Filled != 5 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(crawler.calls) != 5 {
		t.Fatalf("expected 5 delegate calls, got %d", len(crawler.calls))
	}
}
