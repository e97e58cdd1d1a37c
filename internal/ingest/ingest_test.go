package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"skim/internal/hnapi"
	"skim/internal/store"
)

// fakeHN serves canned Hacker News API responses keyed by path.
func fakeHN(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
}

func storyJSON(id int64, kids string) string {
	return fmt.Sprintf(`{"id":%d,"type":"story","by":"author%d","time":1700000000,
		"title":"Story %d","url":"https://example.com/%d","score":100,"descendants":5,"kids":%s}`,
		id, id, id, id, kids)
}

func commentJSON(id int64, text, kids string) string {
	return fmt.Sprintf(`{"id":%d,"type":"comment","by":"user%d","time":1700000100,
		"text":"%s","kids":%s}`, id, id, text, kids)
}

func newTestFetcher(t *testing.T, baseURL string, limit, maxDepth int) (*Fetcher, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	hn := hnapi.NewClient(baseURL, 5*time.Second)
	return NewFetcher(hn, st, zerolog.Nop(), limit, maxDepth), st
}

func TestRunInsertsNewStoriesAndSkipsKnown(t *testing.T) {
	server := fakeHN(t, map[string]string{
		"/topstories.json": "[1, 2]",
		"/item/1.json":     storyJSON(1, "[]"),
		"/item/2.json":     storyJSON(2, "[]"),
	})
	defer server.Close()

	fetcher, st := newTestFetcher(t, server.URL, 10, 2)
	ctx := context.Background()

	report, err := fetcher.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Inserted != 2 || report.Skipped != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	// Second run over the same front page inserts nothing.
	report, err = fetcher.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if report.Inserted != 0 || report.Skipped != 2 {
		t.Fatalf("unexpected second report: %+v", report)
	}

	item, err := st.GetItemByHNID(ctx, 1)
	if err != nil || item == nil {
		t.Fatalf("failed to read item: %v", err)
	}
	if item.DiscussionURL != "https://news.ycombinator.com/item?id=1" {
		t.Fatalf("unexpected discussion url: %s", item.DiscussionURL)
	}
}

func TestRunBoundsCommentDepth(t *testing.T) {
	// A reply chain five levels deep under one story.
	server := fakeHN(t, map[string]string{
		"/topstories.json": "[1]",
		"/item/1.json":     storyJSON(1, "[10]"),
		"/item/10.json":    commentJSON(10, "level zero", "[11]"),
		"/item/11.json":    commentJSON(11, "level one", "[12]"),
		"/item/12.json":    commentJSON(12, "level two", "[13]"),
		"/item/13.json":    commentJSON(13, "level three", "[14]"),
		"/item/14.json":    commentJSON(14, "level four", "[]"),
	})
	defer server.Close()

	fetcher, st := newTestFetcher(t, server.URL, 10, 2)
	ctx := context.Background()

	if _, err := fetcher.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	item, _ := st.GetItemByHNID(ctx, 1)
	content, err := st.GetContent(ctx, item.ID)
	if err != nil || content == nil {
		t.Fatalf("failed to read content: %v", err)
	}
	if !strings.Contains(content.CommentDump, "level two") {
		t.Fatalf("expected depth-2 comment in dump:\n%s", content.CommentDump)
	}
	if strings.Contains(content.CommentDump, "level three") {
		t.Fatalf("expected depth-3 comment excluded from dump:\n%s", content.CommentDump)
	}
}

func TestRunSkipsDeadAndDeletedComments(t *testing.T) {
	server := fakeHN(t, map[string]string{
		"/topstories.json": "[1]",
		"/item/1.json":     storyJSON(1, "[10, 11, 12]"),
		"/item/10.json":    commentJSON(10, "kept", "[]"),
		"/item/11.json":    `{"id":11,"type":"comment","deleted":true}`,
		"/item/12.json":    `{"id":12,"type":"comment","by":"spammer","time":1700000100,"text":"buried","dead":true}`,
	})
	defer server.Close()

	fetcher, st := newTestFetcher(t, server.URL, 10, 2)
	ctx := context.Background()

	if _, err := fetcher.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	item, _ := st.GetItemByHNID(ctx, 1)
	content, _ := st.GetContent(ctx, item.ID)
	if !strings.Contains(content.CommentDump, "kept") {
		t.Fatalf("expected live comment in dump:\n%s", content.CommentDump)
	}
	if strings.Contains(content.CommentDump, "buried") {
		t.Fatalf("expected dead comment excluded:\n%s", content.CommentDump)
	}
}

func TestRunIgnoresNonStories(t *testing.T) {
	server := fakeHN(t, map[string]string{
		"/topstories.json": "[1]",
		"/item/1.json":     `{"id":1,"type":"job","by":"yc","time":1700000000,"title":"Hiring"}`,
	})
	defer server.Close()

	fetcher, st := newTestFetcher(t, server.URL, 10, 2)
	report, err := fetcher.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Inserted != 0 || report.Skipped != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	exists, _ := st.HasItem(context.Background(), 1)
	if exists {
		t.Fatal("expected non-story to be absent from the store")
	}
}

func TestRunCountsFetchFailures(t *testing.T) {
	server := fakeHN(t, map[string]string{
		"/topstories.json": "[1, 2]",
		"/item/2.json":     storyJSON(2, "[]"),
	})
	defer server.Close()

	fetcher, _ := newTestFetcher(t, server.URL, 10, 2)
	report, err := fetcher.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed != 1 || report.Inserted != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRunToleratesListingFailure(t *testing.T) {
	server := fakeHN(t, map[string]string{})
	defer server.Close()

	fetcher, _ := newTestFetcher(t, server.URL, 10, 2)
	report, err := fetcher.Run(context.Background())
	if err != nil {
		t.Fatalf("expected clean pass when the listing is unavailable, got %v", err)
	}
	if report.Processed != 0 || report.Inserted != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestFormatComments(t *testing.T) {
	at := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	dump := FormatComments([]Comment{
		{Author: "alice", Time: at, Text: "top level", Depth: 0},
		{Author: "", Time: at, Text: "orphaned reply", Depth: 1},
	})

	if !strings.Contains(dump, "[alice] at 2023-11-14 22:13:20:") {
		t.Fatalf("missing author header:\n%s", dump)
	}
	if !strings.Contains(dump, "  [deleted] at") {
		t.Fatalf("missing indented deleted fallback:\n%s", dump)
	}
	if strings.HasSuffix(dump, "\n\n") {
		t.Fatalf("trailing blank line not trimmed:\n%q", dump)
	}
}

func TestFormatCommentsEmpty(t *testing.T) {
	if got := FormatComments(nil); got != "" {
		t.Fatalf("expected empty dump, got %q", got)
	}
}

func TestStripHTML(t *testing.T) {
	in := `First paragraph.<p>Second with a <a href="https://example.com">link</a> &amp; entity.`
	got := stripHTML(in)
	if !strings.Contains(got, "First paragraph.") {
		t.Fatalf("lost first paragraph: %q", got)
	}
	if !strings.Contains(got, "Second with a link & entity.") {
		t.Fatalf("markup not flattened: %q", got)
	}
	if strings.Contains(got, "<") {
		t.Fatalf("tags survived: %q", got)
	}
}
