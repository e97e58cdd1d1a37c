package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"skim/internal/core"
	"skim/internal/hnapi"
	"skim/internal/store"
)

// Fetcher pulls top stories and their comment trees from Hacker News and
// inserts one Item+Content pair per newly-seen story. A failed story is
// skipped by pure omission: the existence check happens before each fetch,
// so the whole batch is safe to retry later.
type Fetcher struct {
	hn       *hnapi.Client
	store    *store.Store
	log      zerolog.Logger
	limit    int
	maxDepth int
}

// NewFetcher wires the ingest stage.
func NewFetcher(hn *hnapi.Client, st *store.Store, log zerolog.Logger, limit, maxDepth int) *Fetcher {
	return &Fetcher{hn: hn, store: st, log: log, limit: limit, maxDepth: maxDepth}
}

// Report summarizes one ingest run.
type Report struct {
	Processed int
	Inserted  int
	Skipped   int
	Failed    int
}

// Run executes one ingest pass over the current top stories. An unavailable
// listing yields an empty pass, not an error; the next scheduled run retries
// the whole batch.
func (f *Fetcher) Run(ctx context.Context) (Report, error) {
	var report Report

	ids, err := f.hn.TopStories(ctx, f.limit)
	if err != nil {
		f.log.Warn().Err(err).Msg("failed to list top stories")
		return report, nil
	}
	f.log.Info().Int("count", len(ids)).Msg("fetched top story ids")

	for _, id := range ids {
		report.Processed++

		exists, err := f.store.HasItem(ctx, id)
		if err != nil {
			return report, fmt.Errorf("failed to check item %d: %w", id, err)
		}
		if exists {
			report.Skipped++
			continue
		}

		item, dump, err := f.fetchStory(ctx, id)
		if err != nil {
			f.log.Warn().Err(err).Int64("hn_id", id).Msg("skipping story")
			report.Failed++
			continue
		}
		if item == nil {
			// Not a story (job, poll, ...): nothing to ingest.
			report.Skipped++
			continue
		}

		inserted, err := f.store.InsertItemWithContent(ctx, *item, dump)
		if err != nil {
			return report, fmt.Errorf("failed to insert item %d: %w", id, err)
		}
		if inserted {
			report.Inserted++
		} else {
			report.Skipped++
		}
	}

	f.log.Info().
		Int("processed", report.Processed).
		Int("inserted", report.Inserted).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("ingest complete")
	return report, nil
}

// fetchStory retrieves one story and its reply tree. Returns (nil, "", nil)
// for discussion-less item types.
func (f *Fetcher) fetchStory(ctx context.Context, id int64) (*core.Item, string, error) {
	raw, err := f.hn.Item(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if raw.Type != "story" {
		return nil, "", nil
	}

	var comments []Comment
	if len(raw.Kids) > 0 {
		comments = f.fetchComments(ctx, raw.Kids, 0)
	}

	item := &core.Item{
		HNID:          raw.ID,
		Title:         raw.Title,
		URL:           raw.URL,
		Score:         raw.Score,
		Author:        raw.By,
		Descendants:   raw.Descendants,
		SubmittedAt:   time.Unix(raw.Time, 0).UTC(),
		DiscussionURL: fmt.Sprintf("https://news.ycombinator.com/item?id=%d", raw.ID),
	}
	return item, FormatComments(comments), nil
}

// fetchComments walks the reply tree depth-first up to the configured max
// depth, annotating each node with the depth it was fetched at. Removed and
// dead replies are excluded, and a failed fetch means "no data for this
// node" rather than an aborted batch.
func (f *Fetcher) fetchComments(ctx context.Context, ids []int64, depth int) []Comment {
	if len(ids) == 0 || depth > f.maxDepth {
		return nil
	}

	var comments []Comment
	for _, id := range ids {
		raw, err := f.hn.Item(ctx, id)
		if err != nil {
			f.log.Warn().Err(err).Int64("hn_id", id).Msg("failed to fetch comment")
			continue
		}
		if raw.Deleted || raw.Dead {
			continue
		}

		comments = append(comments, Comment{
			Author: raw.By,
			Time:   time.Unix(raw.Time, 0).UTC(),
			Text:   stripHTML(raw.Text),
			Depth:  depth,
		})

		if depth < f.maxDepth && len(raw.Kids) > 0 {
			comments = append(comments, f.fetchComments(ctx, raw.Kids, depth+1)...)
		}
	}
	return comments
}
