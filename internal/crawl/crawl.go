package crawl

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"skim/internal/store"
)

// Crawler is the delegated crawling capability: one page in, its text out.
type Crawler interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Extractor fills in the article body for every content row that still lacks
// one. Work is processed in fixed-size batches; within a batch all delegate
// calls run concurrently, and a per-item failure is converted into a bumped
// attempt counter instead of aborting the batch. Rows that keep failing are
// quarantined once they reach the attempt bound.
type Extractor struct {
	store       *store.Store
	crawler     Crawler
	log         zerolog.Logger
	batchSize   int
	maxAttempts int
}

// NewExtractor wires the crawl stage.
func NewExtractor(st *store.Store, crawler Crawler, log zerolog.Logger, batchSize, maxAttempts int) *Extractor {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Extractor{store: st, crawler: crawler, log: log, batchSize: batchSize, maxAttempts: maxAttempts}
}

// Report summarizes one crawl run.
type Report struct {
	Pending int
	Filled  int
	Failed  int
}

// Run executes one crawl pass over the still-empty content rows.
func (e *Extractor) Run(ctx context.Context) (Report, error) {
	var report Report

	pending, err := e.store.ContentsNeedingBody(ctx, e.maxAttempts)
	if err != nil {
		return report, fmt.Errorf("failed to discover pending crawls: %w", err)
	}
	report.Pending = len(pending)
	e.log.Info().Int("pending", len(pending)).Msg("discovered uncrawled contents")

	for start := 0; start < len(pending); start += e.batchSize {
		end := start + e.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		filled, failed, err := e.processBatch(ctx, batch)
		if err != nil {
			return report, err
		}
		report.Filled += filled
		report.Failed += failed
	}

	e.log.Info().
		Int("pending", report.Pending).
		Int("filled", report.Filled).
		Int("failed", report.Failed).
		Msg("crawl complete")
	return report, nil
}

// processBatch fans the batch out to the delegate, joins, then commits the
// results. Writes happen after the join so no transaction is ever held open
// across a delegate call.
func (e *Extractor) processBatch(ctx context.Context, batch []store.PendingCrawl) (int, int, error) {
	results := make([]string, len(batch))

	var g errgroup.Group
	for i, p := range batch {
		g.Go(func() error {
			text, err := e.crawler.Extract(ctx, p.URL)
			if err != nil {
				e.log.Warn().Err(err).Str("url", p.URL).Msg("crawl failed")
				return nil
			}
			results[i] = text
			return nil
		})
	}
	_ = g.Wait() // individual failures are already absorbed above

	filled, failed := 0, 0
	for i, p := range batch {
		if results[i] == "" {
			if err := e.store.RecordFetchFailure(ctx, p.ContentID); err != nil {
				return filled, failed, err
			}
			failed++
			continue
		}
		if err := e.store.SetBody(ctx, p.ContentID, results[i]); err != nil {
			return filled, failed, err
		}
		filled++
	}
	return filled, failed, nil
}
