package analyze

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"skim/internal/categories"
	"skim/internal/core"
	"skim/internal/store"
)

// Analyzer is the model-backed derivation capability the engine drives.
type Analyzer interface {
	SummarizeArticle(ctx context.Context, body string) (string, error)
	SummarizeComments(ctx context.Context, commentDump string) (string, error)
	Categorize(ctx context.Context, body string, taxonomy []categories.Category) ([]string, error)
	ScoreArticle(ctx context.Context, body, commentDump string) (core.Scores, error)
	ScoreConfidence(ctx context.Context, body, summary string) (float64, error)
}

// Engine runs the enrichment tasks. Each task discovers its own work via a
// per-task anti-join; per item, the still-missing tasks fan out concurrently
// and each commits only its own columns, so a crash mid-run loses at most the
// item in flight and a re-run picks up exactly the still-missing fields.
type Engine struct {
	store    *store.Store
	ai       Analyzer
	log      zerolog.Logger
	taxonomy []categories.Category
}

// NewEngine wires the enrichment stage.
func NewEngine(st *store.Store, ai Analyzer, log zerolog.Logger, taxonomy []categories.Category) *Engine {
	return &Engine{store: st, ai: ai, log: log, taxonomy: taxonomy}
}

// Report summarizes one enrichment run.
type Report struct {
	Summaries  int
	Categories int
	Scores     int
	Confidence int
	Failed     int
}

// itemWork is one content row with the union of its pending base tasks.
type itemWork struct {
	store.EnrichmentWork
	needSummary    bool
	needCategories bool
	needScores     bool
}

// Run derives the three base tasks per item and then runs the confidence
// pass, which depends on summaries and base scores already being committed.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	var report Report

	work, err := e.discoverWork(ctx)
	if err != nil {
		return report, err
	}
	e.log.Info().Int("pending", len(work)).Msg("contents needing enrichment")

	for _, w := range work {
		if err := e.enrichOne(ctx, w, &report); err != nil {
			return report, err
		}
	}

	if err := e.runConfidence(ctx, &report); err != nil {
		return report, err
	}

	e.log.Info().
		Int("summaries", report.Summaries).
		Int("categories", report.Categories).
		Int("scores", report.Scores).
		Int("confidence", report.Confidence).
		Int("failed", report.Failed).
		Msg("enrichment complete")
	return report, nil
}

// discoverWork merges the three per-task anti-joins into one pending-task set
// per content row.
func (e *Engine) discoverWork(ctx context.Context) ([]*itemWork, error) {
	byContent := make(map[int64]*itemWork)
	merge := func(rows []store.EnrichmentWork, mark func(*itemWork)) {
		for _, row := range rows {
			w, ok := byContent[row.ContentID]
			if !ok {
				w = &itemWork{EnrichmentWork: row}
				byContent[row.ContentID] = w
			}
			mark(w)
		}
	}

	summaries, err := e.store.ContentsNeedingSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover summary work: %w", err)
	}
	merge(summaries, func(w *itemWork) { w.needSummary = true })

	cats, err := e.store.ContentsNeedingCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover category work: %w", err)
	}
	merge(cats, func(w *itemWork) { w.needCategories = true })

	scores, err := e.store.ContentsNeedingScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover score work: %w", err)
	}
	merge(scores, func(w *itemWork) { w.needScores = true })

	work := make([]*itemWork, 0, len(byContent))
	for _, w := range byContent {
		work = append(work, w)
	}
	sort.Slice(work, func(i, j int) bool { return work[i].ContentID < work[j].ContentID })
	return work, nil
}

// enrichOne fans the item's pending tasks out concurrently, joins, then
// commits each successful task's columns independently. Model failures are
// counted; a failed sibling never blocks another task's commit. Store errors
// abort the run.
func (e *Engine) enrichOne(ctx context.Context, w *itemWork, report *Report) error {
	var (
		summary, commentsSummary string
		summaryOK                bool
		slugs                    []string
		slugsOK                  bool
		scores                   core.Scores
		scoresOK                 bool
	)

	g, gctx := errgroup.WithContext(ctx)
	if w.needSummary {
		g.Go(func() error {
			s, err := e.ai.SummarizeArticle(gctx, w.Body)
			if err != nil {
				e.log.Warn().Err(err).Int64("content_id", w.ContentID).Msg("summary failed")
				return nil
			}
			var cs string
			if w.CommentDump != "" {
				cs, err = e.ai.SummarizeComments(gctx, w.CommentDump)
				if err != nil {
					// Both summary columns commit together; retry the pair next run.
					e.log.Warn().Err(err).Int64("content_id", w.ContentID).Msg("comments summary failed")
					return nil
				}
			}
			summary, commentsSummary, summaryOK = s, cs, true
			return nil
		})
	}
	if w.needCategories {
		g.Go(func() error {
			s, err := e.ai.Categorize(gctx, w.Body, e.taxonomy)
			if err != nil {
				e.log.Warn().Err(err).Int64("content_id", w.ContentID).Msg("categorization failed")
				return nil
			}
			slugs, slugsOK = s, true
			return nil
		})
	}
	if w.needScores {
		g.Go(func() error {
			s, err := e.ai.ScoreArticle(gctx, w.Body, w.CommentDump)
			if err != nil {
				e.log.Warn().Err(err).Int64("content_id", w.ContentID).Msg("scoring failed")
				return nil
			}
			scores, scoresOK = s, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if w.needSummary {
		if summaryOK {
			if err := e.store.SaveSummaries(ctx, w.ContentID, summary, commentsSummary); err != nil {
				return err
			}
			report.Summaries++
		} else {
			report.Failed++
		}
	}
	if w.needCategories {
		if slugsOK {
			if err := e.store.SaveCategories(ctx, w.ContentID, slugs); err != nil {
				return err
			}
			report.Categories++
		} else {
			report.Failed++
		}
	}
	if w.needScores {
		if scoresOK {
			if err := e.store.SaveScores(ctx, w.ContentID, scores); err != nil {
				return err
			}
			report.Scores++
		} else {
			report.Failed++
		}
	}
	return nil
}

func (e *Engine) runConfidence(ctx context.Context, report *Report) error {
	work, err := e.store.ContentsNeedingConfidence(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover confidence work: %w", err)
	}
	e.log.Info().Int("pending", len(work)).Msg("contents needing confidence")

	for _, w := range work {
		confidence, err := e.ai.ScoreConfidence(ctx, w.Body, w.Summary)
		if err != nil {
			e.log.Warn().Err(err).Int64("content_id", w.ContentID).Msg("confidence scoring failed")
			report.Failed++
			continue
		}
		if err := e.store.SaveConfidence(ctx, w.ContentID, confidence); err != nil {
			return err
		}
		report.Confidence++
	}
	return nil
}
