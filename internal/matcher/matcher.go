package matcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"skim/internal/store"
)

// Scorer rates an article summary against a subscriber's interest text.
type Scorer interface {
	ScoreRelevance(ctx context.Context, interests, summary string) (float64, error)
}

// Matcher evaluates the cross product of eligible subscribers and analyzed
// items. A pair with no category overlap is recorded with an empty match set
// and suppressed from later runs. Every other pair is re-evaluated on each
// run and upserted, so a category change propagates and a relevance score
// missed on one run is filled on the next. Relevance is scored only when both
// the subscriber's interest text and the item's summary exist.
type Matcher struct {
	store  *store.Store
	scorer Scorer
	log    zerolog.Logger
}

// NewMatcher wires the matching stage.
func NewMatcher(st *store.Store, scorer Scorer, log zerolog.Logger) *Matcher {
	return &Matcher{store: st, scorer: scorer, log: log}
}

// Report summarizes one matching run.
type Report struct {
	Pairs    int
	Matched  int
	Empty    int
	Skipped  int
	Unscored int
}

// Run evaluates the cross product of eligible subscribers and analyzed items.
func (m *Matcher) Run(ctx context.Context) (Report, error) {
	var report Report

	subs, err := m.store.SubscribersWithCategories(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list eligible subscribers: %w", err)
	}
	items, err := m.store.MatchableItems(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list matchable items: %w", err)
	}
	m.log.Info().Int("subscribers", len(subs)).Int("items", len(items)).Msg("matching cross product")

	for _, sub := range subs {
		selected := make(map[string]bool, len(sub.Categories))
		for _, slug := range sub.Categories {
			selected[slug] = true
		}

		for _, item := range items {
			report.Pairs++

			existing, err := m.store.GetAssociation(ctx, sub.ID, item.ItemID)
			if err != nil {
				return report, err
			}
			if existing != nil && existing.MatchedCategories != nil && len(existing.MatchedCategories) == 0 {
				// Evaluated with no overlap; stays suppressed.
				report.Skipped++
				continue
			}

			var matched []string
			for _, slug := range item.Categories {
				if selected[slug] {
					matched = append(matched, slug)
				}
			}

			if len(matched) == 0 {
				if err := m.store.UpsertAssociation(ctx, sub.ID, item.ItemID, nil, nil); err != nil {
					return report, err
				}
				report.Empty++
				continue
			}

			var relevance *float64
			if sub.Interests != "" && item.Summary != "" {
				score, err := m.scorer.ScoreRelevance(ctx, sub.Interests, item.Summary)
				if err != nil {
					// The match itself still counts; the score can be filled
					// by a later run since the pair stays cheap to re-rank.
					m.log.Warn().Err(err).
						Str("subscriber_id", sub.ID).
						Int64("item_id", item.ItemID).
						Msg("relevance scoring failed")
					report.Unscored++
				} else {
					relevance = &score
				}
			} else {
				report.Unscored++
			}

			if err := m.store.UpsertAssociation(ctx, sub.ID, item.ItemID, matched, relevance); err != nil {
				return report, err
			}
			report.Matched++
		}
	}

	m.log.Info().
		Int("pairs", report.Pairs).
		Int("matched", report.Matched).
		Int("empty", report.Empty).
		Int("skipped", report.Skipped).
		Msg("matching complete")
	return report, nil
}
