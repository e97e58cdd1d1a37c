package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"skim/internal/core"
)

// EnrichmentWork is one content row with derivation input text. Which fields
// still need computing is tracked per task by the anti-join that selected it.
type EnrichmentWork struct {
	ContentID   int64
	Body        string
	CommentDump string
}

// selectEnrichmentWork runs one of the per-task anti-joins: contents with a
// non-empty body whose analysis row is missing the given column. A missing
// analysis row counts as missing every column.
func (s *Store) selectEnrichmentWork(ctx context.Context, column string) ([]EnrichmentWork, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.body, c.comment_dump
		FROM contents c
		LEFT JOIN analysis a ON a.content_id = c.id
		WHERE c.body IS NOT NULL AND c.body != ''
		  AND a.%s IS NULL
		ORDER BY c.id`, column)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select contents missing %s: %w", column, err)
	}
	defer rows.Close()

	var work []EnrichmentWork
	for rows.Next() {
		var w EnrichmentWork
		if err := rows.Scan(&w.ContentID, &w.Body, &w.CommentDump); err != nil {
			return nil, fmt.Errorf("failed to scan enrichment work: %w", err)
		}
		work = append(work, w)
	}
	return work, rows.Err()
}

// ContentsNeedingSummary selects contents whose analysis has no summary yet.
func (s *Store) ContentsNeedingSummary(ctx context.Context) ([]EnrichmentWork, error) {
	return s.selectEnrichmentWork(ctx, "summary")
}

// ContentsNeedingCategories selects contents whose analysis has no categories yet.
func (s *Store) ContentsNeedingCategories(ctx context.Context) ([]EnrichmentWork, error) {
	return s.selectEnrichmentWork(ctx, "categories")
}

// ContentsNeedingScores selects contents whose analysis has no scores blob yet.
func (s *Store) ContentsNeedingScores(ctx context.Context) ([]EnrichmentWork, error) {
	return s.selectEnrichmentWork(ctx, "scores")
}

// ConfidenceWork is a content row ready for the second-order confidence pass:
// summary and base scores committed, confidence still absent.
type ConfidenceWork struct {
	ContentID int64
	Body      string
	Summary   string
}

// ContentsNeedingConfidence selects rows where both the summary and the base
// scores exist but the confidence field has not been merged into the blob.
// An absent summary means skipped, never a zero score.
func (s *Store) ContentsNeedingConfidence(ctx context.Context) ([]ConfidenceWork, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.body, a.summary
		FROM contents c
		JOIN analysis a ON a.content_id = c.id
		WHERE a.summary IS NOT NULL AND a.summary != ''
		  AND a.scores IS NOT NULL
		  AND json_extract(a.scores, '$.confidence') IS NULL
		ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select confidence work: %w", err)
	}
	defer rows.Close()

	var work []ConfidenceWork
	for rows.Next() {
		var w ConfidenceWork
		if err := rows.Scan(&w.ContentID, &w.Body, &w.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan confidence work: %w", err)
		}
		work = append(work, w)
	}
	return work, rows.Err()
}

// SaveSummaries upserts the two summary columns of the analysis row, creating
// the row when this task commits first.
func (s *Store) SaveSummaries(ctx context.Context, contentID int64, summary, commentsSummary string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis (content_id, summary, comments_summary)
		VALUES (?, ?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			summary = excluded.summary,
			comments_summary = excluded.comments_summary`,
		contentID, summary, commentsSummary)
	if err != nil {
		return fmt.Errorf("failed to save summaries: %w", err)
	}
	return nil
}

// SaveCategories upserts the categories column as a comma-delimited slug list.
func (s *Store) SaveCategories(ctx context.Context, contentID int64, slugs []string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis (content_id, categories)
		VALUES (?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			categories = excluded.categories`,
		contentID, strings.Join(slugs, ","))
	if err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	return nil
}

// SaveScores upserts the base scores blob (controversial, trustworthy,
// sentiment). Confidence is merged later by SaveConfidence.
func (s *Store) SaveScores(ctx context.Context, contentID int64, scores core.Scores) error {
	scores.Confidence = nil
	blob, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis (content_id, scores)
		VALUES (?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			scores = excluded.scores`,
		contentID, string(blob))
	if err != nil {
		return fmt.Errorf("failed to save scores: %w", err)
	}
	return nil
}

// SaveConfidence merges the confidence field into an existing scores blob.
func (s *Store) SaveConfidence(ctx context.Context, contentID int64, confidence float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE analysis
		SET scores = json_set(scores, '$.confidence', ?)
		WHERE content_id = ? AND scores IS NOT NULL`,
		confidence, contentID)
	if err != nil {
		return fmt.Errorf("failed to save confidence: %w", err)
	}
	return nil
}

// GetAnalysis returns the analysis row for a content, or nil if absent.
func (s *Store) GetAnalysis(ctx context.Context, contentID int64) (*core.Analysis, error) {
	var a core.Analysis
	var summary, commentsSummary, cats, blob sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, content_id, summary, comments_summary, categories, scores
		FROM analysis WHERE content_id = ?`, contentID).
		Scan(&a.ID, &a.ContentID, &summary, &commentsSummary, &cats, &blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	a.Summary = summary.String
	a.CommentsSummary = commentsSummary.String
	a.Categories = splitSlugs(cats.String)
	if blob.Valid && blob.String != "" {
		var scores core.Scores
		if err := json.Unmarshal([]byte(blob.String), &scores); err != nil {
			return nil, fmt.Errorf("failed to decode scores: %w", err)
		}
		a.Scores = &scores
	}
	return &a, nil
}

// splitSlugs parses a comma-delimited slug list, dropping empty entries.
func splitSlugs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
