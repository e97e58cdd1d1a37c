package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"skim/internal/core"
)

// MatchableItem is one fully analyzed item as the matcher sees it.
type MatchableItem struct {
	ItemID     int64
	Categories []string
	Summary    string
}

// MatchableItems returns every item whose analysis carries a non-empty
// category set, joined with its summary.
func (s *Store) MatchableItems(ctx context.Context) ([]MatchableItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, a.categories, COALESCE(a.summary, '')
		FROM analysis a
		JOIN contents c ON a.content_id = c.id
		JOIN items i ON c.item_id = i.id
		WHERE a.categories IS NOT NULL AND a.categories != ''
		ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select matchable items: %w", err)
	}
	defer rows.Close()

	var items []MatchableItem
	for rows.Next() {
		var m MatchableItem
		var cats string
		if err := rows.Scan(&m.ItemID, &cats, &m.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan matchable item: %w", err)
		}
		m.Categories = splitSlugs(cats)
		items = append(items, m)
	}
	return items, rows.Err()
}

// UpsertAssociation records the evaluation of one (subscriber, item) pair.
// An empty matched set is stored as "[]" so "evaluated, no overlap" stays
// distinct from "never evaluated" (NULL). On conflict the match set and score
// are overwritten and everything else, including is_sent, is preserved, so
// re-running the matcher on unchanged inputs is a no-op.
func (s *Store) UpsertAssociation(ctx context.Context, subscriberID string, itemID int64, matched []string, relevance *float64) error {
	if matched == nil {
		matched = []string{}
	}
	matchedJSON, err := json.Marshal(matched)
	if err != nil {
		return fmt.Errorf("failed to encode matched categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO associations (subscriber_id, item_id, matched_categories, relevance_score, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(subscriber_id, item_id) DO UPDATE SET
			matched_categories = excluded.matched_categories,
			relevance_score = excluded.relevance_score`,
		subscriberID, itemID, string(matchedJSON), relevance, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert association: %w", err)
	}
	return nil
}

// GetAssociation returns the association for a pair, or nil if absent.
func (s *Store) GetAssociation(ctx context.Context, subscriberID string, itemID int64) (*core.Association, error) {
	var a core.Association
	var matched sql.NullString
	var relevance sql.NullFloat64
	var isRead, isSent int
	var created int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, subscriber_id, item_id, matched_categories, relevance_score, is_read, is_sent, created_at
		FROM associations
		WHERE subscriber_id = ? AND item_id = ?`, subscriberID, itemID).
		Scan(&a.ID, &a.SubscriberID, &a.ItemID, &matched, &relevance, &isRead, &isSent, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan association: %w", err)
	}

	if matched.Valid {
		if err := json.Unmarshal([]byte(matched.String), &a.MatchedCategories); err != nil {
			return nil, fmt.Errorf("failed to decode matched categories: %w", err)
		}
	}
	if relevance.Valid {
		a.RelevanceScore = &relevance.Float64
	}
	a.IsRead = isRead != 0
	a.IsSent = isSent != 0
	a.CreatedAt = time.Unix(created, 0).UTC()
	return &a, nil
}

// UnsentMatches returns a subscriber's unsent associations with a non-empty
// match set, joined with item and analysis rows and ordered by relevance
// descending (unscored entries last).
func (s *Store) UnsentMatches(ctx context.Context, subscriberID string) ([]core.DigestEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, i.id, i.title, i.url, i.discussion_url,
		       COALESCE(an.summary, ''), COALESCE(an.comments_summary, ''),
		       a.matched_categories, a.relevance_score
		FROM associations a
		JOIN items i ON a.item_id = i.id
		LEFT JOIN contents c ON c.item_id = i.id
		LEFT JOIN analysis an ON an.content_id = c.id
		WHERE a.subscriber_id = ? AND a.is_sent = 0
		  AND a.matched_categories IS NOT NULL
		  AND a.matched_categories != '[]'
		ORDER BY a.relevance_score DESC`, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsent matches: %w", err)
	}
	defer rows.Close()

	var entries []core.DigestEntry
	for rows.Next() {
		var e core.DigestEntry
		var matched string
		var relevance sql.NullFloat64
		if err := rows.Scan(&e.AssociationID, &e.ItemID, &e.Title, &e.URL, &e.DiscussionURL,
			&e.Summary, &e.CommentsSummary, &matched, &relevance); err != nil {
			return nil, fmt.Errorf("failed to scan digest entry: %w", err)
		}
		if err := json.Unmarshal([]byte(matched), &e.MatchedCategories); err != nil {
			return nil, fmt.Errorf("failed to decode matched categories: %w", err)
		}
		if relevance.Valid {
			e.RelevanceScore = &relevance.Float64
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkDigestSent flips is_sent for the delivered associations and, in the
// same transaction, clears the subscriber's unsent empty-match associations
// so they stop being candidates. unsent -> sent is the only transition.
func (s *Store) MarkDigestSent(ctx context.Context, subscriberID string, associationIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(associationIDs) > 0 {
		placeholders := strings.Repeat("?,", len(associationIDs)-1) + "?"
		args := make([]any, len(associationIDs))
		for i, id := range associationIDs {
			args[i] = id
		}
		query := fmt.Sprintf("UPDATE associations SET is_sent = 1 WHERE id IN (%s)", placeholders)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to mark associations sent: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE associations SET is_sent = 1
		WHERE subscriber_id = ? AND is_sent = 0 AND matched_categories = '[]'`,
		subscriberID); err != nil {
		return fmt.Errorf("failed to clear empty matches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit digest state: %w", err)
	}
	return nil
}

// AppendMessage stores one chat message for an association. The pipeline
// never reads these; the serving layer does.
func (s *Store) AppendMessage(ctx context.Context, associationID int64, role, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (association_id, role, content, created_at)
		VALUES (?, ?, ?, ?)`,
		associationID, role, content, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// Messages returns an association's chat messages ordered by time.
func (s *Store) Messages(ctx context.Context, associationID int64) ([]core.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, association_id, role, content, created_at
		FROM messages
		WHERE association_id = ?
		ORDER BY created_at, id`, associationID)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var msgs []core.Message
	for rows.Next() {
		var m core.Message
		var created int64
		if err := rows.Scan(&m.ID, &m.AssociationID, &m.Role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.CreatedAt = time.Unix(created, 0).UTC()
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
