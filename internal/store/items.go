package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"skim/internal/core"
)

// HasItem reports whether an item with the given external id already exists.
// The ingest stage checks this before fetching to avoid wasted network calls;
// the insert itself is still conflict-safe.
func (s *Store) HasItem(ctx context.Context, hnID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM items WHERE hn_id = ?)", hnID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check item existence: %w", err)
	}
	return exists, nil
}

// InsertItemWithContent atomically inserts an item and its content row. The
// unique constraint on hn_id makes the insert a no-op for already-seen ids,
// so repeated or concurrent runs cannot create duplicates. Returns false when
// the item already existed.
func (s *Store) InsertItemWithContent(ctx context.Context, item core.Item, commentDump string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO items (hn_id, title, url, score, author, descendants, submitted_at, discussion_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hn_id) DO NOTHING`,
		item.HNID, item.Title, item.URL, item.Score, item.Author,
		item.Descendants, item.SubmittedAt.Unix(), item.DiscussionURL,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	itemID, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to read item id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO contents (item_id, comment_dump) VALUES (?, ?)",
		itemID, commentDump,
	); err != nil {
		return false, fmt.Errorf("failed to insert content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit item insert: %w", err)
	}
	return true, nil
}

// PendingCrawl is one content row still waiting for its article body.
type PendingCrawl struct {
	ContentID int64
	URL       string
}

// ContentsNeedingBody selects the content rows whose body is still null and
// whose item has a crawlable URL. Rows that have already failed maxAttempts
// times are quarantined and no longer selected.
func (s *Store) ContentsNeedingBody(ctx context.Context, maxAttempts int) ([]PendingCrawl, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, i.url
		FROM contents c
		JOIN items i ON i.id = c.item_id
		WHERE c.body IS NULL
		  AND i.url IS NOT NULL AND i.url != ''
		  AND c.fetch_attempts < ?
		ORDER BY c.id`, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending crawls: %w", err)
	}
	defer rows.Close()

	var pending []PendingCrawl
	for rows.Next() {
		var p PendingCrawl
		if err := rows.Scan(&p.ContentID, &p.URL); err != nil {
			return nil, fmt.Errorf("failed to scan pending crawl: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// SetBody writes the crawled article text. Retries overwrite, never append.
func (s *Store) SetBody(ctx context.Context, contentID int64, body string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE contents SET body = ? WHERE id = ?", body, contentID)
	if err != nil {
		return fmt.Errorf("failed to set body: %w", err)
	}
	return nil
}

// RecordFetchFailure bumps the crawl attempt counter for a content row.
func (s *Store) RecordFetchFailure(ctx context.Context, contentID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE contents SET fetch_attempts = fetch_attempts + 1 WHERE id = ?", contentID)
	if err != nil {
		return fmt.Errorf("failed to record fetch failure: %w", err)
	}
	return nil
}

// GetContent returns the content row for an item, or nil if absent.
func (s *Store) GetContent(ctx context.Context, itemID int64) (*core.Content, error) {
	var c core.Content
	var body sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, item_id, body, comment_dump, fetch_attempts
		FROM contents WHERE item_id = ?`, itemID).
		Scan(&c.ID, &c.ItemID, &body, &c.CommentDump, &c.FetchAttempts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan content: %w", err)
	}
	c.Body = body.String
	return &c, nil
}

// GetItemByHNID returns the item with the given external id, or nil if absent.
func (s *Store) GetItemByHNID(ctx context.Context, hnID int64) (*core.Item, error) {
	var it core.Item
	var submitted int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, hn_id, title, url, score, author, descendants, submitted_at, discussion_url
		FROM items WHERE hn_id = ?`, hnID).
		Scan(&it.ID, &it.HNID, &it.Title, &it.URL, &it.Score, &it.Author,
			&it.Descendants, &submitted, &it.DiscussionURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	it.SubmittedAt = time.Unix(submitted, 0).UTC()
	return &it, nil
}
