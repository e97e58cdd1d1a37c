package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"skim/internal/core"
)

// AddSubscriber inserts a new subscriber row.
func (s *Store) AddSubscriber(ctx context.Context, sub core.Subscriber) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscribers (id, email, interests, categories, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Email, sub.Interests, strings.Join(sub.Categories, ","),
		boolToInt(sub.Active), sub.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert subscriber: %w", err)
	}
	return nil
}

// ListSubscribers returns every subscriber, newest last.
func (s *Store) ListSubscribers(ctx context.Context) ([]core.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, interests, categories, active, created_at
		FROM subscribers ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()
	return scanSubscribers(rows)
}

// SubscribersWithCategories returns the subscribers eligible for matching:
// those with a non-empty selected category set.
func (s *Store) SubscribersWithCategories(ctx context.Context) ([]core.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, interests, categories, active, created_at
		FROM subscribers
		WHERE categories IS NOT NULL AND categories != ''
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to select subscribers with categories: %w", err)
	}
	defer rows.Close()
	return scanSubscribers(rows)
}

// SubscribersWithUnsent returns active subscribers holding at least one
// unsent association.
func (s *Store) SubscribersWithUnsent(ctx context.Context) ([]core.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT u.id, u.email, u.interests, u.categories, u.active, u.created_at
		FROM subscribers u
		JOIN associations a ON a.subscriber_id = u.id
		WHERE u.active = 1 AND a.is_sent = 0
		ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select subscribers with unsent: %w", err)
	}
	defer rows.Close()
	return scanSubscribers(rows)
}

func scanSubscribers(rows *sql.Rows) ([]core.Subscriber, error) {
	var subs []core.Subscriber
	for rows.Next() {
		var sub core.Subscriber
		var interests, cats sql.NullString
		var active int
		var created int64
		if err := rows.Scan(&sub.ID, &sub.Email, &interests, &cats, &active, &created); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		sub.Interests = interests.String
		sub.Categories = splitSlugs(cats.String)
		sub.Active = active != 0
		sub.CreatedAt = time.Unix(created, 0).UTC()
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
