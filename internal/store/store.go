package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite-backed relational store shared by every pipeline stage.
// Each stage discovers its remaining work through the anti-join queries below
// and commits results with single atomic statements, so any stage can be
// re-run from scratch.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database under dataDir and ensures the schema.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "skim.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	itemsTable := `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hn_id INTEGER NOT NULL UNIQUE,
		title TEXT,
		url TEXT,
		score INTEGER,
		author TEXT,
		descendants INTEGER,
		submitted_at INTEGER,
		discussion_url TEXT
	);`

	contentsTable := `
	CREATE TABLE IF NOT EXISTS contents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL UNIQUE REFERENCES items(id),
		body TEXT,
		comment_dump TEXT,
		fetch_attempts INTEGER NOT NULL DEFAULT 0
	);`

	analysisTable := `
	CREATE TABLE IF NOT EXISTS analysis (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content_id INTEGER NOT NULL UNIQUE REFERENCES contents(id),
		summary TEXT,
		comments_summary TEXT,
		categories TEXT,
		scores TEXT
	);`

	subscribersTable := `
	CREATE TABLE IF NOT EXISTS subscribers (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		interests TEXT,
		categories TEXT,
		active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER
	);`

	associationsTable := `
	CREATE TABLE IF NOT EXISTS associations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subscriber_id TEXT NOT NULL REFERENCES subscribers(id),
		item_id INTEGER NOT NULL REFERENCES items(id),
		matched_categories TEXT,
		relevance_score REAL,
		is_read INTEGER NOT NULL DEFAULT 0,
		is_sent INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER,
		UNIQUE(subscriber_id, item_id)
	);`

	messagesTable := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		association_id INTEGER NOT NULL REFERENCES associations(id),
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER
	);`

	tables := []string{itemsTable, contentsTable, analysisTable, subscribersTable, associationsTable, messagesTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats represents store row counts
type Stats struct {
	Items        int
	Crawled      int
	Analyses     int
	Subscribers  int
	Associations int
	Unsent       int
	Size         int64
	LastUpdated  time.Time
}

// GetStats returns row counts for every pipeline table.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM items":                                        &stats.Items,
		"SELECT COUNT(*) FROM contents WHERE body IS NOT NULL":              &stats.Crawled,
		"SELECT COUNT(*) FROM analysis":                                     &stats.Analyses,
		"SELECT COUNT(*) FROM subscribers":                                  &stats.Subscribers,
		"SELECT COUNT(*) FROM associations":                                 &stats.Associations,
		"SELECT COUNT(*) FROM associations WHERE is_sent = 0":               &stats.Unsent,
	}

	for query, target := range queries {
		if err := s.db.QueryRow(query).Scan(target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.Size = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}
