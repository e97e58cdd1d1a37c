package core

import "time"

// Item represents one external discussion submission (story + link + metadata).
// Created by the ingest stage and immutable afterwards.
type Item struct {
	ID            int64     `json:"id"`             // Internal row identifier
	HNID          int64     `json:"hn_id"`          // External Hacker News identifier (unique)
	Title         string    `json:"title"`          // Story title
	URL           string    `json:"url"`            // Target article URL (may be empty for self posts)
	Score         int       `json:"score"`          // Popularity score at fetch time
	Author        string    `json:"author"`         // Submitter username
	Descendants   int       `json:"descendants"`    // Total comment count reported by the source
	SubmittedAt   time.Time `json:"submitted_at"`   // Submission time
	DiscussionURL string    `json:"discussion_url"` // Canonical link to the HN discussion
}

// Content holds the derived text for an Item: the crawled article body and the
// flattened comment thread. Body stays empty until the crawl stage succeeds.
type Content struct {
	ID            int64  `json:"id"`
	ItemID        int64  `json:"item_id"`
	Body          string `json:"body"`           // Full article text, empty = not yet crawled
	CommentDump   string `json:"comment_dump"`   // Depth-annotated comment thread, written once at ingest
	FetchAttempts int    `json:"fetch_attempts"` // Crawl attempts so far; bounded by config
}

// Scores are the bounded derivation outputs for one article, each in [0, 5].
// Confidence is a pointer because absence means "not yet computed", which is
// different from a computed zero.
type Scores struct {
	Controversial float64  `json:"controversial"`        // How heated the discussion is
	Trustworthy   float64  `json:"trustworthy"`          // How reliable the article appears per the comments
	Sentiment     float64  `json:"sentiment"`            // Overall attitude of the article
	Confidence    *float64 `json:"confidence,omitempty"` // How faithfully the summary reflects the body
}

// Analysis holds the derived summaries, categories and scores for a Content.
// Every field is independently committed, so partially populated rows are a
// normal intermediate state.
type Analysis struct {
	ID              int64    `json:"id"`
	ContentID       int64    `json:"content_id"`
	Summary         string   `json:"summary"`          // 3-5 sentence article summary
	CommentsSummary string   `json:"comments_summary"` // 3-5 sentence discussion summary
	Categories      []string `json:"categories"`       // Matching taxonomy slugs
	Scores          *Scores  `json:"scores"`           // nil = scoring not yet run
}

// Subscriber is a digest recipient with a selected category set and an
// optional free-text description of their interests.
type Subscriber struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Interests  string    `json:"interests"`  // Free-text interest profile, optional
	Categories []string  `json:"categories"` // Selected taxonomy slugs
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Association is the per-(subscriber, item) evaluation record. A non-nil but
// empty MatchedCategories means "evaluated, no overlap"; nil means the matcher
// has not run for this pair yet.
type Association struct {
	ID                int64     `json:"id"`
	SubscriberID      string    `json:"subscriber_id"`
	ItemID            int64     `json:"item_id"`
	MatchedCategories []string  `json:"matched_categories"`
	RelevanceScore    *float64  `json:"relevance_score"` // Set only when interests and summary both exist
	IsRead            bool      `json:"is_read"`
	IsSent            bool      `json:"is_sent"`
	CreatedAt         time.Time `json:"created_at"`
}

// Message is one role-tagged chat entry tied to an Association. The core
// pipeline never reads these; they belong to the serving layer.
type Message struct {
	ID            int64     `json:"id"`
	AssociationID int64     `json:"association_id"`
	Role          string    `json:"role"` // "subscriber" or "assistant"
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

// DigestEntry is one article as it appears in an outbound digest email: the
// association joined with its item and analysis rows.
type DigestEntry struct {
	AssociationID     int64
	ItemID            int64
	Title             string
	URL               string
	DiscussionURL     string
	Summary           string
	CommentsSummary   string
	MatchedCategories []string
	RelevanceScore    *float64
}

// ScoreMin and ScoreMax bound every derivation scalar.
const (
	ScoreMin = 0.0
	ScoreMax = 5.0
)

// ClampScore forces a derivation output into the documented [0, 5] range.
// The backend emits free-form numbers, so out-of-range values are clamped
// rather than rejected.
func ClampScore(v float64) float64 {
	if v < ScoreMin {
		return ScoreMin
	}
	if v > ScoreMax {
		return ScoreMax
	}
	return v
}
