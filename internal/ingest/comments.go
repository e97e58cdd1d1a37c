package ingest

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Comment is one flattened reply-tree node with the depth it was fetched at.
type Comment struct {
	Author string
	Time   time.Time
	Text   string
	Depth  int
}

// FormatComments serializes a depth-first comment list into the single
// human-readable text block stored as comment_dump: per node, an indented
// author/timestamp header followed by the body.
func FormatComments(comments []Comment) string {
	if len(comments) == 0 {
		return ""
	}

	var b strings.Builder
	for _, c := range comments {
		indent := strings.Repeat("  ", c.Depth)
		author := c.Author
		if author == "" {
			author = "[deleted]"
		}
		b.WriteString(indent + "[" + author + "] at " + c.Time.Format("2006-01-02 15:04:05") + ":\n")
		b.WriteString(indent + c.Text + "\n")
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// stripHTML flattens HN comment HTML (paragraph tags, links, entities) into
// plain text.
func stripHTML(text string) string {
	if text == "" {
		return ""
	}
	// HN separates paragraphs with bare <p> tags; keep the breaks readable.
	text = strings.ReplaceAll(text, "<p>", "\n")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return strings.TrimSpace(doc.Text())
}
