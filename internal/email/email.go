package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"skim/internal/categories"
	"skim/internal/core"
)

// summaryLimit bounds the per-article summary length inside the email body.
const summaryLimit = 300

// maxTags bounds how many matched-category tags render per article.
const maxTags = 3

// Renderer turns a subscriber's digest entries into the HTML email body.
// Links back into the app (article page, preferences) are built off the
// public base URL.
type Renderer struct {
	baseURL  string
	taxonomy []categories.Category
	tmpl     *template.Template
}

// NewRenderer compiles the digest template once.
func NewRenderer(baseURL string, taxonomy []categories.Category) (*Renderer, error) {
	tmpl, err := template.New("digest").Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse digest template: %w", err)
	}
	return &Renderer{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		taxonomy: taxonomy,
		tmpl:     tmpl,
	}, nil
}

type digestData struct {
	Date           string
	Entries        []entryData
	PreferencesURL string
}

type entryData struct {
	Title         string
	ArticleURL    string
	SourceURL     string
	DiscussionURL string
	Summary       string
	Tags          []string
	Score         string
	HasScore      bool
}

// Subject builds the digest subject line for a given entry count.
func Subject(count int) string {
	if count == 1 {
		return "Your Hacker News digest: 1 new story"
	}
	return fmt.Sprintf("Your Hacker News digest: %d new stories", count)
}

// Render produces the HTML body for one subscriber's digest.
func (r *Renderer) Render(subscriberID string, entries []core.DigestEntry) (string, error) {
	data := digestData{
		Date:           time.Now().UTC().Format("January 2, 2006"),
		PreferencesURL: fmt.Sprintf("%s/subscribers/%s/preferences", r.baseURL, subscriberID),
	}
	for _, e := range entries {
		data.Entries = append(data.Entries, r.buildEntry(e))
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) buildEntry(e core.DigestEntry) entryData {
	entry := entryData{
		Title:         e.Title,
		ArticleURL:    fmt.Sprintf("%s/items/%d", r.baseURL, e.ItemID),
		SourceURL:     e.URL,
		DiscussionURL: e.DiscussionURL,
		Summary:       truncateSummary(e.Summary),
	}

	for _, slug := range e.MatchedCategories {
		if len(entry.Tags) == maxTags {
			break
		}
		if cat := categories.BySlug(slug, r.taxonomy); cat != nil {
			entry.Tags = append(entry.Tags, cat.Title)
		} else {
			entry.Tags = append(entry.Tags, slug)
		}
	}

	if e.RelevanceScore != nil {
		entry.Score = fmt.Sprintf("%.1f", *e.RelevanceScore)
		entry.HasScore = true
	}
	return entry
}

// truncateSummary cuts the summary at a word boundary near the limit, never
// splitting a multi-byte rune.
func truncateSummary(summary string) string {
	if len(summary) <= summaryLimit {
		return summary
	}
	limit := summaryLimit
	for limit > 0 && !utf8.RuneStart(summary[limit]) {
		limit--
	}
	cut := summary[:limit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

const digestTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Your Hacker News digest</title>
</head>
<body style="margin:0;padding:0;background-color:#f6f6ef;font-family:Verdana,Geneva,sans-serif;color:#222222;">
  <div style="max-width:600px;margin:0 auto;padding:24px 16px;">
    <div style="background-color:#ff6600;color:#ffffff;padding:16px 20px;border-radius:6px 6px 0 0;">
      <h1 style="margin:0;font-size:20px;">Your Hacker News digest</h1>
      <p style="margin:6px 0 0 0;font-size:13px;">{{.Date}}</p>
    </div>
    <div style="background-color:#ffffff;border:1px solid #e0e0e0;border-top:none;border-radius:0 0 6px 6px;padding:8px 20px 20px 20px;">
      {{range .Entries}}
      <div style="border-bottom:1px solid #eeeeee;padding:16px 0;">
        <h2 style="margin:0 0 6px 0;font-size:16px;">
          <a href="{{.ArticleURL}}" style="color:#222222;text-decoration:none;">{{.Title}}</a>
          {{if .HasScore}}<span style="background-color:#ff6600;color:#ffffff;font-size:11px;padding:2px 6px;border-radius:10px;vertical-align:middle;">{{.Score}}</span>{{end}}
        </h2>
        {{if .Tags}}
        <p style="margin:0 0 8px 0;">
          {{range .Tags}}<span style="display:inline-block;background-color:#f0f0f0;color:#666666;font-size:11px;padding:2px 8px;border-radius:10px;margin-right:4px;">{{.}}</span>{{end}}
        </p>
        {{end}}
        {{if .Summary}}<p style="margin:0 0 8px 0;font-size:13px;line-height:1.5;color:#444444;">{{.Summary}}</p>{{end}}
        <p style="margin:0;font-size:12px;">
          <a href="{{.SourceURL}}" style="color:#ff6600;">Read article</a>
          &nbsp;&middot;&nbsp;
          <a href="{{.DiscussionURL}}" style="color:#ff6600;">HN discussion</a>
        </p>
      </div>
      {{end}}
      <p style="margin:16px 0 0 0;font-size:11px;color:#999999;">
        You are receiving this because you subscribed to personalized Hacker News digests.
        <a href="{{.PreferencesURL}}" style="color:#999999;">Manage preferences</a>
      </p>
    </div>
  </div>
</body>
</html>
`
