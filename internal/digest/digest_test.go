package digest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"skim/internal/categories"
	"skim/internal/core"
	"skim/internal/email"
	"skim/internal/store"
)

type sentMail struct {
	recipient string
	subject   string
	body      string
}

// mockMailer records sends and can fail per recipient.
type mockMailer struct {
	sent    []sentMail
	failFor map[string]bool
}

func (m *mockMailer) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	if m.failFor[recipient] {
		return fmt.Errorf("delivery rejected")
	}
	m.sent = append(m.sent, sentMail{recipient: recipient, subject: subject, body: htmlBody})
	return nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestDispatcher(t *testing.T, st *store.Store, mailer *mockMailer) *Dispatcher {
	t.Helper()
	renderer, err := email.NewRenderer("https://skim.example.com", categories.Default())
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	return NewDispatcher(st, renderer, mailer, zerolog.Nop())
}

func seedItem(t *testing.T, st *store.Store, hnID int64) int64 {
	t.Helper()
	item := core.Item{
		HNID:          hnID,
		Title:         fmt.Sprintf("Story %d", hnID),
		URL:           fmt.Sprintf("https://example.com/%d", hnID),
		SubmittedAt:   time.Unix(1700000000, 0).UTC(),
		DiscussionURL: fmt.Sprintf("https://news.ycombinator.com/item?id=%d", hnID),
	}
	if _, err := st.InsertItemWithContent(context.Background(), item, ""); err != nil {
		t.Fatalf("failed to insert item: %v", err)
	}
	stored, _ := st.GetItemByHNID(context.Background(), hnID)
	return stored.ID
}

func seedSubscriber(t *testing.T, st *store.Store, id, addr string) {
	t.Helper()
	err := st.AddSubscriber(context.Background(), core.Subscriber{
		ID: id, Email: addr,
		Categories: []string{"programming-languages"},
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("AddSubscriber failed: %v", err)
	}
}

func TestRunSendsDigestAndMarksAllAssociations(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedSubscriber(t, st, "sub-1", "a@example.com")

	score := 4.0
	matched1 := seedItem(t, st, 1)
	matched2 := seedItem(t, st, 2)
	empty := seedItem(t, st, 3)
	if err := st.UpsertAssociation(ctx, "sub-1", matched1, []string{"programming-languages"}, &score); err != nil {
		t.Fatal(err)
	}
	if err := st.UpsertAssociation(ctx, "sub-1", matched2, []string{"programming-languages"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := st.UpsertAssociation(ctx, "sub-1", empty, nil, nil); err != nil {
		t.Fatal(err)
	}

	mailer := &mockMailer{}
	report, err := newTestDispatcher(t, st, mailer).Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Sent != 1 || report.Articles != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.recipient != "a@example.com" {
		t.Fatalf("unexpected recipient: %s", mail.recipient)
	}
	if mail.subject != "Your Hacker News digest: 2 new stories" {
		t.Fatalf("unexpected subject: %s", mail.subject)
	}
	if !strings.Contains(mail.body, "Story 1") || !strings.Contains(mail.body, "Story 2") {
		t.Fatal("expected both matched stories in the body")
	}
	if strings.Contains(mail.body, "Story 3") {
		t.Fatal("empty-match story must not be rendered")
	}

	// Matched and empty-match associations are all cleared together.
	subs, err := st.SubscribersWithUnsent(ctx)
	if err != nil {
		t.Fatalf("SubscribersWithUnsent failed: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("expected no unsent associations left, got %v", subs)
	}
}

func TestRunFailedDeliveryMutatesNothing(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedSubscriber(t, st, "sub-1", "a@example.com")
	itemID := seedItem(t, st, 1)
	if err := st.UpsertAssociation(ctx, "sub-1", itemID, []string{"programming-languages"}, nil); err != nil {
		t.Fatal(err)
	}

	mailer := &mockMailer{failFor: map[string]bool{"a@example.com": true}}
	report, err := newTestDispatcher(t, st, mailer).Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed != 1 || report.Sent != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	// The association is still eligible for the next run.
	entries, err := st.UnsentMatches(ctx, "sub-1")
	if err != nil {
		t.Fatalf("UnsentMatches failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected association untouched, got %v", entries)
	}

	// Delivery recovers; the retry sends the same digest.
	mailer.failFor = nil
	report, err = newTestDispatcher(t, st, mailer).Run(ctx)
	if err != nil {
		t.Fatalf("retry Run failed: %v", err)
	}
	if report.Sent != 1 {
		t.Fatalf("unexpected retry report: %+v", report)
	}
}

func TestRunClearsEmptyOnlySubscribersWithoutSending(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedSubscriber(t, st, "sub-1", "a@example.com")
	itemID := seedItem(t, st, 1)
	if err := st.UpsertAssociation(ctx, "sub-1", itemID, nil, nil); err != nil {
		t.Fatal(err)
	}

	mailer := &mockMailer{}
	report, err := newTestDispatcher(t, st, mailer).Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Sent != 0 || len(mailer.sent) != 0 {
		t.Fatalf("expected no email for empty-only subscriber, got %+v", report)
	}

	subs, _ := st.SubscribersWithUnsent(ctx)
	if len(subs) != 0 {
		t.Fatal("expected empty-match associations cleared")
	}
}

func TestRunFailureDoesNotBlockOtherSubscribers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedSubscriber(t, st, "sub-1", "fails@example.com")
	seedSubscriber(t, st, "sub-2", "ok@example.com")
	itemID := seedItem(t, st, 1)
	for _, sub := range []string{"sub-1", "sub-2"} {
		if err := st.UpsertAssociation(ctx, sub, itemID, []string{"programming-languages"}, nil); err != nil {
			t.Fatal(err)
		}
	}

	mailer := &mockMailer{failFor: map[string]bool{"fails@example.com": true}}
	report, err := newTestDispatcher(t, st, mailer).Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Sent != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].recipient != "ok@example.com" {
		t.Fatalf("unexpected deliveries: %+v", mailer.sent)
	}
}
