package digest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"skim/internal/email"
	"skim/internal/mail"
	"skim/internal/store"
)

// Dispatcher assembles and sends one digest email per subscriber holding
// unsent matches. State mutates only after a successful send, and all of a
// digest's associations flip together, so a failed delivery leaves everything
// eligible for the next run. Duplicate delivery is possible if the process
// dies between send and mark; duplicate marking is not.
type Dispatcher struct {
	store    *store.Store
	renderer *email.Renderer
	mailer   mail.Mailer
	log      zerolog.Logger
}

// NewDispatcher wires the dispatch stage.
func NewDispatcher(st *store.Store, renderer *email.Renderer, mailer mail.Mailer, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{store: st, renderer: renderer, mailer: mailer, log: log}
}

// Report summarizes one dispatch run.
type Report struct {
	Subscribers int
	Sent        int
	Failed      int
	Articles    int
}

// Run sends one digest to each active subscriber with unsent matches. A
// per-subscriber failure is logged and the remaining subscribers still get
// their digests.
func (d *Dispatcher) Run(ctx context.Context) (Report, error) {
	var report Report

	subs, err := d.store.SubscribersWithUnsent(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list digest candidates: %w", err)
	}
	report.Subscribers = len(subs)
	d.log.Info().Int("subscribers", len(subs)).Msg("subscribers with unsent associations")

	for _, sub := range subs {
		sent, err := d.dispatchOne(ctx, sub.ID, sub.Email)
		if err != nil {
			d.log.Warn().Err(err).Str("email", sub.Email).Msg("digest delivery failed")
			report.Failed++
			continue
		}
		if sent > 0 {
			report.Sent++
			report.Articles += sent
		}
	}

	d.log.Info().
		Int("subscribers", report.Subscribers).
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Int("articles", report.Articles).
		Msg("dispatch complete")
	return report, nil
}

// dispatchOne sends a single subscriber's digest and marks its associations.
// Returns the number of articles included.
func (d *Dispatcher) dispatchOne(ctx context.Context, subscriberID, address string) (int, error) {
	entries, err := d.store.UnsentMatches(ctx, subscriberID)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		// Only empty-match associations are pending; clear them without
		// sending anything.
		if err := d.store.MarkDigestSent(ctx, subscriberID, nil); err != nil {
			return 0, err
		}
		return 0, nil
	}

	body, err := d.renderer.Render(subscriberID, entries)
	if err != nil {
		return 0, err
	}

	if err := d.mailer.Send(ctx, address, email.Subject(len(entries)), body); err != nil {
		return 0, err
	}

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.AssociationID
	}
	if err := d.store.MarkDigestSent(ctx, subscriberID, ids); err != nil {
		return 0, err
	}

	d.log.Info().Str("email", address).Int("articles", len(entries)).Msg("digest sent")
	return len(entries), nil
}
