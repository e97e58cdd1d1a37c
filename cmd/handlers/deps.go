/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"context"
	"fmt"
	"time"

	"skim/internal/analyze"
	"skim/internal/categories"
	"skim/internal/config"
	"skim/internal/crawl"
	"skim/internal/digest"
	"skim/internal/email"
	"skim/internal/hnapi"
	"skim/internal/ingest"
	"skim/internal/llm"
	"skim/internal/logger"
	"skim/internal/mail"
	"skim/internal/matcher"
	"skim/internal/store"
)

// openStore opens the pipeline database in the configured data directory.
func openStore() (*store.Store, error) {
	st, err := store.New(config.Get().App.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

func newFetcher(st *store.Store) *ingest.Fetcher {
	cfg := config.Get()
	hn := hnapi.NewClient(cfg.Source.BaseURL, config.Duration(cfg.Source.Timeout, 30*time.Second))
	return ingest.NewFetcher(hn, st, logger.With("ingest"), cfg.Source.TopStories, cfg.Source.CommentDepth)
}

func newExtractor(st *store.Store) (*crawl.Extractor, error) {
	cfg := config.Get()
	if cfg.Crawler.APIToken == "" {
		return nil, fmt.Errorf("crawler API token is required (set APIFY_API_TOKEN)")
	}
	client := crawl.NewApifyClient(cfg.Crawler.APIToken, cfg.Crawler.Actor, cfg.Crawler.Mode,
		config.Duration(cfg.Crawler.Timeout, 5*time.Minute))
	return crawl.NewExtractor(st, client, logger.With("crawl"), cfg.Crawler.BatchSize, cfg.Crawler.MaxAttempts), nil
}

func newLLMClient(ctx context.Context) (*llm.Client, error) {
	cfg := config.Get()
	return llm.NewClient(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model,
		config.Duration(cfg.AI.Gemini.Timeout, time.Minute))
}

func newEngine(ctx context.Context, st *store.Store) (*analyze.Engine, error) {
	client, err := newLLMClient(ctx)
	if err != nil {
		return nil, err
	}
	return analyze.NewEngine(st, client, logger.With("analyze"), categories.Default()), nil
}

func newMatcher(ctx context.Context, st *store.Store) (*matcher.Matcher, error) {
	client, err := newLLMClient(ctx)
	if err != nil {
		return nil, err
	}
	return matcher.NewMatcher(st, client, logger.With("match")), nil
}

func newDispatcher(ctx context.Context, st *store.Store) (*digest.Dispatcher, error) {
	cfg := config.Get()
	if cfg.Email.From == "" {
		return nil, fmt.Errorf("sender address is required (set FROM_EMAIL)")
	}

	renderer, err := email.NewRenderer(cfg.App.BaseURL, categories.Default())
	if err != nil {
		return nil, err
	}
	mailer, err := mail.NewSESMailer(ctx, cfg.Email.From, cfg.Email.Region,
		cfg.Email.AccessKey, cfg.Email.SecretKey)
	if err != nil {
		return nil, err
	}
	return digest.NewDispatcher(st, renderer, mailer, logger.With("dispatch")), nil
}
