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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"skim/internal/config"
	"skim/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all pipeline stages attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skim",
		Short: "Skim turns the Hacker News front page into personalized email digests.",
		Long: `Skim runs a multi-stage pipeline over a local SQLite database:

  ingest    pull top stories and their comment trees from Hacker News
  crawl     fill in article bodies through the crawling delegate
  analyze   derive summaries, categories and scores with the LLM
  match     pair analyzed articles with subscriber interests
  dispatch  send one digest email per subscriber with unsent matches

Each stage discovers its own pending work, so every command is safe to
re-run and a failed run picks up where it left off.`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.skim.yaml)")

	rootCmd.AddCommand(NewIngestCmd())
	rootCmd.AddCommand(NewCrawlCmd())
	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewMatchCmd())
	rootCmd.AddCommand(NewDispatchCmd())
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewSubscriberCmd())
	rootCmd.AddCommand(NewStatsCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in the config file and environment variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging.Level)
}
