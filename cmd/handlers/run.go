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

	"github.com/spf13/cobra"
)

// NewRunCmd creates the full-pipeline command.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the whole pipeline: ingest, crawl, analyze, match, dispatch",
		Long: `Run every stage back to back. Because each stage discovers its own
pending work from the database, a stage failure stops the run but
leaves all committed progress in place for the next invocation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ingestReport, err := newFetcher(st).Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Ingest: %d processed, %d inserted, %d skipped, %d failed\n",
				ingestReport.Processed, ingestReport.Inserted, ingestReport.Skipped, ingestReport.Failed)

			extractor, err := newExtractor(st)
			if err != nil {
				return err
			}
			crawlReport, err := extractor.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Crawl: %d pending, %d filled, %d failed\n",
				crawlReport.Pending, crawlReport.Filled, crawlReport.Failed)

			engine, err := newEngine(ctx, st)
			if err != nil {
				return err
			}
			analyzeReport, err := engine.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Analyze: %d summaries, %d categories, %d scores, %d confidence, %d failed\n",
				analyzeReport.Summaries, analyzeReport.Categories, analyzeReport.Scores,
				analyzeReport.Confidence, analyzeReport.Failed)

			m, err := newMatcher(ctx, st)
			if err != nil {
				return err
			}
			matchReport, err := m.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Match: %d pairs, %d matched, %d empty, %d skipped\n",
				matchReport.Pairs, matchReport.Matched, matchReport.Empty, matchReport.Skipped)

			dispatcher, err := newDispatcher(ctx, st)
			if err != nil {
				return err
			}
			dispatchReport, err := dispatcher.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Dispatch: %d subscribers, %d digests sent (%d articles), %d failed\n",
				dispatchReport.Subscribers, dispatchReport.Sent, dispatchReport.Articles, dispatchReport.Failed)

			return nil
		},
	}
}
