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

// NewAnalyzeCmd creates the enrichment command.
func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Derive summaries, categories and scores for crawled articles",
		Long: `Run the enrichment passes over every crawled article that is still
missing a derived field: article and comment summaries, taxonomy
categories, the base score set, and finally the summary confidence
score for rows whose summary and scores are both committed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			engine, err := newEngine(cmd.Context(), st)
			if err != nil {
				return err
			}
			report, err := engine.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Analyze: %d summaries, %d categories, %d scores, %d confidence, %d failed\n",
				report.Summaries, report.Categories, report.Scores, report.Confidence, report.Failed)
			return nil
		},
	}
}
