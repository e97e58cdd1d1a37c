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

// NewIngestCmd creates the source fetching command.
func NewIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Fetch top stories and comment trees from Hacker News",
		Long: `Pull the current top story ids from the Hacker News API, fetch each
unseen story together with its comment tree, and insert one item and
one content row per story. Already-known stories are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := newFetcher(st).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Ingest: %d processed, %d inserted, %d skipped, %d failed\n",
				report.Processed, report.Inserted, report.Skipped, report.Failed)
			return nil
		},
	}
}
