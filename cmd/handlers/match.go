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

// NewMatchCmd creates the subscriber matching command.
func NewMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match",
		Short: "Pair analyzed articles with subscriber interests",
		Long: `Evaluate every new (subscriber, article) pair: intersect the article's
categories with the subscriber's selected set, score relevance against
the subscriber's interest text, and record the result. Pairs with no
overlap are recorded too so they are never evaluated twice.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			m, err := newMatcher(cmd.Context(), st)
			if err != nil {
				return err
			}
			report, err := m.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Match: %d pairs, %d matched, %d empty, %d skipped\n",
				report.Pairs, report.Matched, report.Empty, report.Skipped)
			return nil
		},
	}
}
