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

// NewStatsCmd creates the pipeline statistics command.
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show pipeline state counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.GetStats()
			if err != nil {
				return err
			}
			fmt.Printf("Items:             %d\n", stats.Items)
			fmt.Printf("Crawled contents:  %d\n", stats.Crawled)
			fmt.Printf("Analyzed contents: %d\n", stats.Analyses)
			fmt.Printf("Subscribers:       %d\n", stats.Subscribers)
			fmt.Printf("Associations:      %d (%d unsent)\n", stats.Associations, stats.Unsent)
			fmt.Printf("Database size:     %d bytes\n", stats.Size)
			return nil
		},
	}
}
