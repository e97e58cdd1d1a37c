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

// NewCrawlCmd creates the content extraction command.
func NewCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Fill in article bodies through the crawling delegate",
		Long: `Find content rows whose body is still empty and crawl each article URL
through the Apify website-content-crawler actor. Failures bump a per-row
attempt counter; rows that keep failing are quarantined after the
configured number of attempts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			extractor, err := newExtractor(st)
			if err != nil {
				return err
			}
			report, err := extractor.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Crawl: %d pending, %d filled, %d failed\n",
				report.Pending, report.Filled, report.Failed)
			return nil
		},
	}
}
