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

// NewDispatchCmd creates the digest delivery command.
func NewDispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Send one digest email per subscriber with unsent matches",
		Long: `Assemble each active subscriber's unsent matched articles into a single
HTML digest, send it through Amazon SES, and mark every included
association sent. Nothing is marked when delivery fails, so the next
run retries the whole digest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			dispatcher, err := newDispatcher(cmd.Context(), st)
			if err != nil {
				return err
			}
			report, err := dispatcher.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Dispatch: %d subscribers, %d digests sent (%d articles), %d failed\n",
				report.Subscribers, report.Sent, report.Articles, report.Failed)
			return nil
		},
	}
}
