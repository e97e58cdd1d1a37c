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
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"skim/internal/categories"
	"skim/internal/core"
)

// NewSubscriberCmd creates the subscriber management command.
func NewSubscriberCmd() *cobra.Command {
	subscriberCmd := &cobra.Command{
		Use:   "subscriber",
		Short: "Manage digest subscribers",
	}

	subscriberCmd.AddCommand(newSubscriberAddCmd())
	subscriberCmd.AddCommand(newSubscriberListCmd())
	subscriberCmd.AddCommand(newSubscriberCategoriesCmd())

	return subscriberCmd
}

func newSubscriberAddCmd() *cobra.Command {
	var interests string
	var cats []string

	addCmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Add a subscriber with selected categories and interest text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taxonomy := categories.Default()
			for _, slug := range cats {
				if categories.BySlug(slug, taxonomy) == nil {
					return fmt.Errorf("unknown category %q (see 'skim subscriber categories')", slug)
				}
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			sub := core.Subscriber{
				ID:         uuid.New().String(),
				Email:      args[0],
				Interests:  interests,
				Categories: cats,
				Active:     true,
				CreatedAt:  time.Now().UTC(),
			}
			if err := st.AddSubscriber(cmd.Context(), sub); err != nil {
				return err
			}
			fmt.Printf("Added subscriber %s (%s)\n", sub.Email, sub.ID)
			return nil
		},
	}

	addCmd.Flags().StringVar(&interests, "interests", "", "free-text interest description used for relevance scoring")
	addCmd.Flags().StringSliceVar(&cats, "categories", nil, "category slugs to match against (comma separated)")
	return addCmd
}

func newSubscriberListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			subs, err := st.ListSubscribers(cmd.Context())
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				fmt.Println("No subscribers.")
				return nil
			}
			for _, sub := range subs {
				status := "active"
				if !sub.Active {
					status = "inactive"
				}
				fmt.Printf("%s  %s  [%s]  categories: %s\n",
					sub.ID, sub.Email, status, strings.Join(sub.Categories, ", "))
			}
			return nil
		},
	}
}

func newSubscriberCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category taxonomy subscribers can select from",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, cat := range categories.Default() {
				fmt.Printf("%-32s %s\n", cat.Slug, cat.Title)
			}
			return nil
		},
	}
}
