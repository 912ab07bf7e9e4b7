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

	"github.com/spf13/cobra"

	"trendpress/internal/classify"
	"trendpress/internal/config"
	"trendpress/internal/search"
	"trendpress/internal/store"
)

// NewSearchCmd creates the read-path search command over persisted articles.
func NewSearchCmd() *cobra.Command {
	var category string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search previously generated articles by relevance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			query := strings.Join(args, " ")

			if category != "" {
				if _, ok := classify.ParseCategory(category); !ok {
					return fmt.Errorf("unknown category: %q", category)
				}
			}

			st, err := store.NewStore(cfg.App.DataDir)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer func() { _ = st.Close() }()

			corpus, err := st.ListSummaries()
			if err != nil {
				return fmt.Errorf("failed to load search corpus: %w", err)
			}

			maxResults := cfg.Search.MaxResults
			if cmd.Flags().Changed("limit") {
				maxResults = limit
			}
			engine := search.NewEngine(cfg.Search.MinScore, maxResults)
			results := engine.Search(query, category, corpus)

			if len(results) == 0 {
				fmt.Println("No matching articles.")
				return nil
			}
			for _, r := range results {
				fmt.Printf("%3d  %-18s %s\n", r.Score, r.Record.Category, r.Record.Title)
				fmt.Printf("     /%s\n", r.Record.Slug)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "restrict results to one taxonomy category")
	cmd.Flags().IntVar(&limit, "limit", search.DefaultMaxResults, "maximum results to return")
	return cmd
}
