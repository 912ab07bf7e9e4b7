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
	"time"

	"github.com/spf13/cobra"

	"trendpress/internal/classify"
	"trendpress/internal/config"
	"trendpress/internal/feeds"
	"trendpress/internal/llm"
	"trendpress/internal/logger"
	"trendpress/internal/pipeline"
	"trendpress/internal/store"
	"trendpress/internal/trends"
)

// NewRunCmd creates the full-pipeline command.
func NewRunCmd() *cobra.Command {
	var briefs bool
	var topN int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: collect, cluster, classify, generate, persist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			ctx := cmd.Context()

			if cmd.Flags().Changed("top-n") {
				cfg.Trends.TopN = topN
			}
			if cmd.Flags().Changed("briefs") {
				cfg.Pipeline.Briefs = briefs
			}

			collector, err := buildCollector(cfg)
			if err != nil {
				return err
			}
			clusterer := trends.NewClusterer(
				config.Duration(cfg.Trends.Window, trends.DefaultWindow),
				cfg.Trends.TopN,
			)

			// A missing credential degrades the model tier and generation
			// off; the keyword tier and quick-tier assembly keep running.
			var generator pipeline.Generator
			var modelTier classify.ModelClassifier
			client, err := llm.NewClient(ctx, cfg.AI.Gemini.Model,
				config.Duration(cfg.AI.Gemini.Timeout, llm.DefaultTimeout))
			if err != nil {
				logger.Warn("generation service unavailable, running keyword-only", "reason", err.Error())
			} else {
				defer client.Close()
				generator = client
				modelTier = client
			}

			classifier := buildClassifier(cfg, modelTier)

			st, err := store.NewStore(cfg.App.DataDir)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer func() { _ = st.Close() }()

			wanted, err := wantedCategories(cfg)
			if err != nil {
				return err
			}

			p := pipeline.New(collector, clusterer, classifier, generator, st, pipeline.Config{
				GenerateDelay: config.Duration(cfg.Pipeline.GenerateDelay, time.Second),
				Wanted:        wanted,
				MinConfidence: cfg.Pipeline.MinConfidence,
				Briefs:        cfg.Pipeline.Briefs,
				SeedsOn:       cfg.Trends.SeedsOn,
			})

			result, err := p.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Collected %d items, %d topics (%d skipped)\n",
				result.ItemsCollected, result.TopicsFound, result.TopicsSkipped)
			if result.UsedSeeds {
				fmt.Println("No live topics found; used seed topics.")
			}
			fmt.Printf("Saved %d articles and %d briefs", result.ArticlesSaved, result.BriefsSaved)
			if n := len(result.Errors); n > 0 {
				fmt.Printf(" (%d degraded items)", n)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().BoolVar(&briefs, "briefs", false, "also generate a creative brief per topic")
	cmd.Flags().IntVar(&topN, "top-n", trends.DefaultTopN, "maximum trending topics to keep")
	return cmd
}

// buildCollector creates the feed collector from config, preferring an
// external feed file when one is configured.
func buildCollector(cfg *config.Config) (*feeds.Collector, error) {
	descriptors := feeds.DefaultDescriptors
	if cfg.Feeds.File != "" {
		loaded, err := feeds.LoadDescriptors(cfg.Feeds.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load feed file: %w", err)
		}
		descriptors = loaded
	}
	return feeds.NewCollector(descriptors, feeds.Options{
		UserAgent:       cfg.Feeds.UserAgent,
		Timeout:         config.Duration(cfg.Feeds.Timeout, feeds.DefaultTimeout),
		MaxItemsPerFeed: cfg.Feeds.MaxItemsPerFeed,
	}), nil
}

// buildClassifier creates the two-tier classifier from config. A nil model
// tier runs keyword-only.
func buildClassifier(cfg *config.Config, model classify.ModelClassifier) *classify.Classifier {
	opts := []classify.Option{
		classify.WithThreshold(cfg.Classify.Threshold),
		classify.WithCallDelay(config.Duration(cfg.Classify.CallDelay, 500*time.Millisecond)),
	}
	if model != nil {
		opts = append(opts, classify.WithModel(model))
	}
	return classify.NewClassifier(opts...)
}

// wantedCategories validates the configured relevance filter against the
// taxonomy so typos fail at startup instead of silently filtering nothing.
func wantedCategories(cfg *config.Config) ([]classify.Category, error) {
	var wanted []classify.Category
	for _, name := range cfg.Pipeline.WantedCategories {
		cat, ok := classify.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown category in pipeline.wanted_categories: %q", name)
		}
		wanted = append(wanted, cat)
	}
	return wanted, nil
}
