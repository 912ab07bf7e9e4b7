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

	"trendpress/internal/config"
	"trendpress/internal/trends"
)

// NewTopicsCmd creates the collect-and-cluster inspection command.
func NewTopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Collect feeds and print the current trending topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			collector, err := buildCollector(cfg)
			if err != nil {
				return err
			}

			items, stats := collector.Collect(cmd.Context())
			fmt.Printf("Collected %d items from %d feeds (%d failed)\n\n",
				stats.Items, stats.FeedsFetched, stats.FeedsFailed)

			clusterer := trends.NewClusterer(
				config.Duration(cfg.Trends.Window, trends.DefaultWindow),
				cfg.Trends.TopN,
			)
			topics := clusterer.Cluster(items)
			if len(topics) == 0 {
				fmt.Println("No trending topics in the current window.")
				return nil
			}

			for i, topic := range topics {
				fmt.Printf("%2d. %s (%d sources, first seen %s)\n",
					i+1, topic.Title, len(topic.Sources),
					topic.FirstSeenAt.Format("2006-01-02 15:04"))
				for _, s := range topic.Sources {
					fmt.Printf("      - %s\n", s.Name)
				}
			}
			return nil
		},
	}
	return cmd
}
