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
	"trendpress/internal/feeds"
)

// NewFeedsCmd creates the feed-list inspection command.
func NewFeedsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "List the configured content feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			descriptors := feeds.DefaultDescriptors
			origin := "built-in"
			if cfg.Feeds.File != "" {
				loaded, err := feeds.LoadDescriptors(cfg.Feeds.File)
				if err != nil {
					return err
				}
				descriptors = loaded
				origin = cfg.Feeds.File
			}

			fmt.Printf("%d feeds (%s):\n", len(descriptors), origin)
			for _, d := range descriptors {
				fmt.Printf("  %-20s %s\n", d.Name, d.URL)
			}
			return nil
		},
	}
	return cmd
}
