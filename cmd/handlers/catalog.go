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

	"trendpress/internal/config"
	"trendpress/internal/store"
)

// NewCatalogCmd creates the manifest listing command.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the manifest of generated articles and briefs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			st, err := store.NewStore(cfg.App.DataDir)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer func() { _ = st.Close() }()

			manifests, err := st.ListManifest()
			if err != nil {
				return fmt.Errorf("failed to list manifest: %w", err)
			}
			if len(manifests) == 0 {
				fmt.Println("No generated articles yet. Run \"trendpress run\" first.")
				return nil
			}

			for _, m := range manifests {
				fmt.Printf("%s  %-40s  %2d sources  [%s]\n",
					m.PublishedAt.Format("2006-01-02"),
					m.Slug,
					m.TotalSources,
					strings.Join(m.SidebarSections, ", "),
				)
			}
			return nil
		},
	}
	return cmd
}
