// Package feeds fetches and parses external content feeds into a flat list
// of raw feed items.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"trendpress/internal/core"
	"trendpress/internal/logger"
)

const (
	// DefaultUserAgent identifies the collector to feed endpoints.
	DefaultUserAgent = "Trendpress/1.0 (+https://trendpress.dev)"
	// DefaultTimeout bounds a single feed fetch.
	DefaultTimeout = 15 * time.Second
	// maxDescriptionLen caps item descriptions after HTML stripping.
	maxDescriptionLen = 500
)

// Descriptor names one external feed endpoint.
type Descriptor struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Collector fetches all configured feeds concurrently and returns the union
// of whatever succeeded. A single feed's failure degrades to zero items from
// that feed, never to a batch failure.
type Collector struct {
	descriptors []Descriptor
	client        *http.Client
	parser        *gofeed.Parser
	userAgent     string
	timeout       time.Duration
	maxItems      int
	maxConcurrent int
	log           *slog.Logger
}

// Options configures a Collector.
type Options struct {
	UserAgent       string
	Timeout         time.Duration
	MaxItemsPerFeed int // 0 = no limit
	MaxConcurrent   int // 0 = all feeds at once
}

// NewCollector creates a collector over the given feed descriptors.
func NewCollector(descriptors []Descriptor, opts Options) *Collector {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Collector{
		descriptors:   descriptors,
		client:        &http.Client{Timeout: opts.Timeout},
		parser:        gofeed.NewParser(),
		userAgent:     opts.UserAgent,
		timeout:       opts.Timeout,
		maxItems:      opts.MaxItemsPerFeed,
		maxConcurrent: opts.MaxConcurrent,
		log:           logger.Get(),
	}
}

// Stats summarizes one collection run.
type Stats struct {
	FeedsFetched int
	FeedsFailed  int
	Items        int
	Duplicates   int
	Errors       []error
}

// Collect fetches every configured feed concurrently, each under its own
// timeout, and returns the deduplicated union of all items. Partial success
// is the normal case; an empty descriptor list yields an empty result.
func (c *Collector) Collect(ctx context.Context) ([]core.FeedItem, Stats) {
	stats := Stats{}
	perFeed := make([][]core.FeedItem, len(c.descriptors))

	limit := c.maxConcurrent
	if limit <= 0 {
		limit = len(c.descriptors)
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, desc := range c.descriptors {
		wg.Add(1)
		go func(i int, desc Descriptor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := c.fetchFeed(ctx, desc)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.FeedsFailed++
				stats.Errors = append(stats.Errors, fmt.Errorf("feed %s: %w", desc.Name, err))
				c.log.Warn("feed fetch failed", "feed", desc.Name, "error", err.Error())
				return
			}
			stats.FeedsFetched++
			perFeed[i] = items
		}(i, desc)
	}
	wg.Wait()

	// Merge in descriptor order so dedup is deterministic.
	seen := make(map[string]bool)
	var merged []core.FeedItem
	for _, items := range perFeed {
		for _, item := range items {
			if seen[item.Link] {
				stats.Duplicates++
				continue
			}
			seen[item.Link] = true
			merged = append(merged, item)
		}
	}
	stats.Items = len(merged)

	c.log.Info("collection completed",
		"feeds_fetched", stats.FeedsFetched,
		"feeds_failed", stats.FeedsFailed,
		"items", stats.Items,
		"duplicates", stats.Duplicates,
	)
	return merged, stats
}

// fetchFeed fetches and parses one feed under its own timeout. Malformed
// individual items are skipped, not propagated.
func (c *Collector) fetchFeed(ctx context.Context, desc Descriptor) ([]core.FeedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, desc.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	parsed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	now := time.Now().UTC()
	var items []core.FeedItem
	for _, raw := range parsed.Items {
		if raw == nil || raw.Title == "" || raw.Link == "" {
			continue
		}

		var published time.Time
		if raw.PublishedParsed != nil {
			published = raw.PublishedParsed.UTC()
		} else if raw.UpdatedParsed != nil {
			published = raw.UpdatedParsed.UTC()
		}

		items = append(items, core.FeedItem{
			ID:            itemID(raw.Link),
			Title:         strings.TrimSpace(raw.Title),
			Link:          raw.Link,
			Description:   cleanDescription(raw.Description),
			Published:     published,
			SourceName:    desc.Name,
			DateCollected: now,
		})
		if c.maxItems > 0 && len(items) >= c.maxItems {
			break
		}
	}
	return items, nil
}

// itemID creates a deterministic ID for a feed item from its link.
func itemID(link string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
}

// cleanDescription strips HTML markup from a feed item description and caps
// its length. Feeds routinely ship markup in summaries.
func cleanDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ""
	}
	if strings.Contains(desc, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc)); err == nil {
			desc = doc.Text()
		}
	}
	desc = strings.Join(strings.Fields(desc), " ")
	if len(desc) > maxDescriptionLen {
		desc = desc[:maxDescriptionLen]
	}
	return desc
}
