// Package trends groups freshly collected feed items into candidate
// trending topics via keyword-overlap similarity.
package trends

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"trendpress/internal/classify"
	"trendpress/internal/core"
)

const (
	// DefaultWindow is the trailing window outside which items are discarded.
	DefaultWindow = 24 * time.Hour
	// DefaultTopN caps the number of topics returned by one clustering run.
	DefaultTopN = 10
	// clusterKeySize is how many distinct title tokens form a cluster key.
	clusterKeySize = 4
	// minSharedTokens is how many key tokens an item must share with an
	// existing cluster to join it.
	minSharedTokens = 2
	// minDistinctSources is the promotion floor for a cluster.
	minDistinctSources = 2
)

// Clusterer turns a flat feed-item list into trending topics.
type Clusterer struct {
	window time.Duration
	topN   int
	now    func() time.Time
}

// NewClusterer creates a clusterer with the given trailing window and topic
// cap. Non-positive arguments fall back to the defaults.
func NewClusterer(window time.Duration, topN int) *Clusterer {
	if window <= 0 {
		window = DefaultWindow
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Clusterer{window: window, topN: topN, now: time.Now}
}

// cluster is an open cluster during one run.
type cluster struct {
	topic       core.TrendingTopic
	key         []string
	sourceNames map[string]bool
}

// Cluster groups items into trending topics. The policy is deliberately
// greedy and order-dependent: an item joins the first existing cluster whose
// key shares at least two of its title tokens, never the best one. Items
// older than the window and items whose titles yield no tokens are excluded.
// Only clusters with at least two distinct contributing sources are
// promoted; output is sorted by source count descending and truncated to the
// configured top-N.
func (c *Clusterer) Cluster(items []core.FeedItem) []core.TrendingTopic {
	cutoff := c.now().Add(-c.window)
	seenLinks := make(map[string]bool)
	var clusters []*cluster

	for _, item := range items {
		if item.Link == "" || seenLinks[item.Link] {
			continue
		}
		seenLinks[item.Link] = true

		if effectiveTime(item).Before(cutoff) {
			continue
		}

		tokens := classify.Tokenize(item.Title, 3)
		if len(tokens) == 0 {
			continue
		}
		tokenSet := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			tokenSet[tok] = true
		}

		// First match wins, in cluster creation order.
		var joined bool
		for _, cl := range clusters {
			if sharedTokens(cl.key, tokenSet) >= minSharedTokens {
				cl.append(item)
				joined = true
				break
			}
		}
		if joined {
			continue
		}

		cl := &cluster{
			topic: core.TrendingTopic{
				Title:       item.Title,
				FirstSeenAt: effectiveTime(item),
			},
			key:         clusterKey(tokens),
			sourceNames: make(map[string]bool),
		}
		cl.append(item)
		clusters = append(clusters, cl)
	}

	var topics []core.TrendingTopic
	for _, cl := range clusters {
		if len(cl.sourceNames) >= minDistinctSources {
			topics = append(topics, cl.topic)
		}
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return len(topics[i].Sources) > len(topics[j].Sources)
	})
	if len(topics) > c.topN {
		topics = topics[:c.topN]
	}
	return topics
}

// append adds an item's source to the cluster, skipping sources whose
// normalized name is already present, and pulls FirstSeenAt back if the item
// is older.
func (cl *cluster) append(item core.FeedItem) {
	name := strings.ToLower(strings.TrimSpace(item.SourceName))
	if name == "" || cl.sourceNames[name] {
		return
	}
	cl.sourceNames[name] = true
	cl.topic.Sources = append(cl.topic.Sources, SourceFromItem(item))

	if t := effectiveTime(item); t.Before(cl.topic.FirstSeenAt) {
		cl.topic.FirstSeenAt = t
	}
}

// clusterKey takes the first clusterKeySize distinct tokens sorted
// lexicographically.
func clusterKey(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var distinct []string
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			distinct = append(distinct, tok)
		}
	}
	if len(distinct) > clusterKeySize {
		distinct = distinct[:clusterKeySize]
	}
	sort.Strings(distinct)
	return distinct
}

func sharedTokens(key []string, tokenSet map[string]bool) int {
	shared := 0
	for _, tok := range key {
		if tokenSet[tok] {
			shared++
		}
	}
	return shared
}

// effectiveTime is the item's publication time, or the collection time when
// the feed omitted a date.
func effectiveTime(item core.FeedItem) time.Time {
	if item.Published.IsZero() {
		return item.DateCollected
	}
	return item.Published
}

// SourceFromItem builds the Source record a feed item contributes to a
// topic. IDs are deterministic over the normalized source name so the same
// publication maps to the same Source within one run.
func SourceFromItem(item core.FeedItem) core.Source {
	name := strings.TrimSpace(item.SourceName)
	return core.Source{
		ID:      uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(name))).String(),
		Name:    name,
		URL:     item.Link,
		Favicon: faviconURL(item.Link),
	}
}

// faviconURL derives a favicon location from the item link's host.
func faviconURL(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	return "https://www.google.com/s2/favicons?domain=" + parsed.Hostname()
}

// SeedTopics returns the fixed fallback list used when a clustering run
// yields nothing, keeping downstream stages runnable.
func SeedTopics() []core.TrendingTopic {
	seeds := []struct {
		title   string
		sources []core.Source
	}{
		{
			title: "AI tools are reshaping creative design workflows",
			sources: []core.Source{
				editorialSource("Design Desk", "https://trendpress.dev/desk/design"),
				editorialSource("AI Desk", "https://trendpress.dev/desk/ai"),
			},
		},
		{
			title: "Short-form video keeps rewriting the creator playbook",
			sources: []core.Source{
				editorialSource("Social Desk", "https://trendpress.dev/desk/social"),
				editorialSource("Creator Desk", "https://trendpress.dev/desk/creator"),
			},
		},
		{
			title: "Brand identity refreshes dominate this week's launches",
			sources: []core.Source{
				editorialSource("Brand Desk", "https://trendpress.dev/desk/brand"),
				editorialSource("Design Desk", "https://trendpress.dev/desk/design"),
			},
		},
	}

	topics := make([]core.TrendingTopic, 0, len(seeds))
	now := time.Now().UTC()
	for _, s := range seeds {
		topics = append(topics, core.TrendingTopic{
			Title:       s.title,
			Sources:     s.sources,
			FirstSeenAt: now,
		})
	}
	return topics
}

func editorialSource(name, url string) core.Source {
	return core.Source{
		ID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(name))).String(),
		Name: name,
		URL:  url,
	}
}
