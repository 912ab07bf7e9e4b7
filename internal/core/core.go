// Package core defines the shared data model for the trendpress pipeline.
package core

import "time"

// FeedItem represents a single entry discovered in an external feed.
// Identity is the Link: two items with the same link are the same story.
type FeedItem struct {
	ID            string    `json:"id"`             // Deterministic identifier derived from the link
	Title         string    `json:"title"`          // Item headline
	Link          string    `json:"link"`           // Item URL; canonical dedup key
	Description   string    `json:"description"`    // Optional plain-text summary from the feed
	Published     time.Time `json:"published"`      // Publication timestamp (zero if the feed omitted it)
	SourceName    string    `json:"source_name"`    // Name of the feed the item came from
	DateCollected time.Time `json:"date_collected"` // When the collector saw the item
}

// Source represents an attributable publication referenced by paragraphs.
// Identity is the normalized (lowercased) Name within one generation run.
type Source struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Favicon string `json:"favicon,omitempty"`
}

// TrendingTopic is a cluster of corroborating feed items sharing keyword
// overlap. It is only ever mutated by appending sources during clustering.
type TrendingTopic struct {
	Title       string    `json:"title"`         // Title of the item that seeded the cluster
	Sources     []Source  `json:"sources"`       // Distinct corroborating sources, in discovery order
	FirstSeenAt time.Time `json:"first_seen_at"` // Earliest publication time among contributing items
}

// ClassificationResult records a single taxonomy assignment. Never mutated
// after creation.
type ClassificationResult struct {
	Category   string `json:"category"`
	Confidence int    `json:"confidence"` // Always in [0,100]
	Method     string `json:"method"`     // "keyword" or "model"
	Reasoning  string `json:"reasoning,omitempty"`
}

// Classification method values.
const (
	MethodKeyword = "keyword"
	MethodModel   = "model"
)

// CitationChip is the per-paragraph attribution unit: one primary source
// plus a count of additional corroborating sources.
type CitationChip struct {
	PrimarySource     Source   `json:"primary_source"`
	AdditionalCount   int      `json:"additional_count"`
	AdditionalSources []Source `json:"additional_sources,omitempty"`
}

// Paragraph is a unit of generated article body text. Citations reference
// sources by id; they do not own them.
type Paragraph struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Citations []CitationChip `json:"citations,omitempty"`
}

// Section groups paragraphs under a heading within an article.
type Section struct {
	Heading    string      `json:"heading"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Tier reflects how much upstream content was available when an article was
// assembled. It is derived exactly once and never recomputed.
type Tier string

const (
	TierFeatured Tier = "featured" // Full generated sections were available
	TierSummary  Tier = "summary"  // Only a short generated summary was available
	TierQuick    Tier = "quick"    // Nothing beyond the topic itself was available
)

// BriefOutline is the fixed schema used for creative briefs in place of
// article sections.
type BriefOutline struct {
	Hooks          []string          `json:"hooks"`
	PlatformTips   map[string]string `json:"platform_tips"`
	VisualBoldness int               `json:"visual_boldness"` // 1-10
	Steps          []string          `json:"steps"`
	Hashtags       string            `json:"hashtags"`
}

// Article is the pipeline's terminal artifact: a fully assembled, cited
// article or creative brief.
type Article struct {
	ID          string        `json:"id"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Category    string        `json:"category"`
	Tier        Tier          `json:"tier"`
	Summary     string        `json:"summary,omitempty"`
	Sections    []Section     `json:"sections,omitempty"`
	Outline     *BriefOutline `json:"outline,omitempty"`
	SourceCards []Source      `json:"source_cards"` // Bounded rail for UI consumption (first 6 distinct)
	AllSources  []Source      `json:"all_sources"`
	GeneratedAt time.Time     `json:"generated_at"`
	PublishedAt time.Time     `json:"published_at"`
}

// Manifest summarizes one generated record for catalog listing.
type Manifest struct {
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	PublishedAt     time.Time `json:"published_at"`
	TotalSources    int       `json:"total_sources"`
	SidebarSections []string  `json:"sidebar_sections"`
}

// SummaryRecord is the read-path projection of an Article used by the
// relevance search engine.
type SummaryRecord struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
}
