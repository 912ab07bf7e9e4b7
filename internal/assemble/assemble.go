// Package assemble turns generation-service responses plus allocated
// citations into the final persisted article and brief records.
package assemble

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"trendpress/internal/citations"
	"trendpress/internal/core"
	"trendpress/internal/llm"
)

// maxSourceCards bounds the "source card" rail built for UI consumption.
const maxSourceCards = 6

// maxSlugLen caps generated slugs.
const maxSlugLen = 80

// Slugify converts a title to a stable URL slug: lowercased, with runs of
// non-alphanumeric characters collapsed to single hyphens, trimmed, and
// length-capped. Already-slugged input is a fixed point.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimSuffix(slug[:maxSlugLen], "-")
	}
	return slug
}

// deriveTier fixes an article's tier from which upstream fields are present
// at assembly time: full section text wins over a short summary, which wins
// over nothing. The result is immutable history, never recomputed.
func deriveTier(sections []core.Section, summary string) core.Tier {
	for _, sec := range sections {
		for _, p := range sec.Paragraphs {
			if strings.TrimSpace(p.Content) != "" {
				return core.TierFeatured
			}
		}
	}
	if strings.TrimSpace(summary) != "" {
		return core.TierSummary
	}
	return core.TierQuick
}

// sourceCards returns the first maxSourceCards distinct sources.
func sourceCards(sources []core.Source) []core.Source {
	seen := make(map[string]bool, len(sources))
	var cards []core.Source
	for _, s := range sources {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		cards = append(cards, s)
		if len(cards) == maxSourceCards {
			break
		}
	}
	return cards
}

// Article assembles the final article record for a trending topic from a
// generation response. The response's paragraphs are flattened in document
// order and run through the citation allocator against the topic's source
// pool; a nil response produces a quick-tier article carrying only the topic
// itself.
func Article(topic core.TrendingTopic, classification core.ClassificationResult, resp *llm.ArticleResponse, now time.Time) core.Article {
	title := topic.Title
	summary := ""
	var sections []core.Section

	if resp != nil {
		if resp.Title != "" {
			title = resp.Title
		}
		summary = resp.Summary
		sections = buildSections(resp, topic.Sources)
	}

	article := core.Article{
		ID:          uuid.NewString(),
		Slug:        Slugify(title),
		Title:       title,
		Category:    classification.Category,
		Tier:        deriveTier(sections, summary),
		Summary:     summary,
		Sections:    sections,
		SourceCards: sourceCards(topic.Sources),
		AllSources:  topic.Sources,
		GeneratedAt: now,
		PublishedAt: now,
	}
	return article
}

// buildSections flattens the response's paragraphs, allocates citations
// over the topic source pool, and reshapes everything back into sections.
func buildSections(resp *llm.ArticleResponse, pool []core.Source) []core.Section {
	var preferred [][]string
	for _, sec := range resp.Sections {
		for _, p := range sec.Paragraphs {
			preferred = append(preferred, p.SourceIDs)
		}
	}
	assigned := citations.Allocate(pool, preferred)

	sections := make([]core.Section, 0, len(resp.Sections))
	flat := 0
	for i, sec := range resp.Sections {
		section := core.Section{Heading: sec.Heading}
		for j, p := range sec.Paragraphs {
			paragraph := core.Paragraph{
				ID:      fmt.Sprintf("s%d-p%d", i+1, j+1),
				Content: p.Content,
			}
			if chip, ok := citations.Chip(assigned[flat]); ok {
				paragraph.Citations = []core.CitationChip{chip}
			}
			flat++
			section.Paragraphs = append(section.Paragraphs, paragraph)
		}
		sections = append(sections, section)
	}
	return sections
}

// Brief assembles a creative-brief record. A nil response (the generation
// service failed or returned invalid JSON) substitutes the deterministic
// template fallback derived purely from the title and category, so one bad
// item never aborts a batch.
func Brief(title string, classification core.ClassificationResult, sources []core.Source, resp *llm.BriefResponse, now time.Time) core.Article {
	var outline core.BriefOutline
	tier := core.TierSummary
	if resp != nil {
		outline = core.BriefOutline{
			Hooks:          resp.Hooks,
			PlatformTips:   resp.PlatformTips,
			VisualBoldness: clampBoldness(resp.VisualBoldness),
			Steps:          resp.Steps,
			Hashtags:       resp.Hashtags,
		}
	} else {
		outline = FallbackOutline(title, classification.Category)
		tier = core.TierQuick
	}

	return core.Article{
		ID: uuid.NewString(),
		// The -brief suffix keeps a topic's brief from clobbering the
		// article generated from the same title.
		Slug:        Slugify(title) + "-brief",
		Title:       title,
		Category:    classification.Category,
		Tier:        tier,
		Outline:     &outline,
		SourceCards: sourceCards(sources),
		AllSources:  sources,
		GeneratedAt: now,
		PublishedAt: now,
	}
}

// FallbackOutline builds the deterministic template brief used when the
// generation service's response fails validation. It depends only on the
// title and category.
func FallbackOutline(title, category string) core.BriefOutline {
	short := title
	if len(short) > 60 {
		short = strings.TrimSpace(short[:60])
	}
	return core.BriefOutline{
		Hooks: []string{
			fmt.Sprintf("Everyone in %s is talking about this: %s", category, short),
			fmt.Sprintf("What %q means for your next project", short),
			fmt.Sprintf("The %s story you shouldn't sleep on today", category),
		},
		PlatformTips: map[string]string{
			"tiktok":    "Open with the single most surprising fact in the first two seconds.",
			"instagram": "Lead with a bold visual; keep the caption to one takeaway.",
			"youtube":   "Frame it as a question in the title and answer it in the first minute.",
		},
		VisualBoldness: 5,
		Steps: []string{
			"Introduce the topic in one sentence",
			"Explain why it is trending right now",
			"Show one concrete example or use case",
			"Close with a question to the audience",
		},
		Hashtags: "#" + strings.ReplaceAll(Slugify(category), "-", " #") + " #trending",
	}
}

func clampBoldness(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
