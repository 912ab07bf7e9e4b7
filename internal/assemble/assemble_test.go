package assemble

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"trendpress/internal/core"
	"trendpress/internal/llm"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Best UI Design Tools 2024", "best-ui-design-tools-2024"},
		{"  What's *Next* for AI?!  ", "what-s-next-for-ai"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
		{"Caps AND   spaces", "caps-and-spaces"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{"Best UI Design Tools 2024", "What's Next?", strings.Repeat("word ", 40)}
	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestSlugifyLengthCap(t *testing.T) {
	long := strings.Repeat("verylongword ", 20)
	slug := Slugify(long)
	if len(slug) > 80 {
		t.Errorf("slug length = %d, want at most 80", len(slug))
	}
	if strings.HasSuffix(slug, "-") {
		t.Errorf("capped slug ends in a hyphen: %q", slug)
	}
}

func pool(n int) []core.Source {
	sources := make([]core.Source, n)
	for i := range sources {
		sources[i] = core.Source{ID: fmt.Sprintf("src-%d", i), Name: fmt.Sprintf("Source %d", i)}
	}
	return sources
}

func topic(n int) core.TrendingTopic {
	return core.TrendingTopic{
		Title:       "AI Design Tools Go Mainstream",
		Sources:     pool(n),
		FirstSeenAt: time.Now().UTC(),
	}
}

func classification() core.ClassificationResult {
	return core.ClassificationResult{Category: "design-ux", Confidence: 80, Method: core.MethodKeyword}
}

func TestArticleFullResponseIsFeatured(t *testing.T) {
	resp := &llm.ArticleResponse{
		Title:   "AI Design Tools Go Mainstream",
		Summary: "Adoption accelerates.",
		Sections: []llm.SectionResponse{
			{Heading: "What happened", Paragraphs: []llm.ParagraphResponse{
				{Content: "First paragraph.", SourceIDs: []string{"src-1"}},
				{Content: "Second paragraph."},
			}},
			{Heading: "Why it matters", Paragraphs: []llm.ParagraphResponse{
				{Content: "Third paragraph."},
			}},
		},
	}

	now := time.Now().UTC()
	article := Article(topic(6), classification(), resp, now)

	if article.Tier != core.TierFeatured {
		t.Errorf("tier = %s, want %s", article.Tier, core.TierFeatured)
	}
	if article.Slug != "ai-design-tools-go-mainstream" {
		t.Errorf("slug = %q", article.Slug)
	}
	if article.Category != "design-ux" {
		t.Errorf("category = %q", article.Category)
	}
	if len(article.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(article.Sections))
	}
	if article.Sections[0].Paragraphs[0].ID != "s1-p1" || article.Sections[1].Paragraphs[0].ID != "s2-p1" {
		t.Errorf("paragraph ids wrong: %s, %s",
			article.Sections[0].Paragraphs[0].ID, article.Sections[1].Paragraphs[0].ID)
	}
	if !article.GeneratedAt.Equal(now) || !article.PublishedAt.Equal(now) {
		t.Errorf("timestamps not set from assembly time")
	}
}

func TestArticleCitationsHonorPreferencesAndFairness(t *testing.T) {
	resp := &llm.ArticleResponse{
		Title: "Topic",
		Sections: []llm.SectionResponse{
			{Heading: "A", Paragraphs: []llm.ParagraphResponse{
				{Content: "One.", SourceIDs: []string{"src-3"}},
				{Content: "Two."},
				{Content: "Three."},
			}},
		},
	}

	article := Article(topic(6), classification(), resp, time.Now().UTC())

	var primaries []string
	for _, sec := range article.Sections {
		for _, p := range sec.Paragraphs {
			if len(p.Citations) != 1 {
				t.Fatalf("paragraph %s has %d chips, want 1", p.ID, len(p.Citations))
			}
			primaries = append(primaries, p.Citations[0].PrimarySource.ID)
		}
	}
	if primaries[0] != "src-3" {
		t.Errorf("first paragraph primary = %s, want its preferred src-3", primaries[0])
	}
	seen := make(map[string]bool)
	for _, id := range primaries {
		if seen[id] {
			t.Errorf("primary %s repeated although the pool covers all paragraphs", id)
		}
		seen[id] = true
	}
}

func TestArticleNilResponseIsQuickTier(t *testing.T) {
	tp := topic(3)
	article := Article(tp, classification(), nil, time.Now().UTC())

	if article.Tier != core.TierQuick {
		t.Errorf("tier = %s, want %s", article.Tier, core.TierQuick)
	}
	if article.Title != tp.Title {
		t.Errorf("title should fall back to the topic title, got %q", article.Title)
	}
	if len(article.Sections) != 0 || article.Summary != "" {
		t.Errorf("quick-tier article should carry no generated body")
	}
	if len(article.AllSources) != 3 {
		t.Errorf("topic sources must still be carried, got %d", len(article.AllSources))
	}
}

func TestArticleSummaryOnlyIsSummaryTier(t *testing.T) {
	resp := &llm.ArticleResponse{Title: "Topic", Summary: "Short take."}
	article := Article(topic(2), classification(), resp, time.Now().UTC())

	if article.Tier != core.TierSummary {
		t.Errorf("tier = %s, want %s", article.Tier, core.TierSummary)
	}
}

func TestSourceCardsCapped(t *testing.T) {
	article := Article(topic(9), classification(), nil, time.Now().UTC())
	if len(article.SourceCards) != 6 {
		t.Errorf("got %d source cards, want cap at 6", len(article.SourceCards))
	}
	if len(article.AllSources) != 9 {
		t.Errorf("AllSources must keep the full pool, got %d", len(article.AllSources))
	}
}

func TestBriefFromResponse(t *testing.T) {
	resp := &llm.BriefResponse{
		Hooks:          []string{"hook one", "hook two"},
		PlatformTips:   map[string]string{"tiktok": "open strong"},
		VisualBoldness: 15,
		Steps:          []string{"step one"},
		Hashtags:       "#design",
	}

	brief := Brief("AI Design Tools Go Mainstream", classification(), pool(3), resp, time.Now().UTC())

	if brief.Slug != "ai-design-tools-go-mainstream-brief" {
		t.Errorf("brief slug = %q, want the -brief suffix", brief.Slug)
	}
	if brief.Tier != core.TierSummary {
		t.Errorf("tier = %s, want %s", brief.Tier, core.TierSummary)
	}
	if brief.Outline == nil {
		t.Fatal("brief outline missing")
	}
	if brief.Outline.VisualBoldness != 10 {
		t.Errorf("boldness = %d, want clamp to 10", brief.Outline.VisualBoldness)
	}
	if len(brief.Outline.Hooks) != 2 {
		t.Errorf("hooks not carried through: %v", brief.Outline.Hooks)
	}
}

func TestBriefNilResponseUsesFallback(t *testing.T) {
	brief := Brief("AI Design Tools Go Mainstream", classification(), pool(2), nil, time.Now().UTC())

	if brief.Tier != core.TierQuick {
		t.Errorf("tier = %s, want %s", brief.Tier, core.TierQuick)
	}
	if brief.Outline == nil || len(brief.Outline.Hooks) != 3 {
		t.Fatalf("fallback outline missing or incomplete: %+v", brief.Outline)
	}
	if brief.Outline.VisualBoldness != 5 {
		t.Errorf("fallback boldness = %d, want 5", brief.Outline.VisualBoldness)
	}
}

func TestFallbackOutlineDeterministic(t *testing.T) {
	a := FallbackOutline("Some Trending Topic", "design-ux")
	b := FallbackOutline("Some Trending Topic", "design-ux")
	if !reflect.DeepEqual(a, b) {
		t.Error("fallback outline must be deterministic for the same input")
	}
	if a.Hashtags != "#design #ux #trending" {
		t.Errorf("hashtags = %q", a.Hashtags)
	}
	if len(a.PlatformTips) != 3 {
		t.Errorf("got %d platform tips, want 3", len(a.PlatformTips))
	}
}
