package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"trendpress/internal/classify"
	"trendpress/internal/core"
	"trendpress/internal/feeds"
	"trendpress/internal/llm"
	"trendpress/internal/trends"
)

type stubCollector struct {
	items []core.FeedItem
	stats feeds.Stats
}

func (s *stubCollector) Collect(ctx context.Context) ([]core.FeedItem, feeds.Stats) {
	return s.items, s.stats
}

type stubGenerator struct {
	articleResp *llm.ArticleResponse
	articleErr  error
	briefResp   *llm.BriefResponse
	briefErr    error

	articleCalls int
	briefCalls   int
}

func (s *stubGenerator) GenerateArticle(ctx context.Context, topic core.TrendingTopic) (*llm.ArticleResponse, error) {
	s.articleCalls++
	return s.articleResp, s.articleErr
}

func (s *stubGenerator) GenerateBrief(ctx context.Context, title, description, category string, sources []core.Source) (*llm.BriefResponse, error) {
	s.briefCalls++
	return s.briefResp, s.briefErr
}

type stubSaver struct {
	saved   []core.Article
	saveErr error
}

func (s *stubSaver) SaveArticle(article core.Article) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, article)
	return nil
}

// corroboratedItems yields one cluster with two distinct sources whose titles
// score high on the design-ux keyword tier.
func corroboratedItems() []core.FeedItem {
	now := time.Now().UTC()
	return []core.FeedItem{
		{
			Title:      "Figma Interface Design Typography Update",
			Link:       "https://a.example/1",
			SourceName: "Feed A",
			Published:  now.Add(-time.Hour),
		},
		{
			Title:      "Figma Interface Design Overhaul Detailed",
			Link:       "https://b.example/1",
			SourceName: "Feed B",
			Published:  now.Add(-time.Hour),
		},
	}
}

func validArticleResp() *llm.ArticleResponse {
	return &llm.ArticleResponse{
		Title:   "Figma Redesign Explained",
		Summary: "What changed and why.",
		Sections: []llm.SectionResponse{
			{Heading: "What happened", Paragraphs: []llm.ParagraphResponse{{Content: "Body."}}},
		},
	}
}

func newPipeline(collector Collector, generator Generator, saver Saver, config Config) *Pipeline {
	clusterer := trends.NewClusterer(trends.DefaultWindow, trends.DefaultTopN)
	classifier := classify.NewClassifier()
	return New(collector, clusterer, classifier, generator, saver, config)
}

func TestRunHappyPath(t *testing.T) {
	gen := &stubGenerator{articleResp: validArticleResp()}
	saver := &stubSaver{}
	p := newPipeline(&stubCollector{items: corroboratedItems()}, gen, saver, Config{})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ItemsCollected != 2 || result.TopicsFound != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.ArticlesSaved != 1 || len(saver.saved) != 1 {
		t.Fatalf("articles saved = %d", result.ArticlesSaved)
	}
	if gen.articleCalls != 1 {
		t.Errorf("generator called %d times, want 1", gen.articleCalls)
	}

	article := saver.saved[0]
	if article.Tier != core.TierFeatured {
		t.Errorf("tier = %s, want %s", article.Tier, core.TierFeatured)
	}
	if article.Category != "design-ux" {
		t.Errorf("category = %s, want design-ux", article.Category)
	}
	if len(article.Sections[0].Paragraphs[0].Citations) != 1 {
		t.Error("paragraph missing its citation chip")
	}
}

func TestRunGenerationFailureDegradesToQuickTier(t *testing.T) {
	gen := &stubGenerator{articleErr: errors.New("service unavailable")}
	saver := &stubSaver{}
	p := newPipeline(&stubCollector{items: corroboratedItems()}, gen, saver, Config{})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ArticlesSaved != 1 {
		t.Fatalf("degraded article not saved: %+v", result)
	}
	if saver.saved[0].Tier != core.TierQuick {
		t.Errorf("tier = %s, want %s", saver.saved[0].Tier, core.TierQuick)
	}
	if len(result.Errors) != 1 {
		t.Errorf("got %d errors, want the generation failure recorded", len(result.Errors))
	}
}

func TestRunNilGeneratorProducesQuickTier(t *testing.T) {
	saver := &stubSaver{}
	p := newPipeline(&stubCollector{items: corroboratedItems()}, nil, saver, Config{})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ArticlesSaved != 1 || saver.saved[0].Tier != core.TierQuick {
		t.Fatalf("nil generator should still save a quick-tier article: %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Errorf("nil generator is a degrade, not an error: %v", result.Errors)
	}
}

func TestRunSeedFallback(t *testing.T) {
	saver := &stubSaver{}
	p := newPipeline(&stubCollector{}, nil, saver, Config{SeedsOn: true})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.UsedSeeds {
		t.Error("empty collection should fall back to seeds")
	}
	if result.TopicsFound == 0 || result.ArticlesSaved == 0 {
		t.Errorf("seed topics should flow through the pipeline: %+v", result)
	}
}

func TestRunNoTopicsNoSeedsFails(t *testing.T) {
	p := newPipeline(&stubCollector{}, nil, &stubSaver{}, Config{SeedsOn: false})

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("empty run with seeds disabled must fail")
	}
}

func TestRunRelevanceFilterSkipsTopics(t *testing.T) {
	saver := &stubSaver{}
	p := newPipeline(&stubCollector{items: corroboratedItems()}, nil, saver, Config{
		Wanted: []classify.Category{classify.CategoryStartupBusiness},
	})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.TopicsSkipped != 1 || result.ArticlesSaved != 0 {
		t.Errorf("design-ux topic should be filtered out: %+v", result)
	}
}

func TestRunBriefsSavedAlongsideArticles(t *testing.T) {
	gen := &stubGenerator{
		articleResp: validArticleResp(),
		briefResp: &llm.BriefResponse{
			Hooks:          []string{"hook"},
			Steps:          []string{"step"},
			VisualBoldness: 6,
		},
	}
	saver := &stubSaver{}
	p := newPipeline(&stubCollector{items: corroboratedItems()}, gen, saver, Config{Briefs: true})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ArticlesSaved != 1 || result.BriefsSaved != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(saver.saved) != 2 {
		t.Fatalf("got %d saved records, want article plus brief", len(saver.saved))
	}

	brief := saver.saved[1]
	if brief.Outline == nil || brief.Outline.VisualBoldness != 6 {
		t.Errorf("brief outline not carried: %+v", brief.Outline)
	}
	if brief.Slug == saver.saved[0].Slug {
		t.Error("brief must not share the article's slug")
	}
}

func TestRunBriefFailureUsesFallbackTemplate(t *testing.T) {
	gen := &stubGenerator{
		articleResp: validArticleResp(),
		briefErr:    errors.New("bad json"),
	}
	saver := &stubSaver{}
	p := newPipeline(&stubCollector{items: corroboratedItems()}, gen, saver, Config{Briefs: true})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.BriefsSaved != 1 {
		t.Fatalf("fallback brief not saved: %+v", result)
	}
	brief := saver.saved[1]
	if brief.Tier != core.TierQuick || brief.Outline == nil || len(brief.Outline.Hooks) == 0 {
		t.Errorf("fallback brief malformed: tier=%s outline=%+v", brief.Tier, brief.Outline)
	}
	if len(result.Errors) != 1 {
		t.Errorf("brief failure should be recorded: %v", result.Errors)
	}
}

func TestRunSaveFailureRecorded(t *testing.T) {
	saver := &stubSaver{saveErr: errors.New("disk full")}
	p := newPipeline(&stubCollector{items: corroboratedItems()}, nil, saver, Config{})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ArticlesSaved != 0 || len(result.Errors) != 1 {
		t.Errorf("save failure should be recorded without aborting: %+v", result)
	}
}

func TestRunCollectorErrorsPropagateToResult(t *testing.T) {
	collector := &stubCollector{
		items: corroboratedItems(),
		stats: feeds.Stats{FeedsFailed: 1, Errors: []error{errors.New("feed X: status 500")}},
	}
	p := newPipeline(collector, nil, &stubSaver{}, Config{})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Errorf("collector errors should surface in the result: %v", result.Errors)
	}
	if result.ArticlesSaved != 1 {
		t.Errorf("partial collection failures must not block the run: %+v", result)
	}
}
