// Package pipeline orchestrates the batch run: collect feeds, cluster items
// into trending topics, classify them, generate and assemble cited articles,
// and persist the results. Per-item failures degrade to fallbacks; only
// total upstream exhaustion surfaces as a pipeline error.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trendpress/internal/assemble"
	"trendpress/internal/classify"
	"trendpress/internal/core"
	"trendpress/internal/feeds"
	"trendpress/internal/llm"
	"trendpress/internal/logger"
	"trendpress/internal/trends"
)

// Collector produces the raw feed-item union for one run.
type Collector interface {
	Collect(ctx context.Context) ([]core.FeedItem, feeds.Stats)
}

// Generator is the external generation service. A nil Generator degrades
// every topic to a quick-tier article and template briefs.
type Generator interface {
	GenerateArticle(ctx context.Context, topic core.TrendingTopic) (*llm.ArticleResponse, error)
	GenerateBrief(ctx context.Context, title, description, category string, sources []core.Source) (*llm.BriefResponse, error)
}

// Saver persists assembled records.
type Saver interface {
	SaveArticle(article core.Article) error
}

// Config holds pipeline behavior knobs.
type Config struct {
	GenerateDelay time.Duration       // Delay between sequential generation calls
	Wanted        []classify.Category // Relevance filter; empty keeps every category
	MinConfidence int                 // Minimum classification confidence for the filter
	Briefs        bool                // Also generate a creative brief per topic
	SeedsOn       bool                // Fall back to seed topics when clustering is empty
}

// Pipeline wires the stages together.
type Pipeline struct {
	collector  Collector
	clusterer  *trends.Clusterer
	classifier *classify.Classifier
	generator  Generator
	store      Saver
	config     Config
	log        *slog.Logger
	now        func() time.Time
}

// New creates a pipeline. generator may be nil when no generation credential
// is configured; the dependent tier degrades off rather than aborting.
func New(collector Collector, clusterer *trends.Clusterer, classifier *classify.Classifier, generator Generator, store Saver, config Config) *Pipeline {
	return &Pipeline{
		collector:  collector,
		clusterer:  clusterer,
		classifier: classifier,
		generator:  generator,
		store:      store,
		config:     config,
		log:        logger.Get(),
		now:        time.Now,
	}
}

// Result summarizes one pipeline run.
type Result struct {
	ItemsCollected int
	TopicsFound    int
	UsedSeeds      bool
	TopicsSkipped  int
	ArticlesSaved  int
	BriefsSaved    int
	Errors         []error
}

// Run executes the full batch. It returns an error only when no topics can
// be produced at all (collection empty and seed fallback disabled); every
// other failure degrades the affected item and is recorded in the result.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	items, stats := p.collector.Collect(ctx)
	result.ItemsCollected = len(items)
	result.Errors = append(result.Errors, stats.Errors...)

	topics := p.clusterer.Cluster(items)
	if len(topics) == 0 {
		if !p.config.SeedsOn {
			return result, fmt.Errorf("no trending topics found and seed fallback is disabled")
		}
		p.log.Warn("clustering yielded no topics, falling back to seeds")
		topics = trends.SeedTopics()
		result.UsedSeeds = true
	}
	result.TopicsFound = len(topics)

	inputs := make([]classify.Input, len(topics))
	for i, topic := range topics {
		inputs[i] = classify.Input{Title: topic.Title}
	}
	classifications := p.classifier.ClassifyBatch(ctx, inputs, func(done, total int) {
		p.log.Debug("classification progress", "done", done, "total", total)
	})

	for i, topic := range topics {
		classification := classifications[i]
		if !classify.IsRelevant(classification, p.config.Wanted, p.config.MinConfidence) {
			result.TopicsSkipped++
			p.log.Debug("topic filtered out",
				"title", topic.Title,
				"category", classification.Category,
				"confidence", classification.Confidence,
			)
			continue
		}

		if i > 0 && p.config.GenerateDelay > 0 {
			select {
			case <-time.After(p.config.GenerateDelay):
			case <-ctx.Done():
			}
		}

		p.processTopic(ctx, topic, classification, result)
	}

	p.log.Info("pipeline run completed",
		"items", result.ItemsCollected,
		"topics", result.TopicsFound,
		"skipped", result.TopicsSkipped,
		"articles", result.ArticlesSaved,
		"briefs", result.BriefsSaved,
		"errors", len(result.Errors),
	)
	return result, nil
}

// processTopic generates, assembles, and persists one topic's article (and
// optional brief). Generation failures degrade the record, never the batch.
func (p *Pipeline) processTopic(ctx context.Context, topic core.TrendingTopic, classification core.ClassificationResult, result *Result) {
	var articleResp *llm.ArticleResponse
	if p.generator != nil {
		resp, err := p.generator.GenerateArticle(ctx, topic)
		if err != nil {
			p.log.Warn("article generation failed, assembling quick tier",
				"topic", topic.Title, "error", err.Error())
			result.Errors = append(result.Errors, fmt.Errorf("generate %q: %w", topic.Title, err))
		} else {
			articleResp = resp
		}
	}

	article := assemble.Article(topic, classification, articleResp, p.now().UTC())
	if err := p.store.SaveArticle(article); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("save %q: %w", article.Slug, err))
		return
	}
	result.ArticlesSaved++

	if !p.config.Briefs {
		return
	}

	var briefResp *llm.BriefResponse
	if p.generator != nil {
		resp, err := p.generator.GenerateBrief(ctx, topic.Title, article.Summary, classification.Category, topic.Sources)
		if err != nil {
			p.log.Warn("brief generation failed, using template fallback",
				"topic", topic.Title, "error", err.Error())
			result.Errors = append(result.Errors, fmt.Errorf("brief %q: %w", topic.Title, err))
		} else {
			briefResp = resp
		}
	}

	brief := assemble.Brief(topic.Title, classification, topic.Sources, briefResp, p.now().UTC())
	if err := p.store.SaveArticle(brief); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("save %q: %w", brief.Slug, err))
		return
	}
	result.BriefsSaved++
}
