// Package classify assigns taxonomy categories to feed items and topics
// using a cheap keyword tier with an optional model-tier fallback.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"trendpress/internal/core"
	"trendpress/internal/logger"
)

// DefaultThreshold is the keyword-tier score below which the model tier is
// consulted.
const DefaultThreshold = 50

// Input is one unit of text to classify.
type Input struct {
	Title       string
	Description string
}

// ModelResponse is the raw answer from the model tier before validation.
type ModelResponse struct {
	Category   string `json:"category"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// ModelClassifier is the external model tier. A nil ModelClassifier disables
// the tier and the classifier runs keyword-only.
type ModelClassifier interface {
	ClassifyTopic(ctx context.Context, title, description string) (ModelResponse, error)
}

// keywordPattern is a precompiled whole-word matcher for one keyword.
type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
	points  int
}

// Classifier implements the two-tier design: keyword scoring first, model
// escalation only when the best keyword score falls below the threshold.
type Classifier struct {
	model     ModelClassifier
	threshold int
	callDelay time.Duration
	patterns  map[Category][]keywordPattern
	listLen   map[Category]int
	log       *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithModel sets the model-tier fallback.
func WithModel(m ModelClassifier) Option {
	return func(c *Classifier) { c.model = m }
}

// WithThreshold overrides the escalation threshold.
func WithThreshold(threshold int) Option {
	return func(c *Classifier) { c.threshold = threshold }
}

// WithCallDelay sets the delay between sequential model calls in batch mode.
func WithCallDelay(d time.Duration) Option {
	return func(c *Classifier) { c.callDelay = d }
}

// WithKeywords replaces the built-in keyword lists. Unknown categories are
// ignored.
func WithKeywords(keywords map[Category][]string) Option {
	return func(c *Classifier) { c.compileKeywords(keywords) }
}

// NewClassifier creates a classifier with the built-in taxonomy keyword
// lists and the default threshold.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		threshold: DefaultThreshold,
		log:       logger.Get(),
	}
	c.compileKeywords(defaultKeywords)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) compileKeywords(keywords map[Category][]string) {
	c.patterns = make(map[Category][]keywordPattern, len(keywords))
	c.listLen = make(map[Category]int, len(keywords))
	for cat, list := range keywords {
		if _, ok := ParseCategory(string(cat)); !ok {
			continue
		}
		patterns := make([]keywordPattern, 0, len(list))
		for _, kw := range list {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			points := 1
			if len(kw) > 5 {
				points = 2
			}
			patterns = append(patterns, keywordPattern{
				keyword: kw,
				re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
				points:  points,
			})
		}
		c.patterns[cat] = patterns
		c.listLen[cat] = len(patterns)
	}
}

// KeywordScore returns the normalized 0-100 keyword-tier score of text for
// one category: 2 points per occurrence of a keyword longer than 5
// characters, 1 otherwise, divided by 3 x list length and capped at 100.
func (c *Classifier) KeywordScore(category Category, text string) int {
	patterns := c.patterns[category]
	if len(patterns) == 0 {
		return 0
	}
	text = strings.ToLower(text)

	raw := 0
	for _, p := range patterns {
		raw += p.points * len(p.re.FindAllStringIndex(text, -1))
	}
	if raw == 0 {
		return 0
	}

	normalized := raw * 100 / (3 * len(patterns))
	if normalized > 100 {
		normalized = 100
	}
	return normalized
}

// classifyKeyword runs the keyword tier over all categories in the fixed
// order and returns the winner. Ties keep the earlier category.
func (c *Classifier) classifyKeyword(title, description string) core.ClassificationResult {
	text := title + " " + description

	best := core.ClassificationResult{
		Category:   string(CategoryOrder[0]),
		Confidence: 0,
		Method:     core.MethodKeyword,
	}
	for _, cat := range CategoryOrder {
		score := c.KeywordScore(cat, text)
		if score > best.Confidence {
			best.Category = string(cat)
			best.Confidence = score
		}
	}
	best.Reasoning = fmt.Sprintf("keyword score %d for %s", best.Confidence, best.Category)
	return best
}

// Classify assigns one taxonomy category to the given title and description.
// The model tier runs only when the keyword winner scored below the
// threshold; any model failure or invalid model answer silently keeps the
// keyword result.
func (c *Classifier) Classify(ctx context.Context, title, description string) core.ClassificationResult {
	keywordResult := c.classifyKeyword(title, description)
	if keywordResult.Confidence >= c.threshold || c.model == nil {
		return keywordResult
	}

	resp, err := c.model.ClassifyTopic(ctx, title, description)
	if err != nil {
		c.log.Debug("model tier failed, keeping keyword result", "title", title, "error", err.Error())
		return keywordResult
	}

	category, ok := ParseCategory(resp.Category)
	if !ok {
		c.log.Debug("model returned unknown category, keeping keyword result",
			"title", title, "category", resp.Category)
		return keywordResult
	}

	confidence := resp.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 100 {
		confidence = 100
	}

	return core.ClassificationResult{
		Category:   string(category),
		Confidence: confidence,
		Method:     core.MethodModel,
		Reasoning:  resp.Reasoning,
	}
}

// ClassifyBatch classifies many inputs: the keyword tier runs over all of
// them first, then the model tier over only the below-threshold subset, with
// the configured delay between calls to respect upstream rate limits.
// progress, if non-nil, is invoked after every finished item. Context
// cancellation leaves remaining items on their keyword results.
func (c *Classifier) ClassifyBatch(ctx context.Context, inputs []Input, progress func(done, total int)) []core.ClassificationResult {
	results := make([]core.ClassificationResult, len(inputs))
	var escalate []int

	for i, in := range inputs {
		results[i] = c.classifyKeyword(in.Title, in.Description)
		if results[i].Confidence < c.threshold {
			escalate = append(escalate, i)
		}
	}

	done := len(inputs) - len(escalate)
	if progress != nil && done > 0 {
		progress(done, len(inputs))
	}

	if c.model == nil {
		if progress != nil && done < len(inputs) {
			progress(len(inputs), len(inputs))
		}
		return results
	}

	for n, i := range escalate {
		if ctx.Err() != nil {
			c.log.Warn("batch classification cancelled, remaining items keep keyword results",
				"remaining", len(escalate)-n)
			break
		}
		if n > 0 && c.callDelay > 0 {
			select {
			case <-time.After(c.callDelay):
			case <-ctx.Done():
			}
		}
		results[i] = c.Classify(ctx, inputs[i].Title, inputs[i].Description)
		done++
		if progress != nil {
			progress(done, len(inputs))
		}
	}

	return results
}

// IsRelevant reduces a classification to a boolean membership test: the
// result's category must be one of the wanted categories and its confidence
// at least minConfidence. An empty wanted list accepts every category.
func IsRelevant(result core.ClassificationResult, wanted []Category, minConfidence int) bool {
	if result.Confidence < minConfidence {
		return false
	}
	if len(wanted) == 0 {
		return true
	}
	for _, cat := range wanted {
		if string(cat) == result.Category {
			return true
		}
	}
	return false
}

// Tokenize extracts lowercase alphanumeric tokens longer than minLen from
// text. Shared by the clusterer and the relevance search engine.
func Tokenize(text string, minLen int) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > minLen {
			tokens = append(tokens, b.String())
		}
		b.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
