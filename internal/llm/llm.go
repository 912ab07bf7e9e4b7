// Package llm wraps the external text-completion service used for
// model-tier classification and article/brief generation. Every response is
// strict-JSON validated; callers substitute their own deterministic fallback
// on any failure.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/genai"

	"trendpress/internal/classify"
	"trendpress/internal/core"
)

const (
	// DefaultModel is the default Gemini model.
	DefaultModel = "gemini-flash-lite-latest"
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 30 * time.Second
)

// ErrInvalidResponse marks a response that arrived but failed strict JSON
// validation. It is distinct from transport errors for logging purposes;
// callers fall back identically on both.
var ErrInvalidResponse = errors.New("invalid generation response")

// Client talks to the Gemini API.
type Client struct {
	modelName string
	timeout   time.Duration
	gClient   *genai.Client
}

// NewClient creates a generation-service client. The API key is looked up
// from GEMINI_API_KEY (or alternatives) and then viper's ai.gemini.api_key.
// A missing key returns an error so the caller can degrade the model tier
// off instead of aborting.
func NewClient(ctx context.Context, modelName string, timeout time.Duration) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			if apiKey = os.Getenv("GOOGLE_AI_API_KEY"); apiKey == "" {
				apiKey = viper.GetString("ai.gemini.api_key")
			}
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required: set GEMINI_API_KEY or ai.gemini.api_key in config")
	}

	if modelName == "" {
		modelName = viper.GetString("ai.gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName: modelName,
		timeout:   timeout,
		gClient:   gClient,
	}, nil
}

// generateContent issues one bounded generation call and returns the raw
// response text.
func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", ErrInvalidResponse)
	}
	return text, nil
}

// ClassifyTopic runs the model tier of the classifier: a closed prompt
// enumerating the exact taxonomy, expecting strict JSON back. The caller
// validates the category and falls back to its keyword result on error.
func (c *Client) ClassifyTopic(ctx context.Context, title, description string) (classify.ModelResponse, error) {
	prompt := fmt.Sprintf(classifyPromptTemplate, taxonomyList(), title, description)

	text, err := c.generateContent(ctx, prompt)
	if err != nil {
		return classify.ModelResponse{}, err
	}

	var resp classify.ModelResponse
	if err := decodeStrict(text, &resp); err != nil {
		return classify.ModelResponse{}, err
	}
	if _, ok := classify.ParseCategory(resp.Category); !ok {
		return classify.ModelResponse{}, fmt.Errorf("%w: unknown category %q", ErrInvalidResponse, resp.Category)
	}
	return resp, nil
}

// ParagraphResponse is one generated paragraph with the source ids the
// model wants cited for it.
type ParagraphResponse struct {
	Content   string   `json:"content"`
	SourceIDs []string `json:"source_ids"`
}

// SectionResponse is one generated article section.
type SectionResponse struct {
	Heading    string              `json:"heading"`
	Paragraphs []ParagraphResponse `json:"paragraphs"`
}

// ArticleResponse is the generation service's answer for a full article.
type ArticleResponse struct {
	Title    string            `json:"title"`
	Summary  string            `json:"summary"`
	Sections []SectionResponse `json:"sections"`
}

// GenerateArticle asks the service for a full article on a trending topic,
// seeded with the topic's corroborating sources.
func (c *Client) GenerateArticle(ctx context.Context, topic core.TrendingTopic) (*ArticleResponse, error) {
	prompt := fmt.Sprintf(articlePromptTemplate, topic.Title, sourceList(topic.Sources))

	text, err := c.generateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var resp ArticleResponse
	if err := decodeStrict(text, &resp); err != nil {
		return nil, err
	}
	if err := validateArticle(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BriefResponse is the generation service's answer for a creative brief.
type BriefResponse struct {
	Hooks          []string          `json:"hooks"`
	PlatformTips   map[string]string `json:"platform_tips"`
	VisualBoldness int               `json:"visual_boldness"`
	Steps          []string          `json:"steps"`
	Hashtags       string            `json:"hashtags"`
}

// GenerateBrief asks the service for a creative brief (hooks, platform tips,
// visual direction, outline steps, hashtags) for a classified topic.
func (c *Client) GenerateBrief(ctx context.Context, title, description, category string, sources []core.Source) (*BriefResponse, error) {
	prompt := fmt.Sprintf(briefPromptTemplate, title, description, category, sourceList(sources))

	text, err := c.generateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var resp BriefResponse
	if err := decodeStrict(text, &resp); err != nil {
		return nil, err
	}
	if err := validateBrief(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Close releases the underlying client. The genai client holds no
// connections that need closing today; the method keeps the caller's
// shutdown path uniform.
func (c *Client) Close() {}

// decodeStrict parses a model response as JSON, tolerating a fenced code
// block wrapper but nothing else.
func decodeStrict(text string, v any) error {
	body := stripFences(text)
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// stripFences removes a surrounding ```json ... ``` fence if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func validateArticle(resp *ArticleResponse) error {
	if resp.Title == "" {
		return fmt.Errorf("%w: article response missing title", ErrInvalidResponse)
	}
	if len(resp.Sections) == 0 {
		return fmt.Errorf("%w: article response has no sections", ErrInvalidResponse)
	}
	for i, sec := range resp.Sections {
		if len(sec.Paragraphs) == 0 {
			return fmt.Errorf("%w: section %d has no paragraphs", ErrInvalidResponse, i)
		}
		for j, p := range sec.Paragraphs {
			if strings.TrimSpace(p.Content) == "" {
				return fmt.Errorf("%w: section %d paragraph %d is empty", ErrInvalidResponse, i, j)
			}
		}
	}
	return nil
}

func validateBrief(resp *BriefResponse) error {
	if len(resp.Hooks) == 0 {
		return fmt.Errorf("%w: brief response has no hooks", ErrInvalidResponse)
	}
	if len(resp.Steps) == 0 {
		return fmt.Errorf("%w: brief response has no outline steps", ErrInvalidResponse)
	}
	if resp.VisualBoldness < 1 || resp.VisualBoldness > 10 {
		return fmt.Errorf("%w: visual boldness %d out of range", ErrInvalidResponse, resp.VisualBoldness)
	}
	return nil
}

// taxonomyList renders the closed category set for the classification prompt.
func taxonomyList() string {
	names := make([]string, len(classify.CategoryOrder))
	for i, c := range classify.CategoryOrder {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// sourceList renders seed sources for generation prompts.
func sourceList(sources []core.Source) string {
	var b strings.Builder
	for _, s := range sources {
		fmt.Fprintf(&b, "- id: %s, name: %s, url: %s\n", s.ID, s.Name, s.URL)
	}
	return b.String()
}
