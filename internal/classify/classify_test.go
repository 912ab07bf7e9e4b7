package classify

import (
	"context"
	"errors"
	"testing"

	"trendpress/internal/core"
)

// stubModel is a canned ModelClassifier for exercising the escalation path.
type stubModel struct {
	resp  ModelResponse
	err   error
	calls int
}

func (s *stubModel) ClassifyTopic(ctx context.Context, title, description string) (ModelResponse, error) {
	s.calls++
	return s.resp, s.err
}

func TestKeywordScoreBounds(t *testing.T) {
	c := NewClassifier()

	if got := c.KeywordScore(CategoryDesignUX, "nothing relevant here"); got != 0 {
		t.Errorf("score = %d, want 0 for text with no keyword hits", got)
	}

	saturated := ""
	for i := 0; i < 50; i++ {
		saturated += "design figma typography interface "
	}
	if got := c.KeywordScore(CategoryDesignUX, saturated); got != 100 {
		t.Errorf("score = %d, want cap at 100", got)
	}
}

func TestKeywordScoreWholeWordsOnly(t *testing.T) {
	c := NewClassifier()
	// "designers" must not match "design"; "uikit" must not match "ui".
	if got := c.KeywordScore(CategoryDesignUX, "designers love their uikit setups"); got != 0 {
		t.Errorf("score = %d, want 0 for substring-only hits", got)
	}
}

func TestClassifyKeywordTierHighConfidence(t *testing.T) {
	model := &stubModel{resp: ModelResponse{Category: "general-tech", Confidence: 90}}
	c := NewClassifier(WithModel(model))

	result := c.Classify(context.Background(),
		"Best UI Design Tools 2024",
		"A roundup of UX design tools and Figma plugins for interface designers.")

	if result.Category != string(CategoryDesignUX) {
		t.Errorf("category = %s, want %s", result.Category, CategoryDesignUX)
	}
	if result.Method != core.MethodKeyword {
		t.Errorf("method = %s, want %s", result.Method, core.MethodKeyword)
	}
	if result.Confidence < DefaultThreshold {
		t.Errorf("confidence = %d, want at least the threshold %d", result.Confidence, DefaultThreshold)
	}
	if model.calls != 0 {
		t.Errorf("model tier called %d times, want 0 for a confident keyword result", model.calls)
	}
}

func TestClassifyTieKeepsEarlierCategory(t *testing.T) {
	c := NewClassifier(WithKeywords(map[Category][]string{
		CategoryBranding:   {"pivot"},
		CategoryAICreative: {"pivot"},
	}))

	result := c.Classify(context.Background(), "the pivot", "")
	if result.Category != string(CategoryBranding) {
		t.Errorf("tie should keep the category earlier in the fixed order, got %s", result.Category)
	}
}

func TestClassifyEscalatesToModel(t *testing.T) {
	model := &stubModel{resp: ModelResponse{
		Category:   "startup-business",
		Confidence: 85,
		Reasoning:  "funding announcement",
	}}
	c := NewClassifier(WithModel(model))

	result := c.Classify(context.Background(), "Obscure headline with no taxonomy hits", "")
	if model.calls != 1 {
		t.Fatalf("model tier called %d times, want 1", model.calls)
	}
	if result.Method != core.MethodModel {
		t.Errorf("method = %s, want %s", result.Method, core.MethodModel)
	}
	if result.Category != string(CategoryStartupBusiness) {
		t.Errorf("category = %s, want %s", result.Category, CategoryStartupBusiness)
	}
	if result.Confidence != 85 || result.Reasoning != "funding announcement" {
		t.Errorf("model result not carried through: %+v", result)
	}
}

func TestClassifyInvalidModelCategoryKeepsKeywordResult(t *testing.T) {
	model := &stubModel{resp: ModelResponse{Category: "sports", Confidence: 99}}
	c := NewClassifier(WithModel(model))

	result := c.Classify(context.Background(), "Obscure headline with no taxonomy hits", "")
	if result.Method != core.MethodKeyword {
		t.Errorf("unknown model category must keep the keyword result, got method %s", result.Method)
	}
}

func TestClassifyModelErrorKeepsKeywordResult(t *testing.T) {
	model := &stubModel{err: errors.New("rate limited")}
	c := NewClassifier(WithModel(model))

	result := c.Classify(context.Background(), "Obscure headline with no taxonomy hits", "")
	if result.Method != core.MethodKeyword {
		t.Errorf("model failure must keep the keyword result, got method %s", result.Method)
	}
}

func TestClassifyClampsModelConfidence(t *testing.T) {
	model := &stubModel{resp: ModelResponse{Category: "general-tech", Confidence: 150}}
	c := NewClassifier(WithModel(model))

	result := c.Classify(context.Background(), "Obscure headline with no taxonomy hits", "")
	if result.Confidence != 100 {
		t.Errorf("confidence = %d, want clamp to 100", result.Confidence)
	}
}

func TestClassifyBatchEscalatesOnlyWeakResults(t *testing.T) {
	model := &stubModel{resp: ModelResponse{Category: "general-tech", Confidence: 70}}
	c := NewClassifier(WithModel(model))

	inputs := []Input{
		{Title: "Best UI Design Tools 2024", Description: "A roundup of UX design tools and Figma plugins for interface designers."},
		{Title: "Something with no taxonomy hits at all"},
		{Title: "Another headline outside the taxonomy"},
	}

	var last [2]int
	results := c.ClassifyBatch(context.Background(), inputs, func(done, total int) {
		last = [2]int{done, total}
	})

	if model.calls != 2 {
		t.Errorf("model tier called %d times, want 2 (only the weak items)", model.calls)
	}
	if results[0].Method != core.MethodKeyword {
		t.Errorf("confident item escalated anyway: %+v", results[0])
	}
	if results[1].Method != core.MethodModel || results[2].Method != core.MethodModel {
		t.Errorf("weak items not escalated: %s, %s", results[1].Method, results[2].Method)
	}
	if last != [2]int{3, 3} {
		t.Errorf("progress ended at %v, want [3 3]", last)
	}
}

func TestClassifyBatchCancellationKeepsKeywordResults(t *testing.T) {
	model := &stubModel{resp: ModelResponse{Category: "general-tech", Confidence: 70}}
	c := NewClassifier(WithModel(model))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := []Input{{Title: "Headline outside the taxonomy"}}
	results := c.ClassifyBatch(ctx, inputs, nil)

	if model.calls != 0 {
		t.Errorf("cancelled batch still called the model %d times", model.calls)
	}
	if results[0].Method != core.MethodKeyword {
		t.Errorf("cancelled item should keep its keyword result, got %s", results[0].Method)
	}
}

func TestClassifyBatchWithoutModel(t *testing.T) {
	c := NewClassifier()

	var last [2]int
	results := c.ClassifyBatch(context.Background(), []Input{
		{Title: "Headline outside the taxonomy"},
	}, func(done, total int) {
		last = [2]int{done, total}
	})

	if results[0].Method != core.MethodKeyword {
		t.Errorf("keyword-only batch produced method %s", results[0].Method)
	}
	if last != [2]int{1, 1} {
		t.Errorf("progress ended at %v, want [1 1]", last)
	}
}

func TestIsRelevant(t *testing.T) {
	result := core.ClassificationResult{Category: "design-ux", Confidence: 60}

	if !IsRelevant(result, nil, 40) {
		t.Error("empty wanted list should accept every category")
	}
	if !IsRelevant(result, []Category{CategoryDesignUX}, 40) {
		t.Error("matching category above the floor should be relevant")
	}
	if IsRelevant(result, []Category{CategoryBranding}, 40) {
		t.Error("non-wanted category should be filtered")
	}
	if IsRelevant(result, []Category{CategoryDesignUX}, 70) {
		t.Error("confidence below the floor should be filtered")
	}
}

func TestParseCategory(t *testing.T) {
	if _, ok := ParseCategory("design-ux"); !ok {
		t.Error("known category rejected")
	}
	if _, ok := ParseCategory("sports"); ok {
		t.Error("unknown category accepted")
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("AI-powered Design: 2024 edition!", 3)
	want := []string{"powered", "design", "2024", "edition"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
}
