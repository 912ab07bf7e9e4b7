// Package search scores a corpus of previously assembled summary records
// against a free-text query. The search is stateless and re-run per query;
// no index is built or persisted.
package search

import (
	"sort"
	"strings"

	"trendpress/internal/classify"
	"trendpress/internal/core"
)

// Scoring constants. Title matches outweigh summary matches, and longer
// terms outweigh short ones.
const (
	titleLongPoints    = 10
	titleShortPoints   = 5
	summaryLongPoints  = 5
	summaryShortPoints = 2
	exactTitleBonus    = 20
	longTermLen        = 5 // terms longer than this count as long
	minTermLen         = 2 // query tokens at or below this length are dropped
)

// DefaultMinScore drops records with weaker scores from results.
const DefaultMinScore = 5

// DefaultMaxResults caps one query's result list.
const DefaultMaxResults = 10

// Result pairs a corpus record with its relevance score.
type Result struct {
	Record core.SummaryRecord
	Score  int
}

// Engine is a stateless relevance scorer over summary records.
type Engine struct {
	minScore   int
	maxResults int
}

// NewEngine creates a search engine. Non-positive arguments fall back to the
// defaults.
func NewEngine(minScore, maxResults int) *Engine {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Engine{minScore: minScore, maxResults: maxResults}
}

// Search scores every corpus record against the query and returns the
// records at or above the minimum score, sorted by score descending and
// truncated to the result cap. Ties keep corpus order. A non-empty category
// is a hard filter applied before scoring, not a boost.
func (e *Engine) Search(query, category string, corpus []core.SummaryRecord) []Result {
	terms := classify.Tokenize(query, minTermLen)
	if len(terms) == 0 {
		return nil
	}
	fullQuery := strings.ToLower(strings.TrimSpace(query))

	var results []Result
	for _, record := range corpus {
		if category != "" && record.Category != category {
			continue
		}
		score := scoreRecord(record, terms, fullQuery)
		if score < e.minScore {
			continue
		}
		results = append(results, Result{Record: record, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > e.maxResults {
		results = results[:e.maxResults]
	}
	return results
}

func scoreRecord(record core.SummaryRecord, terms []string, fullQuery string) int {
	title := strings.ToLower(record.Title)
	summary := strings.ToLower(record.Summary)

	score := 0
	for _, term := range terms {
		long := len(term) > longTermLen
		if strings.Contains(title, term) {
			if long {
				score += titleLongPoints
			} else {
				score += titleShortPoints
			}
		}
		if strings.Contains(summary, term) {
			if long {
				score += summaryLongPoints
			} else {
				score += summaryShortPoints
			}
		}
	}

	if fullQuery != "" && strings.Contains(title, fullQuery) {
		score += exactTitleBonus
	}
	return score
}
