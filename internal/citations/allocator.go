// Package citations distributes a bounded pool of sources across an
// article's paragraphs with a no-duplicate-when-possible guarantee.
package citations

import "trendpress/internal/core"

// minBudget is the floor of the per-paragraph source budget.
const minBudget = 2

// Budget returns the per-paragraph source budget for a pool of poolSize
// sources over paragraphCount paragraphs: max(2, floor(pool/paragraphs)).
func Budget(poolSize, paragraphCount int) int {
	if paragraphCount <= 0 {
		return minBudget
	}
	budget := poolSize / paragraphCount
	if budget < minBudget {
		budget = minBudget
	}
	return budget
}

// Allocate assigns sources to paragraphs in document order. Each paragraph
// first takes its preferred source ids that are not yet used, up to the
// budget, then pulls from the pool through a monotonically advancing cursor
// over the fixed source ordering until the budget is met. Every assigned id
// is marked used before the next paragraph runs, so no source repeats across
// paragraphs while unused ones remain. When the pool is smaller than the
// paragraph count, exhausting it flips the cursor into reuse mode: it wraps
// and hands out sources again in order, though a paragraph never holds the
// same source twice. With a pool at least as large as the paragraph count
// there is no reuse; paragraphs whose turn comes after exhaustion receive
// zero sources, which is a valid terminal state.
//
// The allocation is a deterministic greedy single pass, O(N+M); it trades
// global optimality for running once per generated article.
func Allocate(pool []core.Source, preferred [][]string) [][]core.Source {
	byID := make(map[string]core.Source, len(pool))
	for _, s := range pool {
		byID[s.ID] = s
	}

	budget := Budget(len(pool), len(preferred))
	reuseAllowed := len(pool) < len(preferred)
	used := make(map[string]bool, len(pool))
	usedCount := 0
	cursor := 0

	assigned := make([][]core.Source, len(preferred))
	for i, prefs := range preferred {
		var picks []core.Source
		holds := make(map[string]bool, budget)

		for _, id := range prefs {
			if len(picks) >= budget {
				break
			}
			source, ok := byID[id]
			if !ok || used[id] || holds[id] {
				continue
			}
			used[id] = true
			usedCount++
			holds[id] = true
			picks = append(picks, source)
		}

		for len(picks) < budget && len(pool) > 0 {
			if usedCount < len(pool) {
				// Unused sources remain: advance past used ones, never
				// re-scanning from the start.
				for used[pool[cursor%len(pool)].ID] {
					cursor++
				}
				source := pool[cursor%len(pool)]
				cursor++
				used[source.ID] = true
				usedCount++
				holds[source.ID] = true
				picks = append(picks, source)
				continue
			}
			if !reuseAllowed {
				break // pool exhausted, paragraph keeps what it has
			}
			// Reuse mode: the whole pool is spoken for, wrap in order.
			source := pool[cursor%len(pool)]
			cursor++
			if holds[source.ID] {
				break // wrapped back onto this paragraph's own picks
			}
			holds[source.ID] = true
			picks = append(picks, source)
		}

		assigned[i] = picks
	}
	return assigned
}

// Chip packages one paragraph's assigned sources as a citation chip: the
// first source becomes the primary, the rest overflow into the additional
// list. ok is false when the paragraph received no sources.
func Chip(assigned []core.Source) (core.CitationChip, bool) {
	if len(assigned) == 0 {
		return core.CitationChip{}, false
	}
	chip := core.CitationChip{
		PrimarySource:     assigned[0],
		AdditionalSources: assigned[1:],
		AdditionalCount:   len(assigned) - 1,
	}
	if chip.AdditionalCount == 0 {
		chip.AdditionalSources = nil
	}
	return chip, true
}
