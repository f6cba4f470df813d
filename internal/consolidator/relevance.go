package consolidator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/microsoft/amplifier-sub003/internal/analyzer"
	"github.com/microsoft/amplifier-sub003/pkg/types"
)

// identifyRelevantChunks scores every analyzed chunk by its original
// findings and returns references sorted by descending relevance. Chunks
// that scored zero are omitted; ties keep chunk-index order so the ranking
// is deterministic.
func (e *Engine) identifyRelevantChunks(chunking *types.ChunkingResult, analyses map[int]*analyzer.Result) []types.ChunkReference {
	lines := chunkLineSpans(chunking)
	refs := make([]types.ChunkReference, 0, len(analyses))

	for _, chunk := range chunking.Chunks {
		res := analyses[chunk.Index]
		if res == nil {
			continue
		}

		score := e.relevanceScore(res)
		if score <= 0 {
			continue
		}

		ref := types.ChunkReference{
			ChunkIndex:     chunk.Index,
			RelevanceScore: score,
			Reason:         relevanceReason(res),
			KeyFindings:    keyFindings(res),
		}
		if chunk.Index < len(lines) {
			ref.StartLine = lines[chunk.Index].start
			ref.EndLine = lines[chunk.Index].end
		}
		refs = append(refs, ref)
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].RelevanceScore > refs[j].RelevanceScore
	})

	return refs
}

// relevanceScore sums capped per-category contributions plus a bonus per
// high-priority finding, clamped to [0,1].
func (e *Engine) relevanceScore(res *analyzer.Result) float64 {
	score := cappedSum(len(res.Opportunities), e.cfg.OpportunityWeight, e.cfg.OpportunityCap)
	score += cappedSum(len(res.Insights), e.cfg.InsightWeight, e.cfg.InsightCap)
	score += cappedSum(len(res.Patterns), e.cfg.PatternWeight, e.cfg.PatternCap)
	score += cappedSum(len(res.Gaps), e.cfg.GapWeight, e.cfg.GapCap)

	for _, f := range allFindings(res) {
		if f.Priority >= e.cfg.HighPriorityThreshold {
			score += e.cfg.HighPriorityBonus
		}
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func cappedSum(count int, weight, limit float64) float64 {
	sum := float64(count) * weight
	if sum > limit {
		return limit
	}
	return sum
}

func allFindings(res *analyzer.Result) []types.Finding {
	all := make([]types.Finding, 0, res.FindingCount())
	all = append(all, res.Opportunities...)
	all = append(all, res.Insights...)
	all = append(all, res.Patterns...)
	all = append(all, res.Gaps...)
	return all
}

// relevanceReason summarizes why a chunk ranked, e.g. "3 opportunities, 1 gap".
func relevanceReason(res *analyzer.Result) string {
	var parts []string
	add := func(n int, singular, plural string) {
		switch {
		case n == 1:
			parts = append(parts, "1 "+singular)
		case n > 1:
			parts = append(parts, fmt.Sprintf("%d %s", n, plural))
		}
	}
	add(len(res.Opportunities), "opportunity", "opportunities")
	add(len(res.Insights), "insight", "insights")
	add(len(res.Patterns), "pattern", "patterns")
	add(len(res.Gaps), "gap", "gaps")
	if len(parts) == 0 {
		return "no findings"
	}
	return strings.Join(parts, ", ")
}

// keyFindings picks the highest-priority finding titles, up to the
// per-reference cap.
func keyFindings(res *analyzer.Result) []string {
	all := allFindings(res)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Priority > all[j].Priority
	})

	titles := make([]string, 0, types.MaxKeyFindings)
	for _, f := range all {
		if len(titles) >= types.MaxKeyFindings {
			break
		}
		if f.Title != "" {
			titles = append(titles, f.Title)
		}
	}
	return titles
}
