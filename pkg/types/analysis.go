package types

import "time"

// ChunkAnalysis is the outcome of re-reading one expanded context group: a
// primary chunk plus the neighboring chunks folded into its window.
type ChunkAnalysis struct {
	PrimaryChunkIndex int `json:"primary_chunk_index"`

	// ContextIndices is the sorted set of chunk indices included in the
	// expanded window, primary included.
	ContextIndices []int `json:"context_indices"`

	// ExpandedContent is the concatenated member content the analyzer saw.
	ExpandedContent string `json:"-"`

	Opportunities []Finding `json:"opportunities,omitempty"`
	Insights      []Finding `json:"insights,omitempty"`
	Patterns      []Finding `json:"patterns,omitempty"`
	Gaps          []Finding `json:"gaps,omitempty"`

	// TotalLines is the line count summed across member chunks.
	TotalLines int `json:"total_lines"`

	// AnalysisFocus labels how this analysis was produced.
	AnalysisFocus string `json:"analysis_focus,omitempty"`
}

// HasFindings reports whether any of the four lists is non-empty.
func (a *ChunkAnalysis) HasFindings() bool {
	return len(a.Opportunities)+len(a.Insights)+len(a.Patterns)+len(a.Gaps) > 0
}

// RunStats records how a consolidation run went.
type RunStats struct {
	TotalChunksAnalyzed int           `json:"total_chunks_analyzed"`
	ChunksWithFindings  int           `json:"chunks_with_findings"`
	ChunksReanalyzed    int           `json:"chunks_reanalyzed"`
	UniqueFindingsCount int           `json:"unique_findings_count"`
	ProcessingTime      time.Duration `json:"processing_time_ns"`
	AnalyzerCallsMade   int           `json:"analyzer_calls_made"`
}

// ConsolidatedResult is the single deduplicated report produced by one
// consolidation run. It is mutated incrementally through AddFinding while the
// run is in flight and must only be read after the run returns.
type ConsolidatedResult struct {
	Opportunities []*Finding `json:"opportunities"`
	Insights      []*Finding `json:"insights"`
	Patterns      []*Finding `json:"patterns"`
	Gaps          []*Finding `json:"gaps"`

	CrossChunkPatterns  []string `json:"cross_chunk_patterns,omitempty"`
	SystemLevelInsights []string `json:"system_level_insights,omitempty"`

	// ChunkReferences holds the relevance-ranked references from stage one.
	ChunkReferences []ChunkReference `json:"chunk_references"`

	// AnalyzedChunks is the sorted set of chunk indices that contributed.
	AnalyzedChunks []int `json:"analyzed_chunks"`

	Stats RunStats `json:"stats"`
}

// NewConsolidatedResult returns an empty result ready for incremental merge.
func NewConsolidatedResult() *ConsolidatedResult {
	return &ConsolidatedResult{
		Opportunities: []*Finding{},
		Insights:      []*Finding{},
		Patterns:      []*Finding{},
		Gaps:          []*Finding{},
	}
}

// Findings returns the list for one category. Mutations to the returned
// findings are visible in the result; the slice itself is a view.
func (r *ConsolidatedResult) Findings(cat FindingCategory) []*Finding {
	switch cat {
	case CategoryOpportunity:
		return r.Opportunities
	case CategoryInsight:
		return r.Insights
	case CategoryPattern:
		return r.Patterns
	case CategoryGap:
		return r.Gaps
	default:
		return nil
	}
}

// AddFinding appends a finding to the given category's list and bumps the
// unique-findings counter. Deduplication is the caller's responsibility.
func (r *ConsolidatedResult) AddFinding(cat FindingCategory, f *Finding) {
	switch cat {
	case CategoryOpportunity:
		r.Opportunities = append(r.Opportunities, f)
	case CategoryInsight:
		r.Insights = append(r.Insights, f)
	case CategoryPattern:
		r.Patterns = append(r.Patterns, f)
	case CategoryGap:
		r.Gaps = append(r.Gaps, f)
	default:
		return
	}
	r.Stats.UniqueFindingsCount++
}

// TotalFindings counts entries across all four categories.
func (r *ConsolidatedResult) TotalFindings() int {
	return len(r.Opportunities) + len(r.Insights) + len(r.Patterns) + len(r.Gaps)
}
