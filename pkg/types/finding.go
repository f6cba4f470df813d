package types

// FindingCategory names one of the four finding lists produced by analysis.
type FindingCategory string

const (
	CategoryOpportunity FindingCategory = "opportunity"
	CategoryInsight     FindingCategory = "insight"
	CategoryPattern     FindingCategory = "pattern"
	CategoryGap         FindingCategory = "gap"
)

// Priority bounds for findings (1 = lowest, 10 = highest, 0 = unset).
const (
	MinPriority = 1
	MaxPriority = 10
)

// Finding is a discrete analysis result: an opportunity, insight, pattern,
// or gap. Findings cross the Analyzer JSON boundary, so every field is
// optional and defaults to its zero value.
type Finding struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	// Priority on a 1-10 scale; 0 means the analyzer did not assign one.
	Priority int `json:"priority,omitempty"`

	// References points back at the chunks this finding was observed in.
	// Populated during consolidation, never by the analyzer itself.
	References []ChunkReference `json:"references,omitempty"`
}

// ClampPriority forces Priority into the valid range, treating 0 as unset.
func (f *Finding) ClampPriority() {
	if f.Priority == 0 {
		return
	}
	if f.Priority < MinPriority {
		f.Priority = MinPriority
	}
	if f.Priority > MaxPriority {
		f.Priority = MaxPriority
	}
}

// ChunkReference locates a finding's supporting evidence within one chunk.
type ChunkReference struct {
	ChunkIndex int    `json:"chunk_index"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Reason     string `json:"reason,omitempty"`

	// RelevanceScore is always clamped to [0,1].
	RelevanceScore float64 `json:"relevance_score"`

	// KeyFindings holds up to MaxKeyFindings short strings.
	KeyFindings []string `json:"key_findings,omitempty"`
}

// MaxKeyFindings bounds the KeyFindings list on a ChunkReference.
const MaxKeyFindings = 5

// ClampScore forces RelevanceScore into [0,1] and truncates KeyFindings.
func (cr *ChunkReference) ClampScore() {
	if cr.RelevanceScore < 0 {
		cr.RelevanceScore = 0
	}
	if cr.RelevanceScore > 1 {
		cr.RelevanceScore = 1
	}
	if len(cr.KeyFindings) > MaxKeyFindings {
		cr.KeyFindings = cr.KeyFindings[:MaxKeyFindings]
	}
}
