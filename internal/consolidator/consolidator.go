package consolidator

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/microsoft/amplifier-sub003/internal/analyzer"
	"github.com/microsoft/amplifier-sub003/pkg/types"
)

// Config holds consolidation settings. Zero values select defaults. The
// relevance caps and the similarity threshold are empirically chosen
// numbers, kept tunable rather than hard-coded.
type Config struct {
	// ContextWindow is how many neighbors on each side join a relevant
	// chunk's expanded group.
	ContextWindow int

	// SimilarityThreshold is the word-set Jaccard similarity above which two
	// findings are considered duplicates.
	SimilarityThreshold float64

	// HighPriorityThreshold marks findings that earn the relevance bonus.
	HighPriorityThreshold int

	// MaxWorkers bounds concurrent re-analysis calls. Defaults to NumCPU.
	MaxWorkers int

	// Per-category relevance caps and per-finding increments.
	OpportunityCap    float64
	InsightCap        float64
	PatternCap        float64
	GapCap            float64
	OpportunityWeight float64
	InsightWeight     float64
	PatternWeight     float64
	GapWeight         float64
	HighPriorityBonus float64

	// Trust weights recorded on references created during the merge stage.
	ReanalyzedTrust float64
	OriginalTrust   float64
}

// DefaultConfig returns the standard consolidation configuration.
func DefaultConfig() Config {
	return Config{
		ContextWindow:         2,
		SimilarityThreshold:   0.8,
		HighPriorityThreshold: 8,
		MaxWorkers:            runtime.NumCPU(),
		OpportunityCap:        0.4,
		InsightCap:            0.3,
		PatternCap:            0.2,
		GapCap:                0.1,
		OpportunityWeight:     0.1,
		InsightWeight:         0.1,
		PatternWeight:         0.1,
		GapWeight:             0.05,
		HighPriorityBonus:     0.1,
		ReanalyzedTrust:       0.8,
		OriginalTrust:         0.5,
	}
}

// fill replaces zero values with defaults.
func (c Config) fill() Config {
	d := DefaultConfig()
	if c.ContextWindow == 0 {
		c.ContextWindow = d.ContextWindow
	}
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	if c.HighPriorityThreshold == 0 {
		c.HighPriorityThreshold = d.HighPriorityThreshold
	}
	if c.MaxWorkers == 0 {
		c.MaxWorkers = d.MaxWorkers
	}
	if c.OpportunityCap == 0 {
		c.OpportunityCap = d.OpportunityCap
	}
	if c.InsightCap == 0 {
		c.InsightCap = d.InsightCap
	}
	if c.PatternCap == 0 {
		c.PatternCap = d.PatternCap
	}
	if c.GapCap == 0 {
		c.GapCap = d.GapCap
	}
	if c.OpportunityWeight == 0 {
		c.OpportunityWeight = d.OpportunityWeight
	}
	if c.InsightWeight == 0 {
		c.InsightWeight = d.InsightWeight
	}
	if c.PatternWeight == 0 {
		c.PatternWeight = d.PatternWeight
	}
	if c.GapWeight == 0 {
		c.GapWeight = d.GapWeight
	}
	if c.HighPriorityBonus == 0 {
		c.HighPriorityBonus = d.HighPriorityBonus
	}
	if c.ReanalyzedTrust == 0 {
		c.ReanalyzedTrust = d.ReanalyzedTrust
	}
	if c.OriginalTrust == 0 {
		c.OriginalTrust = d.OriginalTrust
	}
	return c
}

func (c Config) validate() error {
	if c.ContextWindow < 0 {
		return fmt.Errorf("%w: context window must be >= 0", types.ErrInvalidConfiguration)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold must be in [0,1]", types.ErrInvalidConfiguration)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("%w: max workers must be >= 1", types.ErrInvalidConfiguration)
	}
	if c.HighPriorityThreshold < types.MinPriority || c.HighPriorityThreshold > types.MaxPriority {
		return fmt.Errorf("%w: high priority threshold must be in [%d,%d]",
			types.ErrInvalidConfiguration, types.MinPriority, types.MaxPriority)
	}
	return nil
}

// Engine reconciles per-chunk analyses into a single deduplicated report,
// invoking the external analyzer for context re-reads and the cross-chunk
// pattern pass.
type Engine struct {
	analyzer analyzer.Analyzer
	cfg      Config
}

// New creates a consolidation engine. The analyzer is required; invalid
// settings are a hard error.
func New(a analyzer.Analyzer, cfg Config) (*Engine, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: analyzer is required", types.ErrInvalidConfiguration)
	}

	cfg = cfg.fill()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Engine{analyzer: a, cfg: cfg}, nil
}

// Consolidate runs the five-stage pipeline: relevance scoring, context
// window expansion, concurrent re-reads, serialized merge/dedup, and the
// cross-chunk pattern pass. Analyzer failures degrade to partial output; the
// returned result is complete the moment this call returns, which is the
// pipeline's completion signal.
func (e *Engine) Consolidate(ctx context.Context, chunking *types.ChunkingResult, analyses map[int]*analyzer.Result, originalRequest string) (*types.ConsolidatedResult, error) {
	start := time.Now()
	result := types.NewConsolidatedResult()

	if chunking == nil || len(chunking.Chunks) == 0 {
		result.Stats.ProcessingTime = time.Since(start)
		return result, nil
	}

	var calls atomic.Int64

	// Stage 1: score and rank chunks by their original findings.
	refs := e.identifyRelevantChunks(chunking, analyses)
	result.ChunkReferences = refs

	// Stage 2: expand each relevant chunk into a context window and merge
	// intersecting windows into disjoint groups.
	groups := expandContextWindows(refs, len(chunking.Chunks), e.cfg.ContextWindow)

	// Stage 3: re-read each group through the analyzer, concurrently.
	reanalyses := e.rereadWithContext(ctx, groups, chunking, originalRequest, &calls)

	// Stage 4: merge findings into the shared result. Single writer: the
	// dedup scan mutates the finding lists, so this stage never runs
	// concurrently with itself.
	e.mergeInsights(result, chunking, analyses, reanalyses)

	// Stage 5: one summary-level call for cross-chunk patterns.
	e.identifyCrossChunkPatterns(ctx, result, originalRequest, &calls)

	result.AnalyzedChunks = analyzedChunkIndices(chunking, analyses)
	result.Stats.TotalChunksAnalyzed = len(result.AnalyzedChunks)
	result.Stats.ChunksWithFindings = countChunksWithFindings(analyses)
	result.Stats.ChunksReanalyzed = countGroupMembers(groups)
	result.Stats.AnalyzerCallsMade = int(calls.Load())
	result.Stats.ProcessingTime = time.Since(start)

	return result, nil
}

// rereadWithContext analyzes each group's concatenated member content. The
// groups have disjoint contexts, so their calls are independent and run
// under a bounded worker pool. A failed call records an empty analysis and
// never aborts the run or blocks other groups.
func (e *Engine) rereadWithContext(ctx context.Context, groups []contextGroup, chunking *types.ChunkingResult, originalRequest string, calls *atomic.Int64) []types.ChunkAnalysis {
	out := make([]types.ChunkAnalysis, len(groups))

	var g errgroup.Group
	g.SetLimit(e.cfg.MaxWorkers)

	for i, grp := range groups {
		g.Go(func() error {
			expanded, totalLines := buildExpandedContent(chunking, grp)

			ca := types.ChunkAnalysis{
				PrimaryChunkIndex: grp.Primary,
				ContextIndices:    grp.Indices,
				ExpandedContent:   expanded,
				TotalLines:        totalLines,
				AnalysisFocus:     focusReread,
			}

			res, err := e.analyzer.Analyze(ctx, analyzer.AnalyzeRequest{
				Context: expanded,
				Request: originalRequest,
			})
			calls.Add(1)

			if err != nil || res == nil {
				log.Printf("consolidator: re-analysis of group around chunk %d failed, recording empty analysis: %v",
					grp.Primary, err)
				ca.AnalysisFocus = focusRereadFailed
			} else {
				ca.Opportunities = res.Opportunities
				ca.Insights = res.Insights
				ca.Patterns = res.Patterns
				ca.Gaps = res.Gaps
			}

			out[i] = ca
			return nil
		})
	}

	// Goroutines only ever return nil; Wait is the join point that makes
	// the out slice safe to read.
	_ = g.Wait()

	return out
}

// buildExpandedContent concatenates group members in index order with a
// visible per-chunk header. Plain iteration, no recursion.
func buildExpandedContent(chunking *types.ChunkingResult, grp contextGroup) (string, int) {
	var b strings.Builder
	totalLines := 0

	for _, idx := range grp.Indices {
		chunk, ok := chunking.GetChunk(idx)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "=== Chunk %d", idx)
		if len(chunk.FilesIncluded) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(chunk.FilesIncluded, ", "))
		}
		b.WriteString(" ===\n")
		b.WriteString(chunk.Content)
		b.WriteString("\n")
		totalLines += lineCount(chunk.Content)
	}

	return b.String(), totalLines
}

// Focus labels recorded on stage three analyses.
const (
	focusReread       = "context_reread"
	focusRereadFailed = "context_reread_failed"
)

// mergeInsights folds findings into the result with dedup. A successful
// re-analysis supersedes its members' original analyses and carries a
// higher trust weight. Chunks outside every group, and members of groups
// whose re-read failed, contribute their original analysis at the lower
// weight.
func (e *Engine) mergeInsights(result *types.ConsolidatedResult, chunking *types.ChunkingResult, analyses map[int]*analyzer.Result, reanalyses []types.ChunkAnalysis) {
	covered := make(map[int]bool)
	for _, ra := range reanalyses {
		if ra.AnalysisFocus == focusRereadFailed {
			continue
		}
		for _, idx := range ra.ContextIndices {
			covered[idx] = true
		}
	}

	lines := chunkLineSpans(chunking)

	for _, ra := range reanalyses {
		if ra.AnalysisFocus == focusRereadFailed {
			continue
		}
		ref := e.mergeReference(ra.PrimaryChunkIndex, lines, e.cfg.ReanalyzedTrust, "re-analyzed with expanded context")
		e.addAll(result, types.CategoryOpportunity, ra.Opportunities, ref)
		e.addAll(result, types.CategoryInsight, ra.Insights, ref)
		e.addAll(result, types.CategoryPattern, ra.Patterns, ref)
		e.addAll(result, types.CategoryGap, ra.Gaps, ref)
	}

	for _, chunk := range chunking.Chunks {
		if covered[chunk.Index] {
			continue
		}
		res := analyses[chunk.Index]
		if res == nil || !res.HasFindings() {
			continue
		}
		ref := e.mergeReference(chunk.Index, lines, e.cfg.OriginalTrust, "original chunk analysis")
		e.addAll(result, types.CategoryOpportunity, res.Opportunities, ref)
		e.addAll(result, types.CategoryInsight, res.Insights, ref)
		e.addAll(result, types.CategoryPattern, res.Patterns, ref)
		e.addAll(result, types.CategoryGap, res.Gaps, ref)
	}
}

func (e *Engine) mergeReference(chunkIndex int, lines []lineSpan, trust float64, reason string) types.ChunkReference {
	ref := types.ChunkReference{
		ChunkIndex:     chunkIndex,
		RelevanceScore: trust,
		Reason:         reason,
	}
	if chunkIndex >= 0 && chunkIndex < len(lines) {
		ref.StartLine = lines[chunkIndex].start
		ref.EndLine = lines[chunkIndex].end
	}
	ref.ClampScore()
	return ref
}

func (e *Engine) addAll(result *types.ConsolidatedResult, cat types.FindingCategory, findings []types.Finding, ref types.ChunkReference) {
	for _, f := range findings {
		e.addFinding(result, cat, f, ref)
	}
}

// addFinding inserts one candidate finding with similarity dedup: a
// near-duplicate attaches its reference to the existing entry instead of
// creating a new one.
func (e *Engine) addFinding(result *types.ConsolidatedResult, cat types.FindingCategory, f types.Finding, ref types.ChunkReference) {
	f.ClampPriority()
	candidate := wordSet(f.Title + " " + f.Description)

	for _, existing := range result.Findings(cat) {
		sim := jaccard(candidate, wordSet(existing.Title+" "+existing.Description))
		if sim > e.cfg.SimilarityThreshold {
			existing.References = append(existing.References, ref)
			if f.Priority > existing.Priority {
				existing.Priority = f.Priority
			}
			return
		}
	}

	nf := f
	nf.References = []types.ChunkReference{ref}
	result.AddFinding(cat, &nf)
}

// identifyCrossChunkPatterns makes one summary-level analyzer call when any
// findings exist. Failure leaves both output lists empty without failing the
// run.
func (e *Engine) identifyCrossChunkPatterns(ctx context.Context, result *types.ConsolidatedResult, originalRequest string, calls *atomic.Int64) {
	if result.TotalFindings() == 0 {
		return
	}

	summary := buildFindingsSummary(result)
	res, err := e.analyzer.Analyze(ctx, analyzer.AnalyzeRequest{
		Context: summary,
		Request: "Identify cross-cutting patterns and system-level insights across these findings. Original request: " + originalRequest,
	})
	calls.Add(1)

	if err != nil || res == nil {
		log.Printf("consolidator: cross-chunk pattern pass failed, leaving patterns empty: %v", err)
		return
	}

	result.CrossChunkPatterns = res.CrossChunkPatterns
	result.SystemLevelInsights = res.SystemLevelInsights
}

// Summary bounds for the cross-chunk pass.
const (
	summaryTitlesPerList = 10
	summaryGapLimit      = 5
)

// buildFindingsSummary renders a compact view of the merged findings: the
// top titles per list plus a shorter tail of gaps.
func buildFindingsSummary(result *types.ConsolidatedResult) string {
	var b strings.Builder

	writeList := func(heading string, findings []*types.Finding, limit int) {
		if len(findings) == 0 {
			return
		}
		b.WriteString(heading)
		b.WriteString(":\n")
		for i, f := range findings {
			if i >= limit {
				break
			}
			fmt.Fprintf(&b, "- %s", f.Title)
			if f.Priority > 0 {
				fmt.Fprintf(&b, " (priority %d)", f.Priority)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	writeList("Opportunities", result.Opportunities, summaryTitlesPerList)
	writeList("Insights", result.Insights, summaryTitlesPerList)
	writeList("Patterns", result.Patterns, summaryTitlesPerList)
	writeList("Gaps", result.Gaps, summaryGapLimit)

	return b.String()
}

// analyzedChunkIndices returns the sorted chunk indices that had an input
// analysis.
func analyzedChunkIndices(chunking *types.ChunkingResult, analyses map[int]*analyzer.Result) []int {
	indices := make([]int, 0, len(analyses))
	for _, chunk := range chunking.Chunks {
		if analyses[chunk.Index] != nil {
			indices = append(indices, chunk.Index)
		}
	}
	sort.Ints(indices)
	return indices
}

func countChunksWithFindings(analyses map[int]*analyzer.Result) int {
	n := 0
	for _, res := range analyses {
		if res != nil && res.HasFindings() {
			n++
		}
	}
	return n
}

func countGroupMembers(groups []contextGroup) int {
	n := 0
	for _, grp := range groups {
		n += len(grp.Indices)
	}
	return n
}

// lineSpan is a chunk's 1-based line range within the original document.
type lineSpan struct {
	start, end int
}

// chunkLineSpans computes cumulative line ranges from each chunk's own span
// content.
func chunkLineSpans(chunking *types.ChunkingResult) []lineSpan {
	spans := make([]lineSpan, len(chunking.Chunks))
	line := 1
	for i, chunk := range chunking.Chunks {
		own := chunk.OwnContent()
		newlines := strings.Count(own, "\n")
		spans[i] = lineSpan{start: line, end: line + newlines}
		line += newlines
	}
	return spans
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
