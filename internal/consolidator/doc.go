// Package consolidator reconciles per-chunk analysis results into a single
// deduplicated report.
//
// Analyzing a large document chunk by chunk produces findings that are
// fragmented, repeated across overlapping chunks, and blind to relationships
// spanning chunk boundaries. The Engine repairs all three in five stages:
//
//  1. Relevance scoring. Every analyzed chunk gets a score in [0,1] built
//     from capped per-category sums over its findings plus a bonus for each
//     high-priority finding. Chunks are ranked descending, ties in
//     chunk-index order.
//
//  2. Context window expansion. Each relevant chunk widens into the index
//     interval [i-W, i+W]; intersecting intervals merge until the groups are
//     pairwise disjoint. Every relevant chunk belongs to exactly one group.
//
//  3. Context re-reads. Each group's member chunks are concatenated and sent
//     back through the analyzer. Groups are independent, so the calls run
//     concurrently under a bounded worker pool; a failed call records an
//     empty analysis and the run continues.
//
//  4. Merge with deduplication. Findings fold into the shared result one at
//     a time through a single writer. A candidate whose word-set Jaccard
//     similarity with an existing finding exceeds the threshold attaches a
//     chunk reference to that finding instead of adding a new entry.
//     Re-analyzed findings carry a higher trust weight than originals.
//
//  5. Cross-chunk patterns. One summary-level analyzer call over the merged
//     finding titles produces system-wide patterns and insights.
//
// A consolidation run is synchronous: when Consolidate returns, the result
// is complete and safe to read. Analyzer failures never abort a run; they
// degrade it to partial output.
package consolidator
