package consolidator

import (
	"sort"

	"github.com/microsoft/amplifier-sub003/pkg/types"
)

// contextGroup is one disjoint expanded window: a primary chunk plus the
// neighbors merged into it. Indices is sorted ascending and covers [lo, hi]
// contiguously.
type contextGroup struct {
	Primary int
	Indices []int
	lo, hi  int
}

// expandContextWindows widens each relevant chunk's index into the interval
// [i-window, i+window], clamps to document bounds, then merges intersecting
// and adjacent-overlapping intervals until the remaining groups are
// pairwise disjoint. Every relevant chunk lands in exactly one group. A
// merged group keeps the primary of its highest-relevance member, with the
// earlier chunk winning ties.
func expandContextWindows(refs []types.ChunkReference, totalChunks, window int) []contextGroup {
	if len(refs) == 0 || totalChunks == 0 {
		return nil
	}

	type interval struct {
		lo, hi    int
		primary   int
		relevance float64
	}

	intervals := make([]interval, 0, len(refs))
	for _, ref := range refs {
		if ref.ChunkIndex < 0 || ref.ChunkIndex >= totalChunks {
			continue
		}
		lo := ref.ChunkIndex - window
		if lo < 0 {
			lo = 0
		}
		hi := ref.ChunkIndex + window
		if hi >= totalChunks {
			hi = totalChunks - 1
		}
		intervals = append(intervals, interval{
			lo:        lo,
			hi:        hi,
			primary:   ref.ChunkIndex,
			relevance: ref.RelevanceScore,
		})
	}
	if len(intervals) == 0 {
		return nil
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		if intervals[i].lo != intervals[j].lo {
			return intervals[i].lo < intervals[j].lo
		}
		return intervals[i].primary < intervals[j].primary
	})

	merged := []interval{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if iv.lo <= last.hi+1 {
			if iv.hi > last.hi {
				last.hi = iv.hi
			}
			if iv.relevance > last.relevance {
				last.relevance = iv.relevance
				last.primary = iv.primary
			}
			continue
		}
		merged = append(merged, iv)
	}

	groups := make([]contextGroup, len(merged))
	for i, iv := range merged {
		indices := make([]int, 0, iv.hi-iv.lo+1)
		for idx := iv.lo; idx <= iv.hi; idx++ {
			indices = append(indices, idx)
		}
		groups[i] = contextGroup{
			Primary: iv.primary,
			Indices: indices,
			lo:      iv.lo,
			hi:      iv.hi,
		}
	}
	return groups
}
