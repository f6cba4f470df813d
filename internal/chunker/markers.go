package chunker

import (
	"regexp"
	"strings"
)

// Semantic-unit boundary markers: <file path="...">...</file> pairs carrying
// a path-like identifier. Inputs without markers degrade to pure token-count
// splitting.
var openMarkerRe = regexp.MustCompile(`<file path="([^"]*)">`)

const closeMarker = "</file>"

// unitSpan records one semantic unit's [start,end) character span. end is
// the offset just past the close marker, or -1 when the unit is unclosed.
type unitSpan struct {
	path  string
	start int
	end   int
}

// scanUnits finds every semantic unit in content. Each open marker is paired
// with the next close marker after it; unmatched opens yield end == -1 and
// the affected chunks report IsCompleteUnit false rather than failing.
func scanUnits(content string) []unitSpan {
	opens := openMarkerRe.FindAllStringSubmatchIndex(content, -1)
	if len(opens) == 0 {
		return nil
	}

	units := make([]unitSpan, 0, len(opens))
	for _, m := range opens {
		u := unitSpan{
			path:  content[m[2]:m[3]],
			start: m[0],
			end:   -1,
		}
		if rel := strings.Index(content[m[1]:], closeMarker); rel >= 0 {
			u.end = m[1] + rel + len(closeMarker)
		}
		units = append(units, u)
	}
	return units
}

// effectiveEnd treats an unclosed unit as running to the end of the input.
func (u unitSpan) effectiveEnd(contentLen int) int {
	if u.end < 0 {
		return contentLen
	}
	return u.end
}

// intersects reports whether the unit's span touches [start,end).
func (u unitSpan) intersects(start, end, contentLen int) bool {
	return u.start < end && u.effectiveEnd(contentLen) > start
}

// containedIn reports whether the unit lies entirely inside [start,end) with
// matched markers, which is what makes a chunk's view of it complete.
func (u unitSpan) containedIn(start, end int) bool {
	return u.end >= 0 && u.start >= start && u.end <= end
}

// unitsForSpan returns the paths of units touching [start,end) in document
// order, and whether every one of them is complete inside the span.
func unitsForSpan(units []unitSpan, start, end, contentLen int) ([]string, bool) {
	var paths []string
	seen := make(map[string]bool)
	complete := true

	for _, u := range units {
		if !u.intersects(start, end, contentLen) {
			continue
		}
		if !seen[u.path] {
			seen[u.path] = true
			paths = append(paths, u.path)
		}
		if !u.containedIn(start, end) {
			complete = false
		}
	}

	return paths, complete
}

// distinctUnitCount counts unique unit paths across the whole input.
func distinctUnitCount(units []unitSpan) int {
	seen := make(map[string]bool, len(units))
	for _, u := range units {
		seen[u.path] = true
	}
	return len(seen)
}
