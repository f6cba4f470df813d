package analyzer

import (
	"encoding/json"
	"strings"

	"github.com/microsoft/amplifier-sub003/pkg/types"
)

// ParseResult decodes a model's raw text output into a Result. The decoder
// is deliberately lenient: it strips markdown code fences and any prose
// around the outermost JSON object, treats missing keys as empty lists, and
// returns an empty-with-reason result instead of an error when nothing
// parseable remains. It never fails.
func ParseResult(raw string) *Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return EmptyResult("empty analyzer response")
	}

	body := extractJSONObject(trimmed)
	if body == "" {
		return EmptyResult("no JSON object in analyzer response")
	}

	var res Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return EmptyResult("unparseable analyzer response: " + err.Error())
	}

	normalize(&res)
	return &res
}

// extractJSONObject returns the substring from the first '{' to the last
// '}', which tolerates code fences and leading/trailing prose.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// normalize replaces nil lists with empty ones and clamps priorities so
// downstream stages never branch on missing keys.
func normalize(res *Result) {
	if res.Opportunities == nil {
		res.Opportunities = []types.Finding{}
	}
	if res.Insights == nil {
		res.Insights = []types.Finding{}
	}
	if res.Patterns == nil {
		res.Patterns = []types.Finding{}
	}
	if res.Gaps == nil {
		res.Gaps = []types.Finding{}
	}
	if res.CrossChunkPatterns == nil {
		res.CrossChunkPatterns = []string{}
	}
	if res.SystemLevelInsights == nil {
		res.SystemLevelInsights = []string{}
	}

	for _, list := range [][]types.Finding{res.Opportunities, res.Insights, res.Patterns, res.Gaps} {
		for i := range list {
			list[i].ClampPriority()
		}
	}
}
