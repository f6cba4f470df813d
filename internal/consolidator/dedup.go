package consolidator

import "strings"

// wordSet lowercases text, strips leading/trailing punctuation from each
// whitespace-separated token, and returns the distinct words.
func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(raw, isPunct)
		if word != "" {
			set[word] = struct{}{}
		}
	}
	return set
}

func isPunct(r rune) bool {
	return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r < 0x80
}

// jaccard computes |A∩B| / |A∪B|. Two empty sets are identical.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
