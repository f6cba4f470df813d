package analyzer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/amplifier-sub003/pkg/types"
)

func TestParseResult_WellFormed(t *testing.T) {
	raw := `{
		"opportunities": [{"title": "Cache results", "description": "Repeated lookups", "priority": 7}],
		"insights": [{"title": "Single writer", "description": "All merges serialized"}],
		"patterns": [],
		"gaps": [{"title": "No docs", "description": "Missing package docs", "priority": 2}]
	}`

	res := ParseResult(raw)
	require.False(t, res.Empty)
	require.Len(t, res.Opportunities, 1)
	assert.Equal(t, "Cache results", res.Opportunities[0].Title)
	assert.Equal(t, 7, res.Opportunities[0].Priority)
	assert.Len(t, res.Insights, 1)
	assert.Empty(t, res.Patterns)
	assert.Len(t, res.Gaps, 1)
}

func TestParseResult_FencedAndProse(t *testing.T) {
	raw := "Here is the analysis you asked for:\n```json\n" +
		`{"insights": [{"title": "a", "description": "b"}]}` +
		"\n```\nLet me know if you need more."

	res := ParseResult(raw)
	require.False(t, res.Empty)
	assert.Len(t, res.Insights, 1)
}

func TestParseResult_MissingKeysDefaultEmpty(t *testing.T) {
	res := ParseResult(`{"opportunities": []}`)
	require.False(t, res.Empty)
	assert.NotNil(t, res.Insights)
	assert.NotNil(t, res.Patterns)
	assert.NotNil(t, res.Gaps)
	assert.NotNil(t, res.CrossChunkPatterns)
	assert.False(t, res.HasFindings())
}

func TestParseResult_Garbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json at all", "{broken json"} {
		res := ParseResult(raw)
		require.True(t, res.Empty, "input %q should be empty-with-reason", raw)
		assert.NotEmpty(t, res.Reason)
		assert.False(t, res.HasFindings())
	}
}

func TestParseResult_ClampsPriorities(t *testing.T) {
	res := ParseResult(`{"gaps": [{"title": "a", "description": "b", "priority": 42}]}`)
	require.Len(t, res.Gaps, 1)
	assert.Equal(t, types.MaxPriority, res.Gaps[0].Priority)
}

func TestLocalProvider_Deterministic(t *testing.T) {
	p, err := NewLocalProvider(nil)
	require.NoError(t, err)

	req := AnalyzeRequest{
		Context: "func main() {\n// TODO: handle errors\n// FIXME: leaks goroutine\n// NOTE: stdout is reserved\n// HACK: sleep to avoid race\n}",
		Request: "review this",
	}

	first, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.FindingCount(), second.FindingCount())
	assert.Len(t, first.Opportunities, 2) // TODO + FIXME
	assert.Len(t, first.Insights, 1)      // NOTE
	assert.Len(t, first.Gaps, 1)          // HACK

	// FIXME outranks TODO
	var priorities []int
	for _, f := range first.Opportunities {
		priorities = append(priorities, f.Priority)
	}
	assert.Contains(t, priorities, 8)
	assert.Contains(t, priorities, 5)
}

func TestLocalProvider_EmptyContext(t *testing.T) {
	p, err := NewLocalProvider(nil)
	require.NoError(t, err)

	_, err = p.Analyze(context.Background(), AnalyzeRequest{Request: "x"})
	assert.ErrorIs(t, err, ErrEmptyContext)
}

func TestCache_CopiesOnGet(t *testing.T) {
	cache := NewCache(10)
	req := AnalyzeRequest{Context: "text", Request: "req"}
	hash := ComputeHash(req)

	cache.Set(hash, &Result{
		Opportunities: []types.Finding{{Title: "original"}},
	})

	got, ok := cache.Get(hash)
	require.True(t, ok)
	got.Opportunities[0].Title = "mutated"
	got.Opportunities = append(got.Opportunities, types.Finding{Title: "extra"})

	again, ok := cache.Get(hash)
	require.True(t, ok)
	require.Len(t, again.Opportunities, 1)
	assert.Equal(t, "original", again.Opportunities[0].Title)
}

func TestCache_HashDistinguishesRequests(t *testing.T) {
	a := ComputeHash(AnalyzeRequest{Context: "ab", Request: "c"})
	b := ComputeHash(AnalyzeRequest{Context: "a", Request: "bc"})
	assert.NotEqual(t, a, b)
}

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		key      string
		expected string
	}{
		{"explicit openai", "openai", "", ProviderOpenAI},
		{"explicit local", "local", "", ProviderLocal},
		{"key present", "", "test-key", ProviderOpenAI},
		{"nothing set", "", "", ProviderLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvProvider, tt.provider)
			t.Setenv(EnvOpenAIAPIKey, tt.key)
			assert.Equal(t, tt.expected, DetectProvider())
		})
	}
}

func TestNewFromEnv_LocalFallback(t *testing.T) {
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvOpenAIAPIKey, "")

	a, err := NewFromEnv()
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	assert.Equal(t, ProviderLocal, a.Provider())
}

func TestNewFromEnv_UnknownProvider(t *testing.T) {
	t.Setenv(EnvProvider, "quantum")

	_, err := NewFromEnv()
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")
	_, err := NewOpenAIProvider("", nil)
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestRetryWithBackoff(t *testing.T) {
	fastRetry := RetryConfig{
		Attempts:   3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2,
	}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		got, err := retryWithBackoff(context.Background(), fastRetry, func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error when attempts exhaust", func(t *testing.T) {
		calls := 0
		_, err := retryWithBackoff(context.Background(), fastRetry, func() (string, error) {
			calls++
			return "", fmt.Errorf("failure %d", calls)
		})
		require.Error(t, err)
		assert.EqualError(t, err, "failure 3")
		assert.Equal(t, 3, calls)
	})

	t.Run("canceled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := retryWithBackoff(ctx, fastRetry, func() (string, error) {
			calls++
			cancel()
			return "", errors.New("transient")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
