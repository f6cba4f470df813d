package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/microsoft/amplifier-sub003/pkg/types"
)

// Provider configuration
const (
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"

	// Default models
	DefaultOpenAIModel = "gpt-4o-mini"

	// Environment variables
	EnvProvider     = "AMPLIFIER_ANALYZER_PROVIDER"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvOpenAIModel  = "AMPLIFIER_ANALYZER_MODEL"
	EnvOpenAIBase   = "AMPLIFIER_ANALYZER_BASE_URL"

	defaultOpenAIBase = "https://api.openai.com/v1"

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
)

// systemPrompt instructs the model to answer with the tagged JSON structure
// the lenient decoder expects.
const systemPrompt = `You are a code and document analysis engine. Respond with a single JSON object containing the keys "opportunities", "insights", "patterns", "gaps" (arrays of {"title","description","priority"} with priority 1-10), and optionally "cross_chunk_patterns" and "system_level_insights" (arrays of strings). Emit JSON only, no prose.`

// OpenAIProvider implements Analyzer using the OpenAI chat completions API
// or any compatible endpoint.
type OpenAIProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates an OpenAI-backed analyzer.
func NewOpenAIProvider(apiKey string, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIAPIKey)
	}

	model := os.Getenv(EnvOpenAIModel)
	if model == "" {
		model = DefaultOpenAIModel
	}

	baseURL := os.Getenv(EnvOpenAIBase)
	if baseURL == "" {
		baseURL = defaultOpenAIBase
	}

	return &OpenAIProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		cache: cache,
	}, nil
}

// Analyze performs one analysis call with retry and caching. Transport
// failures surface as errors after retries are exhausted; an unparseable
// model reply is a degraded success (empty result with reason), never an
// error.
func (o *OpenAIProvider) Analyze(ctx context.Context, req AnalyzeRequest) (*Result, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	hash := ComputeHash(req)
	if o.cache != nil {
		if res, ok := o.cache.Get(hash); ok {
			return res, nil
		}
	}

	model := req.Model
	if model == "" {
		model = o.model
	}

	config := DefaultRetryConfig()
	raw, err := retryWithBackoff(ctx, config, func() (string, error) {
		return o.callAPI(ctx, req, model)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, MaxRetries, err)
	}

	res := ParseResult(raw)
	if o.cache != nil {
		o.cache.Set(hash, res)
	}

	return res, nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, req AnalyzeRequest, model string) (string, error) {
	reqBody := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": "Request: " + req.Request + "\n\n" + req.Context},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return apiResp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Provider() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Model() string {
	return o.model
}

func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// LocalProvider is a deterministic, no-network analyzer. It derives findings
// from annotation markers in the text (TODO, FIXME, NOTE, HACK), which makes
// it suitable for tests, dry runs, and environments without API access.
type LocalProvider struct {
	model string
	cache *Cache
}

// NewLocalProvider creates a local analyzer.
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{
		model: "local-heuristic",
		cache: cache,
	}, nil
}

// maxLocalFindings caps findings per category from the heuristic scan.
const maxLocalFindings = 5

func (l *LocalProvider) Analyze(ctx context.Context, req AnalyzeRequest) (*Result, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := ComputeHash(req)
	if l.cache != nil {
		if res, ok := l.cache.Get(hash); ok {
			return res, nil
		}
	}

	res := &Result{
		Opportunities:       []types.Finding{},
		Insights:            []types.Finding{},
		Patterns:            []types.Finding{},
		Gaps:                []types.Finding{},
		CrossChunkPatterns:  []string{},
		SystemLevelInsights: []string{},
	}

	for _, line := range strings.Split(req.Context, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(trimmed, "FIXME"):
			appendCapped(&res.Opportunities, types.Finding{
				Title:       "Fix flagged defect",
				Description: snippet(trimmed),
				Priority:    8,
			})
		case strings.Contains(trimmed, "TODO"):
			appendCapped(&res.Opportunities, types.Finding{
				Title:       "Address open TODO",
				Description: snippet(trimmed),
				Priority:    5,
			})
		case strings.Contains(trimmed, "NOTE"):
			appendCapped(&res.Insights, types.Finding{
				Title:       "Documented caveat",
				Description: snippet(trimmed),
				Priority:    3,
			})
		case strings.Contains(trimmed, "HACK") || strings.Contains(trimmed, "XXX"):
			appendCapped(&res.Gaps, types.Finding{
				Title:       "Workaround in place",
				Description: snippet(trimmed),
				Priority:    6,
			})
		}
	}

	if l.cache != nil {
		l.cache.Set(hash, res)
	}

	return res, nil
}

func appendCapped(list *[]types.Finding, f types.Finding) {
	if len(*list) >= maxLocalFindings {
		return
	}
	*list = append(*list, f)
}

// snippet bounds a source line for use as a finding description.
func snippet(line string) string {
	const maxLen = 160
	if len(line) > maxLen {
		return line[:maxLen]
	}
	return line
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}
