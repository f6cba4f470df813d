package tokenizer

// ModelProfile carries per-1000-token pricing for one model.
type ModelProfile struct {
	Name            string
	InputCostPer1K  float64
	OutputCostPer1K float64
}

// CostEstimate is the projected cost of a call in the profile's currency.
type CostEstimate struct {
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`
}

// Known model profiles. Rates are USD per 1000 tokens.
var (
	ProfileGPT4o = ModelProfile{
		Name:            "gpt-4o",
		InputCostPer1K:  0.0025,
		OutputCostPer1K: 0.01,
	}
	ProfileGPT4oMini = ModelProfile{
		Name:            "gpt-4o-mini",
		InputCostPer1K:  0.00015,
		OutputCostPer1K: 0.0006,
	}
	ProfileO3Mini = ModelProfile{
		Name:            "o3-mini",
		InputCostPer1K:  0.0011,
		OutputCostPer1K: 0.0044,
	}
)

var profiles = map[string]ModelProfile{
	ProfileGPT4o.Name:     ProfileGPT4o,
	ProfileGPT4oMini.Name: ProfileGPT4oMini,
	ProfileO3Mini.Name:    ProfileO3Mini,
}

// ProfileFor looks up a model profile by name.
func ProfileFor(model string) (ModelProfile, bool) {
	p, ok := profiles[model]
	return p, ok
}

// EstimateCost projects input and output cost for the given token count.
// Pure arithmetic over the profile's rates: no I/O, no side effects. The
// output estimate assumes the model emits as many tokens as it reads, which
// is the conservative bound for analysis-style calls.
func EstimateCost(tokenCount int, profile ModelProfile) CostEstimate {
	if tokenCount < 0 {
		tokenCount = 0
	}

	thousands := float64(tokenCount) / 1000.0
	in := thousands * profile.InputCostPer1K
	out := thousands * profile.OutputCostPer1K

	return CostEstimate{
		InputCost:  in,
		OutputCost: out,
		TotalCost:  in + out,
	}
}
