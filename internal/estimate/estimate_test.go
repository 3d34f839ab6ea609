package estimate

import (
	"testing"

	"github.com/tokencap/gateway/internal/catalog"
)

func TestBuild_TotalEqualsInputPlusOutput(t *testing.T) {
	row := catalog.ModelPricing{Provider: "openai", ModelID: "gpt-4o-mini", InputPricePerM: 0.15, OutputPricePerM: 0.60}
	est := Build("openai", "gpt-4o-mini", 100, 50, catalog.ConfidenceHigh, row, true)

	if got, want := est.TotalEstimatedCostUSD, est.InputCostUSD+est.EstimatedOutputCostUSD; got != want {
		t.Errorf("total = %v, want %v", got, want)
	}
	if est.Confidence != catalog.ConfidenceHigh {
		t.Errorf("confidence = %v, want high", est.Confidence)
	}
}

func TestBuild_FallbackRowDemotesToLow(t *testing.T) {
	row := catalog.ModelPricing{Provider: "openai", ModelID: "gpt-4o", InputPricePerM: 5, OutputPricePerM: 15}
	est := Build("openai", "unknown-model", 100, 50, catalog.ConfidenceHigh, row, false)

	if est.Confidence != catalog.ConfidenceLow {
		t.Errorf("confidence = %v, want low when model resolution fell back", est.Confidence)
	}
}

func TestBuild_ZeroTokensZeroCost(t *testing.T) {
	row := catalog.ModelPricing{Provider: "openai", ModelID: "gpt-4o-mini", InputPricePerM: 0.15, OutputPricePerM: 0.60}
	est := Build("openai", "gpt-4o-mini", 0, 0, catalog.ConfidenceHigh, row, true)

	if est.TotalEstimatedCostUSD != 0 {
		t.Errorf("expected zero cost for zero tokens, got %v", est.TotalEstimatedCostUSD)
	}
}
