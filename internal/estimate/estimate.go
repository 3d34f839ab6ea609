// Package estimate combines the tokenizer and the pricing catalog into a
// pre-execution CostEstimate. It is stateless.
package estimate

import "github.com/tokencap/gateway/internal/catalog"

// CostEstimate is the pre-execution estimate the Request Pipeline uses for
// admission and for the response headers.
type CostEstimate struct {
	Provider               string
	ModelID                string
	InputTokens            int
	EstimatedOutputTokens  int
	InputCostUSD           float64
	EstimatedOutputCostUSD float64
	TotalEstimatedCostUSD  float64
	Confidence             catalog.Confidence
}

// Build combines a catalog lookup with tokenizer counts into a CostEstimate.
// Confidence is the minimum of the tokenizer's confidence and the
// known-model bit: a fallback-row resolution always demotes to low,
// regardless of how confident the tokenizer's own output-estimate was.
func Build(provider, requestedModel string, inputTokens, estimatedOutputTokens int, tokenizerConfidence catalog.Confidence, row catalog.ModelPricing, knownModel bool) CostEstimate {
	modelBit := catalog.ConfidenceHigh
	if !knownModel {
		modelBit = catalog.ConfidenceLow
	}
	confidence := min(tokenizerConfidence, modelBit)

	inputCost := row.InputCost(inputTokens)
	outputCost := row.OutputCost(estimatedOutputTokens)

	return CostEstimate{
		Provider:               row.Provider,
		ModelID:                row.ModelID,
		InputTokens:            inputTokens,
		EstimatedOutputTokens:  estimatedOutputTokens,
		InputCostUSD:           catalog.RoundUSD(inputCost),
		EstimatedOutputCostUSD: catalog.RoundUSD(outputCost),
		TotalEstimatedCostUSD:  catalog.RoundUSD(inputCost + outputCost),
		Confidence:             confidence,
	}
}

// min returns the more conservative (lower) of two confidence labels.
func min(a, b catalog.Confidence) catalog.Confidence {
	rank := map[catalog.Confidence]int{
		catalog.ConfidenceHigh:   2,
		catalog.ConfidenceMedium: 1,
		catalog.ConfidenceLow:    0,
	}
	if rank[a] <= rank[b] {
		return a
	}
	return b
}
