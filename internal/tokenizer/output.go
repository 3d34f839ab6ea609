package tokenizer

import "github.com/tokencap/gateway/internal/catalog"

// EstimateOutput ladders through three sources for the output-token
// estimate: a requested max wins at high confidence, the model's
// documented default wins at medium confidence, and a configurable
// fallback wins at low confidence.
func EstimateOutput(requestedMax *int, modelDefaultMax int, configuredDefault int) (tokens int, confidence catalog.Confidence) {
	if requestedMax != nil && *requestedMax > 0 {
		return int(float64(*requestedMax) * 0.75), catalog.ConfidenceHigh
	}
	if modelDefaultMax > 0 {
		return modelDefaultMax / 2, catalog.ConfidenceMedium
	}
	return configuredDefault, catalog.ConfidenceLow
}
