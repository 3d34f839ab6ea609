package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/tokencap/gateway/internal/adapter"
	"github.com/tokencap/gateway/internal/catalog"
	"github.com/tokencap/gateway/internal/estimate"
	"github.com/tokencap/gateway/internal/gatewayerr"
	"github.com/tokencap/gateway/internal/tokenizer"
)

const (
	headerRequestID             = "X-Tokencap-Request-Id"
	headerInputTokens           = "X-Tokencap-Input-Tokens"
	headerEstimatedOutputTokens = "X-Tokencap-Estimated-Output-Tokens"
	headerEstimatedCostUSD      = "X-Tokencap-Estimated-Cost-USD"
	headerConfidence            = "X-Tokencap-Confidence"
	headerOutputTokens          = "X-Tokencap-Output-Tokens"
	headerCostUSD               = "X-Tokencap-Cost-USD"
	headerBudgetRemaining       = "X-Tokencap-Budget-Remaining"

	headerProjectID = "X-Tokencap-Project-Id"
)

// resolveProjectID resolves the caller's project in priority order:
// header, then query parameter, then configured default.
func (s *Server) resolveProjectID(r *http.Request) string {
	if id := r.Header.Get(headerProjectID); id != "" {
		return id
	}
	if id := r.URL.Query().Get("project_id"); id != "" {
		return id
	}
	return s.cfg.Server.DefaultProjectID
}

// resolveCredentials sources upstream credentials from the incoming
// request's provider-native auth header, falling back to the
// server-configured default.
func (s *Server) resolveCredentials(r *http.Request, provider string) adapter.Credentials {
	switch provider {
	case "anthropic":
		if key := r.Header.Get("X-Api-Key"); key != "" {
			return adapter.Credentials{APIKey: key}
		}
		return adapter.Credentials{APIKey: s.cfg.Upstream.AnthropicAPIKey}
	default:
		if auth := r.Header.Get("Authorization"); auth != "" {
			return adapter.Credentials{APIKey: adapter.ExtractBearer(auth)}
		}
		return adapter.Credentials{APIKey: s.cfg.Upstream.OpenAIAPIKey}
	}
}

func writeEstimateHeaders(w http.ResponseWriter, requestID string, est estimate.CostEstimate) {
	w.Header().Set(headerRequestID, requestID)
	w.Header().Set(headerInputTokens, itoa(est.InputTokens))
	w.Header().Set(headerEstimatedOutputTokens, itoa(est.EstimatedOutputTokens))
	w.Header().Set(headerEstimatedCostUSD, ftoa(est.TotalEstimatedCostUSD))
	w.Header().Set(headerConfidence, string(est.Confidence))
}

// handleChatCompletions proxies OpenAI-shaped chat completion requests.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	s.forward(w, r, s.openai, "openai")
}

// handleMessages proxies Anthropic-shaped messages requests.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	s.forward(w, r, s.claude, "anthropic")
}

// forward runs the shared per-request flow: parse, estimate, admit against
// budget, forward upstream, then charge the ledger from observed usage.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, ad adapter.Adapter, provider string) {
	requestID := uuid.New().String()
	projectID := s.resolveProjectID(r)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, gatewayerr.InvalidRequest, "failed to read request body", nil)
		return
	}

	parsed, err := ad.ParseRequest(body)
	if err != nil {
		writeGatewayErr(w, err)
		return
	}

	inputTokens, tokenizerConfidence := countInputTokens(provider, parsed.Model, body)

	row, known := s.catalog.Resolve(provider, parsed.Model)
	requestedMax := 0
	if parsed.MaxTokens > 0 {
		requestedMax = parsed.MaxTokens
	}
	var requestedMaxPtr *int
	if requestedMax > 0 {
		requestedMaxPtr = &requestedMax
	}
	outputTokens, outputConfidence := tokenizer.EstimateOutput(requestedMaxPtr, row.DefaultMaxOutput, s.cfg.Upstream.DefaultMaxOutputTokens)
	combinedConfidence := minConfidenceOf(tokenizerConfidence, outputConfidence)

	est := estimate.Build(provider, parsed.Model, inputTokens, outputTokens, combinedConfidence, row, known)

	decision, err := s.budget.Admit(projectID, est)
	if err != nil {
		writeError(w, gatewayerr.Internal, "budget admission failed", nil)
		return
	}
	if !decision.Admitted {
		writeEstimateHeaders(w, requestID, est)
		writeError(w, gatewayerr.BudgetExceeded, "estimated cost exceeds remaining budget", map[string]any{
			"currentSpendUsd":    decision.Reason.CurrentSpendUSD,
			"limitUsd":           decision.Reason.LimitUSD,
			"estimatedCostUsd":   decision.Reason.EstimatedCostUSD,
			"remainingBudgetUsd": decision.Reason.RemainingAfterUSD,
		})
		return
	}
	if decision.Advisory != "" {
		log.Printf("[pipeline] project %s admission advisory: %s", projectID, decision.Advisory)
	}

	creds := s.resolveCredentials(r, provider)
	if creds.APIKey == "" {
		writeEstimateHeaders(w, requestID, est)
		writeError(w, gatewayerr.Unauthorized, "no upstream credentials available", nil)
		return
	}

	upstreamResp, err := ad.Forward(parsed, creds)
	if err != nil {
		writeEstimateHeaders(w, requestID, est)
		writeGatewayErr(w, err)
		return
	}

	if parsed.Stream {
		s.forwardStreaming(w, r, ad, provider, projectID, requestID, parsed.Model, est, upstreamResp)
		return
	}
	s.forwardBuffered(w, ad, provider, projectID, requestID, parsed.Model, est, upstreamResp)
}

func (s *Server) forwardBuffered(w http.ResponseWriter, ad adapter.Adapter, provider, projectID, requestID, modelID string, est estimate.CostEstimate, resp adapter.UpstreamResponse) {
	writeEstimateHeaders(w, requestID, est)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Non-2xx: proxy verbatim, no charge.
		w.WriteHeader(resp.StatusCode)
		w.Write(resp.Buffered)
		return
	}

	usage, err := ad.ExtractUsage(resp.Buffered)
	if err != nil {
		writeError(w, gatewayerr.UpstreamError, "malformed upstream response", nil)
		return
	}

	if usage.Reported {
		row, _ := s.catalog.Resolve(provider, modelID)
		costUSD := row.InputCost(usage.InputTokens) + row.OutputCost(usage.OutputTokens)

		chargeRecord, err := s.store.RecordUsage(projectID, provider, modelID, usage.InputTokens, usage.OutputTokens, costUSD, requestID)
		if err != nil {
			log.Printf("[pipeline] record usage failed for request %s: %v", requestID, err)
		} else {
			s.hub.BroadcastUsage(chargeRecord)
		}

		w.Header().Set(headerOutputTokens, itoa(usage.OutputTokens))
		w.Header().Set(headerCostUSD, ftoa(catalog.RoundUSD(costUSD)))
		if remaining, ok, err := s.budget.Remaining(projectID); err == nil && ok {
			w.Header().Set(headerBudgetRemaining, ftoa(catalog.RoundUSD(remaining)))
		}
	}

	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Buffered)
}

func (s *Server) forwardStreaming(w http.ResponseWriter, r *http.Request, ad adapter.Adapter, provider, projectID, requestID, modelID string, est estimate.CostEstimate, resp adapter.UpstreamResponse) {
	defer resp.Stream.Close()

	writeEstimateHeaders(w, requestID, est)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, gatewayerr.Internal, "streaming unsupported by response writer", nil)
		return
	}
	w.WriteHeader(resp.StatusCode)
	flusher.Flush()

	sink := &flushWriter{w: w, f: flusher}
	usage, streamErr := ad.InterceptStream(modelID, resp.Stream, sink)

	// Charge whatever was observed even on client disconnect or a
	// mid-stream upstream error.
	if usage.Reported || usage.InputTokens > 0 || usage.OutputTokens > 0 {
		row, _ := s.catalog.Resolve(provider, modelID)
		cost := row.InputCost(usage.InputTokens) + row.OutputCost(usage.OutputTokens)
		chargeRecord, err := s.store.RecordUsage(projectID, provider, modelID, usage.InputTokens, usage.OutputTokens, cost, requestID)
		if err != nil {
			log.Printf("[pipeline] record streaming usage failed for request %s: %v", requestID, err)
		} else {
			s.hub.BroadcastUsage(chargeRecord)
		}
	}

	if streamErr != nil && !errors.Is(streamErr, io.EOF) {
		log.Printf("[pipeline] stream interception error for request %s: %v", requestID, streamErr)
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

type flushWriter struct {
	w io.Writer
	f http.Flusher
}

func (fw *flushWriter) Write(p []byte) (int, error) { return fw.w.Write(p) }
func (fw *flushWriter) Flush()                      { fw.f.Flush() }

// minConfidenceOf returns the more conservative (lower) of two confidence
// labels, mirroring estimate.min for the pipeline's own two-ladder combine
// (tokenizer confidence vs. output-estimation confidence).
func minConfidenceOf(a, b catalog.Confidence) catalog.Confidence {
	rank := map[catalog.Confidence]int{catalog.ConfidenceHigh: 2, catalog.ConfidenceMedium: 1, catalog.ConfidenceLow: 0}
	if rank[a] <= rank[b] {
		return a
	}
	return b
}

// countInputTokens dispatches to the provider-shaped token counters.
// OpenAI counting uses the exact BPE encoder and is high confidence;
// Anthropic counting is an explicit approximation and is capped at
// medium confidence.
func countInputTokens(provider, model string, body []byte) (tokens int, confidence catalog.Confidence) {
	switch provider {
	case "anthropic":
		system, messages, tools, err := parseAnthropicTokenizerInput(body)
		if err != nil {
			return 0, catalog.ConfidenceLow
		}
		return tokenizer.CountAnthropicMessages(system, messages, tools), catalog.ConfidenceMedium
	default:
		messages, functions, err := parseOpenAITokenizerInput(body)
		if err != nil {
			return 0, catalog.ConfidenceLow
		}
		return tokenizer.CountOpenAIChat(model, messages, functions), catalog.ConfidenceHigh
	}
}
