package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tokencap/gateway/internal/gatewayerr"
)

const defaultUsageHistoryLimit = 50

// handleGetUsageSummary implements GET /v1/usage: total spend, token
// counts, and record count for a project, plus its current budget view.
func (s *Server) handleGetUsageSummary(w http.ResponseWriter, r *http.Request) {
	projectID := s.resolveProjectID(r)
	summary, err := s.store.GetUsageSummary(projectID)
	if err != nil {
		writeError(w, gatewayerr.Internal, "failed to read usage summary", nil)
		return
	}

	resp := map[string]any{
		"projectId":    summary.ProjectID,
		"totalCostUsd": summary.TotalCostUSD,
		"totalInput":   summary.TotalInput,
		"totalOutput":  summary.TotalOutput,
		"recordCount":  summary.RecordCount,
	}
	if summary.Budget != nil {
		resp["budget"] = budgetResponse(*summary.Budget)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleGetUsageHistory implements GET /v1/usage/history: the newest-first
// list of a project's charges, bounded by an optional ?limit= query param.
func (s *Server) handleGetUsageHistory(w http.ResponseWriter, r *http.Request) {
	projectID := s.resolveProjectID(r)

	limit := defaultUsageHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.store.GetRecentUsage(projectID, limit)
	if err != nil {
		writeError(w, gatewayerr.Internal, "failed to read usage history", nil)
		return
	}

	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"id":           rec.ID,
			"projectId":    rec.ProjectID,
			"provider":     rec.Provider,
			"modelId":      rec.ModelID,
			"inputTokens":  rec.InputTokens,
			"outputTokens": rec.OutputTokens,
			"costUsd":      rec.CostUSD,
			"requestId":    rec.RequestID,
			"createdAt":    rec.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"records": out})
}
