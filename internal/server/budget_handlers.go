package server

import (
	"encoding/json"
	"net/http"

	"github.com/tokencap/gateway/internal/gatewayerr"
	"github.com/tokencap/gateway/internal/ledger"
)

type setBudgetRequest struct {
	ProjectID  string  `json:"projectId"`
	LimitUSD   float64 `json:"limitUsd"`
	PeriodDays *int    `json:"periodDays,omitempty"`
}

func budgetResponse(b ledger.Budget) map[string]any {
	resp := map[string]any{
		"projectId":   b.ProjectID,
		"limitUsd":    b.LimitUSD,
		"spentUsd":    b.SpentUSD,
		"periodStart": b.PeriodStart,
	}
	if b.PeriodEnd != nil {
		resp["periodEnd"] = *b.PeriodEnd
	}
	return resp
}

// handleSetBudget implements POST /v1/budget: create or replace the budget
// for a project. Replacing a budget preserves spentUsd.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, gatewayerr.InvalidRequest, "malformed request body", nil)
		return
	}
	projectID := req.ProjectID
	if projectID == "" {
		projectID = s.resolveProjectID(r)
	}
	if req.LimitUSD <= 0 {
		writeError(w, gatewayerr.InvalidRequest, "limitUsd must be positive", nil)
		return
	}

	b, err := s.budget.SetBudget(projectID, req.LimitUSD, req.PeriodDays)
	if err != nil {
		writeError(w, gatewayerr.Internal, "failed to set budget", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(budgetResponse(b))
}

// handleGetBudget implements GET /v1/budget.
func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	projectID := s.resolveProjectID(r)
	b, ok, err := s.budget.GetBudget(projectID)
	if err != nil {
		writeError(w, gatewayerr.Internal, "failed to read budget", nil)
		return
	}
	if !ok {
		writeError(w, gatewayerr.NotFound, "no budget set for project", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(budgetResponse(b))
}

// handleResetBudget implements POST /v1/budget/reset: zeroes spentUsd and
// restarts the budget period for the project.
func (s *Server) handleResetBudget(w http.ResponseWriter, r *http.Request) {
	projectID := s.resolveProjectID(r)
	if err := s.budget.ResetBudgetSpent(projectID); err != nil {
		writeError(w, gatewayerr.NotFound, "no budget set for project", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"reset"}`))
}

// handleDeleteBudget implements DELETE /v1/budget: removes the budget
// entirely, after which the project is unmetered.
func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	projectID := s.resolveProjectID(r)
	existed, err := s.budget.DeleteBudget(projectID)
	if err != nil {
		writeError(w, gatewayerr.Internal, "failed to delete budget", nil)
		return
	}
	if !existed {
		writeError(w, gatewayerr.NotFound, "no budget set for project", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"deleted"}`))
}
