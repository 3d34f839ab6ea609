package server

import (
	"encoding/json"
	"net/http"
)

// handleListModels implements the supplemented GET /v1/models endpoint,
// exposing the Pricing Catalog's table so a caller can discover supported
// models and their per-million-token rates without reading the source.
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	rows := s.catalog.Rows()

	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]any{
			"provider":         row.Provider,
			"modelId":          row.ModelID,
			"inputPricePerM":   row.InputPricePerM,
			"outputPricePerM":  row.OutputPricePerM,
			"contextWindow":    row.ContextWindow,
			"defaultMaxOutput": row.DefaultMaxOutput,
			"deprecated":       row.Deprecated,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"models": out})
}
