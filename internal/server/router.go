// Package server implements the gateway's HTTP surface: the request
// pipeline that ties tokenizing, cost estimation, budget admission, the
// upstream adapters, and the ledger store together per request.
package server

import (
	"net/http"
)

// Router wraps an http.ServeMux and provides methods for registering
// routes.
type Router struct {
	mux *http.ServeMux
}

// NewRouter creates a new Router instance.
func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// SetupRoutes registers the gateway's full HTTP surface: the two proxy
// endpoints, usage and budget administration, and the model catalog.
func SetupRoutes(s *Server, r *Router) {
	r.HandleFunc("GET /health", s.handleHealth)

	r.HandleFunc("POST /v1/chat/completions", s.handleChatCompletions)
	r.HandleFunc("POST /v1/messages", s.handleMessages)

	r.HandleFunc("GET /v1/usage", s.handleGetUsageSummary)
	r.HandleFunc("GET /v1/usage/history", s.handleGetUsageHistory)
	r.HandleFunc("GET /v1/usage/stream", s.handleUsageStream)

	r.HandleFunc("POST /v1/budget", s.handleSetBudget)
	r.HandleFunc("GET /v1/budget", s.handleGetBudget)
	r.HandleFunc("POST /v1/budget/reset", s.handleResetBudget)
	r.HandleFunc("DELETE /v1/budget", s.handleDeleteBudget)

	r.HandleFunc("GET /v1/models", s.handleListModels)
}
