package server

import (
	"net/http"

	"github.com/tokencap/gateway/internal/adapter"
	"github.com/tokencap/gateway/internal/budget"
	"github.com/tokencap/gateway/internal/catalog"
	"github.com/tokencap/gateway/internal/config"
	"github.com/tokencap/gateway/internal/ledger"
)

// Server holds every dependency the Request Pipeline's handlers need.
type Server struct {
	cfg     *config.Config
	store   *ledger.Store
	budget  *budget.Controller
	catalog *catalog.Catalog
	openai  *adapter.OpenAI
	claude  *adapter.Anthropic
	hub     *Hub
}

// NewServer wires a Server from a ledger store and configuration. It
// starts the admin usage-stream hub's run loop.
func NewServer(store *ledger.Store, cfg *config.Config) *Server {
	hub := NewHub()
	go hub.Run()

	httpClient := &http.Client{Timeout: adapter.DefaultTotalTimeout}
	streamClient := adapter.NewStreamClient()

	return &Server{
		cfg:     cfg,
		store:   store,
		budget:  budget.New(store),
		catalog: catalog.New(),
		openai:  &adapter.OpenAI{Client: httpClient, StreamClient: streamClient},
		claude:  &adapter.Anthropic{Client: httpClient, StreamClient: streamClient},
		hub:     hub,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
