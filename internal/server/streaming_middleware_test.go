package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestForwardStreaming_ThroughRealMiddlewareChain drives a stream:true
// request through the same RequestLogMiddleware(CORSMiddleware(router))
// chain main.go wires up, instead of calling the handler directly with an
// httptest.ResponseRecorder. A ResponseRecorder satisfies http.Flusher on
// its own, which would hide a middleware wrapper that doesn't forward it.
func TestForwardStreaming_ThroughRealMiddlewareChain(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n\n")
		flusher.Flush()
		io.WriteString(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream)

	mux := NewRouter()
	SetupRoutes(s, mux)
	handler := RequestLogMiddleware(CORSMiddleware(mux))
	gateway := httptest.NewServer(handler)
	defer gateway.Close()

	body := `{"model":"gpt-4o-mini","messages":[{"role":"user","content":"hello"}],"stream":true}`
	req, err := http.NewRequest(http.MethodPost, gateway.URL+"/v1/chat/completions", strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Authorization", "Bearer sk-test")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s, want 200 (streaming must not fall back to \"streaming unsupported\")", resp.StatusCode, respBody)
	}
	if !strings.Contains(string(respBody), "hi") {
		t.Errorf("expected streamed content to be proxied through, got: %s", respBody)
	}
}
