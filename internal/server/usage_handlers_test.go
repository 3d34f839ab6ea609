package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleGetUsageSummary(t *testing.T) {
	s := newTestServer(t, httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	if _, err := s.store.RecordUsage("default", "openai", "gpt-4o-mini", 100, 50, 0.5, "req-1"); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	rr := httptest.NewRecorder()
	s.handleGetUsageSummary(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"recordCount":1`) {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func TestHandleGetUsageHistory_RespectsLimit(t *testing.T) {
	s := newTestServer(t, httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	for i := 0; i < 3; i++ {
		if _, err := s.store.RecordUsage("default", "openai", "gpt-4o-mini", 10, 5, 0.01, "req-"+string(rune('a'+i))); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/usage/history?limit=2", nil)
	rr := httptest.NewRecorder()
	s.handleGetUsageHistory(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if strings.Count(rr.Body.String(), `"requestId"`) != 2 {
		t.Errorf("expected 2 records in response: %s", rr.Body.String())
	}
}

func TestHandleListModels(t *testing.T) {
	s := newTestServer(t, httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rr := httptest.NewRecorder()
	s.handleListModels(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"provider"`) {
		t.Errorf("expected model rows in response: %s", rr.Body.String())
	}
}
