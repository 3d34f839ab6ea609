package server

import (
	"log"
	"net/http"
	"os"
	"strings"
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

var allowedOrigins map[string]bool

// InitCORS initializes the CORS configuration from the
// TOKENCAP_ALLOWED_ORIGINS environment variable, falling back to the
// built-in defaults.
func InitCORS() []string {
	envOrigins := os.Getenv("TOKENCAP_ALLOWED_ORIGINS")
	var origins []string

	if envOrigins != "" {
		origins = strings.Split(envOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	} else {
		origins = defaultAllowedOrigins
	}

	allowedOrigins = make(map[string]bool, len(origins))
	for _, o := range origins {
		allowedOrigins[o] = true
	}

	log.Printf("[server] CORS allowed origins: %v", origins)
	return origins
}

// IsAllowedOrigin checks if the given origin is in the whitelist.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	return allowedOrigins[origin]
}

// CORSMiddleware handles CORS for browser-based dashboard/admin clients;
// the proxy endpoints themselves are typically called server-to-server
// and do not depend on it.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && !IsAllowedOrigin(origin) {
			log.Printf("[server] CORS blocked origin: %s", origin)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Api-Key, X-Tokencap-Project-Id")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestLogMiddleware logs every request's method, path, and status,
// matching the plain-log-package style used throughout the gateway.
func RequestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lw := &statusCapturingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lw, r)
		log.Printf("[pipeline] %s %s -> %d", r.Method, r.URL.Path, lw.status)
	})
}

type statusCapturingWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusCapturingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush forwards to the underlying ResponseWriter's http.Flusher so
// streaming handlers see a flushable writer through the logging wrapper.
func (w *statusCapturingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying ResponseWriter for http.ResponseController
// and other callers that need the concrete writer.
func (w *statusCapturingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
