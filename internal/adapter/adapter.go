// Package adapter implements provider-specific upstream I/O: one concrete
// adapter per provider family (OpenAI-shaped chat completions,
// Anthropic-shaped messages), plus a shared Adapter interface for
// extension.
package adapter

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultTotalTimeout bounds non-streaming upstream calls; their client
// sets no separate connect timeout. Streaming calls have no total cap:
// DefaultConnectTimeout bounds their dial and response-header wait, and
// DefaultStreamIdleTimeout bounds the gap between chunks.
const (
	DefaultConnectTimeout    = 30 * time.Second
	DefaultTotalTimeout      = 5 * time.Minute
	DefaultStreamIdleTimeout = 90 * time.Second
)

// idleTimeoutConn resets its read deadline before every Read, so a
// connection is only killed when no bytes arrive for the idle window —
// never on total stream duration.
type idleTimeoutConn struct {
	net.Conn
	idle time.Duration
}

func (c *idleTimeoutConn) Read(b []byte) (int, error) {
	c.Conn.SetReadDeadline(time.Now().Add(c.idle))
	return c.Conn.Read(b)
}

// NewStreamClient builds an http.Client suited for long-lived SSE streams:
// no total request timeout, but the underlying connection times out if a
// read stalls for longer than DefaultStreamIdleTimeout.
func NewStreamClient() *http.Client {
	dialer := &net.Dialer{Timeout: DefaultConnectTimeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &idleTimeoutConn{Conn: conn, idle: DefaultStreamIdleTimeout}, nil
		},
		ResponseHeaderTimeout: DefaultConnectTimeout,
	}
	return &http.Client{Transport: transport}
}

// ParsedRequest is the provider-agnostic shape the Request Pipeline needs
// out of a parsed upstream request body.
type ParsedRequest struct {
	Model     string
	MaxTokens int // 0 if the caller did not specify one
	Stream    bool
	Raw       []byte // the original body, forwarded to upstream unchanged
}

// Usage is a provider-agnostic (inputTokens, outputTokens) pair extracted
// from a buffered response or accumulated from a stream.
type Usage struct {
	InputTokens  int
	OutputTokens int
	// Reported is false when the upstream omitted usage entirely; the
	// Request Pipeline records no ledger charge for such a response.
	Reported bool
}

// UpstreamResponse is either a buffered response or a streaming handle.
// Exactly one of Buffered or Stream is set.
type UpstreamResponse struct {
	StatusCode int
	Buffered   []byte
	Stream     io.ReadCloser
	Header     http.Header
}

// Credentials carries the resolved upstream auth for one request.
type Credentials struct {
	APIKey string
}

// Adapter is the provider abstraction: parse, forward, extractUsage, and
// interceptStream.
type Adapter interface {
	// Name identifies the provider family, e.g. "openai" or "anthropic".
	Name() string

	// ParseRequest validates and extracts the fields the pipeline needs
	// from a raw request body.
	ParseRequest(body []byte) (ParsedRequest, error)

	// Forward performs the upstream HTTP call. For streaming requests the
	// returned UpstreamResponse.Stream must be read and closed by the
	// caller.
	Forward(req ParsedRequest, creds Credentials) (UpstreamResponse, error)

	// ExtractUsage pulls (inputTokens, outputTokens) from a buffered
	// response body.
	ExtractUsage(body []byte) (Usage, error)

	// InterceptStream copies sourceStream to sink verbatim, chunk by
	// chunk, while accumulating usage from the parsed event stream. model
	// is the request's model, needed to count delta tokens with the same
	// BPE encoder used for the request's input. It must not buffer the
	// whole stream: sink.Write and sink.Flush are called for every chunk
	// read before the next read.
	InterceptStream(model string, sourceStream io.Reader, sink StreamSink) (Usage, error)
}

// StreamSink is the minimal surface InterceptStream needs to forward bytes
// without buffering; http.ResponseWriter plus http.Flusher satisfies it.
type StreamSink interface {
	io.Writer
	Flush()
}

// AuthHeaderName returns the provider-native header name used to source
// client-supplied credentials.
func AuthHeaderName(provider string) string {
	switch provider {
	case "anthropic":
		return "X-Api-Key"
	default:
		return "Authorization"
	}
}

// ExtractBearer strips a "Bearer " prefix if present.
func ExtractBearer(headerValue string) string {
	const prefix = "Bearer "
	if len(headerValue) > len(prefix) && headerValue[:len(prefix)] == prefix {
		return headerValue[len(prefix):]
	}
	return headerValue
}
