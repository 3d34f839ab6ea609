package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tokencap/gateway/internal/gatewayerr"
)

// DefaultAnthropicEndpoint is the production messages endpoint.
const DefaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"

// AnthropicVersion is the API version header Anthropic requires on every
// request.
const AnthropicVersion = "2023-06-01"

// Anthropic implements Adapter for Anthropic-shaped messages.
type Anthropic struct {
	Endpoint string
	Client   *http.Client
	// StreamClient is used for stream:true requests instead of Client, so a
	// long-running stream is bounded by per-chunk idle time rather than
	// DefaultTotalTimeout. Defaults to NewStreamClient().
	StreamClient *http.Client
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) endpoint() string {
	if a.Endpoint != "" {
		return a.Endpoint
	}
	return DefaultAnthropicEndpoint
}

func (a *Anthropic) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return &http.Client{Timeout: DefaultTotalTimeout}
}

func (a *Anthropic) streamClient() *http.Client {
	if a.StreamClient != nil {
		return a.StreamClient
	}
	return NewStreamClient()
}

type anthropicMessagesRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  json.RawMessage `json:"messages"`
	Stream    bool            `json:"stream,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicMessagesResponse struct {
	Usage anthropicUsage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// anthropicStreamEvent covers the two event payloads that carry usage:
// message_start.message.usage.input_tokens and
// message_delta.usage.output_tokens.
type anthropicStreamEvent struct {
	Type    string `json:"type"`
	Message struct {
		Usage anthropicUsage `json:"usage"`
	} `json:"message"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ParseRequest validates the Anthropic-specific requirement that
// max_tokens be present.
func (a *Anthropic) ParseRequest(body []byte) (ParsedRequest, error) {
	var req anthropicMessagesRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return ParsedRequest{}, gatewayerr.Wrap(gatewayerr.InvalidRequest, "malformed messages request", err)
	}
	if req.Model == "" {
		return ParsedRequest{}, gatewayerr.New(gatewayerr.InvalidRequest, "model is required")
	}
	if req.MaxTokens <= 0 {
		return ParsedRequest{}, gatewayerr.New(gatewayerr.InvalidRequest, "max_tokens is required")
	}
	return ParsedRequest{Model: req.Model, MaxTokens: req.MaxTokens, Stream: req.Stream, Raw: body}, nil
}

func (a *Anthropic) Forward(req ParsedRequest, creds Credentials) (UpstreamResponse, error) {
	httpReq, err := http.NewRequest(http.MethodPost, a.endpoint(), bytes.NewReader(req.Raw))
	if err != nil {
		return UpstreamResponse{}, gatewayerr.Wrap(gatewayerr.Internal, "build upstream request", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-api-key", creds.APIKey)
	httpReq.Header.Set("anthropic-version", AnthropicVersion)

	client := a.client()
	if req.Stream {
		client = a.streamClient()
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return UpstreamResponse{}, gatewayerr.Wrap(gatewayerr.UpstreamError, "anthropic request failed", err)
	}

	if req.Stream {
		return UpstreamResponse{StatusCode: resp.StatusCode, Stream: resp.Body, Header: resp.Header}, nil
	}

	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return UpstreamResponse{}, gatewayerr.Wrap(gatewayerr.UpstreamError, "read anthropic response", err)
	}
	return UpstreamResponse{StatusCode: resp.StatusCode, Buffered: buf, Header: resp.Header}, nil
}

func (a *Anthropic) ExtractUsage(body []byte) (Usage, error) {
	var resp anthropicMessagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Usage{}, gatewayerr.Wrap(gatewayerr.UpstreamError, "malformed anthropic response", err)
	}
	if resp.Usage.InputTokens == 0 && resp.Usage.OutputTokens == 0 {
		return Usage{Reported: false}, nil
	}
	return Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens, Reported: true}, nil
}

// InterceptStream forwards an Anthropic SSE message stream byte for byte.
// message_start supplies input_tokens; each message_delta's
// usage.output_tokens is a running total and the last observed value wins.
func (a *Anthropic) InterceptStream(model string, sourceStream io.Reader, sink StreamSink) (Usage, error) {
	usage := Usage{}

	err := copySSE(sourceStream, sink, func(data string) {
		var evt anthropicStreamEvent
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return
		}
		switch evt.Type {
		case "message_start":
			usage.InputTokens = evt.Message.Usage.InputTokens
			usage.Reported = true
		case "message_delta":
			usage.OutputTokens = evt.Usage.OutputTokens
			usage.Reported = true
		}
	})
	if err != nil {
		return usage, fmt.Errorf("adapter: anthropic stream: %w", err)
	}
	return usage, nil
}

var _ Adapter = (*Anthropic)(nil)
