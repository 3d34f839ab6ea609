package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tokencap/gateway/internal/gatewayerr"
	"github.com/tokencap/gateway/internal/tokenizer"
)

// DefaultOpenAIEndpoint is the production chat completions endpoint.
const DefaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAI implements Adapter for OpenAI-shaped chat completions.
type OpenAI struct {
	// Endpoint overrides DefaultOpenAIEndpoint; used in tests against a
	// mock upstream.
	Endpoint string
	Client   *http.Client
	// StreamClient is used for stream:true requests instead of Client, so a
	// long-running stream is bounded by per-chunk idle time rather than
	// DefaultTotalTimeout. Defaults to NewStreamClient().
	StreamClient *http.Client
}

func (a *OpenAI) Name() string { return "openai" }

func (a *OpenAI) endpoint() string {
	if a.Endpoint != "" {
		return a.Endpoint
	}
	return DefaultOpenAIEndpoint
}

func (a *OpenAI) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return &http.Client{Timeout: DefaultTotalTimeout}
}

func (a *OpenAI) streamClient() *http.Client {
	if a.StreamClient != nil {
		return a.StreamClient
	}
	return NewStreamClient()
}

type openAIChatRequest struct {
	Model     string          `json:"model"`
	Messages  json.RawMessage `json:"messages"`
	MaxTokens *int            `json:"max_tokens,omitempty"`
	Stream    bool            `json:"stream,omitempty"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type openAIChatResponse struct {
	Usage openAIUsage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// openAIStreamChunk is one "data:" payload of a chat.completion.chunk
// stream.
type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *openAIUsage `json:"usage,omitempty"`
}

func (a *OpenAI) ParseRequest(body []byte) (ParsedRequest, error) {
	var req openAIChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return ParsedRequest{}, gatewayerr.Wrap(gatewayerr.InvalidRequest, "malformed chat completion request", err)
	}
	if req.Model == "" {
		return ParsedRequest{}, gatewayerr.New(gatewayerr.InvalidRequest, "model is required")
	}
	maxTokens := 0
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	return ParsedRequest{Model: req.Model, MaxTokens: maxTokens, Stream: req.Stream, Raw: body}, nil
}

func (a *OpenAI) Forward(req ParsedRequest, creds Credentials) (UpstreamResponse, error) {
	httpReq, err := http.NewRequest(http.MethodPost, a.endpoint(), bytes.NewReader(req.Raw))
	if err != nil {
		return UpstreamResponse{}, gatewayerr.Wrap(gatewayerr.Internal, "build upstream request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+creds.APIKey)

	client := a.client()
	if req.Stream {
		client = a.streamClient()
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return UpstreamResponse{}, gatewayerr.Wrap(gatewayerr.UpstreamError, "openai request failed", err)
	}

	if req.Stream {
		return UpstreamResponse{StatusCode: resp.StatusCode, Stream: resp.Body, Header: resp.Header}, nil
	}

	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return UpstreamResponse{}, gatewayerr.Wrap(gatewayerr.UpstreamError, "read openai response", err)
	}
	return UpstreamResponse{StatusCode: resp.StatusCode, Buffered: buf, Header: resp.Header}, nil
}

func (a *OpenAI) ExtractUsage(body []byte) (Usage, error) {
	var resp openAIChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Usage{}, gatewayerr.Wrap(gatewayerr.UpstreamError, "malformed openai response", err)
	}
	if resp.Usage.PromptTokens == 0 && resp.Usage.CompletionTokens == 0 {
		return Usage{Reported: false}, nil
	}
	return Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens, Reported: true}, nil
}

// InterceptStream forwards an OpenAI chat.completion.chunk stream byte for
// byte while summing delta content tokens with the model's own BPE
// encoder. The `[DONE]` sentinel is ignored.
func (a *OpenAI) InterceptStream(model string, sourceStream io.Reader, sink StreamSink) (Usage, error) {
	usage := Usage{}
	var outputTokens int

	err := copySSE(sourceStream, sink, func(data string) {
		if data == "[DONE]" {
			return
		}
		var chunk openAIStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return
		}
		if chunk.Usage != nil {
			usage.InputTokens = chunk.Usage.PromptTokens
			usage.OutputTokens = chunk.Usage.CompletionTokens
			usage.Reported = true
			return
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			outputTokens += tokenizer.CountText(model, choice.Delta.Content)
			usage.Reported = true
		}
	})
	if err != nil {
		return usage, fmt.Errorf("adapter: openai stream: %w", err)
	}
	if usage.OutputTokens == 0 && outputTokens > 0 {
		usage.OutputTokens = outputTokens
	}
	return usage, nil
}

var _ Adapter = (*OpenAI)(nil)
