package server

import (
	"encoding/json"

	"github.com/tokencap/gateway/internal/tokenizer"
)

// wireOpenAIMessage mirrors the OpenAI chat message wire shape; Content is
// almost always a plain string for chat completions.
type wireOpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

type wireOpenAIFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type wireOpenAIChatRequest struct {
	Messages  []wireOpenAIMessage  `json:"messages"`
	Functions []wireOpenAIFunction `json:"functions"`
}

func parseOpenAITokenizerInput(body []byte) ([]tokenizer.ChatMessage, []tokenizer.FunctionDef, error) {
	var req wireOpenAIChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, err
	}

	messages := make([]tokenizer.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, tokenizer.ChatMessage{Role: m.Role, Content: m.Content, Name: m.Name})
	}

	functions := make([]tokenizer.FunctionDef, 0, len(req.Functions))
	for _, f := range req.Functions {
		functions = append(functions, tokenizer.FunctionDef{
			Name:        f.Name,
			Description: f.Description,
			Parameters:  string(f.Parameters),
		})
	}
	return messages, functions, nil
}

// wireAnthropicContentBlock mirrors one element of an Anthropic message's
// content array.
type wireAnthropicContentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Name    string          `json:"name"`
	Input   json.RawMessage `json:"input"`
	Content json.RawMessage `json:"content"` // tool_result's nested content
}

// wireAnthropicMessage's Content may be a bare string or an array of
// blocks; RawMessage defers the choice until we inspect it.
type wireAnthropicMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type wireAnthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type wireAnthropicMessagesRequest struct {
	System   string                 `json:"system"`
	Messages []wireAnthropicMessage `json:"messages"`
	Tools    []wireAnthropicTool    `json:"tools"`
}

func parseAnthropicTokenizerInput(body []byte) (string, []tokenizer.AnthropicMessage, []tokenizer.AnthropicTool, error) {
	var req wireAnthropicMessagesRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", nil, nil, err
	}

	messages := make([]tokenizer.AnthropicMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, tokenizer.AnthropicMessage{Role: m.Role, Blocks: parseAnthropicBlocks(m.Content)})
	}

	tools := make([]tokenizer.AnthropicTool, 0, len(req.Tools))
	for _, t := range req.Tools {
		tools = append(tools, tokenizer.AnthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: string(t.InputSchema),
		})
	}
	return req.System, messages, tools, nil
}

// parseAnthropicBlocks normalizes a message's content field, which is
// either a bare string (implicitly a single text block) or an array of
// typed content blocks.
func parseAnthropicBlocks(raw json.RawMessage) []tokenizer.AnthropicBlock {
	if len(raw) == 0 {
		return nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return []tokenizer.AnthropicBlock{{Kind: tokenizer.BlockText, Text: asString}}
	}

	var blocks []wireAnthropicContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}

	out := make([]tokenizer.AnthropicBlock, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case "tool_use":
			out = append(out, tokenizer.AnthropicBlock{Kind: tokenizer.BlockToolUse, ToolName: b.Name, ToolInput: string(b.Input)})
		case "tool_result":
			out = append(out, tokenizer.AnthropicBlock{Kind: tokenizer.BlockToolResult, Text: toolResultText(b.Content)})
		default:
			out = append(out, tokenizer.AnthropicBlock{Kind: tokenizer.BlockText, Text: b.Text})
		}
	}
	return out
}

// toolResultText extracts text from a tool_result block's content, which
// may itself be a bare string or a nested array of text blocks.
func toolResultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var nested []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		out := ""
		for _, n := range nested {
			out += n.Text
		}
		return out
	}
	return ""
}
