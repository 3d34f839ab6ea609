package tokenizer

const (
	anthropicMessageOverhead = 4  // role overhead per message
	anthropicSystemOverhead  = 4  // overhead for the system prompt
	anthropicPerToolOverhead = 10 // overhead per tool definition
)

// AnthropicBlockKind identifies the kind of content block counted.
type AnthropicBlockKind string

const (
	BlockText       AnthropicBlockKind = "text"
	BlockToolUse    AnthropicBlockKind = "tool_use"
	BlockToolResult AnthropicBlockKind = "tool_result"
)

// AnthropicBlock is one content block within a message.
type AnthropicBlock struct {
	Kind AnthropicBlockKind

	// Text holds the block's text for Kind == BlockText, and the
	// recursively-extracted text for Kind == BlockToolResult.
	Text string

	// ToolName and ToolInput (JSON-stringified) apply to Kind == BlockToolUse.
	ToolName  string
	ToolInput string
}

// AnthropicMessage is one message in an Anthropic-shaped request.
type AnthropicMessage struct {
	Role   string
	Blocks []AnthropicBlock
}

// AnthropicTool mirrors an Anthropic tool definition; InputSchema is the
// already-JSON-stringified schema.
type AnthropicTool struct {
	Name        string
	Description string
	InputSchema string
}

// CountAnthropicMessages counts input tokens for an Anthropic-shaped
// messages request using the 100k-vocabulary encoder as an approximation.
// Callers must treat the result as medium/low confidence.
func CountAnthropicMessages(system string, messages []AnthropicMessage, tools []AnthropicTool) int {
	total := 0

	if system != "" {
		total += countTokens(vocab100k, system)
		total += anthropicSystemOverhead
	}

	for _, m := range messages {
		total += anthropicMessageOverhead
		total += countBlocks(m.Blocks)
	}

	for _, t := range tools {
		total += countTokens(vocab100k, t.Name)
		total += countTokens(vocab100k, t.Description)
		total += countTokens(vocab100k, t.InputSchema)
		total += anthropicPerToolOverhead
	}

	return total
}

func countBlocks(blocks []AnthropicBlock) int {
	total := 0
	for _, b := range blocks {
		switch b.Kind {
		case BlockToolUse:
			total += countTokens(vocab100k, b.ToolName)
			total += countTokens(vocab100k, b.ToolInput)
		case BlockToolResult, BlockText:
			total += countTokens(vocab100k, b.Text)
		}
	}
	return total
}
