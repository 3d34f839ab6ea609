package catalog

// builtinRows is the declarative pricing table. Prices are USD per million
// tokens, matching the wire conventions both OpenAI and Anthropic publish.
// Static data rather than a config file: new models ship with a code change
// and a catalog row, same as a release.
var builtinRows = []ModelPricing{
	// OpenAI-shaped
	{Provider: "openai", ModelID: "gpt-4o", InputPricePerM: 5.00, OutputPricePerM: 15.00, ContextWindow: 128_000, DefaultMaxOutput: 16_384},
	{Provider: "openai", ModelID: "gpt-4o-mini", InputPricePerM: 0.15, OutputPricePerM: 0.60, ContextWindow: 128_000, DefaultMaxOutput: 16_384},
	{Provider: "openai", ModelID: "gpt-4-turbo", InputPricePerM: 10.00, OutputPricePerM: 30.00, ContextWindow: 128_000, DefaultMaxOutput: 4_096},
	{Provider: "openai", ModelID: "gpt-4", InputPricePerM: 30.00, OutputPricePerM: 60.00, ContextWindow: 8_192, DefaultMaxOutput: 4_096},
	{Provider: "openai", ModelID: "gpt-3.5-turbo", InputPricePerM: 0.50, OutputPricePerM: 1.50, ContextWindow: 16_385, DefaultMaxOutput: 4_096},
	{Provider: "openai", ModelID: "gpt-3.5-turbo-0301", InputPricePerM: 1.50, OutputPricePerM: 2.00, ContextWindow: 4_096, DefaultMaxOutput: 4_096, Deprecated: true},
	{Provider: "openai", ModelID: "o1", InputPricePerM: 15.00, OutputPricePerM: 60.00, ContextWindow: 200_000, DefaultMaxOutput: 100_000},
	{Provider: "openai", ModelID: "o1-mini", InputPricePerM: 3.00, OutputPricePerM: 12.00, ContextWindow: 128_000, DefaultMaxOutput: 65_536},
	{Provider: "openai", ModelID: "o3-mini", InputPricePerM: 1.10, OutputPricePerM: 4.40, ContextWindow: 200_000, DefaultMaxOutput: 100_000},
	{Provider: "openai", ModelID: "o4-mini", InputPricePerM: 1.10, OutputPricePerM: 4.40, ContextWindow: 200_000, DefaultMaxOutput: 100_000},

	// Anthropic-shaped
	{Provider: "anthropic", ModelID: "claude-3-5-sonnet-latest", InputPricePerM: 3.00, OutputPricePerM: 15.00, ContextWindow: 200_000, DefaultMaxOutput: 8_192},
	{Provider: "anthropic", ModelID: "claude-3-5-sonnet-20241022", InputPricePerM: 3.00, OutputPricePerM: 15.00, ContextWindow: 200_000, DefaultMaxOutput: 8_192},
	{Provider: "anthropic", ModelID: "claude-3-5-sonnet-20240620", InputPricePerM: 3.00, OutputPricePerM: 15.00, ContextWindow: 200_000, DefaultMaxOutput: 8_192, Deprecated: true},
	{Provider: "anthropic", ModelID: "claude-3-5-haiku-latest", InputPricePerM: 0.80, OutputPricePerM: 4.00, ContextWindow: 200_000, DefaultMaxOutput: 8_192},
	{Provider: "anthropic", ModelID: "claude-3-opus-20240229", InputPricePerM: 15.00, OutputPricePerM: 75.00, ContextWindow: 200_000, DefaultMaxOutput: 4_096},
	{Provider: "anthropic", ModelID: "claude-3-haiku-20240307", InputPricePerM: 0.25, OutputPricePerM: 1.25, ContextWindow: 200_000, DefaultMaxOutput: 4_096},

	// Gemini-shaped (no dedicated adapter yet, catalog-only so safeMaxTokens
	// and /v1/models reporting work for callers using the extension interface)
	{Provider: "google", ModelID: "gemini-1.5-pro", InputPricePerM: 1.25, OutputPricePerM: 5.00, ContextWindow: 2_000_000, DefaultMaxOutput: 8_192},
	{Provider: "google", ModelID: "gemini-1.5-flash", InputPricePerM: 0.075, OutputPricePerM: 0.30, ContextWindow: 1_000_000, DefaultMaxOutput: 8_192},
}

// builtinAliases maps short or colloquial names to a canonical "provider/model" row.
var builtinAliases = map[string]string{
	"gpt4o":       "openai/gpt-4o",
	"gpt-4o":      "openai/gpt-4o",
	"gpt4":        "openai/gpt-4",
	"gpt-3.5":     "openai/gpt-3.5-turbo",
	"sonnet":      "anthropic/claude-3-5-sonnet-latest",
	"sonnet-3.5":  "anthropic/claude-3-5-sonnet-latest",
	"haiku":       "anthropic/claude-3-5-haiku-latest",
	"opus":        "anthropic/claude-3-opus-20240229",
	"gemini-pro":  "google/gemini-1.5-pro",
	"gemini-flash": "google/gemini-1.5-flash",
}

// builtinPrefixes are provider-specific prefix rules, matched
// longest-prefix-first within a provider (see Catalog.Resolve).
var builtinPrefixes = []prefixRule{
	{provider: "openai", prefix: "gpt-4o-mini", modelID: "gpt-4o-mini"},
	{provider: "openai", prefix: "gpt-4o", modelID: "gpt-4o"},
	{provider: "openai", prefix: "gpt-4-turbo", modelID: "gpt-4-turbo"},
	{provider: "openai", prefix: "gpt-4", modelID: "gpt-4"},
	{provider: "openai", prefix: "gpt-3.5-turbo-0301", modelID: "gpt-3.5-turbo-0301"},
	{provider: "openai", prefix: "gpt-3.5-turbo", modelID: "gpt-3.5-turbo"},
	{provider: "openai", prefix: "o1-mini", modelID: "o1-mini"},
	{provider: "openai", prefix: "o1", modelID: "o1"},
	{provider: "openai", prefix: "o3-mini", modelID: "o3-mini"},
	{provider: "openai", prefix: "o4-mini", modelID: "o4-mini"},
	{provider: "anthropic", prefix: "claude-3-5-sonnet", modelID: "claude-3-5-sonnet-latest"},
	{provider: "anthropic", prefix: "claude-3-5-haiku", modelID: "claude-3-5-haiku-latest"},
	{provider: "anthropic", prefix: "claude-3-opus", modelID: "claude-3-opus-20240229"},
	{provider: "anthropic", prefix: "claude-3-haiku", modelID: "claude-3-haiku-20240307"},
	{provider: "google", prefix: "gemini-1.5-pro", modelID: "gemini-1.5-pro"},
	{provider: "google", prefix: "gemini-1.5-flash", modelID: "gemini-1.5-flash"},
}

// builtinFallback is the catalog's conservative mid-price row, returned on
// a total resolution miss so a request is never rejected over an unknown
// model name.
var builtinFallback = ModelPricing{
	Provider:         "openai",
	ModelID:          "gpt-4o",
	InputPricePerM:   5.00,
	OutputPricePerM:  15.00,
	ContextWindow:    128_000,
	DefaultMaxOutput: 4_096,
}
