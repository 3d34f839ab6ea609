// Package tokenizer counts input tokens for OpenAI-shaped and
// Anthropic-shaped chat requests and estimates output tokens.
package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Vocabulary names the two BPE encodings the pricing/tokenizer split uses.
type vocabulary string

const (
	vocab200k vocabulary = "o200k_base" // gpt-4o*, o1/o3/o4*
	vocab100k vocabulary = "cl100k_base" // everything else, and the Anthropic approximation
)

// encoderCache lazily constructs and caches tiktoken encoders process-wide.
// Encoders are immutable once built and safe for concurrent use by
// multiple in-flight requests.
type encoderCache struct {
	mu    sync.Mutex
	once  map[vocabulary]*sync.Once
	built map[vocabulary]*tiktoken.Tiktoken
	err   map[vocabulary]error
}

func newEncoderCache() *encoderCache {
	return &encoderCache{
		once:  make(map[vocabulary]*sync.Once),
		built: make(map[vocabulary]*tiktoken.Tiktoken),
		err:   make(map[vocabulary]error),
	}
}

func (c *encoderCache) get(v vocabulary) (*tiktoken.Tiktoken, error) {
	c.mu.Lock()
	once, ok := c.once[v]
	if !ok {
		once = &sync.Once{}
		c.once[v] = once
	}
	c.mu.Unlock()

	once.Do(func() {
		enc, err := tiktoken.GetEncoding(string(v))
		c.mu.Lock()
		c.built[v] = enc
		c.err[v] = err
		c.mu.Unlock()
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.built[v], c.err[v]
}

// reset discards all cached encoders, releasing their memory. Intended for
// use at process shutdown.
func (c *encoderCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.once = make(map[vocabulary]*sync.Once)
	c.built = make(map[vocabulary]*tiktoken.Tiktoken)
	c.err = make(map[vocabulary]error)
}

var sharedEncoders = newEncoderCache()

// Shutdown releases all process-wide encoder state. Call once at gateway
// shutdown.
func Shutdown() {
	sharedEncoders.reset()
}

// vocabularyForOpenAIModel selects the 200k-vocabulary encoder for
// gpt-4o*/o1/o3/o4* model families and the 100k-vocabulary encoder for
// everything else.
func vocabularyForOpenAIModel(model string) vocabulary {
	switch {
	case hasAnyPrefix(model, "gpt-4o", "o1", "o3", "o4"):
		return vocab200k
	default:
		return vocab100k
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

// countTokens encodes text with the given vocabulary, falling back to a
// conservative character/4 estimate if the encoder could not be built
// (e.g. missing embedded BPE ranks file).
func countTokens(v vocabulary, text string) int {
	if text == "" {
		return 0
	}
	enc, err := sharedEncoders.get(v)
	if err != nil || enc == nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// CountText encodes a raw string with the given OpenAI model's vocabulary
// and returns the token count with no per-message or priming overhead.
// Intended for accumulating per-delta output tokens over a stream, where
// CountOpenAIChat's fixed message overhead would be charged once per delta
// instead of once per message.
func CountText(model, text string) int {
	return countTokens(vocabularyForOpenAIModel(model), text)
}
