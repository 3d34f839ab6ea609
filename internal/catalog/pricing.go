// Package catalog resolves a provider+model pair to a priced, static row
// and performs the catalog's cost arithmetic.
//
// The catalog is built once at startup from the declarative table in
// pricing_data.go and never mutates afterward.
package catalog

import (
	"math"
	"sort"
	"strings"
)

// Confidence labels how trustworthy a cost estimate is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ModelPricing is one priced catalog row.
type ModelPricing struct {
	Provider         string
	ModelID          string
	InputPricePerM   float64 // USD per 1,000,000 input tokens
	OutputPricePerM  float64 // USD per 1,000,000 output tokens
	ContextWindow    int
	DefaultMaxOutput int
	Deprecated       bool
}

// prefixRule maps a provider-specific prefix to the canonical model it
// resolves to. Rules are matched longest-prefix-first within a provider.
type prefixRule struct {
	provider string
	prefix   string
	modelID  string
}

// Catalog is the immutable, process-wide pricing table.
type Catalog struct {
	rows       []ModelPricing
	byExact    map[string]*ModelPricing // "provider/model"
	byModelAny map[string]*ModelPricing // first-declared-wins across providers
	aliases    map[string]string        // alias -> "provider/model"
	prefixes   []prefixRule
	fallback   ModelPricing
}

func key(provider, model string) string {
	return strings.ToLower(provider) + "/" + strings.ToLower(model)
}

// New builds a Catalog from the built-in declarative table.
func New() *Catalog {
	return build(builtinRows, builtinAliases, builtinPrefixes, builtinFallback)
}

func build(rows []ModelPricing, aliases map[string]string, prefixes []prefixRule, fallback ModelPricing) *Catalog {
	c := &Catalog{
		rows:       append([]ModelPricing(nil), rows...),
		byExact:    make(map[string]*ModelPricing, len(rows)),
		byModelAny: make(map[string]*ModelPricing, len(rows)),
		aliases:    make(map[string]string, len(aliases)),
		fallback:   fallback,
	}
	for i := range c.rows {
		r := &c.rows[i]
		c.byExact[key(r.Provider, r.ModelID)] = r
		modelKey := strings.ToLower(r.ModelID)
		if _, exists := c.byModelAny[modelKey]; !exists {
			c.byModelAny[modelKey] = r
		}
	}
	for alias, target := range aliases {
		c.aliases[strings.ToLower(alias)] = strings.ToLower(target)
	}
	// Longest-prefix-first within each provider.
	c.prefixes = append([]prefixRule(nil), prefixes...)
	sort.SliceStable(c.prefixes, func(i, j int) bool {
		if c.prefixes[i].provider != c.prefixes[j].provider {
			return c.prefixes[i].provider < c.prefixes[j].provider
		}
		return len(c.prefixes[i].prefix) > len(c.prefixes[j].prefix)
	})
	return c
}

// Resolve looks up a priced row for (provider, modelID) in five steps: exact
// match, cross-provider model match, alias table, provider prefix rules,
// then the conservative fallback. It never fails: a total miss returns the
// fallback row with ok=false so callers can demote confidence.
func (c *Catalog) Resolve(provider, modelID string) (row ModelPricing, ok bool) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	modelID = strings.ToLower(strings.TrimSpace(modelID))

	// 1. Exact match on (provider, modelId).
	if r, found := c.byExact[key(provider, modelID)]; found {
		return *r, true
	}

	// 2. Exact match on modelId across providers (first declared wins).
	if r, found := c.byModelAny[modelID]; found {
		return *r, true
	}

	// 3. Alias table.
	if target, found := c.aliases[modelID]; found {
		parts := strings.SplitN(target, "/", 2)
		if len(parts) == 2 {
			if r, found := c.byExact[target]; found {
				_ = parts
				return *r, true
			}
		}
	}

	// 4. Provider-specific prefix rules, longest-prefix-first.
	for _, rule := range c.prefixes {
		if rule.provider != "" && rule.provider != provider {
			continue
		}
		if strings.HasPrefix(modelID, rule.prefix) {
			if r, found := c.byExact[key(rule.provider, rule.modelID)]; found {
				return *r, true
			}
		}
	}

	// 5. Miss: fallback row.
	return c.fallback, false
}

// Rows returns a copy of every catalog row, for listing endpoints.
func (c *Catalog) Rows() []ModelPricing {
	return append([]ModelPricing(nil), c.rows...)
}

// RoundUSD rounds a USD amount half-up to six decimal places, applied only
// at external exposure; internal sums stay unrounded.
func RoundUSD(amount float64) float64 {
	const scale = 1e6
	return math.Round(amount*scale) / scale
}

// InputCost computes the input-side cost in USD, unrounded.
func (r ModelPricing) InputCost(tokens int) float64 {
	return float64(tokens) * r.InputPricePerM / 1_000_000
}

// OutputCost computes the output-side cost in USD, unrounded.
func (r ModelPricing) OutputCost(tokens int) float64 {
	return float64(tokens) * r.OutputPricePerM / 1_000_000
}
