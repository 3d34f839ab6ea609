package catalog

import "testing"

func TestResolve_ExactMatch(t *testing.T) {
	c := New()
	row, ok := c.Resolve("openai", "gpt-4o-mini")
	if !ok {
		t.Fatal("expected exact match")
	}
	if row.ModelID != "gpt-4o-mini" || row.Provider != "openai" {
		t.Errorf("got %+v", row)
	}
}

func TestResolve_CrossProviderModelMatch(t *testing.T) {
	c := New()
	row, ok := c.Resolve("", "gpt-4o")
	if !ok || row.ModelID != "gpt-4o" {
		t.Errorf("expected cross-provider match, got %+v ok=%v", row, ok)
	}
}

func TestResolve_Alias(t *testing.T) {
	c := New()
	row, ok := c.Resolve("anthropic", "sonnet")
	if !ok || row.ModelID != "claude-3-5-sonnet-latest" {
		t.Errorf("expected alias resolution, got %+v ok=%v", row, ok)
	}
}

func TestResolve_PrefixRule(t *testing.T) {
	c := New()
	row, ok := c.Resolve("openai", "gpt-4o-mini-2024-07-18")
	if !ok || row.ModelID != "gpt-4o-mini" {
		t.Errorf("expected prefix match to gpt-4o-mini, got %+v ok=%v", row, ok)
	}
}

func TestResolve_LongestPrefixWins(t *testing.T) {
	c := New()
	row, ok := c.Resolve("openai", "gpt-4o-mini-special")
	if !ok || row.ModelID != "gpt-4o-mini" {
		t.Errorf("expected longest prefix (gpt-4o-mini) to win over gpt-4o, got %+v ok=%v", row, ok)
	}
}

func TestResolve_UnknownModelFallsBackNeverFails(t *testing.T) {
	c := New()
	row, ok := c.Resolve("mystery-provider", "totally-unknown-model-xyz")
	if ok {
		t.Error("expected miss to report ok=false")
	}
	if row != c.fallback {
		t.Errorf("expected fallback row, got %+v", row)
	}
}

func TestRoundUSD(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.0000001, 0.0},
		{0.00000051, 0.000001},
		{0.1234565, 0.123457},
	}
	for _, c := range cases {
		if got := RoundUSD(c.in); got != c.want {
			t.Errorf("RoundUSD(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCostMath_InputPlusOutputEqualsTotal(t *testing.T) {
	c := New()
	row, _ := c.Resolve("openai", "gpt-4o-mini")
	inputCost := row.InputCost(100)
	outputCost := row.OutputCost(50)
	total := inputCost + outputCost
	if RoundUSD(inputCost+outputCost) != RoundUSD(total) {
		t.Errorf("input+output should equal total within rounding")
	}
}

func TestDeprecatedRowsRemainResolvable(t *testing.T) {
	c := New()
	row, ok := c.Resolve("openai", "gpt-3.5-turbo-0301")
	if !ok || !row.Deprecated {
		t.Errorf("expected deprecated row to still resolve, got %+v ok=%v", row, ok)
	}
}
