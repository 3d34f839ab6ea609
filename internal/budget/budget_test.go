package budget

import (
	"os"
	"testing"

	"github.com/tokencap/gateway/internal/catalog"
	"github.com/tokencap/gateway/internal/estimate"
	"github.com/tokencap/gateway/internal/ledger"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	path := t.Name() + ".db"
	os.Remove(path)
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(path)
	})
	return New(store)
}

func mkEstimate(totalUSD float64) estimate.CostEstimate {
	return estimate.CostEstimate{TotalEstimatedCostUSD: totalUSD, Confidence: catalog.ConfidenceHigh}
}

func TestAdmit_NoBudgetAlwaysAdmits(t *testing.T) {
	c := newTestController(t)
	d, err := c.Admit("p3", mkEstimate(100.0))
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !d.Admitted {
		t.Error("expected admission with no budget row")
	}
	if d.LimitUSD != nil {
		t.Error("expected nil LimitUSD when no budget exists")
	}
}

func TestAdmit_ExactRemainingAdmits(t *testing.T) {
	c := newTestController(t)
	if _, err := c.SetBudget("p1", 1.00, nil); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	d, err := c.Admit("p1", mkEstimate(1.00))
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !d.Admitted {
		t.Error("expected admission when estimate exactly equals remaining budget")
	}
}

func TestAdmit_ExceedsRemainingRejects(t *testing.T) {
	c := newTestController(t)
	if _, err := c.SetBudget("p2", 0.0001, nil); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	d, err := c.Admit("p2", mkEstimate(0.01))
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if d.Admitted {
		t.Fatal("expected rejection when estimate exceeds remaining budget")
	}
	if d.Reason == nil {
		t.Fatal("expected a reject reason")
	}
	if d.Reason.LimitUSD != 0.0001 || d.Reason.EstimatedCostUSD != 0.01 {
		t.Errorf("unexpected reject reason: %+v", d.Reason)
	}
}

func TestAdmit_PeriodExpiredStillAdmitsWithAdvisory(t *testing.T) {
	c := newTestController(t)
	pastDays := -1
	if _, err := c.SetBudget("p4", 1.00, &pastDays); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	d, err := c.Admit("p4", mkEstimate(100.0))
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !d.Admitted {
		t.Error("expected admission when period has expired")
	}
	if d.Advisory == "" {
		t.Error("expected a period-expired advisory")
	}
}

func TestWouldExceedAndUtilization(t *testing.T) {
	c := newTestController(t)
	if _, err := c.SetBudget("p5", 10.00, nil); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	exceed, err := c.WouldExceed("p5", 11.00)
	if err != nil || !exceed {
		t.Errorf("WouldExceed(11) = %v, err=%v, want true", exceed, err)
	}

	pct, ok, err := c.UtilizationPercent("p5")
	if err != nil || !ok || pct != 0 {
		t.Errorf("UtilizationPercent = %v ok=%v err=%v, want 0", pct, ok, err)
	}
}

func TestSafeMaxTokens(t *testing.T) {
	c := newTestController(t)
	if _, err := c.SetBudget("p6", 1.00, nil); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	tokens, ok, err := c.SafeMaxTokens("p6", 0.10, 15.0)
	if err != nil || !ok {
		t.Fatalf("SafeMaxTokens: ok=%v err=%v", ok, err)
	}
	if tokens <= 0 {
		t.Errorf("expected positive safe token budget, got %d", tokens)
	}
}
