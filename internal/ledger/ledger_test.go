package ledger

import (
	"os"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := t.Name() + ".db"
	os.Remove(path)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
		os.Remove(path)
	})
	return s
}

func TestRecordUsage_NoBudgetStillRecords(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.RecordUsage("p3", "openai", "gpt-4o-mini", 100, 50, 0.000045, "req-1")
	if err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected nonzero id")
	}

	summary, err := s.GetUsageSummary("p3")
	if err != nil {
		t.Fatalf("GetUsageSummary: %v", err)
	}
	if summary.TotalCostUSD != 0.000045 {
		t.Errorf("TotalCostUSD = %v, want 0.000045", summary.TotalCostUSD)
	}
	if summary.Budget != nil {
		t.Error("expected no budget for p3")
	}
}

func TestSetBudget_PreservesSpentOnUpdate(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.SetBudget("p1", 1.00, nil); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if _, err := s.RecordUsage("p1", "openai", "gpt-4o-mini", 100, 50, 0.5, "req-a"); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	updated, err := s.SetBudget("p1", 2.00, nil)
	if err != nil {
		t.Fatalf("SetBudget (update): %v", err)
	}
	if updated.LimitUSD != 2.00 {
		t.Errorf("LimitUSD = %v, want 2.00", updated.LimitUSD)
	}
	if updated.SpentUSD != 0.5 {
		t.Errorf("SpentUSD = %v, want 0.5 (preserved)", updated.SpentUSD)
	}
}

func TestRecordUsage_IncrementsBudgetSpentAtomically(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.SetBudget("p2", 10.00, nil); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := s.RecordUsage("p2", "openai", "gpt-4o", 1000, 500, 1.00, "req-"+string(rune('a'+i))); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}

	budget, ok, err := s.GetBudget("p2")
	if err != nil || !ok {
		t.Fatalf("GetBudget: ok=%v err=%v", ok, err)
	}
	if budget.SpentUSD != 3.00 {
		t.Errorf("SpentUSD = %v, want 3.00", budget.SpentUSD)
	}
}

func TestResetBudgetSpent_IsIdempotent(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.SetBudget("p4", 10.00, nil); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if _, err := s.RecordUsage("p4", "openai", "gpt-4o", 1000, 500, 3.00, "req-x"); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	if err := s.ResetBudgetSpent("p4"); err != nil {
		t.Fatalf("ResetBudgetSpent (1st): %v", err)
	}
	first, _, _ := s.GetBudget("p4")

	if err := s.ResetBudgetSpent("p4"); err != nil {
		t.Fatalf("ResetBudgetSpent (2nd): %v", err)
	}
	second, _, _ := s.GetBudget("p4")

	if first.SpentUSD != 0 || second.SpentUSD != 0 {
		t.Errorf("expected spentUsd == 0 after reset, got first=%v second=%v", first.SpentUSD, second.SpentUSD)
	}

	summary, err := s.GetUsageSummary("p4")
	if err != nil {
		t.Fatalf("GetUsageSummary: %v", err)
	}
	if summary.TotalCostUSD != 3.00 {
		t.Errorf("historical totalCostUsd should survive reset, got %v", summary.TotalCostUSD)
	}
}

func TestDeleteBudget(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.SetBudget("p5", 5.00, nil); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	removed, err := s.DeleteBudget("p5")
	if err != nil || !removed {
		t.Fatalf("DeleteBudget: removed=%v err=%v", removed, err)
	}
	if _, ok, _ := s.GetBudget("p5"); ok {
		t.Error("expected budget to be gone")
	}
	removedAgain, err := s.DeleteBudget("p5")
	if err != nil || removedAgain {
		t.Errorf("deleting twice should report removed=false, got %v", removedAgain)
	}
}

func TestGetRecentUsage_NewestFirst(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := s.RecordUsage("p6", "anthropic", "claude-3-5-sonnet-latest", 10, 5, 0.01, "req-"+string(rune('a'+i))); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}

	recent, err := s.GetRecentUsage("p6", 2)
	if err != nil {
		t.Fatalf("GetRecentUsage: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}
	if recent[0].RequestID != "req-c" {
		t.Errorf("expected newest-first ordering, got %+v", recent)
	}
}

func TestPeriodEndRoundTrip(t *testing.T) {
	s := openTestStore(t)

	days := 30
	created, err := s.SetBudget("p7", 1.00, &days)
	if err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if created.PeriodEnd == nil {
		t.Fatal("expected non-nil PeriodEnd")
	}
	if !created.PeriodStart.Before(*created.PeriodEnd) {
		t.Error("expected periodStart < periodEnd")
	}

	fetched, ok, err := s.GetBudget("p7")
	if err != nil || !ok {
		t.Fatalf("GetBudget: ok=%v err=%v", ok, err)
	}
	if fetched.PeriodEnd == nil {
		t.Error("expected periodEnd to round-trip through storage")
	}
}
