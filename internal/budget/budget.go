// Package budget implements admission decisions and budget CRUD on top of
// the ledger store. It reads ledger state on every call and keeps no
// parallel in-memory authoritative copy of its own.
package budget

import (
	"time"

	"github.com/tokencap/gateway/internal/estimate"
	"github.com/tokencap/gateway/internal/ledger"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Admitted bool
	// Advisory is non-empty when admission succeeded for a reason worth
	// surfacing to the caller, e.g. "period expired".
	Advisory string
	// LimitUSD is nil when the project has no budget row at all.
	LimitUSD *float64
	Reason   *RejectReason
}

// RejectReason is the structured explanation attached to a rejected
// admission.
type RejectReason struct {
	CurrentSpendUSD   float64
	LimitUSD          float64
	EstimatedCostUSD  float64
	RemainingAfterUSD float64
}

// Controller answers admission queries and exposes budget CRUD backed by a
// ledger.Store.
type Controller struct {
	store *ledger.Store
}

// New wires a Controller to a ledger.Store.
func New(store *ledger.Store) *Controller {
	return &Controller{store: store}
}

// Admit decides whether a (projectID, estimate) pair may proceed: no budget
// admits unconditionally, an expired period admits with an advisory and
// leaves the budget row unchanged (only ResetBudgetSpent starts a new
// period), otherwise the estimate must fit within the remaining limit.
func (c *Controller) Admit(projectID string, est estimate.CostEstimate) (Decision, error) {
	b, ok, err := c.store.GetBudget(projectID)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Decision{Admitted: true}, nil
	}

	limit := b.LimitUSD
	if b.PeriodEnd != nil && time.Now().UTC().After(*b.PeriodEnd) {
		return Decision{Admitted: true, Advisory: "period expired", LimitUSD: &limit}, nil
	}

	remaining := b.LimitUSD - b.SpentUSD
	if est.TotalEstimatedCostUSD > remaining {
		return Decision{
			Admitted: false,
			LimitUSD: &limit,
			Reason: &RejectReason{
				CurrentSpendUSD:   b.SpentUSD,
				LimitUSD:          b.LimitUSD,
				EstimatedCostUSD:  est.TotalEstimatedCostUSD,
				RemainingAfterUSD: remaining - est.TotalEstimatedCostUSD,
			},
		}, nil
	}

	return Decision{Admitted: true, LimitUSD: &limit}, nil
}

// SetBudget upserts the budget for projectID.
func (c *Controller) SetBudget(projectID string, limitUSD float64, periodDays *int) (ledger.Budget, error) {
	return c.store.SetBudget(projectID, limitUSD, periodDays)
}

// GetBudget returns the current budget for projectID.
func (c *Controller) GetBudget(projectID string) (ledger.Budget, bool, error) {
	return c.store.GetBudget(projectID)
}

// ResetBudgetSpent zeroes spentUsd and restarts the period for projectID.
func (c *Controller) ResetBudgetSpent(projectID string) error {
	return c.store.ResetBudgetSpent(projectID)
}

// DeleteBudget removes the budget row for projectID.
func (c *Controller) DeleteBudget(projectID string) (bool, error) {
	return c.store.DeleteBudget(projectID)
}

// Remaining reports the unspent portion of projectID's budget. ok is false
// when no budget row exists.
func (c *Controller) Remaining(projectID string) (remaining float64, ok bool, err error) {
	b, exists, err := c.store.GetBudget(projectID)
	if err != nil || !exists {
		return 0, false, err
	}
	return b.LimitUSD - b.SpentUSD, true, nil
}

// WouldExceed reports whether charging cost against projectID's current
// budget snapshot would push spentUsd past limitUsd. A project with no
// budget never "would exceed".
func (c *Controller) WouldExceed(projectID string, cost float64) (bool, error) {
	remaining, ok, err := c.Remaining(projectID)
	if err != nil || !ok {
		return false, err
	}
	return cost > remaining, nil
}

// UtilizationPercent reports spentUsd / limitUsd * 100 for projectID. ok is
// false when no budget row exists or limitUsd is zero.
func (c *Controller) UtilizationPercent(projectID string) (percent float64, ok bool, err error) {
	b, exists, err := c.store.GetBudget(projectID)
	if err != nil || !exists || b.LimitUSD == 0 {
		return 0, false, err
	}
	return b.SpentUSD / b.LimitUSD * 100, true, nil
}

// SafeMaxTokens computes the largest number of output tokens projectID's
// remaining budget can afford after inputCost has already been spent, at
// outputPricePerM USD per million tokens. ok is false when no budget row
// exists.
func (c *Controller) SafeMaxTokens(projectID string, inputCost, outputPricePerM float64) (tokens int, ok bool, err error) {
	remaining, exists, err := c.Remaining(projectID)
	if err != nil || !exists {
		return 0, false, err
	}
	afterInput := remaining - inputCost
	if afterInput <= 0 || outputPricePerM <= 0 {
		return 0, true, nil
	}
	return int(afterInput * 1_000_000 / outputPricePerM), true, nil
}
