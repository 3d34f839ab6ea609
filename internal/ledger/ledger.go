// Package ledger provides durable, transactional persistence for usage
// records and per-project budgets. It owns the only writer path to
// UsageRecord and Budget.spentUsd; callers never maintain a parallel
// in-memory authoritative copy.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// UsageRecord is one append-only charge against a project.
type UsageRecord struct {
	ID           int64
	ProjectID    string
	Provider     string
	ModelID      string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	RequestID    string
	CreatedAt    time.Time
}

// Budget is the single mutable per-project spend limit row.
type Budget struct {
	ProjectID   string
	LimitUSD    float64
	SpentUSD    float64
	PeriodStart time.Time
	PeriodEnd   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UsageSummary is a single consistent read over a project's totals and
// current budget view.
type UsageSummary struct {
	ProjectID    string
	TotalCostUSD float64
	TotalInput   int
	TotalOutput  int
	RecordCount  int
	Budget       *Budget
}

// Store wraps a *sql.DB and exposes the Ledger Store's public operations.
// It is safe for concurrent use; every mutating operation is a single
// transaction.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite file at path, creating it and its schema if
// necessary.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ledger: ping %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ledger: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordUsage appends a UsageRecord and increments the project's
// Budget.spentUsd (if a budget row exists) atomically in a single
// transaction. It never fails silently: the transaction either commits
// wholly or the caller gets an error and no partial state exists.
func (s *Store) RecordUsage(projectID, provider, modelID string, inputTokens, outputTokens int, costUSD float64, requestID string) (UsageRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return UsageRecord{}, fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec(
		`INSERT INTO usage (project_id, provider, model_id, input_tokens, output_tokens, cost_usd, request_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		projectID, provider, modelID, inputTokens, outputTokens, costUSD, requestID, now,
	)
	if err != nil {
		return UsageRecord{}, fmt.Errorf("ledger: insert usage: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return UsageRecord{}, fmt.Errorf("ledger: last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE budgets SET spent_usd = spent_usd + ?, updated_at = ? WHERE project_id = ?`,
		costUSD, now, projectID,
	); err != nil {
		return UsageRecord{}, fmt.Errorf("ledger: increment spent: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return UsageRecord{}, fmt.Errorf("ledger: commit: %w", err)
	}

	return UsageRecord{
		ID:           id,
		ProjectID:    projectID,
		Provider:     provider,
		ModelID:      modelID,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      costUSD,
		RequestID:    requestID,
		CreatedAt:    now,
	}, nil
}

// SetBudget upserts the budget row for projectID. If a budget already
// exists its spentUsd is preserved; only limitUsd and the period are
// replaced.
func (s *Store) SetBudget(projectID string, limitUSD float64, periodDays *int) (Budget, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Budget{}, fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var periodEnd *time.Time
	if periodDays != nil {
		end := now.AddDate(0, 0, *periodDays)
		periodEnd = &end
	}

	existing, err := queryBudget(tx, projectID)
	if err != nil && err != sql.ErrNoRows {
		return Budget{}, fmt.Errorf("ledger: read existing budget: %w", err)
	}

	spent := 0.0
	periodStart := now
	created := now
	if err == nil {
		spent = existing.SpentUSD
		periodStart = existing.PeriodStart
		created = existing.CreatedAt
	}

	_, err = tx.Exec(
		`INSERT INTO budgets (project_id, limit_usd, spent_usd, period_start, period_end, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET
			limit_usd = excluded.limit_usd,
			period_start = excluded.period_start,
			period_end = excluded.period_end,
			updated_at = excluded.updated_at`,
		projectID, limitUSD, spent, periodStart, periodEnd, created, now,
	)
	if err != nil {
		return Budget{}, fmt.Errorf("ledger: upsert budget: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Budget{}, fmt.Errorf("ledger: commit: %w", err)
	}

	return Budget{
		ProjectID:   projectID,
		LimitUSD:    limitUSD,
		SpentUSD:    spent,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		CreatedAt:   created,
		UpdatedAt:   now,
	}, nil
}

// GetBudget returns the current budget for projectID, or (Budget{}, false)
// if none exists.
func (s *Store) GetBudget(projectID string) (Budget, bool, error) {
	b, err := queryBudget(s.db, projectID)
	if err == sql.ErrNoRows {
		return Budget{}, false, nil
	}
	if err != nil {
		return Budget{}, false, fmt.Errorf("ledger: get budget: %w", err)
	}
	return b, true, nil
}

// ResetBudgetSpent zeroes spentUsd and restarts periodStart at now. It is
// idempotent: applying it twice in a row leaves the same state as applying
// it once.
func (s *Store) ResetBudgetSpent(projectID string) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`UPDATE budgets SET spent_usd = 0, period_start = ?, updated_at = ? WHERE project_id = ?`,
		now, now, projectID,
	)
	if err != nil {
		return fmt.Errorf("ledger: reset budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger: reset budget rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteBudget removes the budget row for projectID. It reports whether a
// row existed.
func (s *Store) DeleteBudget(projectID string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM budgets WHERE project_id = ?`, projectID)
	if err != nil {
		return false, fmt.Errorf("ledger: delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ledger: delete budget rows affected: %w", err)
	}
	return n > 0, nil
}

// GetUsageSummary reads totals over all usage records for projectID plus
// the current budget view, as a single consistent read.
func (s *Store) GetUsageSummary(projectID string) (UsageSummary, error) {
	summary := UsageSummary{ProjectID: projectID}

	tx, err := s.db.Begin()
	if err != nil {
		return UsageSummary{}, fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(
		`SELECT COALESCE(SUM(cost_usd), 0), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), COUNT(*)
		 FROM usage WHERE project_id = ?`,
		projectID,
	)
	if err := row.Scan(&summary.TotalCostUSD, &summary.TotalInput, &summary.TotalOutput, &summary.RecordCount); err != nil {
		return UsageSummary{}, fmt.Errorf("ledger: summarize usage: %w", err)
	}

	budget, err := queryBudget(tx, projectID)
	if err != nil && err != sql.ErrNoRows {
		return UsageSummary{}, fmt.Errorf("ledger: get budget: %w", err)
	}
	if err == nil {
		summary.Budget = &budget
	}
	return summary, nil
}

// GetRecentUsage returns the newest-first list of up to limit UsageRecords
// for projectID.
func (s *Store) GetRecentUsage(projectID string, limit int) ([]UsageRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, provider, model_id, input_tokens, output_tokens, cost_usd, request_id, created_at
		 FROM usage WHERE project_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger: recent usage: %w", err)
	}
	defer rows.Close()

	var out []UsageRecord
	for rows.Next() {
		var r UsageRecord
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Provider, &r.ModelID, &r.InputTokens, &r.OutputTokens, &r.CostUSD, &r.RequestID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan usage row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func queryBudget(q querier, projectID string) (Budget, error) {
	var b Budget
	var periodEnd sql.NullTime
	err := q.QueryRow(
		`SELECT project_id, limit_usd, spent_usd, period_start, period_end, created_at, updated_at
		 FROM budgets WHERE project_id = ?`,
		projectID,
	).Scan(&b.ProjectID, &b.LimitUSD, &b.SpentUSD, &b.PeriodStart, &periodEnd, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Budget{}, err
	}
	if periodEnd.Valid {
		b.PeriodEnd = &periodEnd.Time
	}
	return b, nil
}
