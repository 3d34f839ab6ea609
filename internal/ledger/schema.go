package ledger

// schema defines the SQL commands necessary to initialize the single-file
// SQLite database backing the Ledger Store.
const schema = `
-- Table: usage
-- Append-only record of every charge made against a project. Rows are
-- never mutated after insert.
CREATE TABLE IF NOT EXISTS usage (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL,
    provider TEXT NOT NULL,
    model_id TEXT NOT NULL,
    input_tokens INTEGER NOT NULL,
    output_tokens INTEGER NOT NULL,
    cost_usd REAL NOT NULL,
    request_id TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL
);

-- Table: budgets
-- One mutable row per project. spentUsd is monotonic nondecreasing except
-- by an explicit reset.
CREATE TABLE IF NOT EXISTS budgets (
    project_id TEXT PRIMARY KEY,
    limit_usd REAL NOT NULL,
    spent_usd REAL NOT NULL DEFAULT 0,
    period_start DATETIME NOT NULL,
    period_end DATETIME,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_project_id ON usage(project_id);
CREATE INDEX IF NOT EXISTS idx_usage_created_at ON usage(created_at);
CREATE INDEX IF NOT EXISTS idx_budgets_project_id ON budgets(project_id);
`
