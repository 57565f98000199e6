package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"panwatch/internal/agent"
	"panwatch/internal/market"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Agent configurations
	CREATE TABLE IF NOT EXISTS agent_configs (
		name TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		description TEXT,
		enabled INTEGER NOT NULL DEFAULT 1,
		schedule TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Watchlist
	CREATE TABLE IF NOT EXISTS watch_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		name TEXT,
		market TEXT NOT NULL,
		cost_price REAL NOT NULL DEFAULT 0,
		quantity REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, market)
	);

	-- Watch item to agent assignments
	CREATE TABLE IF NOT EXISTS watch_item_agents (
		watch_item_id INTEGER NOT NULL,
		agent_name TEXT NOT NULL,
		PRIMARY KEY (watch_item_id, agent_name),
		FOREIGN KEY (watch_item_id) REFERENCES watch_items(id) ON DELETE CASCADE
	);

	-- Run history
	CREATE TABLE IF NOT EXISTS agent_runs (
		run_id TEXT PRIMARY KEY,
		agent_name TEXT NOT NULL,
		status TEXT NOT NULL,
		content TEXT,
		error_message TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_agent_time ON agent_runs(agent_name, started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_watch_items_market ON watch_items(market);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SeedAgents inserts the given agent rows if they do not already exist.
// Existing rows keep their user-edited schedule and enabled flag.
func (s *SQLiteStore) SeedAgents(ctx context.Context, seeds []AgentConfig) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, seed := range seeds {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO agent_configs (name, display_name, description, enabled, schedule)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(name) DO NOTHING`,
			seed.Name, seed.DisplayName, seed.Description, seed.Enabled, seed.Schedule)
		if err != nil {
			return fmt.Errorf("failed to seed agent %s: %w", seed.Name, err)
		}
	}

	return tx.Commit()
}

// GetAgentConfigs returns all agent rows, optionally only enabled ones.
func (s *SQLiteStore) GetAgentConfigs(ctx context.Context, onlyEnabled bool) ([]AgentConfig, error) {
	query := `SELECT name, display_name, description, enabled, schedule, updated_at
		FROM agent_configs`
	if onlyEnabled {
		query += ` WHERE enabled = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent configs: %w", err)
	}
	defer rows.Close()

	var configs []AgentConfig
	for rows.Next() {
		var c AgentConfig
		var desc sql.NullString
		if err := rows.Scan(&c.Name, &c.DisplayName, &desc, &c.Enabled, &c.Schedule, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan agent config: %w", err)
		}
		c.Description = desc.String
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// GetAgentConfig returns the agent row for name, or sql.ErrNoRows.
func (s *SQLiteStore) GetAgentConfig(ctx context.Context, name string) (*AgentConfig, error) {
	var c AgentConfig
	var desc sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT name, display_name, description, enabled, schedule, updated_at
		FROM agent_configs WHERE name = ?`, name).
		Scan(&c.Name, &c.DisplayName, &desc, &c.Enabled, &c.Schedule, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Description = desc.String
	return &c, nil
}

// SetAgentEnabled flips the enabled flag of one agent.
func (s *SQLiteStore) SetAgentEnabled(ctx context.Context, name string, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE agent_configs SET enabled = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?`, enabled, name)
	if err != nil {
		return fmt.Errorf("failed to update agent %s: %w", name, err)
	}
	return requireRow(res, name)
}

// SetAgentSchedule replaces the trigger expression of one agent.
func (s *SQLiteStore) SetAgentSchedule(ctx context.Context, name, schedule string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE agent_configs SET schedule = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?`, schedule, name)
	if err != nil {
		return fmt.Errorf("failed to update agent %s: %w", name, err)
	}
	return requireRow(res, name)
}

func requireRow(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("agent %s: %w", name, sql.ErrNoRows)
	}
	return nil
}

// AddWatchItem upserts a watch item and assigns it to the given agents.
// An empty agent list assigns the item to no agent; it still appears in
// the global watchlist.
func (s *SQLiteStore) AddWatchItem(ctx context.Context, item market.WatchItem, agentNames []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO watch_items (symbol, name, market, cost_price, quantity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol, market) DO UPDATE SET
			name = excluded.name,
			cost_price = excluded.cost_price,
			quantity = excluded.quantity`,
		item.Symbol, item.Name, string(item.Market), item.CostPrice, item.Quantity)
	if err != nil {
		return fmt.Errorf("failed to upsert watch item %s: %w", item.Symbol, err)
	}

	var itemID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM watch_items WHERE symbol = ? AND market = ?`,
		item.Symbol, string(item.Market)).Scan(&itemID)
	if err != nil {
		return fmt.Errorf("failed to look up watch item %s: %w", item.Symbol, err)
	}

	for _, agentName := range agentNames {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO watch_item_agents (watch_item_id, agent_name)
			VALUES (?, ?)
			ON CONFLICT(watch_item_id, agent_name) DO NOTHING`,
			itemID, agentName)
		if err != nil {
			return fmt.Errorf("failed to assign %s to %s: %w", item.Symbol, agentName, err)
		}
	}

	return tx.Commit()
}

// RemoveWatchItem deletes a watch item and its agent assignments.
func (s *SQLiteStore) RemoveWatchItem(ctx context.Context, symbol string, code market.Code) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM watch_items WHERE symbol = ? AND market = ?`,
		symbol, string(code))
	if err != nil {
		return fmt.Errorf("failed to remove watch item %s: %w", symbol, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("watch item %s/%s: %w", code, symbol, sql.ErrNoRows)
	}
	return nil
}

// GetWatchlist returns all watch items.
func (s *SQLiteStore) GetWatchlist(ctx context.Context) ([]market.WatchItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, name, market, cost_price, quantity
		FROM watch_items ORDER BY market, symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()
	return scanWatchItems(rows)
}

// GetWatchlistForAgent returns the watch items assigned to an agent.
// Items with no assignment at all belong to every agent.
func (s *SQLiteStore) GetWatchlistForAgent(ctx context.Context, agentName string) ([]market.WatchItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.symbol, w.name, w.market, w.cost_price, w.quantity
		FROM watch_items w
		WHERE EXISTS (
			SELECT 1 FROM watch_item_agents a
			WHERE a.watch_item_id = w.id AND a.agent_name = ?
		)
		OR NOT EXISTS (
			SELECT 1 FROM watch_item_agents a WHERE a.watch_item_id = w.id
		)
		ORDER BY w.market, w.symbol`, agentName)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist for %s: %w", agentName, err)
	}
	defer rows.Close()
	return scanWatchItems(rows)
}

func scanWatchItems(rows *sql.Rows) ([]market.WatchItem, error) {
	var items []market.WatchItem
	for rows.Next() {
		var item market.WatchItem
		var name sql.NullString
		var code string
		if err := rows.Scan(&item.Symbol, &name, &code, &item.CostPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan watch item: %w", err)
		}
		item.Name = name.String
		item.Market = market.Code(code)
		items = append(items, item)
	}
	return items, rows.Err()
}

// RecordRun persists one run outcome.
func (s *SQLiteStore) RecordRun(ctx context.Context, outcome agent.Outcome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_runs (run_id, agent_name, status, content, error_message, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		outcome.RunID, outcome.AgentName, string(outcome.Status),
		outcome.Content, outcome.ErrorMessage,
		outcome.Duration.Milliseconds(), outcome.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", outcome.RunID, err)
	}
	return nil
}

// GetRecentRuns returns run history, newest first, narrowed by filter.
func (s *SQLiteStore) GetRecentRuns(ctx context.Context, filter RunFilter) ([]agent.Outcome, error) {
	var conds []string
	var args []interface{}

	if filter.AgentName != "" {
		conds = append(conds, "agent_name = ?")
		args = append(args, filter.AgentName)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "started_at >= ?")
		args = append(args, filter.Since)
	}

	query := `SELECT run_id, agent_name, status, content, error_message, duration_ms, started_at
		FROM agent_runs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY started_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var outcomes []agent.Outcome
	for rows.Next() {
		var o agent.Outcome
		var status string
		var content, errMsg sql.NullString
		var durationMS int64
		if err := rows.Scan(&o.RunID, &o.AgentName, &status, &content, &errMsg, &durationMS, &o.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		o.Status = agent.RunStatus(status)
		o.Content = content.String
		o.ErrorMessage = errMsg.String
		o.Duration = time.Duration(durationMS) * time.Millisecond
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
