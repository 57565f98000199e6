// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"panwatch/internal/agent"
	"panwatch/internal/market"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Agent configuration
	SeedAgents(ctx context.Context, seeds []AgentConfig) error
	GetAgentConfigs(ctx context.Context, onlyEnabled bool) ([]AgentConfig, error)
	GetAgentConfig(ctx context.Context, name string) (*AgentConfig, error)
	SetAgentEnabled(ctx context.Context, name string, enabled bool) error
	SetAgentSchedule(ctx context.Context, name, schedule string) error

	// Watchlist
	AddWatchItem(ctx context.Context, item market.WatchItem, agentNames []string) error
	RemoveWatchItem(ctx context.Context, symbol string, code market.Code) error
	GetWatchlist(ctx context.Context) ([]market.WatchItem, error)
	GetWatchlistForAgent(ctx context.Context, agentName string) ([]market.WatchItem, error)

	// Run history
	RecordRun(ctx context.Context, outcome agent.Outcome) error
	GetRecentRuns(ctx context.Context, filter RunFilter) ([]agent.Outcome, error)

	// Lifecycle
	Close() error
}

// AgentConfig is one persisted agent registration row.
type AgentConfig struct {
	Name        string
	DisplayName string
	Description string
	Enabled     bool
	Schedule    string
	UpdatedAt   time.Time
}

// RunFilter represents filters for querying run history.
type RunFilter struct {
	AgentName string
	Status    string
	Since     time.Time
	Limit     int
}
