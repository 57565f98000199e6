// Package agent provides the schedulable analysis agents and their
// execution context.
package agent

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"panwatch/internal/ai"
	"panwatch/internal/collector"
	"panwatch/internal/config"
	"panwatch/internal/market"
	"panwatch/internal/notify"
)

// Agent defines the interface for a named, schedulable unit of analysis
// and notification logic.
type Agent interface {
	// Name returns the unique registry key of the agent.
	Name() string
	// DisplayName returns the human-readable agent name.
	DisplayName() string
	// Run executes one analysis pass against the given context and
	// returns the produced report content.
	Run(ctx context.Context, rc *Context) (string, error)
}

// Context is the bundle of configuration, credentials and subject data an
// agent needs for one run. It is owned exclusively by a single execution,
// never shared or mutated after construction, and rebuilt fresh for every
// run so configuration edits take effect on the next trigger.
type Context struct {
	Watchlist  []market.WatchItem
	AI         ai.Client // nil when no AI endpoint is configured
	Notifier   notify.Notifier
	Collectors *collector.Group
	Settings   *config.Config
	Logger     zerolog.Logger
}

// RunStatus is the terminal state of one agent run.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// Outcome is the record of one agent execution, produced once per run and
// handed to the history store.
type Outcome struct {
	RunID        string
	AgentName    string
	Status       RunStatus
	Content      string
	ErrorMessage string
	Duration     time.Duration
	StartedAt    time.Time
}

// BaseAgent provides the name fields shared by all agents.
type BaseAgent struct {
	name        string
	displayName string
}

// NewBaseAgent creates a new base agent with the given names.
func NewBaseAgent(name, displayName string) BaseAgent {
	return BaseAgent{name: name, displayName: displayName}
}

// Name returns the agent's registry key.
func (b *BaseAgent) Name() string {
	return b.name
}

// DisplayName returns the agent's human-readable name.
func (b *BaseAgent) DisplayName() string {
	return b.displayName
}

// Registry is the closed set of agent implementations, looked up by name.
// It is built once at startup; there is no runtime plugin loading.
type Registry struct {
	agents map[string]Agent
}

// NewRegistry creates a registry holding the given agents.
func NewRegistry(agents ...Agent) *Registry {
	r := &Registry{agents: make(map[string]Agent, len(agents))}
	for _, a := range agents {
		r.agents[a.Name()] = a
	}
	return r
}

// DefaultRegistry returns the built-in agent set. Agents seeded in the
// database without an implementation here fail registration with an
// unknown-agent error rather than being silently skipped.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewDailyReportAgent(),
		NewIntradayMonitorAgent(),
		NewMorningBriefAgent(),
	)
}

// Lookup returns the agent registered under name, or nil.
func (r *Registry) Lookup(name string) Agent {
	return r.agents[name]
}

// Names returns the registered agent names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	return names
}
