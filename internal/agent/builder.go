package agent

import (
	"context"

	"github.com/rs/zerolog"

	"panwatch/internal/ai"
	"panwatch/internal/collector"
	"panwatch/internal/config"
	"panwatch/internal/errors"
	"panwatch/internal/market"
	"panwatch/internal/notify"
)

// WatchlistSource yields the watch items assigned to a named agent.
type WatchlistSource interface {
	GetWatchlistForAgent(ctx context.Context, agentName string) ([]market.WatchItem, error)
}

// Builder assembles a fresh Context for every run. Configuration is
// reloaded on each Build call so edits on disk take effect at the next
// trigger without a restart.
type Builder struct {
	watchlists WatchlistSource
	loadConfig func() (*config.Config, error)
	logger     zerolog.Logger
}

// NewBuilder creates a context builder backed by the given watchlist
// source and config loader.
func NewBuilder(watchlists WatchlistSource, loadConfig func() (*config.Config, error), logger zerolog.Logger) *Builder {
	return &Builder{
		watchlists: watchlists,
		loadConfig: loadConfig,
		logger:     logger,
	}
}

// Build assembles the execution context for one run of the named agent.
func (b *Builder) Build(ctx context.Context, agentName string) (*Context, error) {
	cfg, err := b.loadConfig()
	if err != nil {
		return nil, errors.NewContextBuildError(agentName, err)
	}

	if b.watchlists == nil {
		return nil, errors.NewContextBuildError(agentName, errors.ErrStoreNotInitialized)
	}
	watchlist, err := b.watchlists.GetWatchlistForAgent(ctx, agentName)
	if err != nil {
		return nil, errors.NewContextBuildError(agentName, err)
	}

	var aiClient ai.Client
	if cfg.Credentials.AI.APIKey != "" {
		aiClient = ai.NewOpenAIClient(cfg.Credentials.AI)
	}

	logger := b.logger.With().Str("agent", agentName).Logger()

	var notifier notify.Notifier
	if cfg.Notifications.Enabled {
		notifier = notify.NewMultiNotifier(&cfg.Notifications, logger)
	} else {
		notifier = notify.NewNoOpNotifier()
	}

	return &Context{
		Watchlist:  watchlist,
		AI:         aiClient,
		Notifier:   notifier,
		Collectors: collector.NewGroup(cfg.Collector, logger),
		Settings:   cfg,
		Logger:     logger,
	}, nil
}
