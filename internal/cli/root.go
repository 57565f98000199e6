// Package cli provides the command-line interface for the market watch
// application.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"panwatch/internal/agent"
	"panwatch/internal/config"
	"panwatch/internal/logging"
	"panwatch/internal/scheduler"
	"panwatch/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Store     store.DataStore
	Registry  *agent.Registry
	Scheduler *scheduler.Scheduler
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, configDir string, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
		Registry:  agent.DefaultRegistry(),
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = configDir + "/panwatch.db"
	}
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", dbPath).Msg("SQLite store initialized")
	}

	builder := agent.NewBuilder(app.Store, func() (*config.Config, error) {
		return config.Load(configDir)
	}, logger)
	app.Scheduler = scheduler.New(app.Registry, builder, app.Store, logger)

	rootCmd := &cobra.Command{
		Use:   "panwatch",
		Short: "PanWatch - scheduled market watch agents",
		Long: `PanWatch runs scheduled agents over a personal stock watchlist.

Agents collect quotes across CN, HK and US markets, analyze them and
deliver reports through the configured notification channels.

Use 'panwatch serve' to start the scheduler, or 'panwatch trigger <agent>'
to run an agent once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/panwatch)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newTriggerCmd(app))
	rootCmd.AddCommand(newAgentsCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newMarketsCmd(app))
	rootCmd.AddCommand(newRunsCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("PanWatch v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}
