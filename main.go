package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"panwatch/internal/cli"
	"panwatch/internal/config"
	"panwatch/internal/logging"
)

func main() {
	// .env is optional; environment variables win over credential files.
	_ = godotenv.Load()

	configDir := config.DefaultConfigDir()
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) && os.Args[i+1] != "" {
			configDir = os.Args[i+1]
		}
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	rootCmd := cli.NewRootCmd(cfg, configDir, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
