package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/app"
	"github.com/ternarybob/docforge/internal/common"
)

var (
	configFile   = flag.String("config", "", "Configuration file path")
	configFileC  = flag.String("c", "", "Configuration file path (shorthand)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("DocForge version %s\n", common.GetVersion())
		os.Exit(0)
	}

	path := *configFile
	if path == "" {
		path = *configFileC
	}

	// Auto-discover a config file next to the binary invocation
	if path == "" {
		if _, err := os.Stat("docforge.toml"); err == nil {
			path = "docforge.toml"
		}
	}

	config, err := common.LoadFromFile(path)
	if err != nil {
		arbor.NewLogger().Fatal().Str("path", path).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}

	if err := application.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start application")
		_ = application.Close()
		os.Exit(1)
	}

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Msg("DocForge running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down")
	if err := application.Close(); err != nil {
		logger.Error().Err(err).Msg("Shutdown completed with errors")
		os.Exit(1)
	}
	logger.Info().Msg("Shutdown complete")
}
