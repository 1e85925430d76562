package main

import (
	"context"
	"errors"
	"os"

	"github.com/nvale/scrapedeck/internal/services"
	"github.com/nvale/scrapedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		History:  services.NewHistoryService(config.Server.BaseURL, nil),
		Metadata: services.NewTMDBService(config.Server.BaseURL, nil),
		API:      services.NewAPIService(config.Server.BaseURL, nil),
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "scrapedeck",
		Usage:    "Review and resolve media scraping history",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrServiceUnavailable) {
			logger.Fatal("server unreachable; is the scraper running?", "err", err)
		}
		logger.Fatalf("application error: %v", err)
	}
}
