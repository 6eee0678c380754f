package main

import (
	"context"
	"errors"
	"os"

	"github.com/calegria/shotwork/internal/repositories"
	"github.com/calegria/shotwork/internal/services"
	"github.com/calegria/shotwork/internal/shared"
	"github.com/calegria/shotwork/internal/tasks"
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

	var service *tasks.TaskService
	var resolver services.MediaResolver

	resolver = services.NewProxyResolver(config.Proxy.BaseURL, nil)

	var notifier services.Notifier
	if config.Redis.Addr != "" {
		if redisNotifier, err := services.NewRedisNotifier(config.Redis); err == nil {
			notifier = redisNotifier
			defer redisNotifier.Close()
		} else {
			logger.Warn("redis unavailable, logging events instead", "error", err)
		}
	}

	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		defer db.Close()

		service = tasks.NewTaskService(tasks.TaskServiceOpts{
			Store:         repositories.NewTaskRepository(db),
			Notifier:      notifier,
			Resolver:      resolver,
			Logger:        logger,
			RequirePhotos: config.Tasks.RequirePhotos,
			MaxRetries:    config.Tasks.MaxRetries,
		})
	} else {
		logger.Warn("database unavailable", "path", config.Database.Path, "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Service:  service,
		Resolver: resolver,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "shotwork",
		Usage:    "Track photo & video fulfillment tasks through their approval workflow",
		Version:  "0.4.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
