package main

import (
	"context"
	"fmt"
	"os"

	"recipebook/infrastructure/config"
	"recipebook/infrastructure/di"
	"recipebook/interfaces/cli"
)

func main() {
	factory := func(ctx context.Context) (*cli.App, func(), error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		container, cleanup, err := di.InitializeContainer(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize container: %w", err)
		}
		release := func() {
			_ = container.Logger.Sync()
			cleanup()
		}
		return &cli.App{
			CommandBus:  container.CommandBus,
			QueryBus:    container.QueryBus,
			AdminSecret: cfg.AdminSecret,
		}, release, nil
	}

	if err := cli.Execute(context.Background(), factory, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
