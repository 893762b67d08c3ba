package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/adapter/cli"
	"github.com/taskforge/taskforge/adapter/cli/task"
	"github.com/taskforge/taskforge/internal/app"
	gamificationCommands "github.com/taskforge/taskforge/internal/gamification/application/commands"
	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/observability"
)

func main() {
	// Setup logger from APP_ENV / LOG_LEVEL
	logger := observability.LoggerFromEnv()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// In development without .env, use defaults
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	cli.SetLogger(logger)

	// Try to initialize the full container
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
			// In development, allow CLI to run without database
			cliApp = nil
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		// Start outbox processor in background (optional in CLI)
		if cfg.OutboxProcessorEnabled {
			go container.OutboxProcessor.Start(ctx)
		} else {
			logger.Info("outbox processor disabled in CLI")
		}

		userID, err := uuid.Parse(cfg.UserID)
		if err != nil {
			logger.Error("invalid TASKFORGE_USER_ID", "error", err)
			os.Exit(1)
		}

		// Ensure a progress record exists for the configured user.
		initCmd := gamificationCommands.InitProgressCommand{
			UserID:      userID,
			DisplayName: cfg.DisplayName,
		}
		if err := container.InitProgressHandler.Handle(ctx, initCmd); err != nil {
			logger.Warn("failed to initialize user progress", "error", err)
		}

		// Create CLI app with handlers
		cliApp = cli.NewApp(
			container.CreateTaskHandler,
			container.DeleteTaskHandler,
			container.ListTasksHandler,
			container.GetTaskHandler,
			container.AwardCompletionHandler,
			container.RevertCompletionHandler,
			container.SweepOverdueHandler,
			container.GetStatsHandler,
			container.GetProgressHandler,
			container.GetLeaderboardHandler,
		)
		cliApp.SetCurrentUserID(userID)
	}

	// Set the CLI app
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(task.Cmd)

	// Execute CLI
	cli.Execute()
}
