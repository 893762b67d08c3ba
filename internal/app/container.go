// Package app wires configuration, infrastructure, and handlers into a
// single container shared by the CLI and the worker.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	gamificationCommands "github.com/taskforge/taskforge/internal/gamification/application/commands"
	gamificationQueries "github.com/taskforge/taskforge/internal/gamification/application/queries"
	gamificationServices "github.com/taskforge/taskforge/internal/gamification/application/services"
	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
	"github.com/taskforge/taskforge/internal/gamification/infrastructure/cache"
	gamificationPersistence "github.com/taskforge/taskforge/internal/gamification/infrastructure/persistence"
	sharedApplication "github.com/taskforge/taskforge/internal/shared/application"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/database"
	_ "github.com/taskforge/taskforge/internal/shared/infrastructure/database/postgres" // register postgres driver
	"github.com/taskforge/taskforge/internal/shared/infrastructure/database/sqlite"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/eventbus"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/migrations"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/outbox"
	taskCommands "github.com/taskforge/taskforge/internal/tasks/application/commands"
	taskQueries "github.com/taskforge/taskforge/internal/tasks/application/queries"
	"github.com/taskforge/taskforge/internal/tasks/domain/task"
	taskPersistence "github.com/taskforge/taskforge/internal/tasks/infrastructure/persistence"
	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	TaskRepo     task.Repository
	ProgressRepo progress.Repository
	OutboxRepo   outbox.Repository

	// Publishers
	EventPublisher eventbus.Publisher

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Shared services
	UserLocks      *gamificationServices.UserLocks
	BadgeEvaluator *gamificationServices.BadgeEvaluator

	// Task Command Handlers
	CreateTaskHandler *taskCommands.CreateTaskHandler
	DeleteTaskHandler *taskCommands.DeleteTaskHandler

	// Task Query Handlers
	ListTasksHandler *taskQueries.ListTasksHandler
	GetTaskHandler   *taskQueries.GetTaskHandler

	// Gamification Command Handlers
	AwardCompletionHandler  *gamificationCommands.AwardCompletionHandler
	RevertCompletionHandler *gamificationCommands.RevertCompletionHandler
	SweepOverdueHandler     *gamificationCommands.SweepOverdueHandler
	InitProgressHandler     *gamificationCommands.InitProgressHandler

	// Gamification Query Handlers
	GetStatsHandler       *gamificationQueries.GetStatsHandler
	GetProgressHandler    *gamificationQueries.GetProgressHandler
	GetLeaderboardHandler *gamificationQueries.GetLeaderboardHandler

	// Outbox Processor
	OutboxProcessor *outbox.Processor
}

// NewContainer creates and wires all dependencies. The database driver
// is selected from configuration: PostgreSQL when a DATABASE_URL is
// configured, SQLite in local mode.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NoopMetrics{},
	}
	if cfg.IsDevelopment() {
		c.Metrics = observability.NewInMemoryMetrics()
	}

	conn, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()

	if err := runMigrations(ctx, conn, logger); err != nil {
		conn.Close()
		return nil, err
	}

	// Redis backs the leaderboard cache and is optional: reads fall
	// back to the repository when unavailable.
	if cfg.RedisURL != "" && !cfg.IsLocalMode() {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				conn.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, leaderboard cache disabled", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					conn.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, leaderboard cache disabled", "error", err)
			} else {
				c.RedisClient = redisClient
				logger.Info("connected to Redis")
			}
		}
	}

	// Create repositories for the active driver
	switch c.DBDriver {
	case database.DriverPostgres:
		c.TaskRepo = taskPersistence.NewPostgresTaskRepository(conn)
		c.ProgressRepo = gamificationPersistence.NewPostgresProgressRepository(conn)
		c.OutboxRepo = outbox.NewPostgresRepository(conn)
	case database.DriverSQLite:
		c.TaskRepo = taskPersistence.NewSQLiteTaskRepository(conn)
		c.ProgressRepo = gamificationPersistence.NewSQLiteProgressRepository(conn)
		c.OutboxRepo = outbox.NewSQLiteRepository(conn)
	default:
		conn.Close()
		return nil, fmt.Errorf("unsupported database driver: %s", c.DBDriver)
	}

	c.UnitOfWork = database.NewUnitOfWork(conn)

	// Create event publisher. Local mode has no broker; elsewhere
	// development falls back to noop when RabbitMQ is unreachable.
	if cfg.IsLocalMode() {
		c.EventPublisher = eventbus.NewNoopPublisher(logger)
	} else {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if cfg.IsDevelopment() {
				logger.Warn("RabbitMQ not available, using noop publisher")
				c.EventPublisher = eventbus.NewNoopPublisher(logger)
			} else {
				conn.Close()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
		} else {
			c.EventPublisher = publisher
		}
	}

	// Shared gamification services
	c.UserLocks = gamificationServices.NewUserLocks()
	c.BadgeEvaluator = gamificationServices.NewBadgeEvaluator(c.TaskRepo)

	// Create task command handlers
	c.CreateTaskHandler = taskCommands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork).WithMetrics(c.Metrics)
	c.DeleteTaskHandler = taskCommands.NewDeleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork).WithMetrics(c.Metrics)

	// Create task query handlers
	c.ListTasksHandler = taskQueries.NewListTasksHandler(c.TaskRepo)
	c.GetTaskHandler = taskQueries.NewGetTaskHandler(c.TaskRepo)

	// Create gamification command handlers
	c.AwardCompletionHandler = gamificationCommands.NewAwardCompletionHandler(
		c.TaskRepo, c.ProgressRepo, c.OutboxRepo, c.UnitOfWork, c.BadgeEvaluator, c.UserLocks).WithMetrics(c.Metrics)
	c.RevertCompletionHandler = gamificationCommands.NewRevertCompletionHandler(
		c.TaskRepo, c.ProgressRepo, c.OutboxRepo, c.UnitOfWork, c.UserLocks).WithMetrics(c.Metrics)
	c.SweepOverdueHandler = gamificationCommands.NewSweepOverdueHandler(
		c.TaskRepo, c.ProgressRepo, c.OutboxRepo, c.UnitOfWork, c.UserLocks, logger).WithMetrics(c.Metrics)
	c.InitProgressHandler = gamificationCommands.NewInitProgressHandler(c.ProgressRepo, c.OutboxRepo, c.UnitOfWork)

	// Create gamification query handlers
	c.GetStatsHandler = gamificationQueries.NewGetStatsHandler(c.ProgressRepo)
	c.GetProgressHandler = gamificationQueries.NewGetProgressHandler(c.TaskRepo)

	var leaderboard gamificationQueries.LeaderboardReader = gamificationQueries.NewRepositoryLeaderboard(c.ProgressRepo)
	if c.RedisClient != nil {
		leaderboard = cache.NewRedisLeaderboard(leaderboard, c.RedisClient, cfg.LeaderboardCacheTTL, logger)
	}
	c.GetLeaderboardHandler = gamificationQueries.NewGetLeaderboardHandler(leaderboard)

	// Create outbox processor
	processorConfig := outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger).WithMetrics(c.Metrics)

	logger.Info("container initialized", "driver", c.DBDriver.String())

	return c, nil
}

// connect opens the configured database connection.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (database.Connection, error) {
	dbConfig := database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	}
	switch {
	case cfg.IsSQLite():
		dbConfig.Driver = database.DriverSQLite
	case cfg.IsPostgres():
		dbConfig.Driver = database.DriverPostgres
	}

	conn, err := database.NewConnection(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to database", "driver", conn.Driver().String())
	return conn, nil
}

// runMigrations applies the schema migrations for the active driver.
func runMigrations(ctx context.Context, conn database.Connection, logger *slog.Logger) error {
	logger.Info("running migrations", "driver", conn.Driver().String())

	switch conn.Driver() {
	case database.DriverSQLite:
		sqliteConn, ok := conn.(*sqlite.Connection)
		if !ok {
			return fmt.Errorf("expected SQLite connection, got %T", conn)
		}
		if err := migrations.RunSQLiteMigrations(ctx, sqliteConn.DB()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	case database.DriverPostgres:
		if err := migrations.RunPostgresMigrations(ctx, conn); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	logger.Info("migrations completed")
	return nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed")
		}
	}
}
