package cli

import (
	"github.com/google/uuid"

	gamificationCommands "github.com/taskforge/taskforge/internal/gamification/application/commands"
	gamificationQueries "github.com/taskforge/taskforge/internal/gamification/application/queries"
	taskCommands "github.com/taskforge/taskforge/internal/tasks/application/commands"
	taskQueries "github.com/taskforge/taskforge/internal/tasks/application/queries"
)

// App holds the CLI application dependencies.
type App struct {
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

	// Gamification Query Handlers
	GetStatsHandler       *gamificationQueries.GetStatsHandler
	GetProgressHandler    *gamificationQueries.GetProgressHandler
	GetLeaderboardHandler *gamificationQueries.GetLeaderboardHandler

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	createTaskHandler *taskCommands.CreateTaskHandler,
	deleteTaskHandler *taskCommands.DeleteTaskHandler,
	listTasksHandler *taskQueries.ListTasksHandler,
	getTaskHandler *taskQueries.GetTaskHandler,
	awardCompletionHandler *gamificationCommands.AwardCompletionHandler,
	revertCompletionHandler *gamificationCommands.RevertCompletionHandler,
	sweepOverdueHandler *gamificationCommands.SweepOverdueHandler,
	getStatsHandler *gamificationQueries.GetStatsHandler,
	getProgressHandler *gamificationQueries.GetProgressHandler,
	getLeaderboardHandler *gamificationQueries.GetLeaderboardHandler,
) *App {
	return &App{
		CreateTaskHandler:       createTaskHandler,
		DeleteTaskHandler:       deleteTaskHandler,
		ListTasksHandler:        listTasksHandler,
		GetTaskHandler:          getTaskHandler,
		AwardCompletionHandler:  awardCompletionHandler,
		RevertCompletionHandler: revertCompletionHandler,
		SweepOverdueHandler:     sweepOverdueHandler,
		GetStatsHandler:         getStatsHandler,
		GetProgressHandler:      getProgressHandler,
		GetLeaderboardHandler:   getLeaderboardHandler,
		CurrentUserID:           uuid.Nil,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
