package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/taskforge/taskforge/adapter/cli"
	"github.com/taskforge/taskforge/internal/gamification/application/commands"
)

var uncompleteCmd = &cobra.Command{
	Use:   "uncomplete [task-id]",
	Short: "Reopen a completed task",
	Long: `Reopen a completed task by its ID.

The points the completion earned are deducted again. XP is kept,
so reopening a task never causes a level to be lost.

Examples:
  taskforge task uncomplete 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"reopen"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RevertCompletionHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		revertCmd := commands.RevertCompletionCommand{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		}

		ctx := cmd.Context()
		result, err := app.RevertCompletionHandler.Handle(ctx, revertCmd)
		if err != nil {
			return fmt.Errorf("failed to reopen task: %w", err)
		}

		fmt.Printf("Task reopened: %s\n", taskID)
		fmt.Printf("  -%d points (total %d)\n", result.PointsReverted, result.TotalPoints)

		return nil
	},
}
