package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/taskforge/taskforge/adapter/cli"
	"github.com/taskforge/taskforge/internal/tasks/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Long: `Delete a task by its ID.

Deleting a completed task does not deduct the points it earned;
reopen it first if the completion should be undone.

Examples:
  taskforge task delete 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		deleteCmd := commands.DeleteTaskCommand{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		}

		ctx := cmd.Context()
		if err := app.DeleteTaskHandler.Handle(ctx, deleteCmd); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		fmt.Printf("Task deleted: %s\n", taskID)
		return nil
	},
}
