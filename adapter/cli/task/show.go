package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/taskforge/taskforge/adapter/cli"
	"github.com/taskforge/taskforge/internal/tasks/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		ctx := cmd.Context()
		t, err := app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch task: %w", err)
		}

		status := "open"
		if t.Completed {
			status = "completed"
		} else if t.Overdue {
			status = "overdue"
		}

		fmt.Printf("Task: %s\n", t.Title)
		fmt.Printf("  ID: %s\n", t.ID)
		if t.Description != "" {
			fmt.Printf("  Description: %s\n", t.Description)
		}
		fmt.Printf("  Category: %s\n", t.Category)
		fmt.Printf("  Status: %s\n", status)
		fmt.Printf("  Deadline: %s\n", t.Deadline.Format("2006-01-02 15:04"))
		fmt.Printf("  Created: %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
		if t.CompletedAt != nil {
			fmt.Printf("  Completed: %s\n", t.CompletedAt.Format("2006-01-02 15:04"))
			fmt.Printf("  Earned: %d points\n", t.PointsAwarded)
		}

		return nil
	},
}
