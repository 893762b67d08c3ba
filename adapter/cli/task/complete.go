package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/taskforge/taskforge/adapter/cli"
	"github.com/taskforge/taskforge/internal/gamification/application/commands"
)

var completeCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task as complete",
	Long: `Mark a task as complete by its ID and collect the points it earns.

Finishing before the deadline and before 10am both multiply the
base points, so an early morning daily task can earn up to 18.

Examples:
  taskforge task complete 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AwardCompletionHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		awardCmd := commands.AwardCompletionCommand{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		}

		ctx := cmd.Context()
		result, err := app.AwardCompletionHandler.Handle(ctx, awardCmd)
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}

		fmt.Printf("Task completed! +%d points (total %d)\n", result.PointsAwarded, result.TotalPoints)
		if result.CurrentStreak > 1 {
			fmt.Printf("  Streak: %d days\n", result.CurrentStreak)
		}
		if result.LeveledUp {
			fmt.Printf("  Level up! You are now level %d: %s\n", result.Level, result.LevelTitle)
		}
		for _, badge := range result.NewBadges {
			fmt.Printf("  Badge earned: %s %s - %s\n", badge.Icon, badge.Name, badge.Description)
		}

		return nil
	},
}
