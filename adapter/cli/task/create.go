package task

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskforge/taskforge/adapter/cli"
	"github.com/taskforge/taskforge/internal/tasks/application/commands"
	domaintask "github.com/taskforge/taskforge/internal/tasks/domain/task"
)

var (
	createCategory    string
	createDescription string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task",
	Long: `Create a new task with a title and a category.

The category determines the task's deadline and how many points
completing it is worth:
  daily    due end of day        10 points
  weekly   due end of week       50 points
  monthly  due end of month     200 points

Examples:
  taskforge task create "Morning run"
  taskforge task create "Weekly review" -c weekly
  taskforge task create "File taxes" --category monthly --description "Before the 15th"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		category, err := domaintask.ParseCategory(createCategory)
		if err != nil {
			return fmt.Errorf("invalid category %q: %w", createCategory, err)
		}

		createCmd := commands.CreateTaskCommand{
			UserID:      app.CurrentUserID,
			Title:       args[0],
			Description: createDescription,
			Category:    category,
		}

		ctx := cmd.Context()
		created, err := app.CreateTaskHandler.Handle(ctx, createCmd)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		fmt.Printf("Task created: %s\n", created.ID())
		fmt.Printf("  title: %s\n", created.Title())
		fmt.Printf("  category: %s\n", created.Category())
		fmt.Printf("  deadline: %s\n", created.Deadline().Format("2006-01-02 15:04"))
		fmt.Printf("  worth: %d points\n", created.Category().BasePoints())

		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createCategory, "category", "c", "daily", "task category (daily, weekly, monthly)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "task description")
}
