package task

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taskforge/taskforge/adapter/cli"
	"github.com/taskforge/taskforge/internal/tasks/application/queries"
	domaintask "github.com/taskforge/taskforge/internal/tasks/domain/task"
)

var (
	listCategory string
	listPending  bool
	listOverdue  bool
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks with optional filtering.

Filter Options:
  --category  Filter by category (daily, weekly, monthly)
  --pending   Show only tasks that are not completed yet
  --overdue   Show only tasks flagged as overdue

Examples:
  taskforge task list                  # All tasks
  taskforge task list --pending        # Open tasks only
  taskforge task list -c weekly        # Weekly tasks
  taskforge task list --overdue        # Overdue tasks
  taskforge task list --limit 5        # Most recent 5`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTasksHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		if listCategory != "" {
			if _, err := domaintask.ParseCategory(listCategory); err != nil {
				return fmt.Errorf("invalid category %q: %w", listCategory, err)
			}
		}

		query := queries.ListTasksQuery{
			UserID:      app.CurrentUserID,
			Category:    listCategory,
			OnlyPending: listPending,
			OnlyOverdue: listOverdue,
			Limit:       listLimit,
		}

		ctx := cmd.Context()
		tasks, err := app.ListTasksHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		fmt.Printf("Tasks (%d):\n", len(tasks))
		fmt.Println(strings.Repeat("-", 60))

		for _, t := range tasks {
			icon := "[ ]"
			if t.Completed {
				icon = "[x]"
			}

			marker := ""
			if t.Overdue && !t.Completed {
				marker = " [OVERDUE]"
			}

			fmt.Printf("%s %s (%s)%s\n", icon, t.Title, t.Category, marker)
			fmt.Printf("   ID: %s\n", t.ID.String()[:8])
			fmt.Printf("   Due: %s\n", t.Deadline.Format("2006-01-02 15:04"))
			if t.Completed {
				fmt.Printf("   Earned: %d points\n", t.PointsAwarded)
			}
			fmt.Println()
		}

		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "filter by category (daily, weekly, monthly)")
	listCmd.Flags().BoolVar(&listPending, "pending", false, "show only open tasks")
	listCmd.Flags().BoolVar(&listOverdue, "overdue", false, "show only overdue tasks")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of tasks to show")
}
