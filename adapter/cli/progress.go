package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taskforge/taskforge/internal/gamification/application/queries"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show completion progress per category",
	Long: `Display how many of the current period's tasks are done:
daily tasks created today, weekly tasks created this week and
monthly tasks created this month, plus an overall figure.

Examples:
  taskforge progress`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetProgressHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ctx := cmd.Context()
		report, err := app.GetProgressHandler.Handle(ctx, queries.GetProgressQuery{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}

		fmt.Println("\n  Progress")
		fmt.Println(strings.Repeat("=", 60))
		printPeriod("Today", report.Daily)
		printPeriod("This week", report.Weekly)
		printPeriod("This month", report.Monthly)
		printPeriod("Overall", report.Overall)
		fmt.Println()

		return nil
	},
}

func printPeriod(label string, p queries.PeriodProgressDTO) {
	fmt.Printf("  %-11s %s %3d%%  (%d/%d)\n", label, progressBar(p.Pct), p.Pct, p.Completed, p.Total)
}

// progressBar renders a 20-cell bar like [########------------].
func progressBar(pct int) string {
	const width = 20
	filled := pct * width / 100
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func init() {
	rootCmd.AddCommand(progressCmd)
}
