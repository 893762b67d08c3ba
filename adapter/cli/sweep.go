package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskforge/taskforge/internal/gamification/application/commands"
)

var sweepBatchSize int

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Flag overdue tasks and apply penalties",
	Long: `Run one overdue sweep pass: open tasks past their deadline are
flagged as overdue and the category penalty is deducted from the
owner's points. The worker runs this continuously; the command is
for running it by hand.

Examples:
  taskforge sweep
  taskforge sweep --batch-size 500`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.SweepOverdueHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ctx := cmd.Context()
		result, err := app.SweepOverdueHandler.Handle(ctx, commands.SweepOverdueCommand{
			BatchSize: sweepBatchSize,
		})
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}

		fmt.Printf("Sweep done: %d tasks flagged, %d points deducted\n", result.Flagged, result.PointsDeducted)
		if result.Failed > 0 {
			fmt.Printf("  %d tasks could not be processed\n", result.Failed)
		}

		return nil
	},
}

func init() {
	sweepCmd.Flags().IntVar(&sweepBatchSize, "batch-size", 0, "maximum tasks to flag in one pass")
	rootCmd.AddCommand(sweepCmd)
}
