package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taskforge/taskforge/internal/gamification/application/queries"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your points, level and badges",
	Long: `Display your gamification profile:
- Total points and level
- XP and how much is left until the next level
- Current and longest completion streak
- Badges earned so far

Examples:
  taskforge stats`,
	Aliases: []string{"profile"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetStatsHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ctx := cmd.Context()
		stats, err := app.GetStatsHandler.Handle(ctx, queries.GetStatsQuery{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}

		fmt.Printf("\n  %s\n", stats.DisplayName)
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("  Level %d: %s\n", stats.Level, stats.LevelTitle)
		fmt.Printf("  Points: %d\n", stats.Points)
		fmt.Printf("  XP: %d (%d to next level)\n", stats.XP, stats.XPToNextLevel)
		fmt.Printf("  Streak: %d days (best %d)\n", stats.CurrentStreak, stats.LongestStreak)
		fmt.Printf("  Completed tasks: %d\n", stats.TotalCompleted)

		if len(stats.Badges) > 0 {
			fmt.Println("\n  BADGES")
			fmt.Println(strings.Repeat("-", 60))
			for _, badge := range stats.Badges {
				fmt.Printf("  %s - %s (earned %s)\n", badge.Name, badge.Description, badge.AwardedAt.Format("2006-01-02"))
			}
		}

		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
