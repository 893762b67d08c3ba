package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taskforge/taskforge/internal/gamification/application/queries"
)

var leaderboardLimit int

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the points leaderboard",
	Long: `Display the top players ranked by total points.

Examples:
  taskforge leaderboard
  taskforge leaderboard --limit 25`,
	Aliases: []string{"top"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetLeaderboardHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ctx := cmd.Context()
		entries, err := app.GetLeaderboardHandler.Handle(ctx, queries.GetLeaderboardQuery{
			Limit: leaderboardLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to load leaderboard: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No players on the leaderboard yet.")
			return nil
		}

		fmt.Println("\n  Leaderboard")
		fmt.Println(strings.Repeat("=", 60))
		for _, entry := range entries {
			marker := " "
			if entry.UserID == app.CurrentUserID {
				marker = "*"
			}
			fmt.Printf("  %s %2d. %-20s %6d pts  lvl %d (%s)\n",
				marker, entry.Rank, entry.Name, entry.Points, entry.Level, entry.LevelTitle)
		}
		fmt.Println()

		return nil
	},
}

func init() {
	leaderboardCmd.Flags().IntVar(&leaderboardLimit, "limit", 0, "number of entries to show (default 10)")
	rootCmd.AddCommand(leaderboardCmd)
}
