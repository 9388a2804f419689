package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/hintly/internal/hints"
	"github.com/abhisek/hintly/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect or reset learner progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a learner's progress on every problem",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		rows, err := rt.store.ListUserProgress(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Printf("No progress recorded for user %d.\n", userID)
			return nil
		}

		now := time.Now()
		fmt.Printf("%-8s  %8s  %6s  %5s  %8s  %s\n", "Problem", "Attempts", "Failed", "Level", "Idle", "Stuck")
		fmt.Println(strings.Repeat("─", 52))
		for i := range rows {
			snap := progress.SnapshotAt(&rows[i], now)
			stuck := ""
			if snap.IsStuck {
				stuck = "yes"
			}
			fmt.Printf("%-8d  %8d  %6d  %5d  %8s  %s\n",
				rows[i].ProblemID, snap.AttemptsCount, snap.FailedAttemptsCount, snap.CurrentHintLevel,
				formatIdle(snap.TimeSinceLastAttempt), stuck)
		}
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a learner to hint level 1 on a problem",
	Long:  "Resets the hint level to 1 and clears the failure streak. The attempt count is kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		problemID, _ := cmd.Flags().GetInt64("problem")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		// Reset makes no generative calls.
		svc := hints.NewService(rt.store, nil, nil, hintsConfig(rt.cfg), rt.log)
		snap, err := svc.ResetProgress(cmd.Context(), userID, problemID)
		if err != nil {
			return err
		}
		fmt.Printf("Reset user %d on problem %d: level %d, %d attempts kept.\n",
			userID, problemID, snap.CurrentHintLevel, snap.AttemptsCount)
		return nil
	},
}

func formatIdle(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return (time.Duration(seconds) * time.Second).Round(time.Second).String()
}

func init() {
	progressShowCmd.Flags().Int64("user", 0, "Learner ID (required)")
	_ = progressShowCmd.MarkFlagRequired("user")

	progressResetCmd.Flags().Int64("user", 0, "Learner ID (required)")
	progressResetCmd.Flags().Int64("problem", 0, "Problem ID (required)")
	_ = progressResetCmd.MarkFlagRequired("user")
	_ = progressResetCmd.MarkFlagRequired("problem")

	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressResetCmd)
}
