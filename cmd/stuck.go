package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/hintly/internal/hints"
	"github.com/abhisek/hintly/internal/progress"
	"github.com/abhisek/hintly/internal/ui/components"
)

var stuckCmd = &cobra.Command{
	Use:   "stuck",
	Short: "Check whether a learner is stuck and deliver a hint if so",
	Long: `Checks the learner's progress on a problem. When they have been idle for
five minutes with at least three failed attempts, a hint is generated for
the given code and delivered as auto-triggered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		problemID, _ := cmd.Flags().GetInt64("problem")

		var code string
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			var err error
			if code, err = readCode(cmd); err != nil {
				return err
			}
		}

		status, _ := cmd.Flags().GetString("status")
		lastErr, _ := cmd.Flags().GetString("error")
		passed, _ := cmd.Flags().GetInt("passed")
		total, _ := cmd.Flags().GetInt("total")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		svc, closeSvc, err := newService(cmd.Context(), rt)
		if err != nil {
			return err
		}
		defer closeSvc()

		res, err := svc.CheckAutoTrigger(cmd.Context(), hints.AutoTriggerRequest{
			UserID:    userID,
			ProblemID: problemID,
			Code:      code,
			Signals:   hints.AttemptSignals{Status: status, Error: lastErr, TestsPassed: passed, TestsTotal: total},
		})
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(res)
		}

		title := fmt.Sprintf("Problem %d", problemID)
		if p, err := rt.store.GetProblem(cmd.Context(), problemID); err == nil {
			title = p.Title
		}
		if !res.Triggered {
			snap := res.UserProgress
			fmt.Println(components.HintCard{
				Problem:  title,
				Level:    snap.CurrentHintLevel,
				MaxLevel: progress.MaxLevel,
				Attempts: snap.AttemptsCount,
				Failed:   snap.FailedAttemptsCount,
				Elapsed:  snap.TimeSinceLastAttempt,
				Passed:   snap.FailedAttemptsCount == 0,
				Notes:    []string{"Not stuck yet. Keep going."},
			}.View())
			return nil
		}
		fmt.Println(resultCard(title, res.Result).View())
		return nil
	},
}

func init() {
	stuckCmd.Flags().Int64("user", 0, "Learner ID (required)")
	stuckCmd.Flags().Int64("problem", 0, "Problem ID (required)")
	stuckCmd.Flags().StringP("file", "f", "", "File with the learner's current code, - for stdin")
	stuckCmd.Flags().String("status", "", "Status of the last run (e.g. failed, error, timeout)")
	stuckCmd.Flags().String("error", "", "Error output of the last run")
	stuckCmd.Flags().Int("passed", 0, "Tests passed in the last run")
	stuckCmd.Flags().Int("total", 0, "Tests run in the last run")
	stuckCmd.Flags().Bool("json", false, "Print the raw result as JSON")
	_ = stuckCmd.MarkFlagRequired("user")
	_ = stuckCmd.MarkFlagRequired("problem")
}
