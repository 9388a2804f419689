package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/hintly/internal/diagnosis"
	"github.com/abhisek/hintly/internal/hints"
	"github.com/abhisek/hintly/internal/progress"
	"github.com/abhisek/hintly/internal/ui/components"
)

var hintCmd = &cobra.Command{
	Use:   "hint",
	Short: "Evaluate code and get the next hint for a problem",
	Example: `  hintly hint --user 1 --problem 7 --file solution.py
  cat solution.py | hintly hint --user 1 --problem 7 --title "Two Sum"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		problemID, _ := cmd.Flags().GetInt64("problem")
		code, err := readCode(cmd)
		if err != nil {
			return err
		}

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

		res, err := svc.RequestHint(cmd.Context(), hints.HintRequest{
			UserID:    userID,
			ProblemID: problemID,
			Code:      code,
			Problem:   problemFlags(cmd),
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
		fmt.Println(resultCard(title, res).View())
		return nil
	},
}

func resultCard(title string, res *hints.Result) components.HintCard {
	card := components.HintCard{
		Problem:  title,
		Level:    res.UserProgress.CurrentHintLevel,
		MaxLevel: progress.MaxLevel,
		Passed:   res.AttemptEvaluation.Success,
		Attempts: res.UserProgress.AttemptsCount,
		Failed:   res.UserProgress.FailedAttemptsCount,
		Elapsed:  res.UserProgress.TimeSinceLastAttempt,
	}
	if res.Hint != nil {
		card.Type = string(res.Hint.Type)
		card.Content = res.Hint.Content
		card.Level = res.Hint.Level
	}
	if !res.AttemptEvaluation.Success {
		if info := diagnosis.Lookup(res.AttemptEvaluation.Pattern); info != nil {
			card.Diagnosis = info.Label
		}
	}
	if res.AutoTriggered {
		card.Notes = append(card.Notes, "You looked stuck, so here is a hint.")
	}
	if res.DuplicateDelivered {
		card.Notes = append(card.Notes, "This hint repeats the previous one.")
	}
	if res.RAGUsed {
		card.Notes = append(card.Notes, "Personalized from your earlier problems.")
	}
	return card
}

// readCode reads --file, or stdin when the flag is "-".
func readCode(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("file")
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read code: %w", err)
	}
	return string(data), nil
}

func problemFlags(cmd *cobra.Command) *hints.ProblemData {
	title, _ := cmd.Flags().GetString("title")
	desc, _ := cmd.Flags().GetString("description")
	diff, _ := cmd.Flags().GetString("difficulty")
	if title == "" && desc == "" && diff == "" {
		return nil
	}
	return &hints.ProblemData{Title: title, Description: desc, Difficulty: diff}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// addAttemptFlags registers the flags shared by hint and stuck.
func addAttemptFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("user", 0, "Learner ID (required)")
	cmd.Flags().Int64("problem", 0, "Problem ID (required)")
	cmd.Flags().StringP("file", "f", "-", "File with the learner's code, - for stdin")
	cmd.Flags().String("title", "", "Problem title, used when the problem is not stored yet")
	cmd.Flags().String("description", "", "Problem description, used when the problem is not stored yet")
	cmd.Flags().String("difficulty", "", "Problem difficulty, used when the problem is not stored yet")
	cmd.Flags().Bool("json", false, "Print the raw result as JSON")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("problem")
}

func init() {
	addAttemptFlags(hintCmd)
}
