package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/hintly/internal/patterns"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show a learner's learning patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		p, err := patterns.Load(cmd.Context(), rt.store, userID)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(p)
		}
		if p.TotalAttempts == 0 {
			fmt.Printf("No attempts recorded for user %d.\n", userID)
			return nil
		}

		fmt.Printf("Learning patterns for user %d\n", userID)
		fmt.Println(strings.Repeat("─", 48))
		fmt.Printf("%-28s %d\n", "Attempts", p.TotalAttempts)
		fmt.Printf("%-28s %d (%d solved)\n", "Problems", p.DistinctProblems, p.SolvedProblems)
		fmt.Printf("%-28s %.0f%%\n", "Success rate", p.SuccessRate*100)
		fmt.Printf("%-28s %.1f\n", "Attempts per problem", p.AverageAttemptsPerProblem)
		fmt.Printf("%-28s %.2f\n", "Consistency", p.Consistency)

		if len(p.TopErrors) > 0 {
			fmt.Println()
			fmt.Println("Most frequent errors")
			for _, e := range p.TopErrors {
				fmt.Printf("  %-26s %3d  %s\n", e.Label, e.Count, e.Category)
			}
		}
		return nil
	},
}

func init() {
	patternsCmd.Flags().Int64("user", 0, "Learner ID (required)")
	patternsCmd.Flags().Bool("json", false, "Print as JSON")
	_ = patternsCmd.MarkFlagRequired("user")
}
