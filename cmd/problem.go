package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/hintly/internal/store"
)

var problemCmd = &cobra.Command{
	Use:   "problem",
	Short: "Manage coding problems",
}

var problemAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a problem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		diff, _ := cmd.Flags().GetString("difficulty")
		switch diff {
		case "", "easy", "medium", "hard":
		default:
			return fmt.Errorf("invalid difficulty %q: must be easy, medium or hard", diff)
		}

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		p, err := rt.store.CreateProblem(cmd.Context(), store.Problem{
			Title:       strings.TrimSpace(args[0]),
			Description: desc,
			Difficulty:  diff,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created problem %d: %s (%s)\n", p.ID, p.Title, p.Difficulty)
		return nil
	},
}

var problemShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a problem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		p, err := rt.store.GetProblem(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("problem %d not found", id)
		}
		if err != nil {
			return err
		}

		fmt.Printf("ID:         %d\n", p.ID)
		fmt.Printf("Title:      %s\n", p.Title)
		fmt.Printf("Difficulty: %s\n", p.Difficulty)
		fmt.Printf("Created:    %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		if p.Description != "" {
			fmt.Println()
			fmt.Println(p.Description)
		}
		return nil
	},
}

var problemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List problems, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		problems, err := rt.store.ListProblems(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(problems) == 0 {
			fmt.Println("No problems yet.")
			return nil
		}

		fmt.Printf("%-6s  %-40s  %-10s  %s\n", "ID", "Title", "Difficulty", "Created")
		fmt.Println(strings.Repeat("─", 80))
		for _, p := range problems {
			fmt.Printf("%-6d  %-40s  %-10s  %s\n",
				p.ID, truncate(p.Title, 40), p.Difficulty, p.CreatedAt.Local().Format("2006-01-02"))
		}
		fmt.Printf("\n%d problems\n", len(problems))
		return nil
	},
}

func init() {
	problemAddCmd.Flags().StringP("description", "d", "", "Problem statement")
	problemAddCmd.Flags().String("difficulty", "", "easy, medium or hard (default medium)")
	problemListCmd.Flags().IntP("limit", "n", 50, "Number of problems to show (0 for all)")

	problemCmd.AddCommand(problemAddCmd)
	problemCmd.AddCommand(problemShowCmd)
	problemCmd.AddCommand(problemListCmd)
}
