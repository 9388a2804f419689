// Package patterns summarizes a learner's attempt history: how often they
// succeed, how steadily, and which errors keep coming back.
package patterns

import (
	"context"
	"fmt"
	"sort"

	"github.com/abhisek/hintly/internal/diagnosis"
	"github.com/abhisek/hintly/internal/store"
)

const (
	// maxWindow caps the window used for the consistency score.
	maxWindow = 5

	// neutralConsistency is reported when there is too little history to
	// compare windows.
	neutralConsistency = 0.5

	// TopErrorLimit is how many error patterns a summary lists.
	TopErrorLimit = 5
)

// Source is the attempt history the analysis reads.
type Source interface {
	ListUserAttempts(ctx context.Context, userID int64, limit int) ([]store.Attempt, error)
}

// ErrorFrequency is how often one error pattern appeared in failed
// attempts.
type ErrorFrequency struct {
	Pattern  diagnosis.Pattern  `json:"pattern"`
	Category diagnosis.Category `json:"category"`
	Label    string             `json:"label"`
	Count    int                `json:"count"`
}

// Patterns is the learning summary for one user.
type Patterns struct {
	UserID                    int64            `json:"user_id"`
	TotalAttempts             int              `json:"total_attempts"`
	SuccessfulAttempts        int              `json:"successful_attempts"`
	DistinctProblems          int              `json:"distinct_problems"`
	SolvedProblems            int              `json:"solved_problems"`
	SuccessRate               float64          `json:"success_rate"`
	AverageAttemptsPerProblem float64          `json:"average_attempts_per_problem"`
	Consistency               float64          `json:"consistency_score"`
	TopErrors                 []ErrorFrequency `json:"top_errors"`
}

// Load reads the user's full attempt history and analyzes it.
func Load(ctx context.Context, src Source, userID int64) (*Patterns, error) {
	attempts, err := src.ListUserAttempts(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("load attempts for user %d: %w", userID, err)
	}
	p := Analyze(attempts)
	p.UserID = userID
	return p, nil
}

// Analyze summarizes attempts given newest first, as the store returns
// them. An empty history yields zero counts and a neutral consistency.
func Analyze(attempts []store.Attempt) *Patterns {
	p := &Patterns{
		TotalAttempts: len(attempts),
		Consistency:   neutralConsistency,
		TopErrors:     []ErrorFrequency{},
	}
	if len(attempts) == 0 {
		return p
	}

	problems := make(map[int64]bool)
	failures := make(map[diagnosis.Pattern]int)
	sequence := make([]bool, len(attempts))
	for i, a := range attempts {
		ok := a.Status == store.AttemptSuccess
		// Oldest first.
		sequence[len(attempts)-1-i] = ok
		problems[a.ProblemID] = problems[a.ProblemID] || ok
		if ok {
			p.SuccessfulAttempts++
			continue
		}
		if pat := diagnosis.Pattern(a.ErrorPattern); diagnosis.Lookup(pat) != nil {
			failures[pat]++
		}
	}

	p.DistinctProblems = len(problems)
	for _, solved := range problems {
		if solved {
			p.SolvedProblems++
		}
	}
	p.SuccessRate = float64(p.SuccessfulAttempts) / float64(p.TotalAttempts)
	p.AverageAttemptsPerProblem = float64(p.TotalAttempts) / float64(p.DistinctProblems)
	p.Consistency = Consistency(sequence)
	p.TopErrors = topErrors(failures, TopErrorLimit)
	return p
}

// Consistency scores how steady a chronological success sequence is: the
// sequence is cut into non-overlapping windows of min(5, n/2) attempts and
// the score is 1 minus the population variance of the window success
// rates, floored at 0. A trailing partial window is ignored. Fewer than two
// attempts or two windows score 0.5.
func Consistency(sequence []bool) float64 {
	if len(sequence) < 2 {
		return neutralConsistency
	}
	window := min(maxWindow, len(sequence)/2)

	var rates []float64
	for i := 0; i+window <= len(sequence); i += window {
		wins := 0
		for _, ok := range sequence[i : i+window] {
			if ok {
				wins++
			}
		}
		rates = append(rates, float64(wins)/float64(window))
	}
	if len(rates) < 2 {
		return neutralConsistency
	}

	var mean float64
	for _, r := range rates {
		mean += r
	}
	mean /= float64(len(rates))
	var variance float64
	for _, r := range rates {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(rates))
	return max(0, 1-variance)
}

// topErrors orders patterns by count, ties in taxonomy order.
func topErrors(counts map[diagnosis.Pattern]int, limit int) []ErrorFrequency {
	out := []ErrorFrequency{}
	for _, info := range diagnosis.AllPatterns() {
		n := counts[info.Pattern]
		if n == 0 {
			continue
		}
		out = append(out, ErrorFrequency{
			Pattern:  info.Pattern,
			Category: info.Category,
			Label:    info.Label,
			Count:    n,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
