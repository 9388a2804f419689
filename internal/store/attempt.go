package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var attemptColumns = []string{
	"id", "user_id", "problem_id", "code", "status", "evaluation",
	"error_pattern", "error_category", "created_at",
}

// CreateAttempt inserts a submission and sets its ID and CreatedAt.
func (c conn) CreateAttempt(ctx context.Context, a *Attempt) error {
	if a.Status != AttemptSuccess && a.Status != AttemptFailed {
		return fmt.Errorf("create attempt: invalid status %q", a.Status)
	}
	a.CreatedAt = now()
	var eval sql.NullString
	if len(a.Evaluation) > 0 {
		eval = sql.NullString{String: string(a.Evaluation), Valid: true}
	}
	ins := c.build().Insert("attempts").
		Columns("user_id", "problem_id", "code", "status", "evaluation",
			"error_pattern", "error_category", "created_at").
		Values(a.UserID, a.ProblemID, a.Code, string(a.Status), eval,
			nullString(a.ErrorPattern), nullString(a.ErrorCategory), a.CreatedAt)
	id, err := c.insertID(ctx, ins)
	if err != nil {
		return fmt.Errorf("create attempt: %w", err)
	}
	a.ID = id
	return nil
}

// CountUserAttempts returns the number of attempts a user made across all
// problems.
func (c conn) CountUserAttempts(ctx context.Context, userID int64) (int, error) {
	query, args := c.build().Select(entsql.Count("*")).
		From(c.build().Table("attempts")).
		Where(entsql.EQ("user_id", userID)).
		Query()
	var n int
	if err := c.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

// ListAttemptedProblems returns the distinct problems the user has
// attempted, excluding excludeProblemID, most recently attempted first.
func (c conn) ListAttemptedProblems(ctx context.Context, userID, excludeProblemID int64) ([]AttemptedProblem, error) {
	a := c.build().Table("attempts").As("a")
	p := c.build().Table("problems").As("p")
	last := entsql.Max(a.C("id"))
	sel := c.build().Select(
		p.C("id"), p.C("title"), p.C("description"), p.C("difficulty"), p.C("created_at"),
		entsql.As(last, "last_attempt_id"),
	).
		From(a).
		Join(p).On(a.C("problem_id"), p.C("id")).
		Where(entsql.And(
			entsql.EQ(a.C("user_id"), userID),
			entsql.NEQ(a.C("problem_id"), excludeProblemID),
		)).
		GroupBy(p.C("id"), p.C("title"), p.C("description"), p.C("difficulty"), p.C("created_at"))
	sel.OrderBy(entsql.Desc(last))
	query, args := sel.Query()

	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempted problems: %w", err)
	}
	defer rows.Close()

	var out []AttemptedProblem
	for rows.Next() {
		var (
			ap   AttemptedProblem
			desc sql.NullString
		)
		if err := rows.Scan(&ap.ID, &ap.Title, &desc, &ap.Difficulty, &ap.CreatedAt, &ap.LastAttemptID); err != nil {
			return nil, fmt.Errorf("scan attempted problem: %w", err)
		}
		ap.Description = desc.String
		out = append(out, ap)
	}
	return out, rows.Err()
}

// LatestSuccessfulAttempt returns the user's most recent successful
// attempt on a problem, or nil if there is none.
func (c conn) LatestSuccessfulAttempt(ctx context.Context, userID, problemID int64) (*Attempt, error) {
	attempts, err := c.queryAttempts(ctx, 1, entsql.And(
		entsql.EQ("user_id", userID),
		entsql.EQ("problem_id", problemID),
		entsql.EQ("status", string(AttemptSuccess)),
	))
	if err != nil {
		return nil, fmt.Errorf("latest successful attempt: %w", err)
	}
	if len(attempts) == 0 {
		return nil, nil
	}
	return &attempts[0], nil
}

// RecentFailedAttempts returns up to limit failed attempts by the user on
// a problem, newest first.
func (c conn) RecentFailedAttempts(ctx context.Context, userID, problemID int64, limit int) ([]Attempt, error) {
	attempts, err := c.queryAttempts(ctx, limit, entsql.And(
		entsql.EQ("user_id", userID),
		entsql.EQ("problem_id", problemID),
		entsql.EQ("status", string(AttemptFailed)),
	))
	if err != nil {
		return nil, fmt.Errorf("recent failed attempts: %w", err)
	}
	return attempts, nil
}

// ListUserAttempts returns the user's attempts, newest first. A zero
// limit returns all of them.
func (c conn) ListUserAttempts(ctx context.Context, userID int64, limit int) ([]Attempt, error) {
	attempts, err := c.queryAttempts(ctx, limit, entsql.EQ("user_id", userID))
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// GetAttempt returns the attempt with the given ID or ErrNotFound.
func (c conn) GetAttempt(ctx context.Context, id int64) (*Attempt, error) {
	attempts, err := c.queryAttempts(ctx, 1, entsql.EQ("id", id))
	if err != nil {
		return nil, fmt.Errorf("get attempt %d: %w", id, err)
	}
	if len(attempts) == 0 {
		return nil, ErrNotFound
	}
	return &attempts[0], nil
}

func (c conn) queryAttempts(ctx context.Context, limit int, where *entsql.Predicate) ([]Attempt, error) {
	t := c.build().Table("attempts")
	sel := c.build().Select(attemptColumns...).From(t).Where(where)
	sel.OrderBy(entsql.Desc(sel.C("id")))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAttempt(s scanner) (*Attempt, error) {
	var a Attempt
	var status string
	var eval, pattern, category sql.NullString
	err := s.Scan(&a.ID, &a.UserID, &a.ProblemID, &a.Code, &status, &eval,
		&pattern, &category, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = AttemptStatus(status)
	if eval.Valid {
		a.Evaluation = []byte(eval.String)
	}
	a.ErrorPattern = pattern.String
	a.ErrorCategory = category.String
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
