package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var problemColumns = []string{"id", "title", "description", "difficulty", "created_at"}

// Placeholder metadata for problems first seen through a hint request.
const (
	DefaultProblemTitle      = "Untitled Problem"
	DefaultProblemDifficulty = "medium"
)

func (c conn) insertID(ctx context.Context, ins *entsql.InsertBuilder) (int64, error) {
	query, args := ins.Returning("id").Query()
	var id int64
	if err := c.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (c conn) exec(ctx context.Context, q entsql.Querier) error {
	query, args := q.Query()
	_, err := c.q.ExecContext(ctx, query, args...)
	return err
}

// CreateProblem inserts a new problem and returns it with its assigned ID.
func (c conn) CreateProblem(ctx context.Context, p Problem) (*Problem, error) {
	if p.Difficulty == "" {
		p.Difficulty = DefaultProblemDifficulty
	}
	p.CreatedAt = now()
	ins := c.build().Insert("problems").
		Columns("title", "description", "difficulty", "created_at").
		Values(p.Title, p.Description, p.Difficulty, p.CreatedAt)
	id, err := c.insertID(ctx, ins)
	if err != nil {
		return nil, fmt.Errorf("create problem: %w", err)
	}
	p.ID = id
	return &p, nil
}

// GetProblem returns the problem with the given ID or ErrNotFound.
func (c conn) GetProblem(ctx context.Context, id int64) (*Problem, error) {
	query, args := c.build().Select(problemColumns...).
		From(c.build().Table("problems")).
		Where(entsql.EQ("id", id)).
		Query()
	p, err := scanProblem(c.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get problem %d: %w", id, err)
	}
	return p, nil
}

// GetOrCreateProblem returns the problem with the given ID, creating it
// from meta when it does not exist. A nil meta or empty fields fall back to
// DefaultProblemTitle and DefaultProblemDifficulty.
func (c conn) GetOrCreateProblem(ctx context.Context, id int64, meta *Problem) (*Problem, error) {
	p := Problem{Title: DefaultProblemTitle, Difficulty: DefaultProblemDifficulty}
	if meta != nil {
		if meta.Title != "" {
			p.Title = meta.Title
		}
		if meta.Difficulty != "" {
			p.Difficulty = meta.Difficulty
		}
		p.Description = meta.Description
	}

	ins := c.build().Insert("problems").
		Columns("id", "title", "description", "difficulty", "created_at").
		Values(id, p.Title, p.Description, p.Difficulty, now()).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
	if err := c.exec(ctx, ins); err != nil {
		return nil, fmt.Errorf("create problem %d: %w", id, err)
	}
	return c.GetProblem(ctx, id)
}

// ListProblems returns all problems, newest first.
func (c conn) ListProblems(ctx context.Context, limit int) ([]Problem, error) {
	t := c.build().Table("problems")
	sel := c.build().Select(problemColumns...).From(t)
	sel.OrderBy(entsql.Desc(sel.C("id")))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	var out []Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProblem(s scanner) (*Problem, error) {
	var (
		p    Problem
		desc sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Title, &desc, &p.Difficulty, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Description = desc.String
	return &p, nil
}
