package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var progressColumns = []string{
	"id", "user_id", "problem_id", "attempts_count", "failed_attempts_count",
	"current_hint_level", "last_activity", "created_at", "updated_at",
}

// GetProgress returns the progress row for (userID, problemID), or nil
// when the learner has not touched the problem yet.
func (c conn) GetProgress(ctx context.Context, userID, problemID int64) (*Progress, error) {
	query, args := c.build().Select(progressColumns...).
		From(c.build().Table("user_progress")).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("problem_id", problemID),
		)).
		Query()
	p, err := scanProgress(c.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

// GetOrCreateProgress returns stored progress, or fresh progress at hint
// level 1 with no activity. The fresh value is not persisted.
func (c conn) GetOrCreateProgress(ctx context.Context, userID, problemID int64) (*Progress, error) {
	p, err := c.GetProgress(ctx, userID, problemID)
	if err != nil || p != nil {
		return p, err
	}
	return &Progress{UserID: userID, ProblemID: problemID, CurrentHintLevel: 1}, nil
}

// SaveProgress upserts p keyed on (user_id, problem_id) and sets its ID
// and timestamps.
func (c conn) SaveProgress(ctx context.Context, p *Progress) error {
	ts := now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = ts
	}
	p.UpdatedAt = ts

	var last sql.NullTime
	if !p.LastActivity.IsZero() {
		last = sql.NullTime{Time: p.LastActivity.UTC(), Valid: true}
	}

	ins := c.build().Insert("user_progress").
		Columns("user_id", "problem_id", "attempts_count", "failed_attempts_count",
			"current_hint_level", "last_activity", "created_at", "updated_at").
		Values(p.UserID, p.ProblemID, p.AttemptsCount, p.FailedAttemptsCount,
			p.CurrentHintLevel, last, p.CreatedAt, p.UpdatedAt).
		OnConflict(
			entsql.ConflictColumns("user_id", "problem_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("attempts_count")
				u.SetExcluded("failed_attempts_count")
				u.SetExcluded("current_hint_level")
				u.SetExcluded("last_activity")
				u.SetExcluded("updated_at")
			}),
		)
	id, err := c.insertID(ctx, ins)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	p.ID = id
	return nil
}

// ListUserProgress returns every progress row for a user.
func (c conn) ListUserProgress(ctx context.Context, userID int64) ([]Progress, error) {
	t := c.build().Table("user_progress")
	sel := c.build().Select(progressColumns...).From(t).Where(entsql.EQ("user_id", userID))
	sel.OrderBy(sel.C("problem_id"))
	query, args := sel.Query()
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProgress(s scanner) (*Progress, error) {
	var (
		p    Progress
		last sql.NullTime
	)
	err := s.Scan(&p.ID, &p.UserID, &p.ProblemID, &p.AttemptsCount, &p.FailedAttemptsCount,
		&p.CurrentHintLevel, &last, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		p.LastActivity = last.Time.UTC()
	} else {
		p.LastActivity = time.Time{}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}
