package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// ErrProblemMismatch is returned when a hint is delivered for an attempt
// on a different problem.
var ErrProblemMismatch = errors.New("hint and attempt belong to different problems")

// CreateHint inserts a hint and sets its ID and CreatedAt.
func (c conn) CreateHint(ctx context.Context, h *Hint) error {
	if h.Level < 1 || h.Level > 5 {
		return fmt.Errorf("create hint: level %d out of range", h.Level)
	}
	h.CreatedAt = now()
	ins := c.build().Insert("hints").
		Columns("problem_id", "content", "level", "hint_type", "created_at").
		Values(h.ProblemID, h.Content, h.Level, h.Type, h.CreatedAt)
	id, err := c.insertID(ctx, ins)
	if err != nil {
		return fmt.Errorf("create hint: %w", err)
	}
	h.ID = id
	return nil
}

// CreateHintEvaluation stores the quality scores of a hint. A hint has at
// most one evaluation.
func (c conn) CreateHintEvaluation(ctx context.Context, e *HintEvaluation) error {
	e.CreatedAt = now()
	ins := c.build().Insert("hint_evaluations").
		Columns("hint_id", "safety_score", "helpfulness_score", "quality_score",
			"progress_alignment_score", "pedagogical_value_score", "created_at").
		Values(e.HintID, e.Safety, e.Helpfulness, e.Quality,
			e.ProgressAlignment, e.PedagogicalValue, e.CreatedAt)
	id, err := c.insertID(ctx, ins)
	if err != nil {
		return fmt.Errorf("create hint evaluation: %w", err)
	}
	e.ID = id
	return nil
}

// CreateHintDelivery records that a hint was shown for an attempt. The
// hint and the attempt must refer to the same problem.
func (c conn) CreateHintDelivery(ctx context.Context, d *HintDelivery) error {
	var hintProblem, attemptProblem int64
	hq, hargs := c.build().Select("problem_id").
		From(c.build().Table("hints")).
		Where(entsql.EQ("id", d.HintID)).
		Query()
	if err := c.q.QueryRowContext(ctx, hq, hargs...).Scan(&hintProblem); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("create hint delivery: hint %d: %w", d.HintID, ErrNotFound)
		}
		return fmt.Errorf("create hint delivery: %w", err)
	}
	aq, aargs := c.build().Select("problem_id").
		From(c.build().Table("attempts")).
		Where(entsql.EQ("id", d.AttemptID)).
		Query()
	if err := c.q.QueryRowContext(ctx, aq, aargs...).Scan(&attemptProblem); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("create hint delivery: attempt %d: %w", d.AttemptID, ErrNotFound)
		}
		return fmt.Errorf("create hint delivery: %w", err)
	}
	if hintProblem != attemptProblem {
		return fmt.Errorf("create hint delivery: %w", ErrProblemMismatch)
	}

	d.CreatedAt = now()
	ins := c.build().Insert("hint_deliveries").
		Columns("hint_id", "user_id", "attempt_id", "is_auto_triggered", "is_duplicate", "created_at").
		Values(d.HintID, d.UserID, d.AttemptID, d.AutoTriggered, d.Duplicate, d.CreatedAt)
	id, err := c.insertID(ctx, ins)
	if err != nil {
		return fmt.Errorf("create hint delivery: %w", err)
	}
	d.ID = id
	return nil
}

// ListRecentHintDeliveries returns up to limit hints delivered to the user
// on the problem, most recent first.
func (c conn) ListRecentHintDeliveries(ctx context.Context, userID, problemID int64, limit int) ([]DeliveredHint, error) {
	d := c.build().Table("hint_deliveries").As("d")
	h := c.build().Table("hints").As("h")
	sel := c.build().Select(
		d.C("id"), h.C("id"), d.C("attempt_id"), h.C("content"), h.C("level"),
		h.C("hint_type"), d.C("is_auto_triggered"), d.C("created_at"),
	).
		From(d).
		Join(h).On(d.C("hint_id"), h.C("id")).
		Where(entsql.And(
			entsql.EQ(d.C("user_id"), userID),
			entsql.EQ(h.C("problem_id"), problemID),
		))
	sel.OrderBy(entsql.Desc(d.C("id")))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list hint deliveries: %w", err)
	}
	defer rows.Close()

	var out []DeliveredHint
	for rows.Next() {
		var dh DeliveredHint
		if err := rows.Scan(&dh.DeliveryID, &dh.HintID, &dh.AttemptID, &dh.Content, &dh.Level,
			&dh.Type, &dh.AutoTriggered, &dh.DeliveredAt); err != nil {
			return nil, fmt.Errorf("scan hint delivery: %w", err)
		}
		dh.DeliveredAt = dh.DeliveredAt.UTC()
		out = append(out, dh)
	}
	return out, rows.Err()
}

// GetHint returns a hint with its evaluation, if any, or ErrNotFound.
func (c conn) GetHint(ctx context.Context, id int64) (*Hint, error) {
	query, args := c.build().Select("id", "problem_id", "content", "level", "hint_type", "created_at").
		From(c.build().Table("hints")).
		Where(entsql.EQ("id", id)).
		Query()
	var h Hint
	err := c.q.QueryRowContext(ctx, query, args...).
		Scan(&h.ID, &h.ProblemID, &h.Content, &h.Level, &h.Type, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get hint %d: %w", id, err)
	}
	h.CreatedAt = h.CreatedAt.UTC()

	query, args = c.build().Select("id", "hint_id", "safety_score", "helpfulness_score", "quality_score",
		"progress_alignment_score", "pedagogical_value_score", "created_at").
		From(c.build().Table("hint_evaluations")).
		Where(entsql.EQ("hint_id", id)).
		Query()
	var e HintEvaluation
	err = c.q.QueryRowContext(ctx, query, args...).
		Scan(&e.ID, &e.HintID, &e.Safety, &e.Helpfulness, &e.Quality,
			&e.ProgressAlignment, &e.PedagogicalValue, &e.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("get hint %d evaluation: %w", id, err)
	default:
		e.CreatedAt = e.CreatedAt.UTC()
		h.Evaluation = &e
	}
	return &h, nil
}

// CreateFeedback stores a learner's rating of a hint. The hint must exist.
func (c conn) CreateFeedback(ctx context.Context, f *Feedback) error {
	if _, err := c.GetHint(ctx, f.HintID); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	f.CreatedAt = now()
	ins := c.build().Insert("hint_feedback").
		Columns("hint_id", "user_id", "rating", "feedback_text", "created_at").
		Values(f.HintID, f.UserID, f.Rating, nullString(f.Text), f.CreatedAt)
	id, err := c.insertID(ctx, ins)
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	f.ID = id
	return nil
}

// HintRatingSummary is the average feedback rating per hint type.
type HintRatingSummary struct {
	Type      string
	Ratings   int
	AvgRating float64
}

// HintRatingsByType aggregates feedback ratings by the rated hint's type.
func (c conn) HintRatingsByType(ctx context.Context) ([]HintRatingSummary, error) {
	f := c.build().Table("hint_feedback").As("f")
	h := c.build().Table("hints").As("h")
	sel := c.build().Select(h.C("hint_type"), entsql.Count("*"), entsql.Avg(f.C("rating"))).
		From(f).
		Join(h).On(f.C("hint_id"), h.C("id")).
		GroupBy(h.C("hint_type"))
	sel.OrderBy(h.C("hint_type"))
	query, args := sel.Query()

	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("hint ratings: %w", err)
	}
	defer rows.Close()

	var out []HintRatingSummary
	for rows.Next() {
		var s HintRatingSummary
		if err := rows.Scan(&s.Type, &s.Ratings, &s.AvgRating); err != nil {
			return nil, fmt.Errorf("scan hint rating: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
