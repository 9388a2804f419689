package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions for auto-migration. Column order matters: indexes and
// foreign keys below refer to columns by position.

var (
	problemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString, Default: "medium"},
		{Name: "created_at", Type: field.TypeTime},
	}
	problemsTable = &schema.Table{
		Name:       "problems",
		Columns:    problemsColumns,
		PrimaryKey: []*schema.Column{problemsColumns[0]},
	}

	userProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "problem_id", Type: field.TypeInt64},
		{Name: "attempts_count", Type: field.TypeInt, Default: 0},
		{Name: "failed_attempts_count", Type: field.TypeInt, Default: 0},
		{Name: "current_hint_level", Type: field.TypeInt, Default: 1},
		{Name: "last_activity", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	userProgressTable = &schema.Table{
		Name:       "user_progress",
		Columns:    userProgressColumns,
		PrimaryKey: []*schema.Column{userProgressColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "user_progress_problems_progress",
			Columns:    []*schema.Column{userProgressColumns[2]},
			RefColumns: []*schema.Column{problemsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{{
			Name:    "userprogress_user_id_problem_id",
			Unique:  true,
			Columns: []*schema.Column{userProgressColumns[1], userProgressColumns[2]},
		}},
	}

	attemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "problem_id", Type: field.TypeInt64},
		{Name: "code", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "evaluation", Type: field.TypeString, Nullable: true},
		{Name: "error_pattern", Type: field.TypeString, Nullable: true},
		{Name: "error_category", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	attemptsTable = &schema.Table{
		Name:       "attempts",
		Columns:    attemptsColumns,
		PrimaryKey: []*schema.Column{attemptsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "attempts_problems_attempts",
			Columns:    []*schema.Column{attemptsColumns[2]},
			RefColumns: []*schema.Column{problemsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{
			{Name: "attempt_user_id_problem_id", Columns: []*schema.Column{attemptsColumns[1], attemptsColumns[2]}},
			{Name: "attempt_user_id_status", Columns: []*schema.Column{attemptsColumns[1], attemptsColumns[4]}},
		},
	}

	hintsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "problem_id", Type: field.TypeInt64},
		{Name: "content", Type: field.TypeString},
		{Name: "level", Type: field.TypeInt},
		{Name: "hint_type", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	hintsTable = &schema.Table{
		Name:       "hints",
		Columns:    hintsColumns,
		PrimaryKey: []*schema.Column{hintsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "hints_problems_hints",
			Columns:    []*schema.Column{hintsColumns[1]},
			RefColumns: []*schema.Column{problemsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
	}

	hintEvaluationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "hint_id", Type: field.TypeInt64, Unique: true},
		{Name: "safety_score", Type: field.TypeFloat64},
		{Name: "helpfulness_score", Type: field.TypeFloat64},
		{Name: "quality_score", Type: field.TypeFloat64},
		{Name: "progress_alignment_score", Type: field.TypeFloat64},
		{Name: "pedagogical_value_score", Type: field.TypeFloat64},
		{Name: "created_at", Type: field.TypeTime},
	}
	hintEvaluationsTable = &schema.Table{
		Name:       "hint_evaluations",
		Columns:    hintEvaluationsColumns,
		PrimaryKey: []*schema.Column{hintEvaluationsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "hint_evaluations_hints_evaluation",
			Columns:    []*schema.Column{hintEvaluationsColumns[1]},
			RefColumns: []*schema.Column{hintsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
	}

	hintDeliveriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "hint_id", Type: field.TypeInt64},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "attempt_id", Type: field.TypeInt64},
		{Name: "is_auto_triggered", Type: field.TypeBool, Default: false},
		{Name: "is_duplicate", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
	}
	hintDeliveriesTable = &schema.Table{
		Name:       "hint_deliveries",
		Columns:    hintDeliveriesColumns,
		PrimaryKey: []*schema.Column{hintDeliveriesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "hint_deliveries_hints_deliveries",
				Columns:    []*schema.Column{hintDeliveriesColumns[1]},
				RefColumns: []*schema.Column{hintsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "hint_deliveries_attempts_delivery",
				Columns:    []*schema.Column{hintDeliveriesColumns[3]},
				RefColumns: []*schema.Column{attemptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "hintdelivery_user_id", Columns: []*schema.Column{hintDeliveriesColumns[2]}},
		},
	}

	hintFeedbackColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "hint_id", Type: field.TypeInt64},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "rating", Type: field.TypeInt},
		{Name: "feedback_text", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	hintFeedbackTable = &schema.Table{
		Name:       "hint_feedback",
		Columns:    hintFeedbackColumns,
		PrimaryKey: []*schema.Column{hintFeedbackColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "hint_feedback_hints_feedback",
			Columns:    []*schema.Column{hintFeedbackColumns[1]},
			RefColumns: []*schema.Column{hintsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
	}

	llmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "request_id", Type: field.TypeString, Nullable: true},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Nullable: true},
		{Name: "request_body", Type: field.TypeString, Nullable: true},
		{Name: "response_body", Type: field.TypeString, Nullable: true},
	}
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[5]}},
		},
	}

	tables = []*schema.Table{
		problemsTable,
		userProgressTable,
		attemptsTable,
		hintsTable,
		hintEvaluationsTable,
		hintDeliveriesTable,
		hintFeedbackTable,
		llmRequestEventsTable,
	}
)

func init() {
	userProgressTable.ForeignKeys[0].RefTable = problemsTable
	attemptsTable.ForeignKeys[0].RefTable = problemsTable
	hintsTable.ForeignKeys[0].RefTable = problemsTable
	hintEvaluationsTable.ForeignKeys[0].RefTable = hintsTable
	hintDeliveriesTable.ForeignKeys[0].RefTable = hintsTable
	hintDeliveriesTable.ForeignKeys[1].RefTable = attemptsTable
	hintFeedbackTable.ForeignKeys[0].RefTable = hintsTable
}
