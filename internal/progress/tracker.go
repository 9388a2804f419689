// Package progress implements the per-(user, problem) hint state machine:
// attempt counting, failure streaks, time-based hint escalation and stuck
// detection.
package progress

import (
	"time"

	"github.com/abhisek/hintly/internal/store"
)

const (
	// EscalationAfter is the inactivity after which the next request
	// raises the hint level. The comparison is strict.
	EscalationAfter = 300 * time.Second

	// StuckAfter and StuckFailures together define a stuck learner.
	StuckAfter    = 300 * time.Second
	StuckFailures = 3

	MinLevel = 1
	MaxLevel = 5
)

// Snapshot is the learner state reported back to callers.
type Snapshot struct {
	AttemptsCount        int     `json:"attempts_count"`
	FailedAttemptsCount  int     `json:"failed_attempts_count"`
	CurrentHintLevel     int     `json:"current_hint_level"`
	IsStuck              bool    `json:"is_stuck"`
	TimeSinceLastAttempt float64 `json:"time_since_last_attempt"` // seconds
	Escalated            bool    `json:"-"`
}

// Tracker mutates one progress record. It is not safe for concurrent use;
// callers serialize access per (user, problem).
type Tracker struct {
	p         *store.Progress
	elapsed   time.Duration
	escalated bool
}

// NewTracker wraps p. A nil p starts a fresh record with default values.
func NewTracker(p *store.Progress) *Tracker {
	if p == nil {
		p = &store.Progress{}
	}
	p.CurrentHintLevel = clampLevel(p.CurrentHintLevel)
	return &Tracker{p: p}
}

// Progress returns the tracked record.
func (t *Tracker) Progress() *store.Progress {
	return t.p
}

// Elapsed returns the time between last and now, or zero when there was
// no prior activity or the clock moved backwards.
func Elapsed(last, now time.Time) time.Duration {
	if last.IsZero() || now.Before(last) {
		return 0
	}
	return now.Sub(last)
}

// Stuck reports whether a learner with the given inactivity and failure
// streak needs an unsolicited hint.
func Stuck(elapsed time.Duration, failed int) bool {
	return elapsed >= StuckAfter && failed >= StuckFailures
}

// Advance registers a new request at now: it counts the attempt, records
// activity and escalates the hint level after a long pause.
func (t *Tracker) Advance(now time.Time) Snapshot {
	t.elapsed = Elapsed(t.p.LastActivity, now)
	t.p.AttemptsCount++
	t.p.LastActivity = now

	t.escalated = false
	if t.elapsed > EscalationAfter && t.p.CurrentHintLevel < MaxLevel {
		t.p.CurrentHintLevel++
		t.escalated = true
	}
	return t.Snapshot()
}

// RecordOutcome applies the evaluated result of the current attempt.
func (t *Tracker) RecordOutcome(success bool) {
	if success {
		t.p.FailedAttemptsCount = 0
		return
	}
	t.p.FailedAttemptsCount++
}

// IsStuck evaluates the stuck predicate against the stored last activity.
// It does not modify the record.
func (t *Tracker) IsStuck(now time.Time) bool {
	return Stuck(Elapsed(t.p.LastActivity, now), t.p.FailedAttemptsCount)
}

// Reset returns the learner to the first hint level with a clean failure
// streak. Attempts are kept.
func (t *Tracker) Reset() {
	t.p.CurrentHintLevel = MinLevel
	t.p.FailedAttemptsCount = 0
	t.escalated = false
}

// Snapshot reports the current state. Time since last attempt and the
// stuck flag use the inactivity observed by the last Advance.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		AttemptsCount:        t.p.AttemptsCount,
		FailedAttemptsCount:  t.p.FailedAttemptsCount,
		CurrentHintLevel:     t.p.CurrentHintLevel,
		IsStuck:              Stuck(t.elapsed, t.p.FailedAttemptsCount),
		TimeSinceLastAttempt: t.elapsed.Seconds(),
		Escalated:            t.escalated,
	}
}

// SnapshotAt reports the state as seen by a caller polling at now without
// submitting code.
func SnapshotAt(p *store.Progress, now time.Time) Snapshot {
	elapsed := Elapsed(p.LastActivity, now)
	return Snapshot{
		AttemptsCount:        p.AttemptsCount,
		FailedAttemptsCount:  p.FailedAttemptsCount,
		CurrentHintLevel:     clampLevel(p.CurrentHintLevel),
		IsStuck:              Stuck(elapsed, p.FailedAttemptsCount),
		TimeSinceLastAttempt: elapsed.Seconds(),
	}
}

func clampLevel(level int) int {
	switch {
	case level < MinLevel:
		return MinLevel
	case level > MaxLevel:
		return MaxLevel
	}
	return level
}
