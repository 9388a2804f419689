package components

import (
	"strings"
	"testing"
)

func TestLevelBar(t *testing.T) {
	tests := []struct {
		level, max int
		want       string
	}{
		{2, 5, "2/5"},
		{9, 5, "5/5"},
		{-1, 5, "0/5"},
	}
	for _, tt := range tests {
		got := NewLevelBar(tt.level, tt.max).View()
		if !strings.Contains(got, tt.want) {
			t.Errorf("LevelBar(%d, %d) = %q, want it to contain %q", tt.level, tt.max, got, tt.want)
		}
	}
	if got := NewLevelBar(1, 0).View(); got != "" {
		t.Errorf("LevelBar with no max = %q, want empty", got)
	}
}

func TestHintCard(t *testing.T) {
	card := HintCard{
		Problem:   "Two Sum",
		Type:      "debug",
		Level:     3,
		MaxLevel:  5,
		Content:   "Check the loop bound.",
		Diagnosis: "Index out of range",
		Attempts:  4,
		Failed:    4,
		Elapsed:   310,
		Notes:     []string{"auto-triggered"},
	}
	got := card.View()
	for _, want := range []string{"Two Sum", "DEBUG", "3/5", "Check the loop bound.", "Index out of range", "failing", "idle 310s", "auto-triggered"} {
		if !strings.Contains(got, want) {
			t.Errorf("card missing %q:\n%s", want, got)
		}
	}

	card.Content = ""
	card.Passed = true
	got = card.View()
	if !strings.Contains(got, "No hint this time.") || !strings.Contains(got, "passing") {
		t.Errorf("skipped-hint card:\n%s", got)
	}
}
