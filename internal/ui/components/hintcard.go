package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/hintly/internal/ui/theme"
)

// HintCard renders one delivered hint with the learner's standing.
type HintCard struct {
	Problem  string
	Type     string
	Level    int
	MaxLevel int
	Content  string

	// Diagnosis is the classified error label, empty on success.
	Diagnosis string
	Passed    bool

	Attempts int
	Failed   int
	Elapsed  float64

	Notes []string
	Width int
}

// View renders the card.
func (c HintCard) View() string {
	width := c.Width
	if width < 40 {
		width = 72
	}
	inner := width - theme.Card.GetHorizontalFrameSize()

	var rows []string
	head := theme.Title.Render(c.Problem)
	if c.Type != "" {
		head += "  " + theme.HintTypeColor(c.Type).Render(strings.ToUpper(c.Type))
	}
	rows = append(rows, head, NewLevelBar(c.Level, c.MaxLevel).View(), "")

	if c.Content != "" {
		rows = append(rows, theme.Body.Width(inner).Render(c.Content), "")
	} else {
		rows = append(rows, theme.Dim.Render("No hint this time."), "")
	}

	status := theme.Failed.Render("failing")
	if c.Passed {
		status = theme.Passed.Render("passing")
	}
	if c.Diagnosis != "" {
		status += theme.Label.Render("  " + c.Diagnosis)
	}
	rows = append(rows, status)
	rows = append(rows, theme.Label.Render(fmt.Sprintf("attempts %d · failed %d · idle %ds",
		c.Attempts, c.Failed, int(c.Elapsed))))

	for _, n := range c.Notes {
		rows = append(rows, theme.Warning.Render(n))
	}

	return theme.Card.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
