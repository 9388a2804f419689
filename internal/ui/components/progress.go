package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/hintly/internal/ui/theme"
)

// LevelBar shows the hint level as filled cells out of the maximum.
type LevelBar struct {
	Level int
	Max   int

	// CellWidth is the width of one level cell.
	CellWidth int
}

// NewLevelBar creates a level bar with three-column cells.
func NewLevelBar(level, limit int) LevelBar {
	return LevelBar{Level: level, Max: limit, CellWidth: 3}
}

// View renders the bar followed by "level/max".
func (b LevelBar) View() string {
	if b.Max < 1 {
		return ""
	}
	width := b.CellWidth
	if width < 1 {
		width = 1
	}
	filled := min(max(b.Level, 0), b.Max)
	cell := strings.Repeat(" ", width)

	var sb strings.Builder
	for i := 0; i < b.Max; i++ {
		style := theme.LevelEmpty
		if i < filled {
			style = theme.LevelFilled
		}
		sb.WriteString(style.Render(cell))
		if i < b.Max-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %d/%d", filled, b.Max)))
	return sb.String()
}
