package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	cornerTopLeft     = "╭"
	cornerTopRight    = "╮"
	cornerBottomLeft  = "╰"
	cornerBottomRight = "╯"
	lineHorizontal    = "─"
	lineVertical      = "│"
)

// RenderPanel draws content inside a rounded border of the given outer
// width with title embedded in the top edge: ╭─ Title ───╮.
// Content lines wider than the panel are truncated.
func RenderPanel(content, title string, width int, focused bool) string {
	var color lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		color = BorderFocusColor
	}
	border := lipgloss.NewStyle().Foreground(color)
	inner := max(width-2, 1)

	var sb strings.Builder
	sb.WriteString(topEdge(title, inner, border))
	sb.WriteByte('\n')
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		line = Truncate(line, inner)
		if pad := inner - lipgloss.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		sb.WriteString(border.Render(lineVertical))
		sb.WriteString(line)
		sb.WriteString(border.Render(lineVertical))
		sb.WriteByte('\n')
	}
	sb.WriteString(border.Render(cornerBottomLeft + strings.Repeat(lineHorizontal, inner) + cornerBottomRight))
	return sb.String()
}

func topEdge(title string, inner int, border lipgloss.Style) string {
	// "─ " + title + " " needs at least four cells around the title.
	if title == "" || inner < 5 {
		return border.Render(cornerTopLeft + strings.Repeat(lineHorizontal, inner) + cornerTopRight)
	}
	title = Truncate(title, inner-4)
	rest := max(inner-3-lipgloss.Width(title), 0)
	return border.Render(cornerTopLeft+lineHorizontal+" ") +
		lipgloss.NewStyle().Bold(true).Render(title) +
		border.Render(" "+strings.Repeat(lineHorizontal, rest)+cornerTopRight)
}

// Truncate shortens s to at most width cells, ending in "..." when cut.
func Truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 3 {
		return strings.Repeat(".", width)
	}
	var sb strings.Builder
	for _, r := range s {
		if lipgloss.Width(sb.String()+string(r)) > width-3 {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String() + "..."
}
