package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/strata/internal/ui/markdown"
	"github.com/zjrosen/strata/internal/ui/styles"
)

const historyShown = 10

// View implements tea.Model.
func (m Model) View() string {
	width := min(max(m.width, 24), 80)
	snap := m.state.snap

	var body strings.Builder
	body.WriteString(styles.LabelStyle.Render(m.state.label+":") + " " + styles.CountStyle.Render(strconv.Itoa(m.state.count)))
	body.WriteByte('\n')
	fmt.Fprintf(&body, "step %d · ticks %d", snap.Step, snap.Ticks)
	if m.state.milestone != 0 {
		body.WriteString(" · last milestone " + styles.MilestoneStyle.Render(strconv.Itoa(m.state.milestone)))
	}
	body.WriteByte('\n')
	body.WriteString(styles.MutedStyle.Render("history " + formatHistory(snap.History)))

	sections := []string{styles.RenderPanel(body.String(), "strata", width, true)}

	switch {
	case m.state.err != nil:
		sections = append(sections, styles.ErrorStyle.Render("error: "+m.state.err.Error()))
	case m.state.flash != "":
		sections = append(sections, styles.FlashStyle.Render(m.state.flash))
	}

	if m.showDump {
		sections = append(sections, m.renderDump())
	}
	if m.showLog && m.logLine != "" {
		sections = append(sections, styles.MutedStyle.Render(styles.Truncate(strings.TrimRight(m.logLine, "\n"), width)))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderDump() string {
	report := markdown.DomainReport(m.domain)
	if m.renderer == nil {
		return report
	}
	out, err := m.renderer.Render(report)
	if err != nil {
		return report
	}
	return strings.TrimRight(out, "\n")
}

func formatHistory(h []int) string {
	if len(h) == 0 {
		return "-"
	}
	prefix := ""
	if len(h) > historyShown {
		h = h[len(h)-historyShown:]
		prefix = "… "
	}
	parts := make([]string, len(h))
	for i, v := range h {
		parts[i] = strconv.Itoa(v)
	}
	return prefix + strings.Join(parts, " ")
}
