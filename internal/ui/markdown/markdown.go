// Package markdown renders markdown for the TUI with glamour.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/strata/internal/domain"
)

// noMarginStyle removes glamour's document margins so output lines up with
// the surrounding lipgloss layout.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour TermRenderer.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer wrapping at width. style is "dark" or "light"
// (default "dark"). A fixed style avoids the terminal background query
// that WithAutoStyle performs, whose reply leaks into Bubble Tea's input.
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}
	return &Renderer{renderer: r, width: width}, nil
}

func (r *Renderer) Width() int {
	return r.width
}

func (r *Renderer) Render(md string) (string, error) {
	return r.renderer.Render(md)
}

// DomainReport builds a markdown report of a domain's components and
// dispatch counters.
func DomainReport(d *domain.Domain) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Domain `%s`\n\n", d.Name())

	dump := strings.TrimRight(d.String(), "\n")
	if dump == "" {
		sb.WriteString("_no components registered_\n\n")
	} else {
		sb.WriteString("```\n")
		sb.WriteString(dump)
		sb.WriteString("\n```\n\n")
	}

	stats := d.Stats()
	sb.WriteString("| state | processed | failed |\n|---|---|---|\n")
	fmt.Fprintf(&sb, "| %s | %d | %d |\n", d.State(), stats.Processed, stats.Failed)
	return sb.String()
}
