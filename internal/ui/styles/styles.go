// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#9A9A9A", Dark: "#696969"} // Hints, help text, footers

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	CountStyle     = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	LabelStyle     = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	MutedStyle     = lipgloss.NewStyle().Foreground(TextMutedColor)
	MilestoneStyle = lipgloss.NewStyle().Bold(true).Foreground(StatusSuccessColor)
	FlashStyle     = lipgloss.NewStyle().Foreground(StatusWarningColor)
	ErrorStyle     = lipgloss.NewStyle().Foreground(StatusErrorColor)
)
