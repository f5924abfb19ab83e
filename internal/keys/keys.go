// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the counter view.
type KeyMap struct {
	// Counter actions
	Increment key.Binding
	Decrement key.Binding
	Reset     key.Binding
	StepUp    key.Binding
	StepDown  key.Binding

	// Views
	Dump      key.Binding
	ToggleLog key.Binding

	// General
	Save key.Binding
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Increment: key.NewBinding(
			key.WithKeys("+", "k", "up"),
			key.WithHelp("+/k", "increment"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-", "j", "down"),
			key.WithHelp("-/j", "decrement"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		StepUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "step up"),
		),
		StepDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "step down"),
		),
		Dump: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "domain dump"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "toggle log"),
		),
		Save: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "save to config"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increment, k.Decrement, k.Reset, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increment, k.Decrement, k.Reset},
		{k.StepUp, k.StepDown},
		{k.Dump, k.ToggleLog, k.Save},
		{k.Help, k.Quit},
	}
}
