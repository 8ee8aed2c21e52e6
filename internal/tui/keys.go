package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the process dashboard.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Ordering
	SortPID    key.Binding
	SortName   key.Binding
	SortStatus key.Binding
	SortMemory key.Binding

	// Actions
	Terminate key.Binding
	Suspend   key.Binding
	Resume    key.Binding
	Refresh   key.Binding

	// Confirmation prompt
	Confirm key.Binding
	Cancel  key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		SortPID: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "sort pid"),
		),
		SortName: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "sort name"),
		),
		SortStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort status"),
		),
		SortMemory: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "sort memory"),
		),
		Terminate: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "terminate"),
		),
		Suspend: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "suspend"),
		),
		Resume: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "resume"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
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

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SortPID, k.SortName, k.SortStatus, k.SortMemory, k.Terminate, k.Suspend, k.Resume, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.SortPID, k.SortName, k.SortStatus, k.SortMemory},
		{k.Terminate, k.Suspend, k.Resume, k.Refresh},
		{k.Help, k.Quit},
	}
}
