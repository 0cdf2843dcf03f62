package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all application keybindings.
type KeyMap struct {
	// Navigation
	FocusNext    key.Binding
	FocusPrev    key.Binding
	FocusLeftBar key.Binding
	FocusEditor  key.Binding

	// Editors
	NewEditor   key.Binding
	CloseEditor key.Binding
	NextEditor  key.Binding
	PrevEditor  key.Binding
	InsertTable key.Binding
	Complete    key.Binding

	// App
	ToggleLeftBar key.Binding
	Refetch       key.Binding
	DismissAlert  key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the application keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		FocusPrev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev pane"),
		),
		FocusLeftBar: key.NewBinding(
			key.WithKeys("alt+1"),
			key.WithHelp("alt+1", "tables"),
		),
		FocusEditor: key.NewBinding(
			key.WithKeys("alt+2"),
			key.WithHelp("alt+2", "editor"),
		),
		NewEditor: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "new editor"),
		),
		CloseEditor: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close editor"),
		),
		NextEditor: key.NewBinding(
			key.WithKeys("ctrl+pgdown", "ctrl+]"),
			key.WithHelp("ctrl+pgdn", "next editor"),
		),
		PrevEditor: key.NewBinding(
			// ctrl+[ arrives as esc, so ctrl+\ pairs with ctrl+].
			key.WithKeys("ctrl+pgup", "ctrl+\\"),
			key.WithHelp("ctrl+pgup", "prev editor"),
		),
		InsertTable: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "insert table"),
		),
		Complete: key.NewBinding(
			key.WithKeys("ctrl+@", "ctrl+ "),
			key.WithHelp("ctrl+space", "complete"),
		),
		ToggleLeftBar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "toggle tables"),
		),
		Refetch: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload tables"),
		),
		DismissAlert: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "dismiss alert"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

// ShortHelp returns a subset of keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.FocusNext, k.NewEditor, k.Refetch, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.FocusNext, k.FocusPrev, k.FocusLeftBar, k.FocusEditor},
		{k.NewEditor, k.CloseEditor, k.NextEditor, k.PrevEditor, k.InsertTable, k.Complete},
		{k.ToggleLeftBar, k.Refetch, k.DismissAlert},
		{k.Help, k.Quit},
	}
}
