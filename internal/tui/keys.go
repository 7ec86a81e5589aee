package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keybindings for the progress view.
type keyMap struct {
	Cancel key.Binding
}

var keys = keyMap{
	Cancel: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "cancel"),
	),
}
