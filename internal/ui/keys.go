package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap implements help.KeyMap.
type keyMap struct {
	Quit      key.Binding
	Refresh   key.Binding
	Streaming key.Binding
	GPU       key.Binding
	Temp      key.Binding
	Theme     key.Binding
	Help      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Streaming, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Streaming},
		{k.GPU, k.Temp, k.Theme},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Streaming: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "streaming mode")),
	GPU:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "toggle gpu")),
	Temp:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle temperature")),
	Theme:     key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "light/dark")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}
