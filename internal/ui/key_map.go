package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	delete  key.Binding
	clear   key.Binding
	reload  key.Binding
	filter  key.Binding
	next    key.Binding
	prev    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "resolve")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		clear:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
		reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		filter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.delete, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.delete, k.clear, k.reload},
		{k.filter, k.next, k.prev},
		{k.back, k.quit},
	}
}
