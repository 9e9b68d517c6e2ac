package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add      key.Binding
	Complete key.Binding
	Delete   key.Binding
	Reload   key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Submit   key.Binding
	Back     key.Binding
}

var keys = keyMap{
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Complete: key.NewBinding(key.WithKeys("c", " "), key.WithHelp("c/space", "complete")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Confirm:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
	Cancel:   key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "no")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

func (k keyMap) browseHelp() []key.Binding {
	return []key.Binding{k.Add, k.Complete, k.Delete, k.Reload, k.Up, k.Down, k.Quit}
}

func (k keyMap) addHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Back}
}

func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}
