package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Save      key.Binding
	New       key.Binding
	Duplicate key.Binding
	Raw       key.Binding
	CopyLink  key.Binding
	Back      key.Binding
	Forward   key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		New:       key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Duplicate: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "duplicate")),
		Raw:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "raw")),
		CopyLink:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "copy link")),
		Back:      key.NewBinding(key.WithKeys("alt+left"), key.WithHelp("alt+←", "back")),
		Forward:   key.NewBinding(key.WithKeys("alt+right"), key.WithHelp("alt+→", "forward")),
		Quit:      key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Save, k.New, k.Duplicate, k.Raw, k.CopyLink, k.Back, k.Forward, k.Quit}
}
