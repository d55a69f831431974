package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle     key.Binding
	Click      key.Binding
	Train      key.Binding
	Upgrade    key.Binding
	Boost      key.Binding
	AddRule    key.Binding
	RemoveRule key.Binding
	Export     key.Binding
	Import     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:     key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("space", "start/stop")),
		Click:      key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c", "click")),
		Train:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "train")),
		Upgrade:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upgrade")),
		Boost:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "boost")),
		AddRule:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add rule")),
		RemoveRule: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "drop last rule")),
		Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Import:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Click, k.Train, k.Upgrade, k.Boost, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Click, k.Train, k.Upgrade, k.Boost},
		{k.AddRule, k.RemoveRule},
		{k.Export, k.Import, k.Help, k.Quit},
	}
}
