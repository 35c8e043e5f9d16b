package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	Next          key.Binding
	Prev          key.Binding
	Back          key.Binding
	Submit        key.Binding
	Ack           key.Binding
	Refresh       key.Binding
	Connect       key.Binding
	Disconnect    key.Binding
	DisconnectAll key.Binding
	Install       key.Binding
	State         key.Binding
	ResolveIP     key.Binding
	Check         key.Binding
	Restart       key.Binding
	ClearLog      key.Binding
	CopyLog       key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Next:          key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:          key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "devices")),
		Submit:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run field")),
		Ack:           key.NewBinding(key.WithKeys("enter", "esc", " "), key.WithHelp("enter", "dismiss")),
		Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Connect:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect")),
		Disconnect:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "disconnect")),
		DisconnectAll: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "disconnect all")),
		Install:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "install")),
		State:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "state")),
		ResolveIP:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "get ip")),
		Check:         key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "check bridge")),
		Restart:       key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restart server")),
		ClearLog:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear log")),
		CopyLog:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy log")),
		ScrollUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "log up")),
		ScrollDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "log down")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Connect, k.Install, k.State, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Next, k.Prev, k.Back, k.Submit},
		{k.Refresh, k.Connect, k.Disconnect, k.DisconnectAll, k.ResolveIP},
		{k.Install, k.State, k.Check, k.Restart},
		{k.ClearLog, k.CopyLog, k.ScrollUp, k.ScrollDown, k.Help, k.Quit},
	}
}
