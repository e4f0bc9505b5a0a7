package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up     Key
	Down   Key
	Select Key
	Back   Key
	Quit   Key
	Delete Key

	F1  Key
	F2  Key
	F3  Key
	F4  Key
	F10 Key
}

// Key represents a key binding.
type Key struct {
	Keys    []string
	Help    string
	Enabled bool
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     Key{Keys: []string{"up", "k"}, Help: "up", Enabled: true},
		Down:   Key{Keys: []string{"down", "j"}, Help: "down", Enabled: true},
		Select: Key{Keys: []string{"enter"}, Help: "select", Enabled: true},
		Back:   Key{Keys: []string{"esc"}, Help: "back", Enabled: true},
		Quit:   Key{Keys: []string{"q", "ctrl+c"}, Help: "quit", Enabled: true},
		Delete: Key{Keys: []string{"d"}, Help: "delete", Enabled: true},

		F1:  Key{Keys: []string{"f1", "?"}, Help: "Help", Enabled: true},
		F2:  Key{Keys: []string{"f2"}, Help: "Dashboard", Enabled: true},
		F3:  Key{Keys: []string{"f3"}, Help: "Resources", Enabled: true},
		F4:  Key{Keys: []string{"f4"}, Help: "Population", Enabled: true},
		F10: Key{Keys: []string{"f10"}, Help: "Quit", Enabled: true},
	}
}

// Matches checks if a key message matches this key binding.
func (k Key) Matches(msg tea.KeyMsg) bool {
	if !k.Enabled {
		return false
	}

	keyStr := msg.String()
	for _, key := range k.Keys {
		if keyStr == key {
			return true
		}
	}
	return false
}

// MatchesAny checks if a key message matches any of the provided key bindings.
func MatchesAny(msg tea.KeyMsg, keys ...Key) bool {
	for _, k := range keys {
		if k.Matches(msg) {
			return true
		}
	}
	return false
}

// IsQuit checks if the key message is a quit command.
func (km KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return km.Quit.Matches(msg) || km.F10.Matches(msg)
}

// ModuleFor returns the module bound to a navigation key, if any.
func (km KeyMap) ModuleFor(msg tea.KeyMsg) (Module, bool) {
	switch {
	case km.F1.Matches(msg):
		return ModuleHelp, true
	case km.F2.Matches(msg):
		return ModuleDashboard, true
	case km.F3.Matches(msg):
		return ModuleResources, true
	case km.F4.Matches(msg):
		return ModulePopulation, true
	}
	return "", false
}

// StatusBarHelp returns the help text for the status bar. Narrow
// terminals get the short form.
func (km KeyMap) StatusBarHelp(width int) string {
	if width > 0 && GetBreakpoint(width) == BreakpointNarrow {
		return "F1 F2 F3 F4 F10"
	}
	return "[F1]Help [F2]Dashboard [F3]Resources [F4]Population [F10]Quit"
}
