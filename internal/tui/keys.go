package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines keybindings for the TUI
type KeyMap struct {
	mode string
}

// NewKeyMap creates a new keymap for the given mode
func NewKeyMap(mode string) *KeyMap {
	if mode == "" {
		mode = "vim"
	}
	return &KeyMap{mode: mode}
}

// Mode returns the current keybinding mode
func (k *KeyMap) Mode() string {
	return k.mode
}

// IsUp returns true if the key is an "up" navigation key
func (k *KeyMap) IsUp(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyUp {
		return true
	}
	return k.mode == "vim" && msg.String() == "k"
}

// IsDown returns true if the key is a "down" navigation key
func (k *KeyMap) IsDown(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyDown {
		return true
	}
	return k.mode == "vim" && msg.String() == "j"
}

// IsToggle returns true if the key flips the selected mod on or off
func (k *KeyMap) IsToggle(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeySpace || msg.String() == " "
}

// IsConfirm returns true if the key confirms a pending action
func (k *KeyMap) IsConfirm(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEnter || msg.String() == "y"
}

// IsQuit returns true if the key is a quit key
func (k *KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return msg.String() == "q" || msg.Type == tea.KeyCtrlC
}

// IsDelete returns true if the key is a delete key
func (k *KeyMap) IsDelete(msg tea.KeyMsg) bool {
	return msg.String() == "d" || msg.Type == tea.KeyDelete
}

// IsUpdate returns true if the key starts a bulk update
func (k *KeyMap) IsUpdate(msg tea.KeyMsg) bool {
	return msg.String() == "u"
}

// IsReload returns true if the key reloads the mod database
func (k *KeyMap) IsReload(msg tea.KeyMsg) bool {
	return msg.String() == "r"
}

// IsNextProfile returns true if the key switches to the next profile
func (k *KeyMap) IsNextProfile(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyTab
}

// NavigationHelp returns help text for navigation keys
func (k *KeyMap) NavigationHelp() string {
	if k.mode == "vim" {
		return "j/k: navigate"
	}
	return "↑/↓: navigate"
}

// ActionHelp returns help text for the action keys
func (k *KeyMap) ActionHelp() string {
	return "space: toggle  u: update all  d: delete  tab: profile  r: reload  q: quit"
}
