package tui_test

import (
	"testing"

	"modman/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyMap_VimMode(t *testing.T) {
	km := tui.NewKeyMap("vim")

	assert.True(t, km.IsUp(runes("k")))
	assert.True(t, km.IsDown(runes("j")))
	assert.True(t, km.IsToggle(tea.KeyMsg{Type: tea.KeySpace}))
	assert.True(t, km.IsConfirm(runes("y")))
	assert.True(t, km.IsConfirm(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.True(t, km.IsQuit(runes("q")))
	assert.True(t, km.IsQuit(tea.KeyMsg{Type: tea.KeyCtrlC}))
	assert.True(t, km.IsDelete(runes("d")))
	assert.True(t, km.IsUpdate(runes("u")))
	assert.True(t, km.IsReload(runes("r")))
	assert.True(t, km.IsNextProfile(tea.KeyMsg{Type: tea.KeyTab}))
}

func TestKeyMap_StandardMode(t *testing.T) {
	km := tui.NewKeyMap("standard")

	assert.True(t, km.IsUp(tea.KeyMsg{Type: tea.KeyUp}))
	assert.True(t, km.IsDown(tea.KeyMsg{Type: tea.KeyDown}))

	// But not vim keys for navigation
	assert.False(t, km.IsUp(runes("k")))
	assert.False(t, km.IsDown(runes("j")))
}

func TestKeyMap_Help(t *testing.T) {
	assert.Contains(t, tui.NewKeyMap("vim").NavigationHelp(), "j/k")
	assert.Contains(t, tui.NewKeyMap("standard").NavigationHelp(), "↑/↓")
	assert.Contains(t, tui.NewKeyMap("vim").ActionHelp(), "u: update all")
}

func TestKeyMap_DefaultsToVim(t *testing.T) {
	km := tui.NewKeyMap("")

	assert.Equal(t, "vim", km.Mode())
	assert.True(t, km.IsUp(runes("k")))
}
