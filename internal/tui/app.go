package tui

import (
	"context"
	"errors"
	"fmt"

	"modman/internal/core"
	"modman/internal/domain"
	"modman/internal/tui/views"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// progressBuffer is how many progress updates may queue before the worker
// starts dropping them.
const progressBuffer = 64

// Backend is the part of the lifecycle manager the TUI drives
type Backend interface {
	Mods(profile string) []domain.ModRecord
	SetEnabled(localName string, enabled bool) (*domain.ModRecord, error)
	Delete(profile string, localNames ...string) (*core.DeleteReport, error)
	Update(ctx context.Context, profile string, onProgress domain.ProgressFunc) (*core.UpdateReport, error)
	Reload()
}

// ToggledMsg reports the outcome of an enable/disable
type ToggledMsg struct {
	LocalName string
	Enabled   bool // Requested state
	Err       error
}

// DeletedMsg reports the outcome of a delete
type DeletedMsg struct {
	Report *core.DeleteReport
	Err    error
}

// ProgressMsg carries one bulk update progress notification
type ProgressMsg domain.Progress

// UpdateDoneMsg is sent when a bulk update finishes
type UpdateDoneMsg struct {
	Report *core.UpdateReport
	Err    error
}

// App is the main TUI application model
type App struct {
	backend    Backend
	keys       *KeyMap
	profiles   []string
	profileIdx int
	installed  views.Installed

	bar        progress.Model
	percent    float64
	progressCh chan domain.Progress
	updating   bool
	current    string // Item being updated

	pendingDelete string
	status        string
	err           error
	width         int
	height        int
}

// NewApp creates a new TUI application showing current, one of profiles
func NewApp(backend Backend, profiles []string, current, keyMode string) App {
	a := App{
		backend:  backend,
		keys:     NewKeyMap(keyMode),
		profiles: profiles,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		width:    80,
		height:   24,
	}
	for i, p := range profiles {
		if p == current {
			a.profileIdx = i
		}
	}
	if len(profiles) == 0 {
		a.profiles = []string{current}
	}
	return a.refresh()
}

// Profile returns the profile being shown
func (a App) Profile() string {
	return a.profiles[a.profileIdx]
}

// Installed returns the mod list view
func (a App) Installed() views.Installed {
	return a.installed
}

// Updating reports whether a bulk update is running
func (a App) Updating() bool {
	return a.updating
}

// Percent returns the last bulk update progress in [0,1]
func (a App) Percent() float64 {
	return a.percent
}

// Status returns the last status line
func (a App) Status() string {
	return a.status
}

// Err returns the last error shown to the user
func (a App) Err() error {
	return a.err
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.bar.Width = min(max(msg.Width-10, 10), 60)
		m, _ := a.installed.Update(msg)
		a.installed = m.(views.Installed)
		return a, nil

	case ToggledMsg:
		if msg.Err != nil {
			a.err = toggleError(msg)
		} else {
			a.err = nil
			a.status = fmt.Sprintf("%s %s", stateWord(msg.Enabled), msg.LocalName)
		}
		// The list always reflects the manager, so a rejected toggle rolls back.
		a = a.refresh()
		return a, nil

	case DeletedMsg:
		a.err = msg.Err
		if msg.Report != nil {
			switch {
			case len(msg.Report.Failed) > 0:
				a.err = msg.Report.Failed[0].Err
			case len(msg.Report.Deleted) > 0:
				a.status = "deleted " + msg.Report.Deleted[0]
			}
		}
		a = a.refresh()
		return a, nil

	case ProgressMsg:
		a.percent = msg.Percent / 100
		a.current = msg.Item
		return a, waitForProgress(a.progressCh)

	case UpdateDoneMsg:
		a.updating = false
		a.progressCh = nil
		a.percent = 1
		a.current = ""
		a.err = msg.Err
		if msg.Report != nil {
			a.status = fmt.Sprintf("updated %d of %d", len(msg.Report.Succeeded), msg.Report.Total)
			if len(msg.Report.Failed) > 0 {
				f := msg.Report.Failed[0]
				a.err = fmt.Errorf("%d failed, first: %s: %w", len(msg.Report.Failed), f.LocalName, f.Err)
			}
		}
		a = a.refresh()
		return a, nil
	}

	return a, nil
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.keys.IsQuit(msg) {
		return a, tea.Quit
	}

	if a.pendingDelete != "" {
		name := a.pendingDelete
		a.pendingDelete = ""
		if a.keys.IsConfirm(msg) {
			return a, a.deleteCmd(name)
		}
		a.status = "delete cancelled"
		return a, nil
	}

	if a.updating {
		a.status = "update in progress"
		return a, nil
	}

	switch {
	case a.keys.IsUp(msg):
		a.installed = a.installed.MoveUp()
	case a.keys.IsDown(msg):
		a.installed = a.installed.MoveDown()
	case a.keys.IsToggle(msg):
		if rec := a.installed.SelectedMod(); rec != nil {
			return a, a.toggleCmd(rec.LocalName, !rec.Enabled)
		}
	case a.keys.IsDelete(msg):
		if rec := a.installed.SelectedMod(); rec != nil {
			a.pendingDelete = rec.LocalName
			a.status = fmt.Sprintf("delete %s? (y/n)", rec.LocalName)
		}
	case a.keys.IsUpdate(msg):
		return a.startUpdate()
	case a.keys.IsNextProfile(msg):
		a.profileIdx = (a.profileIdx + 1) % len(a.profiles)
		a.err = nil
		a.status = "profile " + a.Profile()
		a = a.refresh()
	case a.keys.IsReload(msg):
		a.backend.Reload()
		a.status = "reloaded"
		a = a.refresh()
	default:
		m, cmd := a.installed.Update(msg)
		a.installed = m.(views.Installed)
		return a, cmd
	}
	return a, nil
}

func (a App) refresh() App {
	var selected string
	if rec := a.installed.SelectedMod(); rec != nil {
		selected = rec.LocalName
	}
	var mods []domain.ModRecord
	if a.backend != nil {
		mods = a.backend.Mods(a.Profile())
	}
	a.installed = views.NewInstalled(a.Profile(), mods).SelectName(selected)
	return a
}

func (a App) toggleCmd(localName string, enabled bool) tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		_, err := backend.SetEnabled(localName, enabled)
		return ToggledMsg{LocalName: localName, Enabled: enabled, Err: err}
	}
}

func (a App) deleteCmd(localName string) tea.Cmd {
	backend, profile := a.backend, a.Profile()
	return func() tea.Msg {
		report, err := backend.Delete(profile, localName)
		return DeletedMsg{Report: report, Err: err}
	}
}

// startUpdate runs the bulk update on a command goroutine. Progress is sent
// without blocking, so a busy UI drops updates instead of stalling the work.
func (a App) startUpdate() (tea.Model, tea.Cmd) {
	ch := make(chan domain.Progress, progressBuffer)
	a.progressCh = ch
	a.updating = true
	a.percent = 0
	a.err = nil
	a.status = "updating " + a.Profile()

	backend, profile := a.backend, a.Profile()
	run := func() tea.Msg {
		report, err := backend.Update(context.Background(), profile, func(p domain.Progress) {
			select {
			case ch <- p:
			default:
			}
		})
		close(ch)
		return UpdateDoneMsg{Report: report, Err: err}
	}
	return a, tea.Batch(run, waitForProgress(ch))
}

func waitForProgress(ch <-chan domain.Progress) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return ProgressMsg(p)
	}
}

func toggleError(msg ToggledMsg) error {
	if errors.Is(msg.Err, domain.ErrModFileMissing) {
		return fmt.Errorf("%s stays %s: %w", msg.LocalName, stateWord(!msg.Enabled), msg.Err)
	}
	return msg.Err
}

func stateWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

// View implements tea.Model
func (a App) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	activeTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	header := titleStyle.Render("modman - mod manager")

	tabBar := ""
	for i, name := range a.profiles {
		if i == a.profileIdx {
			tabBar += activeTabStyle.Render("["+name+"]") + "  "
		} else {
			tabBar += tabStyle.Render(name) + "  "
		}
	}

	content := a.installed.View()

	if a.updating {
		line := a.bar.ViewAs(a.percent)
		if a.current != "" {
			line += "  " + a.current
		}
		content += "\n" + line
	}

	statusLine := ""
	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		statusLine = errStyle.Render(fmt.Sprintf("Error: %v", a.err))
	} else if a.status != "" {
		statusLine = tabStyle.Render(a.status)
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	footer := footerStyle.Render(a.keys.NavigationHelp() + "  " + a.keys.ActionHelp())

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s", header, tabBar, content, statusLine, footer)
}

// Run starts the TUI application
func Run(backend Backend, profiles []string, current, keyMode string) error {
	app := NewApp(backend, profiles, current, keyMode)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
