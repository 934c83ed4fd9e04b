package views

import (
	"fmt"
	"strings"

	"modman/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Installed lists the mod records of one profile
type Installed struct {
	profile  string
	mods     []domain.ModRecord
	selected int
	width    int
	height   int
}

// NewInstalled creates a new installed mods view
func NewInstalled(profile string, mods []domain.ModRecord) Installed {
	return Installed{
		profile: profile,
		mods:    mods,
		width:   80,
		height:  24,
	}
}

// Profile returns the profile being shown
func (m Installed) Profile() string {
	return m.profile
}

// Selected returns the currently selected index
func (m Installed) Selected() int {
	return m.selected
}

// ModCount returns the number of listed mods
func (m Installed) ModCount() int {
	return len(m.mods)
}

// SelectedMod returns the currently selected record, or nil for an empty list
func (m Installed) SelectedMod() *domain.ModRecord {
	if len(m.mods) == 0 || m.selected >= len(m.mods) {
		return nil
	}
	return &m.mods[m.selected]
}

// SelectName moves the cursor to the record named localName, if listed
func (m Installed) SelectName(localName string) Installed {
	for i, rec := range m.mods {
		if rec.LocalName == localName {
			m.selected = i
			return m
		}
	}
	if m.selected >= len(m.mods) {
		m.selected = max(len(m.mods)-1, 0)
	}
	return m
}

// MoveUp moves the cursor up, wrapping to the bottom
func (m Installed) MoveUp() Installed {
	if len(m.mods) == 0 {
		return m
	}
	m.selected--
	if m.selected < 0 {
		m.selected = len(m.mods) - 1
	}
	return m
}

// MoveDown moves the cursor down, wrapping to the top
func (m Installed) MoveDown() Installed {
	if len(m.mods) == 0 {
		return m
	}
	m.selected++
	if m.selected >= len(m.mods) {
		m.selected = 0
	}
	return m
}

// Init implements tea.Model
func (m Installed) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Installed) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if len(m.mods) == 0 {
			return m, nil
		}
		switch msg.String() {
		case "home", "g":
			m.selected = 0
		case "end", "G":
			m.selected = len(m.mods) - 1
		}
	}
	return m, nil
}

// View implements tea.Model
func (m Installed) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	disabledStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("241"))

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(4)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Installed Mods") + "\n")

	enabled := 0
	for _, rec := range m.mods {
		if rec.Enabled {
			enabled++
		}
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("Profile: %s  (%d mods, %d enabled)", m.profile, len(m.mods), enabled)) + "\n\n")

	if len(m.mods) == 0 {
		b.WriteString(itemStyle.Render("No mods installed in this profile.") + "\n\n")
		b.WriteString(infoStyle.Render("Install one with 'modman install <url>'") + "\n")
		return b.String()
	}

	for i, rec := range m.mods {
		cursor := "  "
		style := itemStyle

		if i == m.selected {
			cursor = "▸ "
			style = selectedStyle
		} else if !rec.Enabled {
			style = disabledStyle
		}

		status := "[✓]"
		if !rec.Enabled {
			status = "[ ]"
		}

		b.WriteString(style.Render(fmt.Sprintf("%s%s %s", cursor, status, rec.DisplayName)) + "\n")

		if i == m.selected {
			b.WriteString(detailStyle.Render("File: "+rec.LocalName) + "\n")
			if rec.ArchiveName != "" {
				b.WriteString(detailStyle.Render("Archive: "+rec.ArchiveName) + "\n")
			}
			if rec.SourceURL != "" {
				b.WriteString(detailStyle.Render("Source: "+rec.SourceURL) + "\n")
			}
			if !rec.UpdatedAt.IsZero() {
				b.WriteString(detailStyle.Render("Updated: "+humanize.Time(rec.UpdatedAt)) + "\n")
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
