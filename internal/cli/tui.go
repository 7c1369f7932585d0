package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackbump/pkg/version"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// VersionPickerModel - Interactive target version selection
// =============================================================================

// VersionPickerModel is the bubbletea model for picking the version a
// dependency moves to. Versions are listed newest first.
type VersionPickerModel struct {
	Dependency  string
	Current     string
	Recommended string
	Versions    []version.Version
	Cursor      int
	Selected    *version.Version
	Height      int
	Offset      int
}

// NewVersionPickerModel creates a picker over the versions newer than
// current. The cursor starts on the recommended version when it is listed.
func NewVersionPickerModel(dependency, current, recommended string, available []version.Version) VersionPickerModel {
	var newer []version.Version
	cur, err := version.Parse(current, familyOf(available))
	for i := len(available) - 1; i >= 0; i-- {
		v := available[i]
		if err == nil && v.Compare(cur) <= 0 {
			continue
		}
		newer = append(newer, v)
	}
	m := VersionPickerModel{
		Dependency:  dependency,
		Current:     current,
		Recommended: recommended,
		Versions:    newer,
		Height:      15,
	}
	for i, v := range newer {
		if v.String() == recommended {
			m.Cursor = i
			if m.Cursor >= m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
			break
		}
	}
	return m
}

func familyOf(vs []version.Version) version.Family {
	if len(vs) == 0 {
		return 0
	}
	return vs[0].Family()
}

func (m VersionPickerModel) Init() tea.Cmd {
	return nil
}

func (m VersionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Versions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Versions) == 0 {
				return m, tea.Quit
			}
			v := m.Versions[m.Cursor]
			m.Selected = &v
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m VersionPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select version for " + m.Dependency))
	if m.Current != "" {
		b.WriteString(listDimStyle.Render("  (current " + m.Current + ")"))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Versions) == 0 {
		b.WriteString(listDimStyle.Render("  no newer versions published"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Versions))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		v := m.Versions[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		var notes []string
		if v.String() == m.Recommended {
			notes = append(notes, "recommended")
		}
		if v.IsPrerelease() {
			notes = append(notes, "pre-release")
		}
		rows = append(rows, []string{cursor, v.String(), formatRelativeTime(v.Published()), strings.Join(notes, ", ")})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Version", "Published", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Versions) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 2 {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			if m.Versions[idx].IsPrerelease() {
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Versions))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
