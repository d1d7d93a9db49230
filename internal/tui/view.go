package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	parts := []string{m.viewTabs()}
	if banner := m.viewBanner(); banner != "" {
		parts = append(parts, banner)
	}
	if m.tab == TabHabits {
		parts = append(parts, m.habits.View())
	} else {
		parts = append(parts, m.steps.View())
	}
	parts = append(parts, m.viewStatus(), m.help.View(m.keys))

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewTabs() string {
	var tabs []string
	for _, t := range []Tab{TabHabits, TabSteps} {
		title := strings.ToUpper(t.String()[:1]) + t.String()[1:]
		if m.tab == t {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	label := m.date.Format("Mon Jan 2 2006")
	if m.date.Equal(m.today) {
		label += " (today)"
	}
	tabs = append(tabs, dateStyle.Render(label))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewBanner() string {
	if len(m.workflows) == 0 {
		return ""
	}
	msgs := make([]string, len(m.workflows))
	for i, w := range m.workflows {
		msgs[i] = w.Message
	}
	return bannerStyle.Render(strings.Join(msgs, " | "))
}

func (m Model) viewStatus() string {
	switch {
	case m.status == "" && !m.loaded:
		return statusStyle.Render("Loading...")
	case m.statusErr:
		return errorStyle.Render(m.status)
	default:
		return statusStyle.Render(m.status)
	}
}
