package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pokrok/internal/board"
	"github.com/julianstephens/pokrok/internal/optimistic"
	"github.com/julianstephens/pokrok/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			m.setStatus("Refresh failed: "+msg.err.Error(), true)
		} else {
			m.loaded = true
			m.setStatus("", false)
		}
		m.rebuild()
		return m, nil

	case settledMsg:
		if msg.err != nil {
			m.setStatus("Could not update "+msg.what+": "+msg.err.Error(), true)
		}
		m.rebuild()
		return m, nil

	case workflowsMsg:
		m.workflows = msg
		m.resize()
		return m, m.waitForWorkflows()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			if m.tab == TabHabits {
				m.setTab(TabSteps)
			} else {
				m.setTab(TabHabits)
			}
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.setDate(utils.AddDays(m.date, -1))
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.setDate(utils.AddDays(m.date, 1))
			return m, nil
		case key.Matches(msg, m.keys.Today):
			m.setDate(m.today)
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.setStatus("Refreshing...", false)
			return m, m.refresh()
		case key.Matches(msg, m.keys.Toggle):
			return m.toggleSelected()
		}
	}

	var cmd tea.Cmd
	if m.tab == TabHabits {
		m.habits, cmd = m.habits.Update(msg)
	} else {
		m.steps, cmd = m.steps.Update(msg)
	}
	return m, cmd
}

// toggleSelected applies the toggle locally and returns the command that
// settles it with the server. A row that is still saving is left alone.
func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	var (
		s    board.Settle
		err  error
		what string
	)
	if m.tab == TabHabits {
		row, ok := m.habits.Selected()
		if !ok {
			return m, nil
		}
		what = "habit"
		s, err = m.board.StartToggleHabit(row.ID, row.Date)
	} else {
		row, ok := m.steps.Selected()
		if !ok {
			return m, nil
		}
		what = "step"
		s, err = m.board.StartToggleStep(row.ID, row.Date)
	}

	switch {
	case errors.Is(err, optimistic.ErrInFlight):
		m.setStatus("Still saving...", false)
		return m, nil
	case err != nil:
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.setStatus("", false)
	m.rebuild()
	return m, m.settle(what, s)
}
