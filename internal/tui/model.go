// Package tui is the interactive day dashboard. It talks to the server through
// a board, so toggles show up at once and roll back when the server refuses.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pokrok/internal/board"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/optimistic"
	"github.com/julianstephens/pokrok/internal/scheduler"
	"github.com/julianstephens/pokrok/internal/stats"
	"github.com/julianstephens/pokrok/internal/tui/components/daylist"
	"github.com/julianstephens/pokrok/internal/utils"
	"github.com/julianstephens/pokrok/internal/viewstate"
)

type Tab int

const (
	TabHabits Tab = iota
	TabSteps
)

func (t Tab) String() string {
	if t == TabSteps {
		return "steps"
	}
	return "habits"
}

func parseTab(s string) Tab {
	if s == TabSteps.String() {
		return TabSteps
	}
	return TabHabits
}

type Model struct {
	// ctx lives as long as the program. Requests get no deadline of their own.
	ctx   context.Context
	board *board.Board
	sched *scheduler.Scheduler
	state viewstate.Store
	feed  *Feed
	keys  KeyMap
	help  help.Model

	tab   Tab
	today time.Time
	date  time.Time

	habits daylist.Model
	steps  daylist.Model

	workflows []models.Workflow
	status    string
	statusErr bool
	loaded    bool
	quitting  bool
	width     int
	height    int
}

// NewModel restores the last tab and day from state. feed may be nil. ctx
// should be cancelled when the program exits.
func NewModel(ctx context.Context, b *board.Board, state viewstate.Store, feed *Feed, today time.Time) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if state == nil {
		state = viewstate.NewMemory()
	}
	m := Model{
		ctx:    ctx,
		board:  b,
		sched:  scheduler.New(),
		state:  state,
		feed:   feed,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		today:  utils.DateOf(today),
		date:   utils.DateOf(today),
		habits: daylist.New("Habits", "No habits scheduled.", 0, 0),
		steps:  daylist.New("Steps", "Nothing due.", 0, 0),
	}
	if v, ok := state.Get(viewstate.KeyTab); ok {
		m.tab = parseTab(v)
	}
	if v, ok := state.Get(viewstate.KeyDate); ok {
		if d, err := utils.ParseDate(v); err == nil {
			m.date = d
		}
	}
	m.rebuild()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.waitForWorkflows())
}

type refreshedMsg struct{ err error }

type settledMsg struct {
	what string
	err  error
}

type workflowsMsg []models.Workflow

func (m Model) refresh() tea.Cmd {
	ctx, b := m.ctx, m.board
	return func() tea.Msg {
		return refreshedMsg{err: b.Refresh(ctx)}
	}
}

func (m Model) waitForWorkflows() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	ch := m.feed.C()
	return func() tea.Msg {
		return workflowsMsg(<-ch)
	}
}

func (m Model) settle(what string, s board.Settle) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return settledMsg{what: what, err: s(ctx)}
	}
}

func (m Model) dateKey() string { return utils.FormatDate(m.date) }

func (m *Model) setDate(d time.Time) {
	m.date = utils.DateOf(d)
	m.persist(viewstate.KeyDate, m.dateKey())
	m.rebuild()
}

func (m *Model) setTab(t Tab) {
	m.tab = t
	m.persist(viewstate.KeyTab, t.String())
}

func (m *Model) persist(key, value string) {
	if err := m.state.Set(key, value); err != nil {
		logger.Warn("Failed to save view state", "key", key, "error", err)
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

// rebuild derives both lists from the board for the selected day.
func (m *Model) rebuild() {
	agenda := m.sched.BuildAgenda(m.date, m.today, m.board.Habits(), m.board.Steps())
	guard := m.board.Syncer().Guard()

	habitRows := make([]daylist.Row, 0, len(agenda.Habits))
	for _, ah := range agenda.Habits {
		h := ah.Habit
		st := stats.Compute(h, m.today)
		habitRows = append(habitRows, daylist.Row{
			ID:     h.ID,
			Date:   agenda.Date,
			Name:   h.Name,
			Detail: fmt.Sprintf("%s · streak %d", utils.FormatRecurrence(h.Recurrence()), st.CurrentStreak),
			Done:   ah.Completed,
			Saving: guard.InFlight(optimistic.Key(h.ID, agenda.Date)),
		})
	}
	m.habits.SetRows(habitRows)

	stepRows := make([]daylist.Row, 0, len(agenda.Steps))
	for _, as := range agenda.Steps {
		s := as.Step
		date := agenda.Date
		if as.Overdue {
			date = s.CurrentInstanceDate
		}
		stepRows = append(stepRows, daylist.Row{
			ID:     s.ID,
			Date:   date,
			Name:   s.Title,
			Detail: stepDetail(as),
			Done:   as.Completed,
			Saving: guard.InFlight(optimistic.Key(s.ID, date)),
		})
	}
	m.steps.SetRows(stepRows)
}

func stepDetail(as scheduler.AgendaStep) string {
	s := as.Step
	detail := ""
	add := func(part string) {
		if detail != "" {
			detail += " · "
		}
		detail += part
	}
	if s.IsImportant {
		add("important")
	}
	if s.IsUrgent {
		add("urgent")
	}
	if s.EstimatedMinutes > 0 {
		add(fmt.Sprintf("%dm", s.EstimatedMinutes))
	}
	if s.IsRecurring() {
		add(utils.FormatRecurrence(s.Recurrence()))
	}
	if as.Overdue {
		add("overdue since " + s.CurrentInstanceDate)
	}
	return detail
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// Tabs, banner, status and help.
	reserved := 6
	if len(m.workflows) > 0 {
		reserved++
	}
	h, v := docStyle.GetFrameSize()
	height := max(m.height-v-reserved, 1)
	m.habits.SetSize(m.width-h, height)
	m.steps.SetSize(m.width-h, height)
}
