package daylist

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// Row is one habit or step on the selected day.
type Row struct {
	ID string
	// Date is the occurrence the row toggles. It differs from the viewed day
	// for overdue recurring steps.
	Date   string
	Name   string
	Detail string
	Done   bool
	Saving bool
}

type Item struct {
	Row Row
}

func (i Item) Title() string {
	box := "[ ] "
	if i.Row.Done {
		box = "[x] "
	}
	title := box + i.Row.Name
	if i.Row.Saving {
		title += " (saving)"
	}
	return title
}

func (i Item) Description() string { return i.Row.Detail }
func (i Item) FilterValue() string { return i.Row.Name }

type Model struct {
	list  list.Model
	empty string
}

func New(title, empty string, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return Model{list: l, empty: empty}
}

// SetRows replaces the rows and keeps the cursor where it was when possible.
func (m *Model) SetRows(rows []Row) {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = Item{Row: r}
	}
	m.list.SetItems(items)
	if n := len(rows); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
}

func (m Model) Rows() []Row {
	items := m.list.Items()
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		if item, ok := it.(Item); ok {
			rows = append(rows, item.Row)
		}
	}
	return rows
}

func (m Model) Selected() (Row, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return Row{}, false
	}
	return item.Row, true
}

func (m *Model) Select(i int) { m.list.Select(i) }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  " + m.empty
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
