package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pbaille/tasks/internal/domain"
	"github.com/pbaille/tasks/internal/taskstore"
)

type focus int

const (
	focusAdd focus = iota
	focusSearch
	focusList
)

type model struct {
	store *taskstore.Store
	keys  keyMap
	help  help.Model

	focus   focus
	add     textinput.Model
	search  textinput.Model
	edit    textinput.Model
	editing domain.TaskID

	cursor int
	view   domain.Collection
	err    error

	width int
}

func newModel(s *taskstore.Store) model {
	m := model{
		store: s,
		keys:  defaultKeyMap(),
		help:  help.New(),
	}

	m.add = textinput.New()
	m.add.Placeholder = "What needs to be done?"
	m.add.CharLimit = 200
	m.add.Width = 40
	m.add.Prompt = "+ "

	m.search = textinput.New()
	m.search.Placeholder = "type 3+ characters to filter"
	m.search.CharLimit = 100
	m.search.Width = 40
	m.search.Prompt = "/ "
	m.search.SetValue(s.SearchTerm())

	m.edit = textinput.New()
	m.edit.CharLimit = 200
	m.edit.Width = 40
	m.edit.Prompt = ""

	m.add.Focus()
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// refresh re-reads the filtered view and keeps the cursor in range.
func (m *model) refresh() {
	m.view = m.store.FilteredView()
	if m.cursor >= len(m.view) {
		m.cursor = len(m.view) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) selected() (domain.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view) {
		return domain.Task{}, false
	}
	return m.view[m.cursor], true
}

func (m *model) setFocus(f focus) {
	m.focus = f
	m.add.Blur()
	m.search.Blur()
	switch f {
	case focusAdd:
		m.add.Focus()
	case focusSearch:
		m.search.Focus()
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.editing != "" {
			return m.updateEdit(msg)
		}
		if key.Matches(msg, m.keys.NextFocus) {
			m.setFocus((m.focus + 1) % 3)
			return m, nil
		}
		switch m.focus {
		case focusAdd:
			return m.updateAdd(msg)
		case focusSearch:
			return m.updateSearch(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.err = m.store.Add(m.add.Value())
		m.add.Reset()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.setFocus(focusList)
		return m, nil
	}
	var cmd tea.Cmd
	m.add, cmd = m.add.Update(msg)
	return m, cmd
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) || key.Matches(msg, m.keys.Cancel) {
		m.setFocus(focusList)
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.store.SearchTerm() {
		m.store.SetSearchTerm(m.search.Value())
		m.refresh()
	}
	return m, cmd
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.view)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			m.err = m.store.Toggle(t.ID)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.err = m.store.Remove(t.ID)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Edit):
		// Completed tasks are read-only until reopened.
		if t, ok := m.selected(); ok && !t.Completed {
			m.editing = t.ID
			m.edit.SetValue(t.Text)
			m.edit.CursorEnd()
			cmd := m.edit.Focus()
			return m, cmd
		}
	}
	return m, nil
}

func (m model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.err = m.store.Edit(m.editing, m.edit.Value())
		m.stopEditing()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	return m, cmd
}

func (m *model) stopEditing() {
	m.editing = ""
	m.edit.Blur()
	m.edit.Reset()
}
