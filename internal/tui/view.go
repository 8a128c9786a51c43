package tui

import (
	"fmt"
	"strings"
)

func (m model) View() string {
	var b strings.Builder

	all := m.store.Len()
	b.WriteString(styleTitle.Render("Tasks"))
	b.WriteString("  ")
	b.WriteString(styleCount.Render(countLabel(all, m.doneCount())))
	b.WriteString("\n\n")

	b.WriteString(m.inputRow("New", focusAdd, m.add.View()))
	b.WriteString(m.inputRow("Search", focusSearch, m.search.View()))
	b.WriteString("\n")

	switch {
	case all == 0:
		b.WriteString(styleEmpty.Render("  Nothing to do yet."))
		b.WriteString("\n")
	case len(m.view) == 0:
		b.WriteString(styleEmpty.Render(fmt.Sprintf("  No tasks match %q.", m.store.SearchTerm())))
		b.WriteString("\n")
	default:
		for i, t := range m.view {
			b.WriteString(m.row(i, t.ID == m.editing, t.Completed, t.Text))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styleError.Render("not saved: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m model) inputRow(label string, f focus, input string) string {
	st := styleLabel
	if m.focus == f && m.editing == "" {
		st = styleFocused
	}
	return st.Render(label) + input + "\n"
}

func (m model) row(i int, editing, done bool, text string) string {
	cursor := "  "
	if m.focus == focusList && i == m.cursor {
		cursor = styleCursor.Render("> ")
	}
	box := "[ ] "
	if done {
		box = "[x] "
	}
	if editing {
		return cursor + box + m.edit.View()
	}
	switch {
	case done:
		text = styleDone.Render(text)
	case m.focus == focusList && i == m.cursor:
		text = styleSelected.Render(text)
	}
	return cursor + box + text
}

func (m model) doneCount() int {
	return m.store.Tasks().Done()
}

func countLabel(total, done int) string {
	noun := "tasks"
	if total == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%d %s, %d done", total, noun, done)
}
