// Package tui is a terminal front end for the task store.
package tui

import (
	"github.com/pbaille/tasks/internal/taskstore"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive task list and blocks until the user quits.
func Run(s *taskstore.Store) error {
	_, err := tea.NewProgram(newModel(s), tea.WithAltScreen()).Run()
	return err
}
