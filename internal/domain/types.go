package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaVersion is the version tag written into every persisted snapshot.
const SchemaVersion = 1

// TaskID identifies a task. Older snapshots stored numeric ids; those
// decode into their decimal string form.
type TaskID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *TaskID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = TaskID(n.String())
	return nil
}

// Task is a single to-do item
type Task struct {
	ID        TaskID `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Collection is the ordered task list, newest first
type Collection []Task

// Index returns the position of the task with the given id, or -1.
func (c Collection) Index(id TaskID) int {
	for i, t := range c {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no backing array with c.
func (c Collection) Clone() Collection {
	if c == nil {
		return Collection{}
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Done counts completed tasks.
func (c Collection) Done() int {
	n := 0
	for _, t := range c {
		if t.Completed {
			n++
		}
	}
	return n
}

// Sanitize drops records that break the collection invariants: blank
// text or an id already seen. Text is trimmed.
func (c Collection) Sanitize() Collection {
	out := make(Collection, 0, len(c))
	seen := make(map[TaskID]bool, len(c))
	for _, t := range c {
		t.Text = strings.TrimSpace(t.Text)
		if t.Text == "" || t.ID == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

// Snapshot is the persisted form of a collection
type Snapshot struct {
	Version int        `json:"version"`
	Tasks   Collection `json:"tasks"`
}
