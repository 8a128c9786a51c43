// Package taskstore owns the task collection: it applies mutations,
// answers search queries and writes the collection through to a slot
// after every change.
//
// A Store is not safe for concurrent use. Callers that handle events on
// several goroutines must serialize their calls.
package taskstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pbaille/tasks/internal/domain"
	"github.com/pbaille/tasks/internal/slot"
)

const (
	// DefaultKey is the slot key the browser app used.
	DefaultKey = "tarefas"

	// DefaultMinSearchLen is the shortest search term that filters.
	DefaultMinSearchLen = 3
)

// Observer receives the full collection after each change.
type Observer func(domain.Collection)

// Option configures a Store
type Option func(*Store)

// WithKey sets the slot key
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for persistence diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDGenerator replaces the random id generator
func WithIDGenerator(gen func() domain.TaskID) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithMinSearchLen sets how many characters a search term needs before it filters
func WithMinSearchLen(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.minSearch = n
		}
	}
}

// Store holds the authoritative task collection and search term
type Store struct {
	slot      slot.Slot
	key       string
	log       *slog.Logger
	newID     func() domain.TaskID
	minSearch int

	tasks  domain.Collection
	search string

	observers []observerEntry
	nextObs   int
}

type observerEntry struct {
	id int
	fn Observer
}

// New creates a Store backed by s. The collection starts empty; call Load
// to read the saved state.
func New(s slot.Slot, opts ...Option) *Store {
	st := &Store{
		slot:      s,
		key:       DefaultKey,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:     func() domain.TaskID { return domain.TaskID(uuid.NewString()) },
		minSearch: DefaultMinSearchLen,
		tasks:     domain.Collection{},
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Open creates a Store and loads its saved state.
func Open(s slot.Slot, opts ...Option) *Store {
	st := New(s, opts...)
	st.Load()
	return st
}

// Load replaces the in-memory collection with the saved one. Missing or
// unreadable state yields an empty collection.
func (s *Store) Load() domain.Collection {
	s.tasks = s.read()
	s.notify()
	return s.tasks.Clone()
}

func (s *Store) read() domain.Collection {
	raw, err := s.slot.Get(s.key)
	if errors.Is(err, slot.ErrNotFound) {
		return domain.Collection{}
	}
	if err != nil {
		s.log.Warn("read saved tasks", "key", s.key, "err", err)
		return domain.Collection{}
	}
	tasks, err := Decode(raw)
	if err != nil {
		s.log.Warn("discarding unreadable saved tasks", "key", s.key, "err", err)
		return domain.Collection{}
	}
	return tasks
}

// Add prepends a task with the trimmed text. Blank text is ignored.
func (s *Store) Add(raw string) error {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	id := s.uniqueID()

	next := make(domain.Collection, 0, len(s.tasks)+1)
	next = append(next, domain.Task{ID: id, Text: text})
	next = append(next, s.tasks...)
	return s.commit(next)
}

// maxIDAttempts bounds how often a colliding generator is retried before
// falling back to a random id.
const maxIDAttempts = 8

func (s *Store) uniqueID() domain.TaskID {
	for i := 0; i < maxIDAttempts; i++ {
		if id := s.newID(); id != "" && s.tasks.Index(id) < 0 {
			return id
		}
	}
	s.log.Warn("id generator keeps colliding, using random id", "attempts", maxIDAttempts)
	for {
		id := domain.TaskID(uuid.NewString())
		if s.tasks.Index(id) < 0 {
			return id
		}
	}
}

// Toggle flips the completed flag of the task with id. Unknown ids are ignored.
func (s *Store) Toggle(id domain.TaskID) error {
	i := s.tasks.Index(id)
	if i < 0 {
		return nil
	}
	next := s.tasks.Clone()
	next[i].Completed = !next[i].Completed
	return s.commit(next)
}

// Remove deletes the task with id. Unknown ids are ignored.
func (s *Store) Remove(id domain.TaskID) error {
	i := s.tasks.Index(id)
	if i < 0 {
		return nil
	}
	next := make(domain.Collection, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	return s.commit(next)
}

// Edit replaces the text of the task with id. Blank text and unknown ids
// are ignored.
func (s *Store) Edit(id domain.TaskID, newText string) error {
	text := strings.TrimSpace(newText)
	if text == "" {
		return nil
	}
	i := s.tasks.Index(id)
	if i < 0 {
		return nil
	}
	next := s.tasks.Clone()
	next[i].Text = text
	return s.commit(next)
}

// SetSearchTerm updates the search term. It is never persisted.
func (s *Store) SetSearchTerm(term string) {
	s.search = term
	s.notify()
}

// SearchTerm returns the current search term
func (s *Store) SearchTerm() string { return s.search }

// Tasks returns a copy of the full collection
func (s *Store) Tasks() domain.Collection { return s.tasks.Clone() }

// Len returns the number of tasks
func (s *Store) Len() int { return len(s.tasks) }

// MinSearchLen returns the shortest term that filters
func (s *Store) MinSearchLen() int { return s.minSearch }

// FilteredView returns the tasks matching the current search term.
func (s *Store) FilteredView() domain.Collection {
	return Filter(s.tasks, s.search, s.minSearch)
}

// Filter returns the tasks whose text contains term, ignoring case. Terms
// shorter than minLen characters match everything.
func Filter(tasks domain.Collection, term string, minLen int) domain.Collection {
	if utf8.RuneCountInString(term) < minLen {
		return tasks.Clone()
	}
	needle := strings.ToLower(term)
	out := domain.Collection{}
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Subscribe registers fn to run after every change. The returned func
// removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.nextObs++
	id := s.nextObs
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify() {
	for _, o := range append([]observerEntry(nil), s.observers...) {
		o.fn(s.tasks.Clone())
	}
}

// commit installs next, notifies observers and writes it through. A
// failed write leaves the in-memory state in place.
func (s *Store) commit(next domain.Collection) error {
	s.tasks = next
	s.notify()
	return s.save()
}

func (s *Store) save() error {
	raw, err := Encode(s.tasks)
	if err != nil {
		return err
	}
	if err := s.slot.Set(s.key, raw); err != nil {
		s.log.Error("persist tasks", "key", s.key, "count", len(s.tasks), "err", err)
		return fmt.Errorf("persist tasks: %w", err)
	}
	s.log.Debug("persisted tasks", "key", s.key, "count", len(s.tasks))
	return nil
}

var (
	// ErrNoMatch is returned by Resolve when no id has the prefix.
	ErrNoMatch = errors.New("no task matches")
	// ErrAmbiguous is returned by Resolve when several ids have the prefix.
	ErrAmbiguous = errors.New("task prefix is ambiguous")
)

// Resolve expands an id prefix into the full id of exactly one task.
// An exact match always wins.
func (s *Store) Resolve(prefix string) (domain.TaskID, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNoMatch)
	}
	if s.tasks.Index(domain.TaskID(prefix)) >= 0 {
		return domain.TaskID(prefix), nil
	}
	var found []domain.TaskID
	for _, t := range s.tasks {
		if strings.HasPrefix(string(t.ID), prefix) {
			found = append(found, t.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNoMatch, prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d tasks", ErrAmbiguous, prefix, len(found))
	}
}
