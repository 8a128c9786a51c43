// Package slot provides the persistent key-value slot the task store
// writes its serialized collection to.
package slot

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when the key has never been set.
	ErrNotFound = errors.New("slot: key not found")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("slot: unknown backend")
)

// Slot is a synchronous string key-value store.
type Slot interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Backend is a Slot that holds resources.
type Backend interface {
	Slot
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the backend registered under name, rooted at path.
func Open(name, path string) (Backend, error) {
	switch name {
	case BackendFile, "":
		return NewFile(path)
	case BackendSQLite:
		return NewSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}
