package slot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errCorruptFile = errors.New("parse slot file")

// File stores all keys as one JSON object on disk, the way a browser
// keeps localStorage for an origin. The file is re-read on every Get so
// edits made by another process are picked up; writes replace it atomically.
type File struct {
	path string
}

// NewFile creates a File slot at path, creating the parent directory.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("slot: empty file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create slot dir: %w", err)
	}
	return &File{path: path}, nil
}

// Path returns the backing file path
func (f *File) Path() string { return f.path }

func (f *File) Get(key string) (string, error) {
	values, err := f.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(key, value string) error {
	values, err := f.read()
	if errors.Is(err, errCorruptFile) {
		// A file that no longer parses is replaced rather than blocking every write.
		values = map[string]string{}
	} else if err != nil {
		return err
	}
	values[key] = value

	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode slot file: %w", err)
	}
	if err := atomicWriteFile(f.path, append(b, '\n'), 0o600); err != nil {
		return fmt.Errorf("write slot file: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) read() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot file: %w", err)
	}
	values := map[string]string{}
	if len(b) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptFile, err)
	}
	return values, nil
}

func atomicWriteFile(path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
