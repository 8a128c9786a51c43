package taskstore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pbaille/tasks/internal/domain"
)

// Encode serializes c into the versioned snapshot format.
func Encode(c domain.Collection) (string, error) {
	if c == nil {
		c = domain.Collection{}
	}
	b, err := json.Marshal(domain.Snapshot{Version: domain.SchemaVersion, Tasks: c})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(b), nil
}

// Decode parses a persisted collection. Both the versioned snapshot and
// the bare array written by the browser app are accepted.
func Decode(raw string) (domain.Collection, error) {
	b := bytes.TrimSpace([]byte(raw))
	if len(b) == 0 {
		return nil, fmt.Errorf("decode snapshot: empty value")
	}

	if b[0] == '[' {
		var legacy domain.Collection
		if err := json.Unmarshal(b, &legacy); err != nil {
			return nil, fmt.Errorf("decode legacy list: %w", err)
		}
		return legacy.Sanitize(), nil
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version < 1 || snap.Version > domain.SchemaVersion {
		return nil, fmt.Errorf("decode snapshot: unsupported version %d", snap.Version)
	}
	return snap.Tasks.Sanitize(), nil
}
