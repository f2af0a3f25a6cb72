package adapter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

// StateStore persists the tracker state between runs. Persistence is an
// optimization only: a missing or unreadable state file simply means the
// tracker starts empty and is rebuilt from subsequent events.
type StateStore interface {
	Save(path m.Path, snapshot m.Snapshot) error
	Load(path m.Path) (m.Snapshot, error)
}

// YAMLStateStore stores the tracker snapshot as a YAML document.
type YAMLStateStore struct{}

// NewYAMLStateStore constructs a YAMLStateStore.
func NewYAMLStateStore() *YAMLStateStore {
	return &YAMLStateStore{}
}

// Save writes the snapshot to path, replacing any previous state file.
func (s *YAMLStateStore) Save(path m.Path, snapshot m.Snapshot) error {
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}

	return nil
}

// Load reads a snapshot from path. A missing file yields an empty snapshot.
func (s *YAMLStateStore) Load(path m.Path) (m.Snapshot, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		if os.IsNotExist(err) {
			return m.EmptySnapshot(), nil
		}

		return m.Snapshot{}, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	snapshot := m.EmptySnapshot()
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return m.Snapshot{}, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}

	if snapshot.Scripts == nil {
		snapshot.Scripts = map[string]string{}
	}

	return snapshot, nil
}
