package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glisignoli/ai-yt-dlp-web/types"
)

// QueueStore persists the full ordered queue as a single document. Every
// mutating queue operation writes the whole snapshot.
type QueueStore interface {
	Save(jobs []*types.Job) error
	Load() ([]*types.Job, error)
}

// jsonStore writes the queue to a JSON file. Saves go through a temp file in
// the same directory followed by a rename, so readers only ever observe the
// old or the new snapshot, never a partial write.
type jsonStore struct {
	path string
}

// NewJSONStore creates a store backed by the given file path
func NewJSONStore(path string) QueueStore {
	return &jsonStore{path: path}
}

// Save writes the ordered job list, replacing any previous snapshot
func (s *jsonStore) Save(jobs []*types.Job) error {
	if jobs == nil {
		jobs = []*types.Job{}
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode queue: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create queue directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".queue-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp queue file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write queue: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp queue file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace queue file: %w", err)
	}
	return nil
}

// Load reads the ordered job list. A missing file is not an error and yields
// an empty queue; a corrupt file is reported to the caller.
func (s *jsonStore) Load() ([]*types.Job, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read queue file: %w", err)
	}

	var jobs []*types.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse queue file: %w", err)
	}
	return jobs, nil
}
