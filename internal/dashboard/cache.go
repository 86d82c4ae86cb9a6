package dashboard

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Cache persists dashboard state across reloads. It is best-effort only;
// the server-side verification status store remains the source of truth.
type Cache interface {
	Load() (*State, error)
	Save(state *State) error
	Clear() error
}

// FileCache stores the dashboard state as a JSON file, standing in for the
// browser's local storage.
type FileCache struct {
	path string
}

// NewFileCache creates a FileCache at the given path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) Load() (*State, error) {
	raw, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: read cache")
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, eris.Wrap(err, "dashboard: unmarshal cache")
	}
	return &st, nil
}

func (c *FileCache) Save(state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return eris.Wrap(err, "dashboard: marshal cache")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return eris.Wrap(err, "dashboard: cache dir")
	}
	return eris.Wrap(os.WriteFile(c.path, raw, 0o644), "dashboard: write cache")
}

func (c *FileCache) Clear() error {
	err := os.Remove(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return eris.Wrap(err, "dashboard: clear cache")
}
