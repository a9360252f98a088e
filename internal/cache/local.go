package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LocalCache implements Cache with one file per resource name inside dir.
// The entry's age is the file's modification time.
type LocalCache struct {
	dir string
	now func() time.Time
}

// NewLocalCache creates a new local file-based cache rooted at dir.
// The directory is created lazily on the first write.
func NewLocalCache(dir string) *LocalCache {
	return &LocalCache{
		dir: dir,
		now: time.Now,
	}
}

// Path returns the file backing name.
func (c *LocalCache) Path(name string) string {
	return filepath.Join(c.dir, name)
}

// ReadFresh returns the cached payload if its file is no older than maxAge.
func (c *LocalCache) ReadFresh(_ context.Context, name string, maxAge time.Duration) (json.RawMessage, bool, error) {
	if c.dir == "" {
		return nil, false, nil
	}

	info, err := os.Stat(c.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to stat cache file: %w", err)
	}
	if !isFresh(c.now(), info.ModTime(), maxAge) {
		return nil, false, nil
	}
	return c.read(name)
}

// ReadStale returns the cached payload whatever its age.
func (c *LocalCache) ReadStale(_ context.Context, name string) (json.RawMessage, bool, error) {
	if c.dir == "" {
		return nil, false, nil
	}
	return c.read(name)
}

func (c *LocalCache) read(name string) (json.RawMessage, bool, error) {
	data, err := os.ReadFile(c.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil // No cache file yet, not an error
		}
		return nil, false, fmt.Errorf("failed to read cache file: %w", err)
	}
	if !json.Valid(data) {
		return nil, false, fmt.Errorf("failed to parse cache file %s: invalid JSON", name)
	}
	return json.RawMessage(data), true, nil
}

// Write stores payload under name using a temp file + rename.
func (c *LocalCache) Write(_ context.Context, name string, payload json.RawMessage) error {
	if c.dir == "" {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return WriteFileAtomic(c.Path(name), payload)
}

// Close is a no-op for local cache.
func (c *LocalCache) Close() error {
	return nil
}

// WriteFileAtomic writes data to a uniquely named sibling of path and renames
// it over path. On failure the temp file is removed and path is untouched.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) // Clean up temp file
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
