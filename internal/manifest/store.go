package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/lehigh-university-libraries/doccatalog/internal/models"
)

// LoadState describes what Load found on disk
type LoadState int

const (
	Loaded     LoadState = iota // file parsed as a manifest
	Missing                     // no file at the path
	Corrupt                     // file exists but is not a JSON array of entries
	Unreadable                  // file exists but could not be read
)

func (s LoadState) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Missing:
		return "missing"
	case Corrupt:
		return "corrupt"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// ErrLocked is returned by Lock when another importer holds the manifest
var ErrLocked = errors.New("manifest is locked by another importer")

// renameFile is swapped in tests to simulate a crash before the rename lands
var renameFile = os.Rename

// Store loads and saves the manifest file
type Store struct {
	path string
}

// NewStore creates a store for the manifest at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the manifest file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the manifest. A missing or unparseable file yields an empty
// manifest; the returned state tells the two apart for reporting only.
func (s *Store) Load() (models.Manifest, LoadState) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("No manifest found, starting with an empty catalog", "path", s.path)
			return models.Manifest{}, Missing
		}
		slog.Warn("Unable to read manifest, starting with an empty catalog", "path", s.path, "error", err)
		return models.Manifest{}, Unreadable
	}

	var manifest models.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		slog.Warn("Manifest is not a valid entry list, starting with an empty catalog", "path", s.path, "error", err)
		return models.Manifest{}, Corrupt
	}
	if manifest == nil {
		manifest = models.Manifest{}
	}

	slog.Debug("Loaded manifest", "path", s.path, "entries", len(manifest))
	return manifest, Loaded
}

// Save rewrites the whole manifest. The new content is written to a temp
// file in the same directory and renamed over the target, so a failure at
// any point leaves the previous file intact.
func (s *Store) Save(manifest models.Manifest) error {
	if manifest == nil {
		manifest = models.Manifest{}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set manifest permissions: %w", err)
	}

	if err := renameFile(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}

	slog.Debug("Saved manifest", "path", s.path, "entries", len(manifest))
	return nil
}

// Lock takes a non-blocking advisory lock next to the manifest so two
// importers do not race on the same file. The returned func releases it.
func (s *Store) Lock() (func() error, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire manifest lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}

	return lock.Unlock, nil
}
