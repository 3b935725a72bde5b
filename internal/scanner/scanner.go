package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/doccatalog/internal/models"
)

// ErrDirectoryNotFound is returned when the source directory does not exist
var ErrDirectoryNotFound = errors.New("source directory not found")

// NormalizeExtension makes "pdf", ".pdf" and ".PDF" compare the same way
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// EntryPath builds the manifest path for a file in sourceDir:
// "<directory name>/<file name>". Relative directories such as "." are
// resolved first; a filesystem root has no name and yields the bare file name.
func EntryPath(sourceDir, name string) string {
	dir, err := filepath.Abs(sourceDir)
	if err != nil {
		dir = filepath.Clean(sourceDir)
	}

	base := filepath.Base(dir)
	if base == string(filepath.Separator) || base == "." || strings.HasSuffix(dir, string(filepath.Separator)) {
		return name
	}
	return path.Join(base, name)
}

// Scan lists files directly inside sourceDir whose name ends with extension
// (case-insensitive) and whose manifest path is not in exclude. The result is
// ordered by file name so progress numbering is the same on every run.
func Scan(sourceDir, extension string, exclude map[string]struct{}) ([]models.Candidate, error) {
	ext := NormalizeExtension(extension)
	if ext == "" {
		return nil, fmt.Errorf("extension must not be empty")
	}

	info, err := os.Stat(sourceDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, sourceDir)
		}
		return nil, fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, sourceDir)
	}

	// os.ReadDir returns entries sorted by file name
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list source directory: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	matched := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}
		matched++

		entryPath := EntryPath(sourceDir, name)
		if _, ok := exclude[entryPath]; ok {
			continue
		}
		if _, ok := seen[entryPath]; ok {
			continue
		}
		seen[entryPath] = struct{}{}

		candidates = append(candidates, models.Candidate{Name: name, Path: entryPath})
	}

	slog.Debug("Scanned source directory",
		"dir", sourceDir,
		"extension", ext,
		"matched", matched,
		"new", len(candidates))

	return candidates, nil
}
