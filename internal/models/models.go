package models

import (
	"path/filepath"
	"sort"
	"strings"
)

// CatalogEntry represents one cataloged document in the manifest
type CatalogEntry struct {
	Title       string `json:"title" yaml:"title" parquet:"title"`
	Description string `json:"description" yaml:"description" parquet:"description"`
	Path        string `json:"path" yaml:"path" parquet:"path"` // unique within a manifest
	Category    string `json:"category" yaml:"category" parquet:"category"`
	Type        string `json:"type" yaml:"type" parquet:"type"`
}

// Manifest is the full, ordered catalog as persisted on disk
type Manifest []CatalogEntry

// Clone returns a copy that can be appended to without touching m
func (m Manifest) Clone() Manifest {
	out := make(Manifest, len(m))
	copy(out, m)
	return out
}

// Paths returns the set of paths already claimed by the manifest
func (m Manifest) Paths() map[string]struct{} {
	paths := make(map[string]struct{}, len(m))
	for _, entry := range m {
		paths[entry.Path] = struct{}{}
	}
	return paths
}

// DistinctCategories returns the sorted, non-empty categories used by the manifest
func (m Manifest) DistinctCategories() []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, entry := range m {
		if entry.Category == "" {
			continue
		}
		if _, ok := seen[entry.Category]; ok {
			continue
		}
		seen[entry.Category] = struct{}{}
		categories = append(categories, entry.Category)
	}
	sort.Strings(categories)
	return categories
}

// CategoryCounts returns how many entries carry each category, empty included
func (m Manifest) CategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, entry := range m {
		counts[entry.Category]++
	}
	return counts
}

// Candidate is a file in the source directory that is not yet cataloged
type Candidate struct {
	Name string `json:"name"` // file name inside the source directory
	Path string `json:"path"` // manifest path, "<source dir name>/<name>"
}

// DefaultTitle suggests a title by stripping the extension from the file name.
// Leading dots belong to the name, so ".pdf" keeps its full text.
func (c Candidate) DefaultTitle() string {
	ext := filepath.Ext(strings.TrimLeft(c.Name, "."))
	return strings.TrimSuffix(c.Name, ext)
}
