package catalog

import (
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/doccatalog/internal/config"
	"github.com/lehigh-university-libraries/doccatalog/internal/manifest"
	"github.com/lehigh-university-libraries/doccatalog/internal/models"
	"github.com/lehigh-university-libraries/doccatalog/internal/scanner"
	"github.com/lehigh-university-libraries/doccatalog/internal/session"
)

// Snapshot is the manifest as loaded plus the candidates found against it
type Snapshot struct {
	Manifest   models.Manifest
	LoadState  manifest.LoadState
	Candidates []models.Candidate
}

// Workspace ties a manifest file to the source directory it catalogs
type Workspace struct {
	cfg   config.Config
	store *manifest.Store
}

// Open returns a workspace for cfg
func Open(cfg config.Config) *Workspace {
	return &Workspace{
		cfg:   cfg,
		store: manifest.NewStore(cfg.ManifestPath),
	}
}

// Config returns the workspace configuration
func (w *Workspace) Config() config.Config {
	return w.cfg
}

// Store returns the manifest store
func (w *Workspace) Store() *manifest.Store {
	return w.store
}

// Manifest loads the current manifest
func (w *Workspace) Manifest() (models.Manifest, manifest.LoadState) {
	return w.store.Load()
}

// Pending loads the manifest and lists the files not yet cataloged
func (w *Workspace) Pending() (*Snapshot, error) {
	loaded, state := w.store.Load()

	candidates, err := scanner.Scan(w.cfg.SourceDir, w.cfg.Extension, loaded.Paths())
	if err != nil {
		return nil, err
	}

	slog.Info("Found new documents",
		"source", w.cfg.SourceDir,
		"manifest", w.store.Path(),
		"cataloged", len(loaded),
		"new", len(candidates))

	return &Snapshot{Manifest: loaded, LoadState: state, Candidates: candidates}, nil
}

// StartSession loads, scans and opens an import session. It returns
// session.ErrNothingToImport when there is nothing new and a wrapped
// scanner.ErrDirectoryNotFound when the source directory is missing.
func (w *Workspace) StartSession() (*session.Session, *Snapshot, error) {
	snapshot, err := w.Pending()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan for new documents: %w", err)
	}

	s, err := session.New(snapshot.Manifest, snapshot.Candidates, w.store, w.cfg.DocType)
	if err != nil {
		return nil, snapshot, err
	}
	return s, snapshot, nil
}

// Lock takes the manifest lock when the workspace is configured to use one.
// The returned func is always safe to call.
func (w *Workspace) Lock() (func(), error) {
	if !w.cfg.Lock {
		return func() {}, nil
	}

	unlock, err := w.store.Lock()
	if err != nil {
		return nil, err
	}
	return func() {
		if err := unlock(); err != nil {
			slog.Warn("Failed to release manifest lock", "path", w.store.Path(), "error", err)
		}
	}, nil
}
