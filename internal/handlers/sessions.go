package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/doccatalog/internal/manifest"
	"github.com/lehigh-university-libraries/doccatalog/internal/scanner"
	"github.com/lehigh-university-libraries/doccatalog/internal/session"
	"github.com/lehigh-university-libraries/doccatalog/internal/storage"
	"github.com/lehigh-university-libraries/doccatalog/internal/suggest"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		entries := h.sessionStore.GetAll()
		sessionList := make([]SessionView, 0, len(entries))
		for _, entry := range entries {
			entry.Lock()
			sessionList = append(sessionList, h.view(entry))
			entry.Unlock()
		}
		h.writeJSON(w, sessionList)
	case "POST":
		h.startSession(w)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) startSession(w http.ResponseWriter) {
	unlock, err := h.workspace.Lock()
	if errors.Is(err, manifest.ErrLocked) {
		h.writeError(w, "The manifest is being edited by another import", http.StatusConflict)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to lock manifest: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s, snapshot, err := h.workspace.StartSession()
	switch {
	case errors.Is(err, session.ErrNothingToImport):
		unlock()
		h.writeError(w, fmt.Sprintf("No new %s files found to import", h.workspace.Config().Extension), http.StatusConflict)
		return
	case errors.Is(err, scanner.ErrDirectoryNotFound):
		unlock()
		h.writeError(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		unlock()
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if snapshot.LoadState == manifest.Corrupt || snapshot.LoadState == manifest.Unreadable {
		slog.Warn("Starting import over an unusable manifest", "path", h.workspace.Store().Path(), "state", snapshot.LoadState)
	}

	entry := storage.NewEntry(fmt.Sprintf("import_%d", time.Now().UnixNano()), s, unlock)
	if err := h.sessionStore.Add(entry); err != nil {
		unlock()
		h.writeError(w, err.Error(), http.StatusConflict)
		return
	}

	slog.Info("Import session started", "session_id", entry.ID, "queued", s.Len())

	entry.Lock()
	defer entry.Unlock()
	h.writeJSONStatus(w, http.StatusCreated, h.view(entry))
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	sessionID, action, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")

	entry, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	switch {
	case action == "" && r.Method == "GET":
		entry.Lock()
		defer entry.Unlock()
		h.writeJSON(w, h.view(entry))
	case action == "" && r.Method == "DELETE":
		h.abandon(w, entry)
	case action == "accept" && r.Method == "POST":
		h.accept(w, r, entry)
	case action == "skip" && r.Method == "POST":
		entry.Lock()
		defer entry.Unlock()
		if err := entry.Session.Skip(); err != nil {
			h.writeSessionError(w, entry, err)
			return
		}
		h.writeJSON(w, h.view(entry))
	case action == "finalize" && r.Method == "POST":
		h.finalize(w, entry)
	case action == "document" && r.Method == "GET":
		h.serveDocument(w, r, entry)
	case action == "suggestion" && r.Method == "GET":
		h.serveSuggestion(w, r, entry)
	case action == "" || action == "accept" || action == "skip" || action == "finalize" ||
		action == "document" || action == "suggestion":
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request, entry *storage.Entry) {
	var decision Decision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	entry.Lock()
	defer entry.Unlock()
	if err := entry.Session.Accept(decision.Title, decision.Description, decision.Category); err != nil {
		h.writeSessionError(w, entry, err)
		return
	}
	h.writeJSON(w, h.view(entry))
}

// finalize saves the manifest; on a session whose save failed it retries
func (h *Handler) finalize(w http.ResponseWriter, entry *storage.Entry) {
	entry.Lock()
	defer entry.Unlock()

	var (
		result *session.Result
		err    error
	)
	if entry.Session.State() == session.Finalized && entry.Session.SaveFailed() {
		result, err = entry.Session.RetrySave()
	} else {
		result, err = entry.Session.Finalize()
	}
	if err != nil {
		h.writeSessionError(w, entry, err)
		return
	}

	entry.Release()
	slog.Info("Manifest updated", "session_id", entry.ID, "path", h.workspace.Store().Path(),
		"entries", result.Total, "added", result.Added)
	h.writeJSON(w, h.view(entry))
}

// abandon drops the session without saving
func (h *Handler) abandon(w http.ResponseWriter, entry *storage.Entry) {
	entry.Lock()
	summary := entry.Session.Summary()
	entry.Release()
	entry.Unlock()

	h.sessionStore.Delete(entry.ID)
	slog.Info("Import abandoned", "session_id", entry.ID, "decided", summary.Added+summary.Skipped, "queued", summary.Queued)
	w.WriteHeader(http.StatusNoContent)
}

// serveDocument streams the current candidate so the operator can preview it
func (h *Handler) serveDocument(w http.ResponseWriter, r *http.Request, entry *storage.Entry) {
	entry.Lock()
	candidate, ok := entry.Session.Peek()
	entry.Unlock()
	if !ok {
		h.writeError(w, "No current document", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.workspace.Config().SourceDir, candidate.Name))
}

// serveSuggestion returns metadata defaults for the current document
func (h *Handler) serveSuggestion(w http.ResponseWriter, r *http.Request, entry *storage.Entry) {
	entry.Lock()
	candidate, ok := entry.Session.Peek()
	categories := entry.Session.DistinctCategories()
	entry.Unlock()
	if !ok {
		h.writeError(w, "No current document", http.StatusNotFound)
		return
	}

	suggestion := suggest.Suggestion{Title: candidate.DefaultTitle()}
	if h.suggester != nil {
		suggested, err := h.suggester.Suggest(r.Context(), candidate, categories)
		if err != nil {
			slog.Warn("Metadata suggestion failed, using file name", "path", candidate.Path, "error", err)
		} else {
			suggestion = suggested
		}
	}
	h.writeJSON(w, suggestion)
}
