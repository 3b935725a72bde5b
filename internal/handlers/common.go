package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/doccatalog/internal/catalog"
	"github.com/lehigh-university-libraries/doccatalog/internal/models"
	"github.com/lehigh-university-libraries/doccatalog/internal/session"
	"github.com/lehigh-university-libraries/doccatalog/internal/storage"
	"github.com/lehigh-university-libraries/doccatalog/internal/suggest"
)

// Suggester pre-fills metadata for the current document
type Suggester interface {
	Suggest(ctx context.Context, candidate models.Candidate, categories []string) (suggest.Suggestion, error)
}

type Handler struct {
	workspace    *catalog.Workspace
	sessionStore *storage.SessionStore
	suggester    Suggester
}

// New returns handlers for ws. sg may be nil.
func New(ws *catalog.Workspace, sg Suggester) *Handler {
	return &Handler{
		workspace:    ws,
		sessionStore: storage.New(),
		suggester:    sg,
	}
}

// SessionView is the JSON shape of an import session
type SessionView struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	Summary      session.Summary   `json:"summary"`
	Current      *models.Candidate `json:"current,omitempty"`
	DefaultTitle string            `json:"default_title,omitempty"`
	DocumentURL  string            `json:"document_url,omitempty"`
	Categories   []string          `json:"categories"`
	Manifest     string            `json:"manifest"`
}

// Decision is the body of an accept request
type Decision struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message)
	}
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*storage.Entry, bool) {
	entry, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return entry, true
}

// view renders entry; the caller must hold the entry lock
func (h *Handler) view(entry *storage.Entry) SessionView {
	v := SessionView{
		ID:         entry.ID,
		CreatedAt:  entry.CreatedAt,
		Summary:    entry.Session.Summary(),
		Categories: entry.Session.DistinctCategories(),
		Manifest:   h.workspace.Store().Path(),
	}
	if candidate, ok := entry.Session.Peek(); ok {
		v.Current = &candidate
		v.DefaultTitle = candidate.DefaultTitle()
		v.DocumentURL = fmt.Sprintf("/api/sessions/%s/document", entry.ID)
	}
	return v
}

// writeSessionError maps a session error to a response; the caller must
// hold the entry lock
func (h *Handler) writeSessionError(w http.ResponseWriter, entry *storage.Entry, err error) {
	var persistErr *session.PersistError
	switch {
	case errors.As(err, &persistErr):
		slog.Error("Failed to save manifest", "session_id", entry.ID, "pending", persistErr.Pending, "error", persistErr.Err)
		h.writeJSONStatus(w, http.StatusInternalServerError, h.view(entry))
	case errors.Is(err, session.ErrInvariant):
		entry.Release()
		h.writeError(w, err.Error(), http.StatusConflict)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}
