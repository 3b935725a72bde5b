package session

import (
	"log/slog"

	"github.com/lehigh-university-libraries/doccatalog/internal/models"
)

// State is the lifecycle position of an import session
type State int

const (
	Active    State = iota // cursor < len(queue)
	Exhausted              // every candidate decided, not yet saved
	Finalized              // Finalize was called
	Aborted                // an invariant was violated; nothing will be saved
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Exhausted:
		return "exhausted"
	case Finalized:
		return "finalized"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Saver persists a whole manifest
type Saver interface {
	Save(models.Manifest) error
}

// Result is what a successful finalize reports back to the driver
type Result struct {
	Manifest models.Manifest
	Total    int // entries in the saved manifest
	Added    int // entries accepted this session
	Skipped  int
}

// Summary is a point-in-time view for progress and status displays
type Summary struct {
	State    State  `json:"state"`
	Position int    `json:"position"` // 1-based index of the current candidate, 0 once exhausted
	Queued   int    `json:"queued"`
	Added    int    `json:"added"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"` // entries in the working manifest
	Error    string `json:"error,omitempty"`
}

// Session walks a fixed queue of candidates one at a time, collecting
// accept/skip decisions into a working copy of the manifest.
type Session struct {
	queue   []models.Candidate
	cursor  int
	working models.Manifest
	known   map[string]struct{}
	docType string
	saver   Saver

	state   State
	added   int
	skipped int
	saveErr error
}

// New starts a session over queue. The manifest is copied; the caller's
// slice is never modified. An empty queue returns ErrNothingToImport.
func New(manifest models.Manifest, queue []models.Candidate, saver Saver, docType string) (*Session, error) {
	if len(queue) == 0 {
		return nil, ErrNothingToImport
	}

	q := make([]models.Candidate, len(queue))
	copy(q, queue)

	return &Session{
		queue:   q,
		working: manifest.Clone(),
		known:   manifest.Paths(),
		docType: docType,
		saver:   saver,
		state:   Active,
	}, nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return s.state
}

// Len returns the number of candidates in the queue
func (s *Session) Len() int {
	return len(s.queue)
}

// Progress returns the 1-based position of the current candidate and the
// queue length, for "file N of M" displays
func (s *Session) Progress() (int, int) {
	if s.state != Active {
		return 0, len(s.queue)
	}
	return s.cursor + 1, len(s.queue)
}

// Current returns the candidate awaiting a decision
func (s *Session) Current() (models.Candidate, error) {
	if err := s.require("current", Active); err != nil {
		return models.Candidate{}, err
	}
	return s.queue[s.cursor], nil
}

// Peek returns the candidate awaiting a decision without checking state.
// ok is false once no candidate is pending. It is for displays that render
// a session in any state; drivers about to decide use Current.
func (s *Session) Peek() (models.Candidate, bool) {
	if s.state != Active {
		return models.Candidate{}, false
	}
	return s.queue[s.cursor], true
}

// Accept catalogs the current candidate with the given metadata, verbatim,
// and moves to the next one
func (s *Session) Accept(title, description, category string) error {
	if err := s.require("accept", Active); err != nil {
		return err
	}

	candidate := s.queue[s.cursor]
	if _, exists := s.known[candidate.Path]; exists {
		return s.abort("accept", "path already cataloged: "+candidate.Path)
	}

	s.working = append(s.working, models.CatalogEntry{
		Title:       title,
		Description: description,
		Path:        candidate.Path,
		Category:    category,
		Type:        s.docType,
	})
	s.known[candidate.Path] = struct{}{}
	s.added++

	slog.Debug("Accepted candidate", "path", candidate.Path, "category", category)
	s.advance()
	return nil
}

// Skip leaves the current candidate uncataloged and moves to the next one
func (s *Session) Skip() error {
	if err := s.require("skip", Active); err != nil {
		return err
	}

	slog.Debug("Skipped candidate", "path", s.queue[s.cursor].Path)
	s.skipped++
	s.advance()
	return nil
}

// Finalize saves the working manifest. It is single-use: the session is
// Finalized afterwards whether or not the save worked. On failure the
// returned *PersistError carries the pending entry count and the working
// manifest is kept for RetrySave.
func (s *Session) Finalize() (*Result, error) {
	if err := s.require("finalize", Exhausted); err != nil {
		return nil, err
	}

	s.state = Finalized
	return s.save()
}

// RetrySave attempts the save again after a failed Finalize
func (s *Session) RetrySave() (*Result, error) {
	if err := s.require("retry save", Finalized); err != nil {
		return nil, err
	}
	if s.saveErr == nil {
		return nil, s.abort("retry save", "manifest was already saved")
	}
	return s.save()
}

// SaveFailed reports whether the last save attempt failed
func (s *Session) SaveFailed() bool {
	return s.saveErr != nil
}

// Manifest returns a copy of the working manifest
func (s *Session) Manifest() models.Manifest {
	return s.working.Clone()
}

// DistinctCategories lists categories known to the working manifest, for
// suggesting values to the operator
func (s *Session) DistinctCategories() []string {
	return s.working.DistinctCategories()
}

// Summary returns counts for progress and final reporting
func (s *Session) Summary() Summary {
	position, queued := s.Progress()
	summary := Summary{
		State:    s.state,
		Position: position,
		Queued:   queued,
		Added:    s.added,
		Skipped:  s.skipped,
		Total:    len(s.working),
	}
	if s.saveErr != nil {
		summary.Error = s.saveErr.Error()
	}
	return summary
}

func (s *Session) save() (*Result, error) {
	if err := s.saver.Save(s.working); err != nil {
		s.saveErr = err
		slog.Error("Failed to save manifest", "pending", len(s.working), "error", err)
		return nil, &PersistError{Pending: len(s.working), Err: err}
	}
	s.saveErr = nil

	return &Result{
		Manifest: s.working.Clone(),
		Total:    len(s.working),
		Added:    s.added,
		Skipped:  s.skipped,
	}, nil
}

func (s *Session) advance() {
	s.cursor++
	if s.cursor >= len(s.queue) {
		s.state = Exhausted
	}
}

func (s *Session) require(op string, want State) error {
	if s.state == want {
		return nil
	}
	return s.abort(op, "requires "+want.String()+" state")
}

func (s *Session) abort(op, reason string) error {
	err := &InvariantError{Op: op, State: s.state, Reason: reason}
	s.state = Aborted
	slog.Error("Aborting import session", "op", op, "reason", reason)
	return err
}
