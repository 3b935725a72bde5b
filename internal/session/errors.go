package session

import (
	"errors"
	"fmt"
)

// ErrNothingToImport is returned by New when the candidate queue is empty
var ErrNothingToImport = errors.New("nothing to import")

// ErrInvariant matches every *InvariantError via errors.Is
var ErrInvariant = errors.New("import session invariant violated")

// InvariantError reports a programming fault: an operation called in the
// wrong state, or a duplicate path reaching Accept. The session is aborted
// and nothing is persisted.
type InvariantError struct {
	Op     string
	State  State
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s in %s state: %s", ErrInvariant, e.Op, e.State, e.Reason)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

// PersistError reports a failed manifest save. The session keeps the working
// manifest so the save can be retried with RetrySave.
type PersistError struct {
	Pending int // entries that would have been written
	Err     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save manifest with %d entries: %v", e.Pending, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
