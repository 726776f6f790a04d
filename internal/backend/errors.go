package backend

import "errors"

var (
	// ErrNotFound means the requested row does not exist. For shift
	// lookups this is a normal outcome, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrNoSession means a privileged operation was attempted without a
	// valid authenticated session.
	ErrNoSession = errors.New("not logged in")

	// ErrRestricted means a delete was blocked because dependent rows
	// exist.
	ErrRestricted = errors.New("deletion blocked: dependent records exist")
)

// Error is a failure reported by the backend. Message carries the
// backend's own text and is surfaced to the user verbatim.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " failed"
}

func (e *Error) Unwrap() error { return e.Err }
