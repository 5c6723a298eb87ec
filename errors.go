package reactive

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned by operations on a session after
	// Shutdown.
	ErrSessionClosed = errors.New("reactive: session is closed")
	// ErrRerunActive is returned when a second rerun is started while
	// one is still in flight for the same session.
	ErrRerunActive = errors.New("reactive: a rerun is already active")
	// ErrRerunFinished is returned when a finished or aborted rerun is
	// used again.
	ErrRerunFinished = errors.New("reactive: rerun already finished")
)

// DuplicateIDError reports two widgets deriving the same id in one rerun
// without a disambiguating key. It carries the display labels of both
// declarations so the script author sees their own names, not hashes.
type DuplicateIDError struct {
	ID     string
	First  string
	Second string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("reactive: widget %q collides with %q (id %s); pass an explicit key to disambiguate", e.Second, e.First, e.ID)
}

// SerializationError wraps a codec failure for one widget's value. It is
// fatal for that value only, never for the whole rerun.
type SerializationError struct {
	ID  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("reactive: widget %q value codec: %v", e.ID, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
