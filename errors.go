package docval

import (
	"errors"
	"fmt"

	"github.com/hupe1980/docval/blobstore"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("store is closed")
)

// DocumentError records the operation and document name of a failure.
//
// The original underlying error can be accessed via errors.Unwrap.
type DocumentError struct {
	Op    string
	Name  string
	cause error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.cause)
}

func (e *DocumentError) Unwrap() error { return e.cause }

// translateError wraps err for op on name, unifying backend not-found
// errors under ErrNotFound.
func translateError(op, name string, err error) error {
	if err == nil {
		return nil
	}
	var de *DocumentError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, blobstore.ErrNotFound) {
		err = fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return &DocumentError{Op: op, Name: name, cause: err}
}
