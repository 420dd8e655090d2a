package dataset

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/spektr-org/launchboard/schema"
)

// Load failure kinds. Match with errors.Is.
var (
	ErrMissingColumn  = eris.New("missing required column")
	ErrInvalidPayload = eris.New("payload mass must be a finite, non-negative number")
	ErrInvalidOutcome = eris.New("outcome must be 0 or 1")
	ErrEmptySite      = eris.New("launch site is empty")
	ErrUnknownSite    = eris.New("launch site is not in the configured enumeration")
)

// LoadError reports why a source could not become a Dataset. Row is the
// 1-based line in the source (the header is line 1), 0 when the failure is
// not tied to a row.
type LoadError struct {
	Source string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %s: row %d, column %q, value %q: %v", e.Source, e.Row, e.Column, e.Value, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("load %s: row %d: %v", e.Source, e.Row, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches ErrMissingColumn for schema resolution failures.
func (e *LoadError) Is(target error) bool {
	if target != ErrMissingColumn {
		return false
	}
	var missing *schema.MissingColumnsError
	return errors.As(e.Err, &missing)
}
