package engine

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrInvalidSignal matches every rejected signal update.
var ErrInvalidSignal = eris.New("invalid signal value")

// SignalError describes a signal update outside its declared domain.
// Use errors.Is(err, ErrInvalidSignal) or errors.As to detect it.
type SignalError struct {
	Signal Signal
	Value  any
	Reason string
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("signal %q: %s (got %v)", e.Signal, e.Reason, e.Value)
}

func (e *SignalError) Is(target error) bool { return target == ErrInvalidSignal }
