package reconciler

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is the discard cause when a newer update started.
	ErrSuperseded = errors.New("superseded by a newer update")

	// ErrRenderTimeout is the discard cause when the render timeout fired.
	ErrRenderTimeout = errors.New("render timeout")

	// ErrInvalidNode is returned for nodes the reconciler cannot expand.
	ErrInvalidNode = errors.New("invalid node")
)

// DiscardedError reports a render that was dropped before its commit.
type DiscardedError struct {
	Cause error
}

func (e *DiscardedError) Error() string {
	return fmt.Sprintf("render discarded: %v", e.Cause)
}

func (e *DiscardedError) Unwrap() error { return e.Cause }

// IsDiscarded reports whether err is a DiscardedError.
func IsDiscarded(err error) bool {
	var d *DiscardedError
	return errors.As(err, &d)
}
